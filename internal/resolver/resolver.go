package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v2"
)

// LocalIndex answers lookups from the on-disk name-number index.
// ok=false with a nil error means "not in the index"; errors are reserved
// for storage faults.
type LocalIndex interface {
	Lookup(ctx context.Context, id Identifier) (Resolution, bool, error)
}

// RemoteResolver answers lookups through the remote name-resolution
// service. Same contract as LocalIndex: ok=false with a nil error is a
// clean miss, errors are transport or protocol faults.
type RemoteResolver interface {
	Lookup(ctx context.Context, id Identifier) (Resolution, bool, error)
}

// Options configures one resolution call. The zero value is the default:
// local lookups first, service ids stripped from results, no progress
// output.
type Options struct {
	// IncludeID keeps the service id on each result. When false the id is
	// blanked before results are returned.
	IncludeID bool

	// SkipLocal bypasses the local index and sends every identifier
	// straight to the remote service.
	SkipLocal bool

	// ShowProgress renders a progress bar while the batch resolves.
	// Cosmetic only: results are identical with and without it.
	ShowProgress bool

	// ProgressOutput is where the progress bar draws. Defaults to stderr.
	ProgressOutput io.Writer
}

// Resolver resolves standardized identifiers to (name, number, id)
// triples, preferring the local index and falling back to the remote
// service for identifiers the index cannot answer.
type Resolver struct {
	local  LocalIndex
	remote RemoteResolver

	// Tokens generates the per-batch correlation token used in log lines.
	// Defaults to UUIDv7Generator; tests override it with a FixedGenerator.
	Tokens TokenGenerator
}

// New creates a Resolver over the given collaborators. Either collaborator
// may be nil; a nil collaborator behaves like one that never matches.
func New(local LocalIndex, remote RemoteResolver) *Resolver {
	return &Resolver{local: local, remote: remote, Tokens: UUIDv7Generator{}}
}

// Identify resolves a batch of identifiers.
//
// The result slice has exactly one element per input, in input order. An
// identifier that cannot be resolved yields the zero Resolution at its
// position; lookup faults (storage errors, service outages) degrade to the
// same per-element soft fail and are logged once per element. The only
// error Identify returns is context cancellation, which aborts the batch.
func (r *Resolver) Identify(ctx context.Context, ids []Identifier, opts Options) ([]Resolution, error) {
	results := make([]Resolution, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	token := r.token()
	slog.Debug("resolving batch", "batch", token, "count", len(ids))

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = newProgressBar(len(ids), opts.ProgressOutput)
	}

	var local, remote, missed int
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, src, err := r.resolveOne(ctx, id, opts.SkipLocal)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("resolution failed", "batch", token, "identifier", id.String(), "error", err)
			res, src = Resolution{}, sourceNone
		}

		switch src {
		case sourceLocal:
			local++
		case sourceRemote:
			remote++
		default:
			missed++
		}

		if !opts.IncludeID {
			res.ID = ""
		}
		results[i] = res

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	slog.Debug("batch resolved", "batch", token, "local", local, "remote", remote, "missed", missed)
	return results, nil
}

// IdentifyOne resolves a single identifier under the same contract as
// Identify.
func (r *Resolver) IdentifyOne(ctx context.Context, id Identifier, opts Options) (Resolution, error) {
	results, err := r.Identify(ctx, []Identifier{id}, opts)
	if err != nil {
		return Resolution{}, err
	}
	return results[0], nil
}

// source tracks which pass answered an identifier, for the batch summary
// log line.
type source int

const (
	sourceNone source = iota
	sourceLocal
	sourceRemote
)

func (r *Resolver) resolveOne(ctx context.Context, id Identifier, skipLocal bool) (Resolution, source, error) {
	if id.IsEmpty() {
		return Resolution{}, sourceNone, nil
	}

	if !skipLocal && r.local != nil {
		res, ok, err := r.local.Lookup(ctx, id)
		if err != nil {
			return Resolution{}, sourceNone, fmt.Errorf("local lookup: %w", err)
		}
		if ok {
			return res, sourceLocal, nil
		}
	}

	if r.remote == nil {
		return Resolution{}, sourceNone, nil
	}
	res, ok, err := r.remote.Lookup(ctx, id)
	if err != nil {
		return Resolution{}, sourceNone, fmt.Errorf("remote lookup: %w", err)
	}
	if !ok {
		return Resolution{}, sourceNone, nil
	}
	return res, sourceRemote, nil
}

func (r *Resolver) token() string {
	gen := r.Tokens
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	return gen.Generate()
}

func newProgressBar(total int, w io.Writer) *progressbar.ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("resolving"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
