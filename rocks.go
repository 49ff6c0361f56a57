// Package rocks resolves minor-body identifiers (names, catalogue numbers,
// provisional designations) to canonical (name, number, SsODNet id)
// triples. Resolution prefers the local name-number index and falls back to
// the SsODNet quaero service for identifiers the index cannot answer.
//
// The package-level functions run against a shared resolver wired from
// configuration (ROCKS_* environment variables, plus the YAML file named by
// ROCKS_CONFIG):
//
//	res, err := rocks.IdentifyOne(ctx, "Ceres", rocks.Options{})
//	// res.Name == "Ceres", res.Number == 1
//
// Callers that need their own collaborators construct a Resolver directly
// with New.
package rocks

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/JulienPeloton/rocks/internal/cache"
	"github.com/JulienPeloton/rocks/internal/config"
	"github.com/JulienPeloton/rocks/internal/index"
	"github.com/JulienPeloton/rocks/internal/resolver"
	"github.com/JulienPeloton/rocks/internal/ssodnet"
)

// Version of the rocks module.
const Version = "0.1.0"

// Aliases exposing the resolver core as the public API surface.
type (
	// Identifier is one standardized lookup input. See Standardize.
	Identifier = resolver.Identifier
	// Resolution is the canonical (name, number, id) triple for one input.
	// The zero value means "not found".
	Resolution = resolver.Resolution
	// Options configures one resolution call. The zero value is the
	// default: local lookups first, ids stripped, no progress output.
	Options = resolver.Options
	// Resolver resolves identifier batches against a local index and a
	// remote service.
	Resolver = resolver.Resolver
	// LocalIndex is the local lookup collaborator.
	LocalIndex = resolver.LocalIndex
	// RemoteResolver is the remote lookup collaborator.
	RemoteResolver = resolver.RemoteResolver
)

// New creates a Resolver over the given collaborators. Either collaborator
// may be nil; a nil collaborator behaves like one that never matches.
func New(local LocalIndex, remote RemoteResolver) *Resolver {
	return resolver.New(local, remote)
}

// Standardize normalizes any supported input into an Identifier. nil and
// NaN yield the empty sentinel; integers and integral floats become
// catalogue numbers; strings are recognized as numbers, designations or
// names. Standardize never fails.
func Standardize(v any) Identifier {
	return resolver.Standardize(v)
}

// FromString standardizes a textual identifier.
func FromString(s string) Identifier {
	return resolver.FromString(s)
}

// FromNumber standardizes a catalogue number.
func FromNumber(n int64) Identifier {
	return resolver.FromNumber(n)
}

// CoerceAll normalizes heterogeneous input into a flat identifier batch,
// flattening slices one level and preserving order.
func CoerceAll(vs ...any) []Identifier {
	return resolver.CoerceAll(vs...)
}

// defaultResolver wires the shared resolver once. The index handle stays
// open for the life of the process, like any long-lived database client.
var defaultResolver = sync.OnceValues(newDefaultResolver)

// DefaultResolver returns the shared resolver: local index under the cache
// directory, SsODNet client for the fallback, both wired from
// configuration. The first call creates the cache directory and the index
// database if they do not exist yet.
func DefaultResolver() (*Resolver, error) {
	return defaultResolver()
}

func newDefaultResolver() (*Resolver, error) {
	cfg, err := config.Load(os.Getenv("ROCKS_CONFIG"))
	if err != nil {
		return nil, fmt.Errorf("rocks: %w", err)
	}

	store := cache.New(cfg.CacheDir)
	if err := os.MkdirAll(store.Dir(), 0o755); err != nil {
		return nil, fmt.Errorf("rocks: create cache directory: %w", err)
	}
	ix, err := index.Open(store.IndexPath())
	if err != nil {
		return nil, fmt.Errorf("rocks: open local index: %w", err)
	}

	client := ssodnet.NewWithHTTPClient(cfg.QuaeroURL, cfg.CardURL, cfg.IndexURL, &http.Client{
		Timeout: cfg.HTTPTimeout(),
	})
	return resolver.New(ix, client), nil
}

// Identify resolves a batch of identifiers with the shared resolver. The
// input may be a scalar (string, number) or a slice ([]string, []int,
// []int64, []float64, []any); results come back one per input element, in
// input order, with unresolvable inputs yielding the zero Resolution.
func Identify(ctx context.Context, identifiers any, opts Options) ([]Resolution, error) {
	r, err := DefaultResolver()
	if err != nil {
		return nil, err
	}
	return r.Identify(ctx, CoerceAll(identifiers), opts)
}

// IdentifyOne resolves a single identifier with the shared resolver.
func IdentifyOne(ctx context.Context, identifier any, opts Options) (Resolution, error) {
	r, err := DefaultResolver()
	if err != nil {
		return Resolution{}, err
	}
	return r.IdentifyOne(ctx, Standardize(identifier), opts)
}
