package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"

	"github.com/JulienPeloton/rocks/internal/index"
	"github.com/JulienPeloton/rocks/internal/naming"
	"github.com/JulienPeloton/rocks/internal/resolver"
	"github.com/JulienPeloton/rocks/internal/ssodnet"
	"github.com/JulienPeloton/rocks/internal/testutil"
)

// Harness executes one scenario against its fixture world.
// It runs flow steps with a deterministic batch token and attributes each
// trace event to the pass that answered it.
type Harness struct {
	scenario *Scenario
	local    *recordingSource
	remote   *recordingSource
	resolver *resolver.Resolver
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory index rebuilt from its
// fixtures and a stub quaero service serving its remote entries, so runs
// are hermetic and reproducible.
//
// Execution flow:
// 1. Build the fixture index in memory
// 2. Start the stub quaero service (and shut it when remote_down is set)
// 3. Resolve each flow step, recording one trace event per input
// 4. Validate expect clauses, then trace assertions
// 5. Return the result with pass/fail, trace, and errors
func Run(scenario *Scenario) (*Result, error) {
	ix, err := buildIndex(scenario.Index)
	if err != nil {
		return nil, err
	}
	defer ix.Close()

	server := NewQuaeroStub(scenario.Remote)
	defer server.Close()
	if scenario.RemoteDown {
		// Shut the listener now: every remote lookup fails at dial time.
		server.Close()
	}

	client := ssodnet.New(server.URL+"/quaero/1/sso/search", server.URL+"/ssocard", server.URL+"/index.json")

	h := &Harness{
		scenario: scenario,
		local:    &recordingSource{next: ix},
		remote:   &recordingSource{next: client},
	}
	h.resolver = resolver.New(h.local, h.remote)
	h.resolver.Tokens = testutil.NewConstantTokenGenerator(scenario.BatchToken)

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Flow {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	for i, assertion := range scenario.Assertions {
		if err := Assert(result.Trace, assertion); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	return result, nil
}

// executeStep resolves one batch, appends its trace events and checks the
// step's expect clauses.
func (h *Harness) executeStep(ctx context.Context, stepIndex int, step FlowStep, result *Result) error {
	// Fresh recorders per step: attribution must not leak between steps
	// when the same identifier recurs with different options.
	h.local.Reset()
	h.remote.Reset()

	ids := make([]resolver.Identifier, len(step.Identify))
	for i, raw := range step.Identify {
		ids[i] = resolver.FromString(raw)
	}

	resolutions, err := h.resolver.Identify(ctx, ids, resolver.Options{
		IncludeID: step.IncludeIDs,
		SkipLocal: step.RemoteOnly,
	})
	if err != nil {
		return fmt.Errorf("flow[%d]: identify: %w", stepIndex, err)
	}

	for i, res := range resolutions {
		result.Trace = append(result.Trace, TraceEvent{
			Step:   stepIndex + 1,
			Input:  step.Identify[i],
			Kind:   ids[i].Kind.String(),
			Source: h.source(ids[i], res),
			Name:   res.Name,
			Number: res.Number,
			ID:     res.ID,
		})
	}

	checkExpectations(stepIndex, step, resolutions, result)
	return nil
}

// source attributes a resolution to the pass that answered it.
func (h *Harness) source(id resolver.Identifier, res resolver.Resolution) string {
	if !res.Resolved() {
		return SourceNone
	}
	if h.local.Answered(id) {
		return SourceLocal
	}
	if h.remote.Answered(id) {
		return SourceRemote
	}
	return SourceNone
}

// checkExpectations validates a step's expect clauses against the
// resolutions, position by position. Field checks are subset matches.
func checkExpectations(stepIndex int, step FlowStep, resolutions []resolver.Resolution, result *Result) {
	for i, want := range step.Expect {
		if i >= len(resolutions) {
			result.AddError(fmt.Sprintf("flow[%d].expect[%d]: no input at this position", stepIndex, i))
			return
		}
		got := resolutions[i]
		input := step.Identify[i]

		if want.Found != got.Resolved() {
			result.AddError(fmt.Sprintf("flow[%d].expect[%d]: %q resolved = %v, want %v",
				stepIndex, i, input, got.Resolved(), want.Found))
			continue
		}
		if !want.Found {
			continue
		}
		if want.Name != "" && want.Name != got.Name {
			result.AddError(fmt.Sprintf("flow[%d].expect[%d]: %q name = %q, want %q",
				stepIndex, i, input, got.Name, want.Name))
		}
		if want.Number != 0 && want.Number != got.Number {
			result.AddError(fmt.Sprintf("flow[%d].expect[%d]: %q number = %d, want %d",
				stepIndex, i, input, got.Number, want.Number))
		}
		if want.ID != "" && want.ID != got.ID {
			result.AddError(fmt.Sprintf("flow[%d].expect[%d]: %q id = %q, want %q",
				stepIndex, i, input, got.ID, want.ID))
		}
	}
}

// lookupSource is the collaborator surface shared by the local index and
// the remote client.
type lookupSource interface {
	Lookup(ctx context.Context, id resolver.Identifier) (resolver.Resolution, bool, error)
}

// recordingSource wraps a lookup collaborator and records which
// identifiers it answered, keyed by standardized lookup form. The harness
// uses the records to attribute trace events to the answering pass.
type recordingSource struct {
	next     lookupSource
	answered map[string]bool
}

func (s *recordingSource) Lookup(ctx context.Context, id resolver.Identifier) (resolver.Resolution, bool, error) {
	res, ok, err := s.next.Lookup(ctx, id)
	if s.answered == nil {
		s.answered = make(map[string]bool)
	}
	s.answered[id.String()] = ok && err == nil
	return res, ok, err
}

// Answered reports whether this source resolved the identifier during the
// current step.
func (s *recordingSource) Answered(id resolver.Identifier) bool {
	return s.answered[id.String()]
}

// Reset clears the recorded answers.
func (s *recordingSource) Reset() {
	s.answered = nil
}

// buildIndex loads the fixture entries into a fresh in-memory index,
// through the same rebuild path the update command uses.
func buildIndex(entries []IndexEntry) (*index.Index, error) {
	ix, err := index.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture index: %w", err)
	}
	if len(entries) == 0 {
		return ix, nil
	}

	dump := make([]index.Entry, len(entries))
	for i, e := range entries {
		dump[i] = index.Entry{ID: e.ID, Name: e.Name, Number: e.Number, Aliases: e.Aliases}
	}
	data, err := json.Marshal(dump)
	if err != nil {
		ix.Close()
		return nil, fmt.Errorf("failed to encode fixture index: %w", err)
	}
	if _, err := ix.Rebuild(context.Background(), bytes.NewReader(data), "fixture"); err != nil {
		ix.Close()
		return nil, fmt.Errorf("failed to build fixture index: %w", err)
	}
	return ix, nil
}

// NewQuaeroStub serves remote fixtures over the quaero search protocol:
// hits whose reduced name, alias or number match the quoted identifier in
// the query, in fixture order. Catalogue numbers are served as the first
// alias, the way quaero reports numbers.
func NewQuaeroStub(entries []RemoteEntry) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := naming.Reduce(quotedIdentifier(r.URL.Query().Get("q")))

		hits := make([]map[string]any, 0, len(entries))
		for _, e := range entries {
			if matchesKey(e, key) {
				hits = append(hits, quaeroHit(e))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"total": len(hits),
			"data":  hits,
		})
	}))
}

func quaeroHit(e RemoteEntry) map[string]any {
	aliases := make([]string, 0, len(e.Aliases)+1)
	if e.Number >= 1 {
		aliases = append(aliases, strconv.FormatInt(e.Number, 10))
	}
	aliases = append(aliases, e.Aliases...)

	return map[string]any{
		"id":      e.ID,
		"name":    e.Name,
		"type":    "Asteroid",
		"aliases": aliases,
	}
}

func matchesKey(e RemoteEntry, key string) bool {
	if key == "" {
		return false
	}
	if naming.Reduce(e.Name) == key {
		return true
	}
	if e.Number >= 1 && strconv.FormatInt(e.Number, 10) == key {
		return true
	}
	for _, a := range e.Aliases {
		if naming.Reduce(a) == key {
			return true
		}
	}
	return false
}

// quotedIdentifier pulls the identifier out of a quaero query, which
// quotes it as the last term: type:("Dwarf Planet" OR Asteroid) AND "Ceres".
func quotedIdentifier(q string) string {
	parts := strings.Split(q, `"`)
	if len(parts) < 3 {
		return ""
	}
	return parts[len(parts)-2]
}
