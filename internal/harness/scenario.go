package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios validate the resolution contract by resolving a flow of
// identifier batches against fixture data and asserting on the trace.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are stored
	// under testdata/golden/<name>.golden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Index lists the bodies loaded into the fixture index before the
	// flow runs. An empty list leaves the local pass with nothing to
	// answer, forcing every identifier to the remote service.
	Index []IndexEntry `yaml:"index,omitempty"`

	// Remote lists the bodies the stub quaero service can answer.
	Remote []RemoteEntry `yaml:"remote,omitempty"`

	// RemoteDown shuts the stub service before the flow runs, so every
	// remote lookup fails at the transport level. Used to validate that
	// an outage degrades to per-element misses.
	RemoteDown bool `yaml:"remote_down,omitempty"`

	// BatchToken is an optional fixed batch token for deterministic
	// log output and trace snapshots. If empty, the harness default
	// "test-batch-default" is used.
	BatchToken string `yaml:"batch_token,omitempty"`

	// Flow contains the resolution batches to run, in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace.
	// Supported types: trace_contains, trace_order, trace_count.
	Assertions []Assertion `yaml:"assertions"`
}

// IndexEntry is one fixture body loaded into the local index.
type IndexEntry struct {
	// ID is the SsODNet id of the body.
	ID string `yaml:"id"`

	// Name is the current name of the body.
	Name string `yaml:"name"`

	// Number is the catalogue number; 0 marks an unnumbered body.
	Number int64 `yaml:"number,omitempty"`

	// Aliases lists designations and historical names.
	Aliases []string `yaml:"aliases,omitempty"`
}

// RemoteEntry is one fixture body the stub quaero service answers with.
// The catalogue number is served as the first alias, the way quaero
// reports numbers.
type RemoteEntry struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Number  int64    `yaml:"number,omitempty"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// FlowStep is one resolution batch in the scenario flow.
type FlowStep struct {
	// Identify lists the raw inputs of the batch, resolved in order.
	Identify []string `yaml:"identify"`

	// IncludeIDs keeps SsODNet ids on the results (and in the trace).
	IncludeIDs bool `yaml:"include_ids,omitempty"`

	// RemoteOnly skips the local pass for this batch.
	RemoteOnly bool `yaml:"remote_only,omitempty"`

	// Expect specifies the expected resolution per input, aligned by
	// position. If empty, the step only contributes trace events.
	Expect []Expectation `yaml:"expect,omitempty"`
}

// Expectation describes the expected resolution of one input.
// Field checks are a subset match: only non-zero fields are validated.
type Expectation struct {
	// Found states whether the input must resolve at all.
	Found bool `yaml:"found"`

	// Name is the expected canonical name.
	Name string `yaml:"name,omitempty"`

	// Number is the expected catalogue number.
	Number int64 `yaml:"number,omitempty"`

	// ID is the expected SsODNet id; only meaningful with include_ids.
	ID string `yaml:"id,omitempty"`
}

// Assertion validates the trace after the whole flow has run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an input resolved with the given source/fields
	// - "trace_order": inputs appear in the trace in the given order
	// - "trace_count": exactly N trace events have the given source
	Type string `yaml:"type"`

	// Input is the raw input to look for (used by trace_contains).
	Input string `yaml:"input,omitempty"`

	// Source is the expected answering pass: "local", "remote" or
	// "none" (used by trace_contains and trace_count).
	Source string `yaml:"source,omitempty"`

	// Name is the expected resolved name (used by trace_contains;
	// subset match).
	Name string `yaml:"name,omitempty"`

	// Number is the expected catalogue number (used by trace_contains;
	// subset match).
	Number int64 `yaml:"number,omitempty"`

	// Count is the expected number of events (used by trace_count).
	Count int `yaml:"count"`

	// Inputs is the expected input order (used by trace_order).
	Inputs []string `yaml:"inputs,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
)

// Trace event sources.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
	SourceNone   = "none"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, e := range s.Index {
		if e.ID == "" || e.Name == "" {
			return fmt.Errorf("index[%d]: id and name are required", i)
		}
	}

	for i, e := range s.Remote {
		if e.ID == "" || e.Name == "" {
			return fmt.Errorf("remote[%d]: id and name are required", i)
		}
	}

	for i, step := range s.Flow {
		if len(step.Identify) == 0 {
			return fmt.Errorf("flow[%d]: identify is required and must be non-empty", i)
		}
		if len(step.Expect) > 0 && len(step.Expect) != len(step.Identify) {
			return fmt.Errorf("flow[%d]: expect has %d entries for %d inputs",
				i, len(step.Expect), len(step.Identify))
		}
		for j, exp := range step.Expect {
			if !exp.Found && (exp.Name != "" || exp.Number != 0 || exp.ID != "") {
				return fmt.Errorf("flow[%d].expect[%d]: field checks require found: true", i, j)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Input == "" {
			return fmt.Errorf("assertions[%d]: input is required for trace_contains", index)
		}
		if a.Source != "" {
			if err := validateSource(a.Source); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertTraceOrder:
		if len(a.Inputs) == 0 {
			return fmt.Errorf("assertions[%d]: inputs list is required for trace_order", index)
		}
	case AssertTraceCount:
		if err := validateSource(a.Source); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func validateSource(source string) error {
	switch source {
	case SourceLocal, SourceRemote, SourceNone:
		return nil
	default:
		return fmt.Errorf("unknown source %q", source)
	}
}
