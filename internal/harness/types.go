package harness

// TraceEvent records how one input of a flow step resolved.
type TraceEvent struct {
	// Step is the 1-based index of the flow step that produced the event.
	Step int `json:"step"`

	// Input is the raw input exactly as the scenario spelled it.
	Input string `json:"input"`

	// Kind is the standardized form of the input: "number", "name",
	// "designation" or "empty".
	Kind string `json:"kind"`

	// Source is the pass that answered: "local", "remote" or "none".
	Source string `json:"source"`

	// Name, Number and ID are the resolved triple. Zero values mean the
	// field was not resolved (or, for ID, that include_ids was off).
	Name   string `json:"name,omitempty"`
	Number int64  `json:"number,omitempty"`
	ID     string `json:"id,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if all expectations and assertions hold.
	Pass bool `json:"pass"`

	// Trace contains one event per resolved input, in flow order.
	// Used for assertions and golden comparison.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// SourceCounts tallies trace events by answering pass.
func (r *Result) SourceCounts() (local, remote, missed int) {
	for _, event := range r.Trace {
		switch event.Source {
		case SourceLocal:
			local++
		case SourceRemote:
			remote++
		default:
			missed++
		}
	}
	return local, remote, missed
}
