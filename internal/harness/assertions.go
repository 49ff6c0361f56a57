package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when a trace assertion fails.
// It includes the full trace so failures can be debugged from the message
// alone.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %q (%s) <- %s", event.Step, event.Input, event.Kind, event.Source)
		if event.Name != "" {
			fmt.Fprintf(&buf, " name=%s", event.Name)
		}
		if event.Number != 0 {
			fmt.Fprintf(&buf, " number=%d", event.Number)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

// Assert validates one assertion against the trace.
func Assert(trace []TraceEvent, assertion Assertion) error {
	switch assertion.Type {
	case AssertTraceContains:
		return assertTraceContains(trace, assertion)
	case AssertTraceOrder:
		return assertTraceOrder(trace, assertion)
	case AssertTraceCount:
		return assertTraceCount(trace, assertion)
	default:
		return fmt.Errorf("unknown assertion type %q", assertion.Type)
	}
}

// assertTraceContains checks that some trace event for the given input
// matches the assertion's source and resolved fields (subset match).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Input != assertion.Input {
			continue
		}
		if assertion.Source != "" && event.Source != assertion.Source {
			continue
		}
		if assertion.Name != "" && event.Name != assertion.Name {
			continue
		}
		if assertion.Number != 0 && event.Number != assertion.Number {
			continue
		}
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: describeContains(assertion),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

func describeContains(a Assertion) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "event for input %q", a.Input)
	if a.Source != "" {
		fmt.Fprintf(&buf, " from %s", a.Source)
	}
	if a.Name != "" {
		fmt.Fprintf(&buf, " with name %q", a.Name)
	}
	if a.Number != 0 {
		fmt.Fprintf(&buf, " with number %d", a.Number)
	}
	return buf.String()
}

// assertTraceOrder checks that the inputs appear in the trace in the given
// order. They don't need to be consecutive; intervening events are allowed.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	// First position of each expected input, 1-indexed for readability.
	positions := make(map[string]int)
	for i, event := range trace {
		for _, input := range assertion.Inputs {
			if event.Input == input && positions[input] == 0 {
				positions[input] = i + 1
			}
		}
	}

	for _, input := range assertion.Inputs {
		if positions[input] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all inputs present: %v", assertion.Inputs),
				Actual:   fmt.Sprintf("missing input: %q", input),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Inputs); i++ {
		prev := assertion.Inputs[i-1]
		curr := assertion.Inputs[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("inputs in order: %v", assertion.Inputs),
				Actual: fmt.Sprintf("%q (pos %d) should be before %q (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks that exactly Count events were answered by the
// given source.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Source == assertion.Source {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d events from %s", assertion.Count, assertion.Source),
			Actual:   fmt.Sprintf("%d events", count),
			Trace:    trace,
		}
	}

	return nil
}
