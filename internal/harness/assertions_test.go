package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertTraceContains_Found(t *testing.T) {
	trace := []TraceEvent{
		{Step: 1, Input: "Ceres", Kind: "name", Source: SourceLocal, Name: "Ceres", Number: 1},
		{Step: 1, Input: "Bennu", Kind: "name", Source: SourceRemote, Name: "Bennu", Number: 101955},
	}

	assertion := Assertion{
		Type:   AssertTraceContains,
		Input:  "Ceres",
		Source: SourceLocal,
		Name:   "Ceres",
	}

	err := assertTraceContains(trace, assertion)
	assert.NoError(t, err)
}

func TestAssertTraceContains_NotFound(t *testing.T) {
	trace := []TraceEvent{
		{Step: 1, Input: "Ceres", Kind: "name", Source: SourceLocal, Name: "Ceres", Number: 1},
	}

	assertion := Assertion{
		Type:  AssertTraceContains,
		Input: "Pallas",
	}

	err := assertTraceContains(trace, assertion)
	require.Error(t, err)

	assertErr, ok := err.(*AssertionError)
	require.True(t, ok)
	assert.Equal(t, "trace_contains", assertErr.Type)
	assert.Contains(t, assertErr.Expected, "Pallas")
	assert.Equal(t, "not found in trace", assertErr.Actual)
}

func TestAssertTraceContains_WrongSource(t *testing.T) {
	trace := []TraceEvent{
		{Step: 1, Input: "Ceres", Kind: "name", Source: SourceLocal, Name: "Ceres", Number: 1},
	}

	assertion := Assertion{
		Type:   AssertTraceContains,
		Input:  "Ceres",
		Source: SourceRemote,
	}

	err := assertTraceContains(trace, assertion)
	require.Error(t, err)
}

func TestAssertTraceContains_SubsetMatch(t *testing.T) {
	// Only the fields set on the assertion are checked.
	trace := []TraceEvent{
		{Step: 1, Input: "Ceres", Kind: "name", Source: SourceLocal, Name: "Ceres", Number: 1, ID: "Ceres"},
	}

	assertion := Assertion{
		Type:  AssertTraceContains,
		Input: "Ceres",
	}

	err := assertTraceContains(trace, assertion)
	assert.NoError(t, err)
}

func TestAssertTraceContains_WrongNumber(t *testing.T) {
	trace := []TraceEvent{
		{Step: 1, Input: "Ceres", Kind: "name", Source: SourceLocal, Name: "Ceres", Number: 1},
	}

	assertion := Assertion{
		Type:   AssertTraceContains,
		Input:  "Ceres",
		Number: 2,
	}

	err := assertTraceContains(trace, assertion)
	require.Error(t, err)
}

func TestAssertTraceOrder_Correct(t *testing.T) {
	trace := []TraceEvent{
		{Step: 1, Input: "Ceres", Source: SourceLocal},
		{Step: 1, Input: "Pallas", Source: SourceLocal},
		{Step: 2, Input: "Bennu", Source: SourceRemote},
	}

	assertion := Assertion{
		Type:   AssertTraceOrder,
		Inputs: []string{"Ceres", "Bennu"},
	}

	err := assertTraceOrder(trace, assertion)
	assert.NoError(t, err)
}

func TestAssertTraceOrder_WrongOrder(t *testing.T) {
	trace := []TraceEvent{
		{Step: 1, Input: "Bennu", Source: SourceRemote},
		{Step: 1, Input: "Ceres", Source: SourceLocal},
	}

	assertion := Assertion{
		Type:   AssertTraceOrder,
		Inputs: []string{"Ceres", "Bennu"},
	}

	err := assertTraceOrder(trace, assertion)
	require.Error(t, err)

	assertErr, ok := err.(*AssertionError)
	require.True(t, ok)
	assert.Equal(t, "trace_order", assertErr.Type)
	assert.Contains(t, assertErr.Actual, "should be before")
}

func TestAssertTraceOrder_MissingInput(t *testing.T) {
	trace := []TraceEvent{
		{Step: 1, Input: "Ceres", Source: SourceLocal},
	}

	assertion := Assertion{
		Type:   AssertTraceOrder,
		Inputs: []string{"Ceres", "Bennu"},
	}

	err := assertTraceOrder(trace, assertion)
	require.Error(t, err)

	assertErr, ok := err.(*AssertionError)
	require.True(t, ok)
	assert.Contains(t, assertErr.Actual, "missing input")
}

func TestAssertTraceCount_Exact(t *testing.T) {
	trace := []TraceEvent{
		{Step: 1, Input: "Ceres", Source: SourceLocal},
		{Step: 1, Input: "Pallas", Source: SourceLocal},
		{Step: 1, Input: "Bennu", Source: SourceRemote},
	}

	assert.NoError(t, assertTraceCount(trace, Assertion{Type: AssertTraceCount, Source: SourceLocal, Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Type: AssertTraceCount, Source: SourceRemote, Count: 1}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Type: AssertTraceCount, Source: SourceNone, Count: 0}))
}

func TestAssertTraceCount_Mismatch(t *testing.T) {
	trace := []TraceEvent{
		{Step: 1, Input: "Ceres", Source: SourceLocal},
	}

	err := assertTraceCount(trace, Assertion{Type: AssertTraceCount, Source: SourceLocal, Count: 2})
	require.Error(t, err)

	assertErr, ok := err.(*AssertionError)
	require.True(t, ok)
	assert.Equal(t, "trace_count", assertErr.Type)
	assert.Contains(t, assertErr.Expected, "2 events from local")
	assert.Contains(t, assertErr.Actual, "1 events")
}

func TestAssert_UnknownType(t *testing.T) {
	err := Assert(nil, Assertion{Type: "final_state"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown assertion type")
}

func TestAssertionError_MessageIncludesTrace(t *testing.T) {
	trace := []TraceEvent{
		{Step: 1, Input: "Ceres", Kind: "name", Source: SourceLocal, Name: "Ceres", Number: 1},
		{Step: 1, Input: "nosuchrock", Kind: "name", Source: SourceNone},
	}

	err := assertTraceCount(trace, Assertion{Type: AssertTraceCount, Source: SourceRemote, Count: 1})
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: trace_count")
	assert.Contains(t, msg, `[1] "Ceres" (name) <- local name=Ceres number=1`)
	assert.Contains(t, msg, `[1] "nosuchrock" (name) <- none`)
}
