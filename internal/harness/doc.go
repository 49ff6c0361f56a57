// Package harness provides a conformance testing framework for the
// identifier resolver.
//
// Scenarios are YAML documents describing a fixture world (local index
// entries, remote service entries), a flow of resolution batches, and
// assertions over the resulting trace. The harness runs each scenario
// against a real index, a fresh in-memory SQLite database rebuilt from
// the fixtures, and a stub quaero service, so the whole resolution path
// is exercised: standardization, the local pass, the remote fallback and
// the order-preserving merge.
//
// Each trace event records one input of a flow step, its standardized
// kind, which pass answered it (local, remote or none) and the resolved
// triple. RunWithGolden snapshots the trace and compares it byte for byte
// against testdata/golden/<scenario>.golden; regenerate golden files with
//
//	go test ./internal/harness -update
package harness
