// Package index provides the SQLite-backed asteroid name-number index.
//
// The index is the local half of identifier resolution: a read-mostly
// lookup table mapping catalogue numbers and reduced aliases to canonical
// (name, number, id) triples. It is rebuilt wholesale from the published
// SsODNet dump and treated as read-only between rebuilds.
//
// Layout:
//   - rocks: one row per body (id, name, number)
//   - aliases: reduced lookup key -> body, one row per known spelling
//   - meta: build provenance (built_at, source, entries)
//
// Alias keys are reduced with naming.Reduce on both the build and lookup
// sides, so lookups are insensitive to case, separators and diacritics.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during a rebuild
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: alias rows cannot outlive their body
package index
