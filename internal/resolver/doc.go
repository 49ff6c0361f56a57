// Package resolver turns heterogeneous minor-body identifiers into
// canonical (name, number, id) triples.
//
// Inputs are standardized at the boundary (Standardize, CoerceAll) into
// one of three forms: catalogue number, proper name, or provisional
// designation. A Resolver then answers each identifier from the local
// index first and falls back to the remote name-resolution service,
// preserving input order.
//
// Key contract points:
//   - output length always equals input length, position for position
//   - unresolvable elements yield the zero Resolution, never an error
//   - lookup faults degrade to the same per-element soft fail
//   - only context cancellation aborts a batch
//   - progress reporting is cosmetic and cannot change results
package resolver
