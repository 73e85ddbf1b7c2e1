// Package core normalizes the heterogeneous raw outcomes of bulk write
// operations into one uniform result shape, so callers never branch on which
// operation produced a result.
//
// This package is the heart of the system, containing all domain logic
// independent of any transport layer. It can be used by web handlers, CLI
// tools, or tests without modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Result / Error: the canonical per-record outcome value types. Every
//     Result upholds one invariant: Success is true exactly when Errors is
//     empty.
//   - Strategy: one normalizer per raw outcome shape (save, upsert, delete),
//     plus a generic fallback that probes unknown shapes structurally.
//   - Strategy table: a fixed-precedence classification table mapping a raw
//     outcome's concrete type to its Strategy. Resolution is total — the
//     generic fallback always matches — so normalization never fails on an
//     unexpected input.
//   - Service: the entry point. It drives the store collaborator for the
//     bulk operations and pipes raw outcomes through the strategies, and it
//     also normalizes caller-supplied outcomes directly via
//     [Service.NormalizeAll].
//
// # Failure model
//
// Per-record failures are data, never errors: a failed record becomes a
// Result with Success false and at least one Error. The only thing that
// fails a whole call is the collaborator refusing the batch (no records,
// unknown operation, cancelled context); that surfaces as a returned error,
// distinct from per-record Results.
//
// The package never logs; reporting belongs to the caller.
package core
