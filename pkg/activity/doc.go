// Package activity provides an append-only audit trail of session
// lifecycle events and the aggregate queries consumed by admin
// monitoring views.
//
// Writes are best-effort by design: Record never blocks the caller and
// never returns an error, so a failing audit backend cannot break the
// login or validation path. Aggregate reads fail soft for the same
// reason - an unreachable event table yields empty results, not
// errors, because this data is advisory rather than safety-critical.
package activity
