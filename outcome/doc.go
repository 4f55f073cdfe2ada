// Package outcome provides a tagged success/failure result wrapper together
// with a bounded-retry executor for transient local operations.
//
// An Outcome carries either a value or the original failure, verbatim. The
// failure is never re-wrapped, so errors.Is/errors.As against the value a
// callee produced keeps working after the outcome crossed goroutines or reply
// channels. Panics recovered by Catch/Bind are materialised as *Fault values
// that record the kind, message and originating site of the panic.
package outcome
