// Package cancellation implements a hierarchical, multi-parent cancellation
// token with optional durable elevation.
//
// Tokens live in an arena (Registry) keyed by id; parent references are id
// sets rather than pointers, which keeps the graph serialisable and free of
// ownership cycles. Cancellation is monotonic and propagates from parent to
// child only: a token reports cancelled when its own flag is set or any
// parent, transitively, reports cancelled. Once observed cancelled the result
// is memoized, keeping the frequent polling at computation suspension points
// cheap.
//
// An elevated token additionally persists its cancel state through an
// EntryStore, making the intent observable by other processes that hold only
// the token id - a worker crash must not erase cancellation intent for
// still-running remote subtasks.
package cancellation
