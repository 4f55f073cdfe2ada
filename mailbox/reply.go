package mailbox

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/viant/nimbus/outcome"
)

// ErrAlreadyReplied is returned when a second reply is attempted on a
// one-shot ReplyHandle. It signals a programming defect in the handler.
var ErrAlreadyReplied = errors.New("mailbox: reply handle already used")

type resolution[R any] struct {
	value R
	err   error
}

// ReplyHandle is a one-shot capability for answering a single request.
// Exactly one of Reply, ReplyOutcome or ReplyError may be invoked per handle;
// the first use consumes the capability.
type ReplyHandle[R any] struct {
	used atomic.Bool
	ch   chan resolution[R]
}

// Future is the receiving side of a ReplyHandle. It may be awaited from
// multiple goroutines; the resolution is published once and cached.
type Future[R any] struct {
	ch     chan resolution[R]
	done   chan struct{}
	result resolution[R]
}

// NewReply allocates a linked reply handle / future pair.
func NewReply[R any]() (*ReplyHandle[R], *Future[R]) {
	ch := make(chan resolution[R], 1)
	return &ReplyHandle[R]{ch: ch}, &Future[R]{ch: ch, done: make(chan struct{})}
}

// Reply delivers a success value.
func (h *ReplyHandle[R]) Reply(value R) error {
	return h.resolve(resolution[R]{value: value})
}

// ReplyOutcome delivers an outcome - its value on success, its captured
// failure verbatim otherwise.
func (h *ReplyHandle[R]) ReplyOutcome(o outcome.Outcome[R]) error {
	value, err := o.Value()
	return h.resolve(resolution[R]{value: value, err: err})
}

// ReplyError delivers a failure. The error is passed through unmodified so
// the waiting caller sees the original cause.
func (h *ReplyHandle[R]) ReplyError(err error) error {
	return h.resolve(resolution[R]{err: err})
}

func (h *ReplyHandle[R]) resolve(r resolution[R]) error {
	if !h.used.CompareAndSwap(false, true) {
		return ErrAlreadyReplied
	}
	h.ch <- r
	return nil
}

// fail delivers err unless the handle was already consumed. Used by the
// mailbox loop to guarantee a waiting caller is never starved by a faulty
// handler.
func (h *ReplyHandle[R]) fail(err error) bool {
	return h.resolve(resolution[R]{err: err}) == nil
}

// Await blocks until the reply arrives or ctx is done. Once resolved the
// result is cached and returned to every subsequent and concurrent call.
func (f *Future[R]) Await(ctx context.Context) (R, error) {
	select {
	case r := <-f.ch:
		// Single winner of the one-shot channel publishes the result.
		f.result = r
		close(f.done)
		return r.value, r.err
	case <-f.done:
		return f.result.value, f.result.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Ready reports whether the future has been resolved. It never blocks; a
// false result may be stale by the time the caller acts on it.
func (f *Future[R]) Ready() bool {
	select {
	case r := <-f.ch:
		f.result = r
		close(f.done)
		return true
	case <-f.done:
		return true
	default:
		return false
	}
}
