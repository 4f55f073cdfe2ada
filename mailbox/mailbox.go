package mailbox

import (
	"context"
	"errors"
	"sync"

	"github.com/viant/nimbus/outcome"
)

var (
	// ErrClosed is returned when posting to a mailbox that has been shut
	// down; queued request/reply callers are failed with it as well.
	ErrClosed = errors.New("mailbox: closed")

	// ErrNoReply is delivered to a waiting caller whose request was handled
	// without any reply method being invoked - a programming defect in the
	// handler, surfaced instead of starving the caller.
	ErrNoReply = errors.New("mailbox: handler completed without replying")
)

// Handler processes a single message. While it runs no other message of the
// same mailbox is being handled, so state owned by the handler needs no
// locking. A returned error (or a panic) is auto-delivered to the message's
// pending reply handle, if any.
type Handler[M any] func(ctx context.Context, message M) error

// failer lets the dispatch loop deliver an error to a pending reply handle
// without knowing its result type.
type failer interface {
	fail(err error) bool
}

type envelope[M any] struct {
	message M
	pending failer
}

// Mailbox is a single-consumer actor: an unbounded FIFO queue drained by one
// handler goroutine. Independent mailbox instances run fully concurrently.
type Mailbox[M any] struct {
	handler Handler[M]
	onError func(error)

	mu     sync.Mutex
	queue  []envelope[M]
	closed bool

	notify  chan struct{}
	stopped chan struct{}
}

// Option customises a mailbox.
type Option[M any] func(m *Mailbox[M])

// WithErrorHandler installs a callback invoked for handler failures of
// fire-and-forget messages, which have no reply handle to deliver them to.
func WithErrorHandler[M any](fn func(error)) Option[M] {
	return func(m *Mailbox[M]) {
		m.onError = fn
	}
}

// New creates a mailbox and starts its handler goroutine.
func New[M any](handler Handler[M], options ...Option[M]) *Mailbox[M] {
	ret := &Mailbox[M]{
		handler: handler,
		notify:  make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	for _, option := range options {
		option(ret)
	}
	go ret.run()
	return ret
}

// Post enqueues a fire-and-forget message and returns immediately.
func (m *Mailbox[M]) Post(message M) error {
	return m.post(envelope[M]{message: message})
}

// Size returns the number of queued, not yet handled messages.
func (m *Mailbox[M]) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Shutdown stops the mailbox after the in-flight message completes. Messages
// still queued are not handled; their pending reply handles are failed with
// ErrClosed. Shutdown is idempotent and blocks until the loop has exited.
func (m *Mailbox[M]) Shutdown() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	select {
	case m.notify <- struct{}{}:
	default:
	}
	<-m.stopped
}

func (m *Mailbox[M]) post(env envelope[M]) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.queue = append(m.queue, env)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return nil
}

func (m *Mailbox[M]) run() {
	defer close(m.stopped)
	ctx := context.Background()
	for {
		env, state := m.next()
		switch state {
		case stateDrained:
			// Wait for more work or shutdown.
			<-m.notify
			continue
		case stateClosed:
			m.discardQueued()
			return
		}
		m.dispatch(ctx, env)
	}
}

type loopState int

const (
	stateReady loopState = iota
	stateDrained
	stateClosed
)

func (m *Mailbox[M]) next() (envelope[M], loopState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero envelope[M]
	if m.closed {
		return zero, stateClosed
	}
	if len(m.queue) > 0 {
		env := m.queue[0]
		m.queue = m.queue[1:]
		return env, stateReady
	}
	return zero, stateDrained
}

// discardQueued fails the reply handles of every message that was still
// queued at shutdown so no caller is left waiting.
func (m *Mailbox[M]) discardQueued() {
	m.mu.Lock()
	queued := m.queue
	m.queue = nil
	m.mu.Unlock()
	for _, env := range queued {
		if env.pending != nil {
			env.pending.fail(ErrClosed)
		}
	}
}

func (m *Mailbox[M]) dispatch(ctx context.Context, env envelope[M]) {
	err := m.invoke(ctx, env.message)
	if env.pending != nil {
		failure := err
		if failure == nil {
			failure = ErrNoReply
		}
		if env.pending.fail(failure) {
			// The handler never replied; the caller got the failure. Report
			// the no-reply defect so it does not go unnoticed.
			if errors.Is(failure, ErrNoReply) && m.onError != nil {
				m.onError(failure)
			}
			return
		}
		// The handler replied before failing; fall through to report any
		// residual error.
	}
	if err != nil && m.onError != nil {
		m.onError(err)
	}
}

// invoke runs the handler, converting a panic into an error carrying the
// original panic site.
func (m *Mailbox[M]) invoke(ctx context.Context, message M) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = outcome.Recovered(r)
		}
	}()
	return m.handler(ctx, message)
}

// PostAndReply enqueues the message produced by build, which receives a fresh
// one-shot reply handle, and blocks until that handle is replied to or ctx is
// done. It resolves to the reply's value or re-raises its captured error.
func PostAndReply[M, R any](ctx context.Context, m *Mailbox[M], build func(reply *ReplyHandle[R]) M) (R, error) {
	future, err := PostAndReplyAsync[M, R](m, build)
	if err != nil {
		var zero R
		return zero, err
	}
	return future.Await(ctx)
}

// PostAndReplyAsync is the non-blocking variant of PostAndReply: it returns a
// Future the caller awaits at its convenience.
func PostAndReplyAsync[M, R any](m *Mailbox[M], build func(reply *ReplyHandle[R]) M) (*Future[R], error) {
	handle, future := NewReply[R]()
	message := build(handle)
	if err := m.post(envelope[M]{message: message, pending: handle}); err != nil {
		return nil, err
	}
	return future, nil
}
