package execution

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/viant/nimbus/cancellation"
	"github.com/viant/nimbus/internal/clock"
	"github.com/viant/nimbus/policy"
	"github.com/viant/nimbus/scheduler"
)

// Process state constants.
const (
	StatePending   = "pending"
	StateCompleted = "completed"
	StateFailed    = "failed"
	StateCancelled = "cancelled"
)

// ErrCancelled is the distinguished failure surfaced to anyone awaiting the
// result of a process whose cancellation token fired.
var ErrCancelled = scheduler.ErrCancelled

// ErrNoToken is returned when cancelling a process created without a
// cancellation token.
var ErrNoToken = errors.New("execution: process has no cancellation token")

// Handle is the type-erased view of a process owned by the Manager. Callers
// hold the typed *Process reference; the Manager holds ownership.
type Handle interface {
	ProcessID() string
	ProcessState() string
	discard(ctx context.Context) error
}

// Process is a client-held handle representing one distributed computation's
// lifecycle and eventual result.
type Process[T any] struct {
	id            string
	name          string
	faultPolicy   policy.Fault
	dependencyIDs []string
	token         *cancellation.Token
	createdAt     time.Time
	handle        scheduler.Handle

	mu         sync.RWMutex
	state      string
	finishedAt *time.Time
}

// NewProcess wraps a scheduler task-control handle as a process.
func NewProcess[T any](
	id, name string,
	faultPolicy policy.Fault,
	dependencyIDs []string,
	token *cancellation.Token,
	handle scheduler.Handle,
) *Process[T] {
	return &Process[T]{
		id:            id,
		name:          name,
		faultPolicy:   faultPolicy,
		dependencyIDs: dependencyIDs,
		token:         token,
		createdAt:     clock.Now(),
		handle:        handle,
		state:         StatePending,
	}
}

// ProcessID returns the process identity.
func (p *Process[T]) ProcessID() string { return p.id }

// Name returns the optional label carried through submission.
func (p *Process[T]) Name() string { return p.name }

// FaultPolicy returns the retry budget the process was submitted with.
func (p *Process[T]) FaultPolicy() policy.Fault { return p.faultPolicy }

// DependencyIDs returns the ordered artifact closure shipped for this
// process.
func (p *Process[T]) DependencyIDs() []string {
	return append([]string(nil), p.dependencyIDs...)
}

// Token returns the cancellation token, or nil when none was supplied.
func (p *Process[T]) Token() *cancellation.Token { return p.token }

// CreatedAt returns the submission time.
func (p *Process[T]) CreatedAt() time.Time { return p.createdAt }

// Cancel fires the process' cancellation token.
func (p *Process[T]) Cancel(ctx context.Context) error {
	if p.token == nil {
		return ErrNoToken
	}
	return p.token.Cancel(ctx)
}

// Result blocks until the process leaves the pending state or ctx is done.
// It returns the value on completion, re-raises the original error on
// failure, or a distinguished cancellation failure (ErrCancelled) when the
// token fired first.
func (p *Process[T]) Result(ctx context.Context) (T, error) {
	future := p.handle.Future()
	if _, err := future.Await(ctx); err != nil && !future.Ready() {
		// ctx expired before the process resolved.
		var zero T
		return zero, err
	}
	// Ready by now. Re-read so the recorded state reflects the delivered
	// resolution, not a caller-context failure that raced it.
	value, err := future.Await(context.Background())
	p.recordResolution(err)
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("process %s produced %T, expected %T", p.id, value, zero)
	}
	return typed, nil
}

// ProcessState returns the current result state.
func (p *Process[T]) ProcessState() string {
	p.mu.RLock()
	state := p.state
	p.mu.RUnlock()
	if state != StatePending {
		return state
	}
	if p.handle.Future().Ready() {
		_, err := p.handle.Future().Await(context.Background())
		p.recordResolution(err)
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Process[T]) recordResolution(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StatePending {
		return
	}
	switch {
	case err == nil:
		p.state = StateCompleted
	case errors.Is(err, ErrCancelled):
		p.state = StateCancelled
	default:
		p.state = StateFailed
	}
	now := clock.Now()
	p.finishedAt = &now
}

// FinishedAt returns the resolution time, or nil while pending.
func (p *Process[T]) FinishedAt() *time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.finishedAt
}

func (p *Process[T]) discard(ctx context.Context) error {
	return p.handle.Discard(ctx)
}
