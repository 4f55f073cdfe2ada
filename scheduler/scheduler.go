// Package scheduler defines the contract of the external scheduling entry
// point: submitting a computation plus its metadata and receiving back an
// opaque task-control handle. The handle delivers its result through the
// one-shot reply-channel protocol.
package scheduler

import (
	"context"
	"errors"

	"github.com/viant/nimbus/cancellation"
	"github.com/viant/nimbus/cluster"
	"github.com/viant/nimbus/mailbox"
	"github.com/viant/nimbus/policy"
)

// ErrCancelled is the distinguished failure delivered when a computation's
// cancellation token fired before a result was produced.
var ErrCancelled = errors.New("scheduler: computation cancelled")

// Submission carries one computation and its metadata to the scheduling
// entry point.
type Submission struct {
	// ProcessID is the client-generated process identity.
	ProcessID string

	// Name is an optional human-readable label.
	Name string

	// Invoke is the type-erased computation body.
	Invoke func(ctx context.Context) (any, error)

	// DependencyIDs is the ordered artifact closure already shipped by the
	// dependency collaborator.
	DependencyIDs []string

	// FaultPolicy is the retry budget the scheduler spends on faulted
	// attempts.
	FaultPolicy policy.Fault

	// Token, when non-nil, is polled at suspension points; a fired token
	// resolves the task with ErrCancelled.
	Token *cancellation.Token

	// Target, when non-nil, pins the computation to a specific worker.
	Target *cluster.Worker
}

// Handle is the opaque task-control handle owned by the scheduler.
type Handle interface {
	// Future resolves to the computation's result or its original failure.
	Future() *mailbox.Future[any]

	// Discard releases the scheduler-side bookkeeping for this task.
	Discard(ctx context.Context) error
}

// Service is the external scheduling entry point.
type Service interface {
	Submit(ctx context.Context, submission *Submission) (Handle, error)
}
