package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/nimbus/cancellation"
	"github.com/viant/nimbus/policy"
	"github.com/viant/nimbus/scheduler"
)

func newStarted(t *testing.T) *Service {
	t.Helper()
	config := DefaultConfig()
	config.RetryDelay = 5 * time.Millisecond
	config.CancelPollInterval = 5 * time.Millisecond
	service := New(config)
	assert.NoError(t, service.Start(context.Background()))
	t.Cleanup(service.Shutdown)
	return service
}

func TestSubmitDeliversResult(t *testing.T) {
	ctx := context.Background()
	service := newStarted(t)

	handle, err := service.Submit(ctx, &scheduler.Submission{
		ProcessID: "p-1",
		Invoke: func(ctx context.Context) (any, error) {
			return 42, nil
		},
	})
	assert.NoError(t, err)

	value, err := handle.Future().Await(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 42, value)

	count, err := service.Tasks(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.NoError(t, handle.Discard(ctx))
	count, err = service.Tasks(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestFaultPolicySpendsRetryBudget(t *testing.T) {
	ctx := context.Background()
	service := newStarted(t)

	var attempts atomic.Int32
	handle, err := service.Submit(ctx, &scheduler.Submission{
		ProcessID:   "p-1",
		FaultPolicy: policy.Fault{MaxRetries: 2},
		Invoke: func(ctx context.Context) (any, error) {
			if attempts.Add(1) < 3 {
				return nil, errors.New("transient")
			}
			return "recovered", nil
		},
	})
	assert.NoError(t, err)

	value, err := handle.Future().Await(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "recovered", value)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestFaultPolicyExhaustionSurfacesOriginalError(t *testing.T) {
	ctx := context.Background()
	service := newStarted(t)

	cause := errors.New("worker exploded")
	var attempts atomic.Int32
	handle, err := service.Submit(ctx, &scheduler.Submission{
		ProcessID:   "p-1",
		FaultPolicy: policy.Fault{MaxRetries: 1},
		Invoke: func(ctx context.Context) (any, error) {
			attempts.Add(1)
			return nil, cause
		},
	})
	assert.NoError(t, err)

	_, err = handle.Future().Await(ctx)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestCancellationResolvesInFlightTask(t *testing.T) {
	ctx := context.Background()
	service := newStarted(t)
	registry := cancellation.NewRegistry()

	token, err := registry.Create(ctx)
	assert.NoError(t, err)

	handle, err := service.Submit(ctx, &scheduler.Submission{
		ProcessID: "p-1",
		Token:     token,
		Invoke: func(ctx context.Context) (any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	assert.NoError(t, err)

	assert.NoError(t, token.Cancel(ctx))

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err = handle.Future().Await(waitCtx)
	assert.ErrorIs(t, err, scheduler.ErrCancelled)
}

func TestCancellationReleasesWorker(t *testing.T) {
	ctx := context.Background()
	config := DefaultConfig()
	config.Workers = 1
	config.CancelPollInterval = 5 * time.Millisecond
	service := New(config)
	assert.NoError(t, service.Start(ctx))
	t.Cleanup(service.Shutdown)

	registry := cancellation.NewRegistry()
	token, err := registry.Create(ctx)
	assert.NoError(t, err)

	started := make(chan struct{})
	blocked, err := service.Submit(ctx, &scheduler.Submission{
		ProcessID: "p-1",
		Token:     token,
		Invoke: func(ctx context.Context) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	assert.NoError(t, err)
	<-started
	assert.NoError(t, token.Cancel(ctx))

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err = blocked.Future().Await(waitCtx)
	assert.ErrorIs(t, err, scheduler.ErrCancelled)

	// The cancelled body was unblocked, so the lone worker is free to pick up
	// the next task instead of being pinned until shutdown.
	next, err := service.Submit(ctx, &scheduler.Submission{
		ProcessID: "p-2",
		Invoke: func(ctx context.Context) (any, error) {
			return "ran", nil
		},
	})
	assert.NoError(t, err)
	value, err := next.Future().Await(waitCtx)
	assert.NoError(t, err)
	assert.Equal(t, "ran", value)
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	service := newStarted(t)

	_, err := service.Submit(ctx, &scheduler.Submission{ProcessID: "p-1"})
	assert.Error(t, err)

	_, err = service.Submit(ctx, &scheduler.Submission{
		Invoke: func(ctx context.Context) (any, error) { return nil, nil },
	})
	assert.Error(t, err)
}
