package evaluator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/nimbus/cancellation"
	"github.com/viant/nimbus/model"
	"github.com/viant/nimbus/outcome"
	"github.com/viant/nimbus/scheduler"
)

func TestRunReturnsValue(t *testing.T) {
	service := New()
	value, err := Run(context.Background(), service, &model.Computation[int]{
		Name: "add",
		Run: func(ctx context.Context) (int, error) {
			return 5, nil
		},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, 5, value)
}

func TestRunPreservesFailure(t *testing.T) {
	service := New()
	cause := errors.New("out of range")
	_, err := Run(context.Background(), service, &model.Computation[int]{
		Run: func(ctx context.Context) (int, error) {
			return 0, cause
		},
	}, nil)
	assert.ErrorIs(t, err, cause)
}

func TestRunCapturesPanic(t *testing.T) {
	service := New()
	_, err := Run(context.Background(), service, &model.Computation[int]{
		Run: func(ctx context.Context) (int, error) {
			panic("index out of bounds")
		},
	}, nil)
	var fault *outcome.Fault
	assert.ErrorAs(t, err, &fault)
	assert.Contains(t, fault.Message, "index out of bounds")
}

func TestRunHonoursFiredToken(t *testing.T) {
	ctx := context.Background()
	service := New()
	registry := cancellation.NewRegistry()
	token, err := registry.Create(ctx)
	assert.NoError(t, err)
	assert.NoError(t, token.Cancel(ctx))

	invoked := false
	_, err = Run(ctx, service, &model.Computation[int]{
		Run: func(ctx context.Context) (int, error) {
			invoked = true
			return 0, nil
		},
	}, token)
	assert.ErrorIs(t, err, scheduler.ErrCancelled)
	assert.False(t, invoked)
}

func TestRunRejectsMissingBody(t *testing.T) {
	service := New()
	_, err := Run(context.Background(), service, &model.Computation[int]{Name: "empty"}, nil)
	assert.Error(t, err)
}
