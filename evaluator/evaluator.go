// Package evaluator executes computations on an in-process evaluator,
// bypassing distributed submission entirely. It is a distinct execution mode:
// locally run computations are not registered with the process manager.
package evaluator

import (
	"context"

	"github.com/viant/nimbus/cancellation"
	"github.com/viant/nimbus/model"
	"github.com/viant/nimbus/outcome"
	"github.com/viant/nimbus/scheduler"
)

// Service evaluates computation bodies in the calling process.
type Service struct{}

// New creates an evaluator.
func New() *Service {
	return &Service{}
}

// Run executes the computation body. A supplied token is honoured at the
// entry suspension point; a fired token surfaces the distinguished
// cancellation failure. Panics inside the body are captured as failures with
// their original site preserved.
func Run[T any](ctx context.Context, s *Service, computation *model.Computation[T], token *cancellation.Token) (T, error) {
	if err := computation.Validate(); err != nil {
		var zero T
		return zero, err
	}
	if token != nil {
		cancelled, err := token.IsCancelled(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		if cancelled {
			var zero T
			return zero, scheduler.ErrCancelled
		}
	}
	result := outcome.Catch(func() (T, error) {
		return computation.Run(ctx)
	})
	return result.Value()
}
