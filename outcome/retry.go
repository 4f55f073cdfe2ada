package outcome

import (
	"context"
	"time"

	"github.com/dogmatiq/linger"
)

// RetryPolicy bounds the retry loop for transient local operations. It is
// immutable and attached at call time.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first one.
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"`

	// Delay is the pause between consecutive attempts.
	Delay time.Duration `json:"delay" yaml:"delay"`
}

// DefaultRetryPolicy returns the policy used when the caller supplies none.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		Delay:      100 * time.Millisecond,
	}
}

// Retry executes fn up to policy.MaxRetries+1 times, sleeping policy.Delay
// between attempts. The sleep is cooperative - it returns early when ctx is
// cancelled. After exhaustion the last failure is returned unmodified.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var last error
	for attempt := 0; ; attempt++ {
		result := Catch(func() (T, error) {
			return fn(ctx)
		})
		if !result.Failed() {
			return result.Value()
		}
		last = result.Err()
		if attempt >= policy.MaxRetries {
			break
		}
		if err := linger.Sleep(ctx, policy.Delay); err != nil {
			var zero T
			return zero, err
		}
	}
	var zero T
	return zero, last
}
