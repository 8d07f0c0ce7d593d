// Package retry runs an operation until it succeeds, suspending between attempts.
//
// This is the policy for reads made while the target is still booting:
// a failure only means "not yet". Live polling never goes through here;
// a failed sample there is simply skipped for the tick.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy decides how long to suspend between attempts.
type Policy func() backoff.BackOff

// Default backs off from 10ms up to one second between attempts.
func Default() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = time.Second
	return b
}

// Constant suspends for d between every attempt.
func Constant(d time.Duration) Policy {
	return func() backoff.BackOff {
		return backoff.NewConstantBackOff(d)
	}
}

// Until calls op until it returns a nil error. It gives up only when ctx
// ends or op returns an error wrapped with Stop.
func Until[T any](ctx context.Context, policy Policy, op func() (T, error)) (T, error) {
	if policy == nil {
		policy = Default
	}
	return backoff.Retry(ctx, backoff.Operation[T](op),
		backoff.WithBackOff(policy()),
		backoff.WithMaxElapsedTime(0),
	)
}

// Stop marks err as final so Until returns it instead of retrying.
func Stop(err error) error {
	return backoff.Permanent(err)
}
