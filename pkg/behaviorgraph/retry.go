package behaviorgraph

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// RetryPolicy configures how WithRetry steps a failing job again.
// Backoff is measured in ticked time, not wall time.
type RetryPolicy struct {
	// MaxAttempts is the number of failed steps tolerated before the job
	// is abandoned. Zero retries forever.
	MaxAttempts int

	// InitialBackoff is the wait after the first failure.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between attempts.
	MaxBackoff time.Duration

	// BackoffFactor multiplies the backoff after each failure.
	BackoffFactor float64

	// Jitter is the random jitter factor (0.0-1.0).
	Jitter float64
}

// DefaultRetry gives a job three attempts with a short backoff.
var DefaultRetry = RetryPolicy{
	MaxAttempts:    3,
	InitialBackoff: 250 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
	BackoffFactor:  2.0,
	Jitter:         0.1,
}

// NoRetry abandons a job on its first failure.
var NoRetry = RetryPolicy{
	MaxAttempts: 1,
}

// RetryError is returned by a WithRetry job that has run out of attempts.
type RetryError struct {
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *RetryError) Error() string {
	return fmt.Sprintf("job abandoned after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns ErrJobAbandoned and the last step error.
func (e *RetryError) Unwrap() []error {
	return []error{ErrJobAbandoned, e.Err}
}

// WithRetry wraps job so that a failed step is retried after a backoff.
//
// While backing off, the wrapped job is not stepped. Each failure is
// still returned so the engine logs it. Once MaxAttempts steps have
// failed, the returned error is a *RetryError and the engine treats the
// job as finished.
func WithRetry(job Job, policy RetryPolicy) Job {
	if job == nil {
		panic("behaviorgraph: WithRetry requires a job")
	}
	var (
		failures int
		backoff  = policy.InitialBackoff
		wait     time.Duration
	)
	return JobFunc(func(ctx context.Context, dt time.Duration) (bool, error) {
		if wait > 0 {
			wait -= dt
			if wait > 0 {
				return false, nil
			}
		}

		done, err := job.Step(ctx, dt)
		if err == nil {
			return done, nil
		}

		failures++
		if policy.MaxAttempts > 0 && failures >= policy.MaxAttempts {
			return true, &RetryError{Attempts: failures, Err: err}
		}

		wait = jitter(backoff, policy.Jitter)
		if policy.BackoffFactor > 0 {
			backoff = time.Duration(float64(backoff) * policy.BackoffFactor)
		}
		if policy.MaxBackoff > 0 && backoff > policy.MaxBackoff {
			backoff = policy.MaxBackoff
		}
		return false, err
	})
}

// jitter returns base +/- base*factor*random.
func jitter(base time.Duration, factor float64) time.Duration {
	if factor <= 0 {
		return base
	}
	return time.Duration(float64(base) + float64(base)*factor*(rand.Float64()*2-1))
}
