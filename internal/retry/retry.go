package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/Chikothe3rd/campuseats/internal/apperr"
)

const (
	defaultRetries   = 3
	defaultBaseDelay = 300 * time.Millisecond
	defaultMaxDelay  = 4000 * time.Millisecond
)

// Options controls the backoff policy.
type Options struct {
	Retries   int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultOptions returns the standard policy: 3 retries, 300ms base, 4s cap.
func DefaultOptions() Options {
	return Options{
		Retries:   defaultRetries,
		BaseDelay: defaultBaseDelay,
		MaxDelay:  defaultMaxDelay,
	}
}

// Do invokes op, retrying classified-transient failures with jittered
// exponential backoff. Fatal errors are returned immediately. After
// exhausting Retries attempts the last error is returned. op runs at most
// Retries+1 times.
func Do[T any](ctx context.Context, opts Options, op func(ctx context.Context) (T, error)) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= opts.Retries; attempt++ {
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if !apperr.IsTransient(err) || attempt == opts.Retries {
			break
		}

		time.Sleep(delay(opts, attempt))
	}

	return zero, lastErr
}

// delay is min(base * 2^attempt * jitter, max) with jitter uniform in [0.8, 1.2].
func delay(opts Options, attempt int) time.Duration {
	exponential := float64(opts.BaseDelay) * float64(uint64(1)<<uint(attempt))
	jitter := exponential * (0.8 + rand.Float64()*0.4)
	if jitter > float64(opts.MaxDelay) {
		return opts.MaxDelay
	}
	return time.Duration(jitter)
}
