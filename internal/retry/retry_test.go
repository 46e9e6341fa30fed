package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Chikothe3rd/campuseats/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		Retries:   3,
		BaseDelay: time.Millisecond,
		MaxDelay:  5 * time.Millisecond,
	}
}

func TestDo(t *testing.T) {
	transientErr := apperr.NewStatusError(503, "backend unavailable")
	fatalErr := errors.New("boom")

	tests := []struct {
		name      string
		failures  int
		failWith  error
		wantCalls int
		wantErr   error
	}{
		{
			name:      "first attempt succeeds",
			failures:  0,
			failWith:  nil,
			wantCalls: 1,
			wantErr:   nil,
		},
		{
			name:      "two transient failures then success",
			failures:  2,
			failWith:  transientErr,
			wantCalls: 3,
			wantErr:   nil,
		},
		{
			name:      "transient failures exhaust the budget",
			failures:  10,
			failWith:  transientErr,
			wantCalls: 4,
			wantErr:   transientErr,
		},
		{
			name:      "fatal error is not retried",
			failures:  10,
			failWith:  fatalErr,
			wantCalls: 1,
			wantErr:   fatalErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			res, err := Do(context.Background(), testOptions(), func(ctx context.Context) (string, error) {
				calls++
				if calls <= tt.failures {
					return "", tt.failWith
				}
				return "done", nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "done", res)
		})
	}
}

func TestDoReturnsLastError(t *testing.T) {
	first := apperr.NewStatusError(502, "bad gateway")
	last := apperr.NewStatusError(503, "unavailable")

	calls := 0
	_, err := Do(context.Background(), testOptions(), func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, first
		}
		return 0, last
	})

	assert.Equal(t, 4, calls)
	assert.ErrorIs(t, err, last)
}

func TestDelayBounds(t *testing.T) {
	opts := Options{
		Retries:   3,
		BaseDelay: 300 * time.Millisecond,
		MaxDelay:  4000 * time.Millisecond,
	}

	for attempt := 0; attempt < 10; attempt++ {
		d := delay(opts, attempt)

		// jitter stays within [0.8, 1.2] of the exponential step, capped
		exponential := float64(opts.BaseDelay) * float64(uint64(1)<<uint(attempt))
		low := time.Duration(exponential * 0.8)
		if low > opts.MaxDelay {
			low = opts.MaxDelay
		}

		assert.GreaterOrEqual(t, d, low, "attempt %d", attempt)
		assert.LessOrEqual(t, d, opts.MaxDelay, "attempt %d", attempt)
	}
}
