package aggregates

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy bounds how often a write is re-run after a retryable failure.
type RetryPolicy struct {
	MaxAttempts int
	MinBackoff  time.Duration
	MaxBackoff  time.Duration
	JitterFrac  float64
}

// DefaultRetryPolicy is used when BaseDeps carries no policy.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 5,
	MinBackoff:  5 * time.Millisecond,
	MaxBackoff:  200 * time.Millisecond,
	JitterFrac:  0.5,
}

func (r RetryPolicy) attempts() int {
	if r.MaxAttempts <= 0 {
		return 1
	}
	return r.MaxAttempts
}

func (r RetryPolicy) backoff(attempt int) time.Duration {
	minB := r.MinBackoff
	maxB := r.MaxBackoff
	j := r.JitterFrac
	if minB <= 0 {
		minB = 5 * time.Millisecond
	}
	if maxB <= 0 {
		maxB = 200 * time.Millisecond
	}
	if j <= 0 {
		j = 0.2
	}
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(float64(minB) * math.Pow(2, float64(attempt-1)))
	if d > maxB {
		d = maxB
	}
	delta := float64(d) * j
	low := float64(d) - delta
	if low < 0 {
		low = 0
	}
	return time.Duration(low + rand.Float64()*2*delta)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
