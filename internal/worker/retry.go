package worker

import (
	"math"
	"time"
)

// RetryPolicy shapes the backoff between sync attempts. A zero value means
// one second doubled per attempt, uncapped.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay returns the wait before the given attempt (1-based).
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	initial := r.InitialDelay
	if initial <= 0 {
		initial = time.Second
	}
	factor := r.BackoffFactor
	if factor <= 0 {
		factor = 2
	}
	if attempt < 1 {
		attempt = 1
	}

	d := time.Duration(float64(initial) * math.Pow(factor, float64(attempt-1)))
	// d <= 0 means the float math overflowed.
	if r.MaxDelay > 0 && (d > r.MaxDelay || d <= 0) {
		return r.MaxDelay
	}
	if d <= 0 {
		return initial
	}
	return d
}
