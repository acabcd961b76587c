package terminal

import (
	"math/rand"
	"time"
)

// RetryPolicy bounds how transient upstream failures are retried
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxJitter   time.Duration
}

// NewRetryPolicy fills in defaults for unset fields. Jitter is capped at half
// the base delay.
func NewRetryPolicy(maxAttempts int, base, max time.Duration) RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	if max < base {
		max = base
	}
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   base,
		MaxDelay:    max,
		MaxJitter:   base / 2,
	}
}

// Backoff returns the delay before the given attempt (1 is the first retry):
// base * 2^attempt, capped at MaxDelay, plus jitter.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}

	delay := p.BaseDelay * time.Duration(int64(1)<<attempt)
	if delay > p.MaxDelay || delay <= 0 {
		delay = p.MaxDelay
	}

	if p.MaxJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(p.MaxJitter)))
	}
	return delay
}
