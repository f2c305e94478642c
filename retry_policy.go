package musclemap

import (
	"time"

	"github.com/MuscleMap-ME/musclemap-go/internal/backoff"
)

// RetryPolicy decides whether a failed attempt is retried and after what
// delay. statusCode is 0 for transport-level failures; attempt is
// zero-based.
//
// Only transport failures and 5xx responses reach the policy: the
// pipeline never offers 401, other 4xx or validation failures for retry.
type RetryPolicy interface {
	ShouldRetry(statusCode int, err error, attempt int) (time.Duration, bool)
}

// LinearRetryPolicy retries up to MaxRetries times with a delay of
// Delay × attemptNumber (linear backoff).
type LinearRetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// NewLinearRetryPolicy creates the pipeline's default policy.
func NewLinearRetryPolicy(maxRetries int, delay time.Duration) LinearRetryPolicy {
	return LinearRetryPolicy{MaxRetries: maxRetries, Delay: delay}
}

// ShouldRetry implements RetryPolicy.
func (p LinearRetryPolicy) ShouldRetry(statusCode int, err error, attempt int) (time.Duration, bool) {
	if attempt >= p.MaxRetries {
		return 0, false
	}
	if err == nil && statusCode < 500 {
		return 0, false
	}
	return backoff.Linear{}.Delay(attempt, p.Delay, 0, 0, 0), true
}

// BackoffRetryPolicy retries with a configurable backoff strategy, for
// callers who want exponential curves instead of the default linear one.
type BackoffRetryPolicy struct {
	MaxRetries int
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
	Strategy   backoff.Strategy
}

// NewBackoffRetryPolicy creates a policy using exponential backoff with
// jitter.
func NewBackoffRetryPolicy(maxRetries int, initial, max time.Duration, multiplier, jitter float64) BackoffRetryPolicy {
	return BackoffRetryPolicy{
		MaxRetries: maxRetries,
		Initial:    initial,
		Max:        max,
		Multiplier: multiplier,
		Jitter:     jitter,
		Strategy:   backoff.ExponentialJitter{},
	}
}

// ShouldRetry implements RetryPolicy.
func (p BackoffRetryPolicy) ShouldRetry(statusCode int, err error, attempt int) (time.Duration, bool) {
	if attempt >= p.MaxRetries {
		return 0, false
	}
	if err == nil && statusCode < 500 {
		return 0, false
	}
	strategy := p.Strategy
	if strategy == nil {
		strategy = backoff.ExponentialJitter{}
	}
	return strategy.Delay(attempt, p.Initial, p.Max, p.Multiplier, p.Jitter), true
}
