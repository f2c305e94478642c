// Package backoff provides retry delay calculation strategies.
package backoff

import (
	"math/rand"
	"time"
)

// Strategy computes the delay before a retry. attempt is zero-based: the
// delay returned for attempt 0 precedes the first retry.
type Strategy interface {
	Delay(attempt int, base, max time.Duration, multiplier, jitter float64) time.Duration
}

// Linear grows the delay proportionally to the attempt number:
// base × (attempt+1), capped at max when max is positive. multiplier is
// ignored.
type Linear struct{}

// Delay implements Strategy.
func (Linear) Delay(attempt int, base, max time.Duration, _, jitter float64) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := time.Duration(attempt+1) * base
	if max > 0 && d > max {
		d = max
	}
	return applyJitter(d, max, jitter)
}

// ExponentialJitter grows the delay geometrically with uniform jitter:
// base × multiplier^attempt, capped at max.
type ExponentialJitter struct{}

// Delay implements Strategy.
func (ExponentialJitter) Delay(attempt int, base, max time.Duration, multiplier, jitter float64) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// Cap the exponent to keep the multiplication from overflowing.
	if attempt > 30 {
		attempt = 30
	}
	d := time.Duration(float64(base) * pow(multiplier, attempt))
	if d < 0 || (max > 0 && d > max) {
		d = max
	}
	return applyJitter(d, max, jitter)
}

func applyJitter(d, max time.Duration, jitter float64) time.Duration {
	jitter = clampJitter(jitter)
	if jitter == 0 {
		return d
	}
	extra := time.Duration(float64(d) * jitter * rand.Float64())
	if max > 0 && d+extra > max {
		return max
	}
	return d + extra
}

func clampJitter(jitter float64) float64 {
	if jitter < 0 {
		return 0
	}
	if jitter > 1 {
		return 1
	}
	return jitter
}

func pow(base float64, exponent int) float64 {
	result := 1.0
	for i := 0; i < exponent; i++ {
		result *= base
	}
	return result
}
