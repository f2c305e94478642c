package musclemap

import (
	"errors"
	"testing"
	"time"
)

func TestLinearRetryPolicyDelays(t *testing.T) {
	policy := NewLinearRetryPolicy(3, 100*time.Millisecond)

	tests := []struct {
		attempt   int
		wantDelay time.Duration
		wantRetry bool
	}{
		{0, 100 * time.Millisecond, true},
		{1, 200 * time.Millisecond, true},
		{2, 300 * time.Millisecond, true},
		{3, 0, false},
	}
	for _, tt := range tests {
		delay, retry := policy.ShouldRetry(503, nil, tt.attempt)
		if retry != tt.wantRetry || delay != tt.wantDelay {
			t.Errorf("ShouldRetry(503, nil, %d) = %v, %v; want %v, %v",
				tt.attempt, delay, retry, tt.wantDelay, tt.wantRetry)
		}
	}
}

func TestLinearRetryPolicyEligibility(t *testing.T) {
	policy := NewLinearRetryPolicy(3, time.Millisecond)

	if _, retry := policy.ShouldRetry(0, errors.New("dial timeout"), 0); !retry {
		t.Error("transport error not retried")
	}
	if _, retry := policy.ShouldRetry(500, nil, 0); !retry {
		t.Error("500 not retried")
	}
	if _, retry := policy.ShouldRetry(404, nil, 0); retry {
		t.Error("404 retried")
	}
	if _, retry := policy.ShouldRetry(200, nil, 0); retry {
		t.Error("200 retried")
	}
}

func TestZeroBudgetNeverRetries(t *testing.T) {
	policy := NewLinearRetryPolicy(0, time.Millisecond)
	if _, retry := policy.ShouldRetry(503, nil, 0); retry {
		t.Error("policy with zero budget retried")
	}
}

func TestBackoffRetryPolicy(t *testing.T) {
	policy := NewBackoffRetryPolicy(2, 100*time.Millisecond, time.Second, 2.0, 0)

	delay, retry := policy.ShouldRetry(503, nil, 0)
	if !retry || delay != 100*time.Millisecond {
		t.Errorf("ShouldRetry(attempt 0) = %v, %v", delay, retry)
	}
	delay, retry = policy.ShouldRetry(503, nil, 1)
	if !retry || delay != 200*time.Millisecond {
		t.Errorf("ShouldRetry(attempt 1) = %v, %v", delay, retry)
	}
	if _, retry = policy.ShouldRetry(503, nil, 2); retry {
		t.Error("budget exceeded but still retried")
	}
	if _, retry = policy.ShouldRetry(400, nil, 0); retry {
		t.Error("client error retried")
	}
}
