package musclemap

import (
	"net/http"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	client := New()

	if !client.IsValid() {
		t.Fatalf("default client invalid: %v", client.ValidationError())
	}
	if client.maxRetries != 2 {
		t.Errorf("maxRetries = %d, want 2", client.maxRetries)
	}
	if client.retryDelay != 300*time.Millisecond {
		t.Errorf("retryDelay = %v, want 300ms", client.retryDelay)
	}
	if client.cacheTTL != 30*time.Second {
		t.Errorf("cacheTTL = %v, want 30s", client.cacheTTL)
	}
	if client.cache == nil {
		t.Error("cache not enabled by default")
	}
	if client.httpClient.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", client.httpClient.Timeout)
	}
	if client.deduplication != nil {
		t.Error("deduplication enabled by default, want opt-in")
	}
	if client.metrics != nil {
		t.Error("metrics enabled by default, want opt-in")
	}
}

func TestOptionsOverrideDefaults(t *testing.T) {
	cache := NewInMemoryCache()
	provider := NewMemoryTokenProvider("t")
	client := New(
		WithBaseURL("https://api.musclemap.me"),
		WithMaxRetries(5),
		WithRetryDelay(time.Second),
		WithCacheTTL(time.Minute),
		WithCustomCache(cache),
		WithTokenProvider(provider),
		WithTimeout(5*time.Second),
		WithDeduplication(),
	)

	if client.baseURL != "https://api.musclemap.me" {
		t.Errorf("baseURL = %q", client.baseURL)
	}
	if client.maxRetries != 5 || client.retryDelay != time.Second {
		t.Errorf("retry config = %d/%v", client.maxRetries, client.retryDelay)
	}
	if client.cacheTTL != time.Minute {
		t.Errorf("cacheTTL = %v", client.cacheTTL)
	}
	if client.cache != Cache(cache) {
		t.Error("custom cache not installed")
	}
	if client.tokens != TokenProvider(provider) {
		t.Error("token provider not installed")
	}
	if client.httpClient.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", client.httpClient.Timeout)
	}
	if client.deduplication == nil {
		t.Error("deduplication not enabled")
	}
}

func TestWithoutCache(t *testing.T) {
	client := New(WithoutCache())
	if client.cache != nil {
		t.Error("cache still set after WithoutCache")
	}
	if !client.IsValid() {
		t.Errorf("client invalid: %v", client.ValidationError())
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		options []Option
		valid   bool
	}{
		{"defaults", nil, true},
		{"negative retries", []Option{WithMaxRetries(-1)}, false},
		{"zero retry delay", []Option{WithRetryDelay(0)}, false},
		{"nil http client", []Option{WithHTTPClient(nil)}, false},
		{"nil middleware", []Option{WithMiddleware(nil)}, false},
		{"debug without logger", []Option{WithDebug()}, false},
		{"debug with logger", []Option{WithDebug(), WithLogger(NewSimpleLogger())}, true},
		{"simple logger", []Option{WithSimpleLogger()}, true},
		{"dedup without condition", []Option{WithDeduplication(), WithDeduplicationCondition(nil)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := New(tt.options...)
			if got := client.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v (err: %v)", got, tt.valid, client.ValidationError())
			}
		})
	}
}

func TestWithDefaultHeader(t *testing.T) {
	client := New(WithDefaultHeader("X-App-Version", "1.2.3"))
	if client.defaultHeaders["X-App-Version"] != "1.2.3" {
		t.Error("default header not set")
	}
	// The stock Accept header survives additions.
	if client.defaultHeaders["Accept"] != "application/json" {
		t.Error("stock Accept header lost")
	}
}

func TestWithHTTPClientKeepsCustomTransport(t *testing.T) {
	rt := RoundTripperFunc(func(r *http.Request) (*http.Response, error) { return nil, nil })
	hc := &http.Client{Transport: rt, Timeout: time.Second}
	client := New(WithHTTPClient(hc))
	if client.httpClient != hc {
		t.Error("custom http client not installed")
	}
}
