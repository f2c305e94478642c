package musclemap

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/MuscleMap-ME/musclemap-go/schema"
)

// Client executes MuscleMap API requests with response caching, schema
// validation, bearer token injection, 401 session recovery and
// retry-with-linear-backoff on transport and server failures. A Client
// owns its cache and configuration; construct one per tenant or test and
// discard it when done. It is safe for concurrent use.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	defaultHeaders map[string]string

	maxRetries  int
	retryDelay  time.Duration
	retryPolicy RetryPolicy

	cache        Cache
	cacheTTL     time.Duration
	cacheKeyFunc CacheKeyFunc

	tokens         TokenProvider
	onUnauthorized func()

	middleware []Middleware

	deduplication  *DeduplicationTracker
	dedupCondition DeduplicationCondition

	metrics *MetricsCollector
	debug   *DebugConfig
	logger  Logger

	validationError error
}

// Middleware wraps the transport call for cross-cutting concerns.
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper is the transport interface middleware chains over.
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc adapts a function to RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements RoundTripper.
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// New constructs a Client using the provided functional options. A best
// effort validation is performed; call IsValid / ValidationError for
// errors. Execute fails fast while the configuration is invalid.
func New(options ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		defaultHeaders: map[string]string{
			"Accept": "application/json",
		},
		maxRetries:     2,
		retryDelay:     300 * time.Millisecond,
		cache:          NewInMemoryCache(),
		cacheTTL:       30 * time.Second,
		cacheKeyFunc:   DefaultCacheKeyFunc,
		dedupCondition: DefaultDeduplicationCondition,
		debug:          DefaultDebugConfig(),
	}

	for _, option := range options {
		option(client)
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

// Cache exposes the client's cache, e.g. to Clear it on logout.
func (c *Client) Cache() Cache {
	return c.cache
}

// Execute performs one API call: cache probe, header and auth assembly,
// the attempt loop, response decoding, schema validation and cache
// population. It returns the validated payload, or a *ClientError from
// the taxonomy in errors.go.
//
// Once started, a request runs to completion; retry sleeps are not
// interruptible, though the underlying transport honors ctx.
func (c *Client) Execute(ctx context.Context, req *Request) (any, error) {
	if c.validationError != nil {
		return nil, c.validationError
	}

	start := time.Now()
	fullURL := c.resolveURL(req.Path)
	endpoint := endpointLabel(fullURL)

	var requestID string
	if c.debugEnabled() && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
	}
	if c.debugEnabled() && c.debug.LogRequests {
		c.logger.Debug("starting request", "requestID", requestID, "method", req.Method, "url", fullURL)
	}

	c.metrics.RecordRequestStart(req.Method, endpoint)
	defer c.metrics.RecordRequestEnd(req.Method, endpoint)

	bodyBytes, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, c.newError(ErrorTypeRequest, "invalid request body", err, req, fullURL, 0, 0, time.Since(start))
	}

	ttl, cacheable := c.resolveTTL(req)
	cacheable = cacheable && c.cache != nil

	cacheKey := req.CacheKey
	if cacheKey == "" {
		cacheKey = c.cacheKeyFunc(req.Method, fullURL, bodyBytes)
	}

	if cacheable {
		if entry, found := c.cache.Get(cacheKey); found {
			if c.debugEnabled() && c.debug.LogCache {
				c.logger.Debug("cache hit", "requestID", requestID, "cacheKey", cacheKey)
			}
			c.metrics.RecordCacheHit(req.Method, endpoint)
			c.metrics.RecordRequest(req.Method, endpoint, http.StatusOK, time.Since(start))
			return entry.Value, nil
		}
		c.metrics.RecordCacheMiss(req.Method, endpoint)
		if c.debugEnabled() && c.debug.LogCache {
			c.logger.Debug("cache miss", "requestID", requestID, "cacheKey", cacheKey)
		}
	}

	dedupEnabled := c.deduplication != nil && c.dedupCondition(req)
	var dedupEntry *DeduplicationEntry
	if dedupEnabled {
		var owner bool
		dedupEntry, owner = c.deduplication.GetOrCreateEntry(cacheKey)
		if !owner {
			c.metrics.RecordDeduplicationHit(req.Method, endpoint)
			if c.debugEnabled() && c.debug.LogRequests {
				c.logger.Debug("coalesced with in-flight request", "requestID", requestID, "cacheKey", cacheKey)
			}
			return dedupEntry.Wait(ctx)
		}
	}

	value, err := c.do(ctx, req, fullURL, endpoint, requestID, bodyBytes, contentType, start)

	if err == nil && cacheable {
		c.cache.Set(cacheKey, value, ttl)
		if mem, ok := c.cache.(*InMemoryCache); ok {
			c.metrics.RecordCacheSize("default", mem.Len())
		}
		if c.debugEnabled() && c.debug.LogCache {
			c.logger.Debug("response cached", "requestID", requestID, "cacheKey", cacheKey, "ttl", ttl)
		}
	}

	if dedupEnabled {
		c.deduplication.Complete(cacheKey, value, err)
	}

	return value, err
}

// do assembles headers and runs the attempt loop for a single request.
func (c *Client) do(ctx context.Context, req *Request, fullURL, endpoint, requestID string, bodyBytes []byte, contentType string, start time.Time) (any, error) {
	headers := make(http.Header)
	for k, v := range c.defaultHeaders {
		headers.Set(k, v)
	}
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}
	for k, v := range req.Headers {
		headers.Set(k, v)
	}

	if req.RequiresAuth && c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		switch {
		case err != nil:
			// A provider failure is treated as a missing token: the call
			// proceeds unauthenticated and the server decides.
			if c.debugEnabled() {
				c.logger.Warn("token lookup failed", "requestID", requestID, "error", err.Error())
			}
		case token != "":
			headers.Set("Authorization", "Bearer "+token)
		}
	}

	policy := c.resolvePolicy(req)

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			if c.debugEnabled() && c.debug.LogRetries {
				c.logger.Info("retry attempt", "requestID", requestID, "attempt", attempt, "endpoint", endpoint)
			}
			c.metrics.RecordRetry(req.Method, endpoint, attempt)
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader(bodyBytes))
		if err != nil {
			return nil, c.newError(ErrorTypeRequest, "building request", err, req, fullURL, 0, attempt, time.Since(start))
		}
		httpReq.Header = headers.Clone()

		resp, err := c.executeMiddleware(httpReq)
		if err != nil {
			if delay, retry := policy.ShouldRetry(0, err, attempt); retry {
				time.Sleep(delay)
				continue
			}
			c.metrics.RecordError(ErrorTypeTransport, req.Method, endpoint)
			return nil, c.newError(ErrorTypeTransport, "network request failed", err, req, fullURL, 0, attempt, time.Since(start))
		}

		status := resp.StatusCode
		c.metrics.RecordRequest(req.Method, endpoint, status, time.Since(start))

		if status == http.StatusUnauthorized {
			drain(resp)
			if c.tokens != nil {
				if cerr := c.tokens.ClearToken(ctx); cerr != nil && c.debugEnabled() {
					c.logger.Warn("clearing session failed", "requestID", requestID, "error", cerr.Error())
				}
			}
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
			c.metrics.RecordError(ErrorTypeUnauthorized, req.Method, endpoint)
			return nil, c.newError(ErrorTypeUnauthorized, "authentication required", nil, req, fullURL, status, attempt, time.Since(start))
		}

		if status >= 500 {
			if delay, retry := policy.ShouldRetry(status, nil, attempt); retry {
				drain(resp)
				time.Sleep(delay)
				continue
			}
			body, _ := readBody(resp)
			c.metrics.RecordError(ErrorTypeRequest, req.Method, endpoint)
			return nil, c.newError(ErrorTypeRequest, errorMessageFromBody(status, body), nil, req, fullURL, status, attempt, time.Since(start))
		}

		if status < 200 || status >= 300 {
			body, _ := readBody(resp)
			c.metrics.RecordError(ErrorTypeRequest, req.Method, endpoint)
			return nil, c.newError(ErrorTypeRequest, errorMessageFromBody(status, body), nil, req, fullURL, status, attempt, time.Since(start))
		}

		body, err := readBody(resp)
		if err != nil {
			if delay, retry := policy.ShouldRetry(0, err, attempt); retry {
				time.Sleep(delay)
				continue
			}
			c.metrics.RecordError(ErrorTypeTransport, req.Method, endpoint)
			return nil, c.newError(ErrorTypeTransport, "reading response body", err, req, fullURL, status, attempt, time.Since(start))
		}

		// An empty body is a null payload, not an error.
		var payload any
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				c.metrics.RecordValidationFailure(req.Method, endpoint)
				return nil, c.newError(ErrorTypeValidation, "response body is not valid JSON", err, req, fullURL, status, attempt, time.Since(start))
			}
		}

		if req.Schema != nil {
			validated, err := schema.Validate(req.Schema, payload)
			if err != nil {
				// The server answered successfully; retrying would repeat
				// the same malformed shape.
				c.metrics.RecordValidationFailure(req.Method, endpoint)
				return nil, c.newError(ErrorTypeValidation, "response does not match schema", err, req, fullURL, status, attempt, time.Since(start))
			}
			payload = validated
		}

		return payload, nil
	}
}

func (c *Client) executeMiddleware(req *http.Request) (*http.Response, error) {
	if len(c.middleware) == 0 {
		return c.httpClient.Do(req)
	}

	current := RoundTripper(RoundTripperFunc(c.httpClient.Do))
	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}
	return current.RoundTrip(req)
}

// resolveTTL decides whether the request is cacheable and for how long:
// an explicit positive TTL always caches, reads with an unspecified TTL
// fall back to the client read TTL, everything else is not cached.
func (c *Client) resolveTTL(req *Request) (time.Duration, bool) {
	switch {
	case req.CacheTTL == CacheDisabled:
		return 0, false
	case req.CacheTTL > 0:
		return req.CacheTTL, true
	case isReadMethod(req.Method) && c.cacheTTL > 0:
		return c.cacheTTL, true
	default:
		return 0, false
	}
}

func (c *Client) resolvePolicy(req *Request) RetryPolicy {
	if req.Retries >= 0 || req.RetryDelay > 0 {
		retries := c.maxRetries
		if req.Retries >= 0 {
			retries = req.Retries
		}
		delay := c.retryDelay
		if req.RetryDelay > 0 {
			delay = req.RetryDelay
		}
		return NewLinearRetryPolicy(retries, delay)
	}
	if c.retryPolicy != nil {
		return c.retryPolicy
	}
	return NewLinearRetryPolicy(c.maxRetries, c.retryDelay)
}

func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base := strings.TrimSuffix(c.baseURL, "/")
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func (c *Client) resolveRetries(req *Request) int {
	if req.Retries >= 0 {
		return req.Retries
	}
	return c.maxRetries
}

func (c *Client) newError(errorType, message string, cause error, req *Request, fullURL string, statusCode, attempt int, duration time.Duration) *ClientError {
	return &ClientError{
		Type:       errorType,
		Message:    message,
		Cause:      cause,
		Method:     req.Method,
		URL:        fullURL,
		StatusCode: statusCode,
		Attempt:    attempt,
		MaxRetries: c.resolveRetries(req),
		Timestamp:  time.Now(),
		Duration:   duration,
	}
}

func (c *Client) debugEnabled() bool {
	return c.debug != nil && c.debug.Enabled && c.logger != nil
}

func isReadMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func bodyReader(body []byte) io.Reader {
	if len(body) == 0 {
		return nil
	}
	return bytes.NewReader(body)
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	if u.Path == "" || u.Path == "/" {
		return u.Host + "/"
	}
	return u.Host + u.Path
}
