package musclemap

import (
	"context"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/MuscleMap-ME/musclemap-go/schema"
)

// CacheDisabled as a Request.CacheTTL explicitly opts the request out of
// caching, including the default read TTL.
const CacheDisabled time.Duration = -1

// inheritRetries marks Retries as unset so the client budget applies.
const inheritRetries = -1

// Request describes a single outbound call. It is constructed fresh per
// call with NewRequest (or the method shorthands) and the chain setters,
// and is not retained by the pipeline after Execute returns.
type Request struct {
	Method  string
	Path    string // joined to the client base URL unless absolute
	Body    any    // structured value, []byte or io.Reader
	Headers map[string]string

	// Schema validates the decoded response payload. When nil, the
	// decoded payload is returned as-is.
	Schema *schema.Schema

	// CacheKey overrides the derived method+URL+body key.
	CacheKey string

	// CacheTTL > 0 makes the request cacheable for that duration.
	// Zero means unspecified: reads fall back to the client read TTL,
	// writes are not cached. CacheDisabled opts out entirely.
	CacheTTL time.Duration

	// Retries and RetryDelay override the client budget when set
	// (Retries >= 0, RetryDelay > 0).
	Retries    int
	RetryDelay time.Duration

	RequiresAuth bool
}

// NewRequest creates a request descriptor. Requests require auth by
// default; use Public for unauthenticated endpoints.
func NewRequest(method, path string) *Request {
	return &Request{
		Method:       method,
		Path:         path,
		Headers:      make(map[string]string),
		Retries:      inheritRetries,
		RequiresAuth: true,
	}
}

// Get creates a GET request descriptor.
func Get(path string) *Request { return NewRequest("GET", path) }

// Post creates a POST request descriptor carrying body.
func Post(path string, body any) *Request { return NewRequest("POST", path).WithBody(body) }

// Put creates a PUT request descriptor carrying body.
func Put(path string, body any) *Request { return NewRequest("PUT", path).WithBody(body) }

// Patch creates a PATCH request descriptor carrying body.
func Patch(path string, body any) *Request { return NewRequest("PATCH", path).WithBody(body) }

// Delete creates a DELETE request descriptor.
func Delete(path string) *Request { return NewRequest("DELETE", path) }

// WithBody sets the request body. Structured values are JSON-encoded;
// []byte and io.Reader payloads are sent raw with no content type so the
// transport can set its own (e.g. multipart boundaries).
func (r *Request) WithBody(body any) *Request {
	r.Body = body
	return r
}

// WithHeader sets a caller header, overriding client defaults and the
// computed content type.
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// WithSchema sets the response schema.
func (r *Request) WithSchema(s *schema.Schema) *Request {
	r.Schema = s
	return r
}

// WithCacheKey overrides the derived cache key.
func (r *Request) WithCacheKey(key string) *Request {
	r.CacheKey = key
	return r
}

// WithCacheTTL makes the request cacheable for ttl.
func (r *Request) WithCacheTTL(ttl time.Duration) *Request {
	r.CacheTTL = ttl
	return r
}

// WithoutCache opts the request out of caching.
func (r *Request) WithoutCache() *Request {
	r.CacheTTL = CacheDisabled
	return r
}

// WithRetries overrides the client retry budget for this request.
func (r *Request) WithRetries(n int) *Request {
	r.Retries = n
	return r
}

// WithRetryDelay overrides the client retry delay unit for this request.
func (r *Request) WithRetryDelay(d time.Duration) *Request {
	r.RetryDelay = d
	return r
}

// Public marks the request as not requiring auth; no bearer token is
// attached.
func (r *Request) Public() *Request {
	r.RequiresAuth = false
	return r
}

// CacheKeyFunc derives a cache key from the resolved method, URL and
// encoded body.
type CacheKeyFunc func(method, url string, body []byte) string

// DefaultCacheKeyFunc builds "METHOD url body" deterministically.
func DefaultCacheKeyFunc(method, url string, body []byte) string {
	var buf []byte
	buf = append(buf, method...)
	buf = append(buf, ' ')
	buf = append(buf, url...)
	if len(body) > 0 {
		buf = append(buf, ' ')
		buf = append(buf, body...)
	}
	return string(buf)
}

// encodeBody serializes a request body. Raw payloads ([]byte, io.Reader)
// pass through with an empty content type; anything else is JSON-encoded.
// io.Reader bodies are buffered once so retries re-send the same bytes.
func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return b, "", nil
	case io.Reader:
		raw, err := io.ReadAll(b)
		if err != nil {
			return nil, "", fmt.Errorf("reading request body: %w", err)
		}
		return raw, "", nil
	default:
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encoding request body: %w", err)
		}
		return raw, "application/json", nil
	}
}

// ExecuteInto executes req and decodes the validated payload into T via a
// JSON round trip. A nil payload yields T's zero value.
func ExecuteInto[T any](ctx context.Context, c *Client, req *Request) (T, error) {
	var out T
	payload, err := c.Execute(ctx, req)
	if err != nil {
		return out, err
	}
	if payload == nil {
		return out, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return out, &ClientError{
			Type:      ErrorTypeValidation,
			Message:   "re-encoding validated payload",
			Cause:     err,
			Method:    req.Method,
			Timestamp: time.Now(),
		}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &ClientError{
			Type:      ErrorTypeValidation,
			Message:   fmt.Sprintf("payload does not fit %T", out),
			Cause:     err,
			Method:    req.Method,
			Timestamp: time.Now(),
		}
	}
	return out, nil
}
