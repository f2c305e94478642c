package musclemap

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/MuscleMap-ME/musclemap-go/schema"
)

// Error type constants used in ClientError.Type.
const (
	// ErrorTypeValidation indicates the decoded payload did not match its
	// schema (or could not be decoded at all). Never retried.
	ErrorTypeValidation = "Validation"

	// ErrorTypeUnauthorized indicates a 401 response. The session is
	// cleared before this error is surfaced. Never retried.
	ErrorTypeUnauthorized = "Unauthorized"

	// ErrorTypeRequest indicates a non-2xx response that is not a 401,
	// including 5xx responses after the retry budget is exhausted.
	ErrorTypeRequest = "RequestFailed"

	// ErrorTypeTransport indicates the network call itself failed to
	// complete, after the retry budget is exhausted.
	ErrorTypeTransport = "Transport"

	// ErrorTypeConfig indicates invalid client configuration detected at
	// construction.
	ErrorTypeConfig = "Configuration"
)

// ClientError is the error surface of the request pipeline. Type carries
// the failure taxonomy; the remaining fields carry diagnostic context.
type ClientError struct {
	Type       string
	Message    string
	Cause      error
	Method     string
	URL        string
	StatusCode int
	Attempt    int
	MaxRetries int
	Timestamp  time.Time
	Duration   time.Duration
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.Attempt > 0 {
		msg = fmt.Sprintf("%s (attempt %d/%d)", msg, e.Attempt+1, e.MaxRetries+1)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types, so errors.Is(err, &ClientError{Type: ...})
// matches any pipeline error of that type.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// IsValidation reports whether err is a schema validation failure, either
// a pipeline Validation error or a bare schema.ErrInvalid.
func IsValidation(err error) bool {
	if errors.Is(err, schema.ErrInvalid) {
		return true
	}
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrorTypeValidation
}

// IsUnauthorized reports whether err resulted from a 401 response.
func IsUnauthorized(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrorTypeUnauthorized
}

// IsTransient reports whether err represents a failure that might succeed
// on retry: transport failures, 5xx responses and 429.
func IsTransient(err error) bool {
	var ce *ClientError
	if !errors.As(err, &ce) {
		return false
	}
	switch ce.Type {
	case ErrorTypeTransport:
		return true
	case ErrorTypeRequest:
		return ce.StatusCode >= 500 || ce.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

// errorMessageFromBody derives a human-readable message from an error
// response body. Precedence: a structured error.message field, then a
// string error field, then a top-level message field, then a generic
// message carrying the status code.
func errorMessageFromBody(statusCode int, body []byte) string {
	var payload map[string]any
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		switch errField := payload["error"].(type) {
		case map[string]any:
			if msg, ok := errField["message"].(string); ok && msg != "" {
				return msg
			}
		case string:
			if errField != "" {
				return errField
			}
		}
		if msg, ok := payload["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("request failed with status %d", statusCode)
}
