package musclemap

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
)

// Logger receives structured debug output from the client. Key/value
// pairs alternate in keysAndValues.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// SimpleLogger writes leveled key=value lines to stderr.
type SimpleLogger struct {
	l *log.Logger
}

// NewSimpleLogger creates a console logger.
func NewSimpleLogger() *SimpleLogger {
	return &SimpleLogger{l: log.New(os.Stderr, "musclemap ", log.LstdFlags)}
}

func (s *SimpleLogger) Debug(msg string, keysAndValues ...interface{}) {
	s.logf("DEBUG", msg, keysAndValues...)
}

func (s *SimpleLogger) Info(msg string, keysAndValues ...interface{}) {
	s.logf("INFO", msg, keysAndValues...)
}

func (s *SimpleLogger) Warn(msg string, keysAndValues ...interface{}) {
	s.logf("WARN", msg, keysAndValues...)
}

func (s *SimpleLogger) Error(msg string, keysAndValues ...interface{}) {
	s.logf("ERROR", msg, keysAndValues...)
}

func (s *SimpleLogger) logf(level, msg string, keysAndValues ...interface{}) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	s.l.Print(b.String())
}

// DebugConfig controls which pipeline events are logged. All logging is
// off unless Enabled is set and a Logger is configured.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogRetries   bool
	LogCache     bool
	RequestIDGen func() string
}

// DefaultDebugConfig enables every event category (but not logging
// itself) and generates short random request IDs.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogRequests:  true,
		LogRetries:   true,
		LogCache:     true,
		RequestIDGen: defaultRequestID,
	}
}

func defaultRequestID() string {
	return fmt.Sprintf("req_%08x", rand.Uint32())
}
