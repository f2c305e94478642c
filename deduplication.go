package musclemap

import (
	"context"
	"sync"
)

// DeduplicationEntry represents an in-flight request whose result is
// shared between the owning caller and any waiters.
type DeduplicationEntry struct {
	mu    sync.Mutex
	value any
	err   error
	done  chan struct{}
}

// DeduplicationTracker coalesces concurrent identical requests: the first
// caller for a key becomes the owner and performs the request, later
// callers wait for the owner's validated result.
//
// Deduplication is opt-in (see WithDeduplication). When disabled,
// concurrent calls with the same cache key race to populate the cache and
// the second write wins.
type DeduplicationTracker struct {
	mu      sync.Mutex
	entries map[string]*DeduplicationEntry
}

// NewDeduplicationTracker returns an empty tracker.
func NewDeduplicationTracker() *DeduplicationTracker {
	return &DeduplicationTracker{entries: make(map[string]*DeduplicationEntry)}
}

// GetOrCreateEntry returns the in-flight entry for key. The boolean is
// true when the caller created the entry and owns the request.
func (dt *DeduplicationTracker) GetOrCreateEntry(key string) (*DeduplicationEntry, bool) {
	dt.mu.Lock()
	defer dt.mu.Unlock()

	if entry, exists := dt.entries[key]; exists {
		return entry, false
	}
	entry := &DeduplicationEntry{done: make(chan struct{})}
	dt.entries[key] = entry
	return entry, true
}

// Complete records the owner's result, releases all waiters and removes
// the entry so the next identical request starts fresh.
func (dt *DeduplicationTracker) Complete(key string, value any, err error) {
	dt.mu.Lock()
	entry, exists := dt.entries[key]
	delete(dt.entries, key)
	dt.mu.Unlock()

	if !exists {
		return
	}
	entry.mu.Lock()
	entry.value = value
	entry.err = err
	entry.mu.Unlock()
	close(entry.done)
}

// Wait blocks until the owning request completes or ctx is cancelled.
func (entry *DeduplicationEntry) Wait(ctx context.Context) (any, error) {
	select {
	case <-entry.done:
		entry.mu.Lock()
		defer entry.mu.Unlock()
		return entry.value, entry.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DeduplicationCondition decides whether a request may be coalesced with
// an identical in-flight one.
type DeduplicationCondition func(req *Request) bool

// DefaultDeduplicationCondition coalesces only safe read methods.
func DefaultDeduplicationCondition(req *Request) bool {
	switch req.Method {
	case "GET", "HEAD", "OPTIONS":
		return true
	default:
		return false
	}
}
