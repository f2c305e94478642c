package musclemap

import (
	"context"
	"sync"
)

// TokenProvider supplies the current auth token and is cleared when the
// server rejects it. Implementations typically sit on top of platform
// storage and may block; both methods take a context for that reason.
//
// Token returns an empty string when no session exists. That is not an
// error: the pipeline proceeds unauthenticated and lets the server decide.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
}

// MemoryTokenProvider is an in-process TokenProvider safe for concurrent
// use. It serves as the reference implementation and as the session store
// for programs that keep tokens in memory.
type MemoryTokenProvider struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenProvider creates a provider holding token. Pass an empty
// string for a logged-out session.
func NewMemoryTokenProvider(token string) *MemoryTokenProvider {
	return &MemoryTokenProvider{token: token}
}

// Token returns the current token, or an empty string when cleared.
func (p *MemoryTokenProvider) Token(_ context.Context) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token, nil
}

// SetToken replaces the stored token.
func (p *MemoryTokenProvider) SetToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = token
}

// ClearToken removes the stored token.
func (p *MemoryTokenProvider) ClearToken(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
	return nil
}
