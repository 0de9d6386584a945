// Package session holds the signed-in user's identity for the lifetime of a
// login. Components receive a *Provider instead of reading ambient state.
package session

import (
	"errors"
	"sync"
	"time"
)

// ErrNoToken is returned by Begin when the session carries no token.
var ErrNoToken = errors.New("session has no access token")

// Session is one authenticated identity.
type Session struct {
	UserID    string
	Name      string
	Token     string
	StartedAt time.Time
}

// Hook runs on a lifecycle transition.
type Hook func(Session)

// Provider owns the current session. It is safe for concurrent use.
type Provider struct {
	mu      sync.RWMutex
	current *Session
	onBegin []Hook
	onEnd   []Hook
}

// NewProvider returns a Provider with no active session.
func NewProvider() *Provider {
	return &Provider{}
}

// OnBegin registers h to run after every successful Begin.
func (p *Provider) OnBegin(h Hook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onBegin = append(p.onBegin, h)
}

// OnEnd registers h to run after every End of an active session.
func (p *Provider) OnEnd(h Hook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEnd = append(p.onEnd, h)
}

// Begin starts s, ending any session already active. Hooks run outside the
// lock, in registration order.
func (p *Provider) Begin(s Session) error {
	if s.Token == "" {
		return ErrNoToken
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	p.End()

	p.mu.Lock()
	p.current = &s
	hooks := append([]Hook(nil), p.onBegin...)
	p.mu.Unlock()

	for _, h := range hooks {
		h(s)
	}
	return nil
}

// End tears down the active session. It is a no-op without one.
func (p *Provider) End() {
	p.mu.Lock()
	cur := p.current
	p.current = nil
	hooks := append([]Hook(nil), p.onEnd...)
	p.mu.Unlock()

	if cur == nil {
		return
	}
	for _, h := range hooks {
		h(*cur)
	}
}

// Current returns the active session.
func (p *Provider) Current() (Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return Session{}, false
	}
	return *p.current, true
}

// Token returns the active session's token, or "" when signed out.
func (p *Provider) Token() string {
	s, _ := p.Current()
	return s.Token
}
