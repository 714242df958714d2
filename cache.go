package pubadmin

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eringen/pubadmin/auth"
	"github.com/eringen/pubadmin/client"
	"github.com/eringen/pubadmin/content"
	"github.com/eringen/pubadmin/state"
)

// SessionState is the state store of one signed-in admin: the profile and
// one slice per resource page visited, all bound to the session token.
type SessionState struct {
	Session  auth.Session
	Registry *state.Registry
	Profile  *state.Value[content.Profile]

	mu       sync.Mutex
	slices   map[string]any
	lastUsed time.Time
}

func newSessionState(api *client.Client, s auth.Session) *SessionState {
	ss := &SessionState{
		Session:  s,
		Registry: state.NewRegistry(),
		slices:   make(map[string]any),
		lastUsed: time.Now(),
	}
	ss.Profile = state.NewValue("profile", func(ctx context.Context) (content.Profile, error) {
		return api.Me(ctx, s)
	})
	ss.Registry.Register(ss.Profile)
	return ss
}

// sliceOf returns the slice called name, creating it on first use with the
// backend produced by newBackend.
func sliceOf[T state.Keyed](ss *SessionState, name string, newBackend func() state.Backend[T]) *state.Slice[T] {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if existing, ok := ss.slices[name].(*state.Slice[T]); ok {
		return existing
	}
	sl := state.NewSlice(name, newBackend())
	ss.slices[name] = sl
	ss.Registry.Register(sl)
	return sl
}

// LoadProfile fetches the signed-in user's profile. A fetch overtaken by a
// newer one is not a failure: the newer result is returned.
func (ss *SessionState) LoadProfile(ctx context.Context) (content.Profile, error) {
	p, err := ss.Profile.Fetch(ctx)
	if errors.Is(err, state.ErrStale) {
		p, _, _ = ss.Profile.Get()
		return p, nil
	}
	return p, err
}

// Loaded returns the Refetcher for name if the page has been visited.
func (ss *SessionState) Loaded(name string) (state.Refetcher, bool) {
	return ss.Registry.Lookup(name)
}

func (ss *SessionState) touch(now time.Time) {
	ss.mu.Lock()
	ss.lastUsed = now
	ss.mu.Unlock()
}

func (ss *SessionState) idleSince(now time.Time) time.Duration {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return now.Sub(ss.lastUsed)
}

// SessionStates holds the SessionState of every active session, keyed by
// token. Entries unused for longer than ttl are evicted.
type SessionStates struct {
	mu      sync.Mutex
	byToken map[string]*SessionState
	ttl     time.Duration
	api     *client.Client
}

// NewSessionStates creates an empty cache.
func NewSessionStates(api *client.Client, ttl time.Duration) *SessionStates {
	return &SessionStates{
		byToken: make(map[string]*SessionState),
		ttl:     ttl,
		api:     api,
	}
}

// For returns the state store of s, creating it when needed.
func (c *SessionStates) For(s auth.Session) *SessionState {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	ss, ok := c.byToken[s.Token]
	if !ok || ss.Session.Role != s.Role {
		ss = newSessionState(c.api, s)
		c.byToken[s.Token] = ss
	}
	ss.touch(now)
	return ss
}

// Drop discards the state store of token.
func (c *SessionStates) Drop(token string) {
	c.mu.Lock()
	delete(c.byToken, token)
	c.mu.Unlock()
}

// Len returns the number of cached sessions.
func (c *SessionStates) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byToken)
}

func (c *SessionStates) evictIdle(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for token, ss := range c.byToken {
		if ss.idleSince(now) > c.ttl {
			delete(c.byToken, token)
			n++
		}
	}
	return n
}

// StartEviction runs evictIdle every interval until the returned stop
// function is called.
func (c *SessionStates) StartEviction(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	var once sync.Once
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				c.evictIdle(now)
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}
