package auth

import (
	"context"
	"sync"
)

// State is a step of the login flow.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
	Rejected
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Flow drives one client through login and logout. It holds the in-memory
// copy of the session and writes it through to Storage.
type Flow struct {
	authn   Authenticator
	storage Storage

	mu      sync.Mutex
	state   State
	session Session

	onTransition func(from, to State)
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithTransitionHook calls fn on every state change.
func WithTransitionHook(fn func(from, to State)) FlowOption {
	return func(f *Flow) {
		f.onTransition = fn
	}
}

// NewFlow returns an anonymous flow backed by authn and storage.
func NewFlow(authn Authenticator, storage Storage, opts ...FlowOption) *Flow {
	f := &Flow{authn: authn, storage: storage}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) setState(to State) {
	from := f.state
	f.state = to
	if f.onTransition != nil && from != to {
		f.onTransition(from, to)
	}
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Session returns the in-memory session. It is zero unless authenticated.
func (f *Flow) Session() Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// Restore loads a persisted session. A stored session whose role is no
// longer allowed is treated as absent.
func (f *Flow) Restore() (Session, error) {
	s, err := f.storage.Load()
	if err != nil {
		return Session{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !s.Authenticated() {
		f.session = Session{}
		f.setState(Anonymous)
		return Session{}, nil
	}
	f.session = s
	f.setState(Authenticated)
	return s, nil
}

// Login submits the credentials. The session is persisted only when the
// backend issues a token together with an allowed role; in every other case
// the flow passes through Rejected back to Anonymous and storage is not
// written.
func (f *Flow) Login(ctx context.Context, email, password string) (Session, error) {
	f.mu.Lock()
	f.setState(Authenticating)
	f.mu.Unlock()

	creds, err := f.authn.Login(ctx, email, password)
	if err == nil {
		switch {
		case creds.Token == "":
			err = ErrMissingToken
		case !RoleAllowed(creds.Role):
			err = ErrRoleNotAllowed
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.setState(Rejected)
		f.session = Session{}
		f.setState(Anonymous)
		return Session{}, err
	}

	s := Session{Token: creds.Token, Role: normalizeRole(creds.Role)}
	if err := f.storage.Save(s); err != nil {
		f.setState(Anonymous)
		return Session{}, err
	}
	f.session = s
	f.setState(Authenticated)
	return s, nil
}

// Logout clears the persisted and in-memory session.
func (f *Flow) Logout() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = Session{}
	f.setState(Anonymous)
	return f.storage.Clear()
}
