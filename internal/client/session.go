package client

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// SessionState enumerates the session manager's states.
type SessionState int

const (
	// StateLoading holds from construction until the first session query
	// resolves. Nothing observable is rendered in this state.
	StateLoading SessionState = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// SessionManager tracks the current authenticated identity. The held Session
// is only ever replaced wholesale by the notification path; components react
// to transitions via Subscribe rather than mutating state directly.
type SessionManager struct {
	identity Identity
	log      *zap.Logger

	mu      sync.Mutex
	state   SessionState
	session *Session
	nextID  int
	subs    map[int]func(*Session)
}

// NewSessionManager creates a manager in the loading state.
func NewSessionManager(identity Identity, log *zap.Logger) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{
		identity: identity,
		log:      log,
		state:    StateLoading,
		subs:     make(map[int]func(*Session)),
	}
}

// Start resolves the initial session exactly once: loading transitions to
// authenticated or unauthenticated depending on the provider's answer. A
// failed query is treated as "no session" and surfaces nothing.
func (m *SessionManager) Start(ctx context.Context) {
	session, err := m.identity.CurrentSession(ctx)
	if err != nil {
		m.log.Warn("session query failed, treating as signed out", zap.Error(err))
		session = nil
	}
	m.set(session)
}

// State returns the current state.
func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns the currently held session, or nil.
func (m *SessionManager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Subscribe registers fn to run on every session change, including the
// initial resolution. It returns an unsubscribe func, safe to call more
// than once.
func (m *SessionManager) Subscribe(fn func(*Session)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// SignOut invalidates the session via the provider and then emits a change
// notification with no session. Provider failure is not surfaced.
func (m *SessionManager) SignOut(ctx context.Context) {
	if err := m.identity.SignOut(ctx); err != nil {
		m.log.Warn("sign-out failed", zap.Error(err))
	}
	m.set(nil)
}

// Invalidate drops the session without calling the provider. Used when a
// transport reports the credentials are no longer valid.
func (m *SessionManager) Invalidate() {
	m.set(nil)
}

// set replaces the held session, updates the state, and notifies
// subscribers. Subscribers run outside the lock so they may call back into
// the manager.
func (m *SessionManager) set(session *Session) {
	m.mu.Lock()
	m.session = session
	if session != nil {
		m.state = StateAuthenticated
	} else {
		m.state = StateUnauthenticated
	}
	fns := make([]func(*Session), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(session)
	}
}
