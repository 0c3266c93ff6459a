package agent

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the per-UI-session conversational state: a stable identifier,
// the agent-visible session attributes, and the invocation id of the single
// outstanding tool call, if any.
//
// A session is exclusively owned by one UI session and mutated only by the
// turn-execution loop between turns; concurrent turns are never issued
// against the same session.
type Session struct {
	ID         string
	Attributes map[string]string

	pendingInvocationID string
}

// NewSession creates a session with a fresh identifier. The current date is
// always present in the attributes so the agent can reason about "today";
// callers may seed additional context such as coordinates and search radius.
func NewSession(attrs map[string]string) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		Attributes: make(map[string]string, len(attrs)+1),
	}
	for k, v := range attrs {
		s.Attributes[k] = v
	}
	if _, ok := s.Attributes["current_date"]; !ok {
		s.Attributes["current_date"] = time.Now().Format("01/02/2006")
	}
	return s
}

// PendingInvocationID returns the invocation id of the outstanding tool call,
// or "" when none is pending.
func (s *Session) PendingInvocationID() string {
	return s.pendingInvocationID
}

// SessionStore isolates sessions from each other. Each session carries its
// own pending-invocation slot; nothing is shared across sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create makes a new session seeded with the given attributes and registers
// it in the store.
func (st *SessionStore) Create(attrs map[string]string) *Session {
	s := NewSession(attrs)
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get looks up a session by id.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Remove discards a session. Called when the UI session ends.
func (st *SessionStore) Remove(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}
