package chat

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
)

// ErrSessionNotFound is returned for unknown or closed session ids.
var ErrSessionNotFound = errors.New("chat: session not found")

// SessionStore keeps the open sessions of the web widget.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	order    []string
	max      int
}

// NewStore returns a store holding at most max sessions; the oldest is
// evicted when a new one would exceed it. max <= 0 means unbounded.
func NewStore(max int) *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session), max: max}
}

// Open creates and registers a session.
func (st *SessionStore) Open(name, dinoContext, avatarURL string) (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	s := NewSession(name, dinoContext, avatarURL)
	s.ID = id

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[id] = s
	st.order = append(st.order, id)
	for st.max > 0 && len(st.order) > st.max {
		delete(st.sessions, st.order[0])
		st.order = st.order[1:]
	}
	return s, nil
}

// Get returns the session with id.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close forgets the session with id. Closing an unknown id is a no-op.
func (st *SessionStore) Close(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return
	}
	delete(st.sessions, id)
	for i, v := range st.order {
		if v == id {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of open sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

func newSessionID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
