package session

import (
	"sync"
)

// Store maps session keys to live sessions. Sessions are created lazily on
// first use and live for the process lifetime; there is no eviction.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for a key, creating it if the key has not
// been seen before.
func (st *Store) GetOrCreate(key string) *Session {
	st.mu.RLock()
	if s, ok := st.sessions[key]; ok {
		st.mu.RUnlock()
		return s
	}
	st.mu.RUnlock()

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[key]; ok {
		return s
	}
	s := NewSession(key)
	st.sessions[key] = s
	return s
}

// Get returns the session for a key without creating one.
func (st *Store) Get(key string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[key]
	return s, ok
}

// List returns all sessions in the store.
func (st *Store) List() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s)
	}
	return out
}

// Count returns the number of sessions ever created in this process.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
