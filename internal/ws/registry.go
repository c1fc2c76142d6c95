package ws

import (
	"sync"

	"pollroom/pkg/interfaces"
)

// Registry tracks live connections globally and per session. It holds no
// business state; membership records live in the session package.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]interfaces.ClientConn            // connection id -> conn
	sessions map[string]map[string]interfaces.ClientConn // session key -> connection id -> conn
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:    make(map[string]interfaces.ClientConn),
		sessions: make(map[string]map[string]interfaces.ClientConn),
	}
}

// Register adds a connection to the global map.
func (r *Registry) Register(conn interfaces.ClientConn) error {
	if conn == nil {
		return ErrNilConnection
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.ConnectionID()] = conn
	return nil
}

// Unregister removes a connection from the global map and from its session
// group. Idempotent; safe to call during concurrent cleanup.
func (r *Registry) Unregister(conn interfaces.ClientConn) {
	if conn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := conn.ConnectionID()
	if _, ok := r.conns[id]; !ok {
		return
	}
	delete(r.conns, id)
	r.unbindLocked(conn)
}

// Bind adds a registered connection to a session group and records the
// binding on the connection itself.
func (r *Registry) Bind(conn interfaces.ClientConn, sessionKey string) error {
	if conn == nil {
		return ErrNilConnection
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := conn.ConnectionID()
	if _, ok := r.conns[id]; !ok {
		return ErrNotRegistered
	}

	if r.sessions[sessionKey] == nil {
		r.sessions[sessionKey] = make(map[string]interfaces.ClientConn)
	}
	r.sessions[sessionKey][id] = conn
	conn.BindSession(sessionKey)
	return nil
}

// Unbind removes a connection from its session group, leaving it registered.
func (r *Registry) Unbind(conn interfaces.ClientConn) {
	if conn == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.unbindLocked(conn)
}

func (r *Registry) unbindLocked(conn interfaces.ClientConn) {
	key := conn.SessionKey()
	if key == "" {
		return
	}
	if members, ok := r.sessions[key]; ok {
		delete(members, conn.ConnectionID())
		// drop empty session groups so the map doesn't grow forever
		if len(members) == 0 {
			delete(r.sessions, key)
		}
	}
	conn.UnbindSession()
}

// Get returns the connection for an id.
func (r *Registry) Get(connectionID string) (interfaces.ClientConn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[connectionID]
	return conn, ok
}

// SessionConnections returns all connections bound to a session.
func (r *Registry) SessionConnections(sessionKey string) []interfaces.ClientConn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.sessions[sessionKey]
	if !ok {
		return nil
	}
	out := make([]interfaces.ClientConn, 0, len(members))
	for _, conn := range members {
		out = append(out, conn)
	}
	return out
}

// Stats reports connection counts for the health surface.
func (r *Registry) Stats() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]int{
		"total_connections": len(r.conns),
		"bound_sessions":    len(r.sessions),
	}
}
