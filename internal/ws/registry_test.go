package ws

import (
	"sync"
	"testing"
)

type stubConn struct {
	mu         sync.Mutex
	id         string
	sessionKey string
	closed     bool
}

func (c *stubConn) ConnectionID() string { return c.id }

func (c *stubConn) SessionKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionKey
}

func (c *stubConn) BindSession(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionKey = key
}

func (c *stubConn) UnbindSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionKey = ""
}

func (c *stubConn) WriteJSON(v interface{}) error { return nil }

func (c *stubConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()

	conn := &stubConn{id: "c1"}
	if err := r.Register(conn); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, ok := r.Get("c1")
	if !ok {
		t.Fatal("Expected registered connection to be found")
	}
	if got.ConnectionID() != "c1" {
		t.Errorf("Expected c1, got %s", got.ConnectionID())
	}

	if _, ok := r.Get("missing"); ok {
		t.Error("Unknown id should not be found")
	}
}

func TestRegistry_RegisterNil(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(nil); err != ErrNilConnection {
		t.Errorf("Expected ErrNilConnection, got %v", err)
	}
	if err := r.Bind(nil, "room-1"); err != ErrNilConnection {
		t.Errorf("Expected ErrNilConnection, got %v", err)
	}
}

func TestRegistry_BindRequiresRegistration(t *testing.T) {
	r := NewRegistry()

	conn := &stubConn{id: "c1"}
	if err := r.Bind(conn, "room-1"); err != ErrNotRegistered {
		t.Errorf("Expected ErrNotRegistered, got %v", err)
	}
	if conn.SessionKey() != "" {
		t.Error("Failed bind must not touch the connection")
	}
}

func TestRegistry_BindGroupsBySession(t *testing.T) {
	r := NewRegistry()

	a := &stubConn{id: "c1"}
	b := &stubConn{id: "c2"}
	other := &stubConn{id: "c3"}
	for _, c := range []*stubConn{a, b, other} {
		if err := r.Register(c); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	if err := r.Bind(a, "room-1"); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if err := r.Bind(b, "room-1"); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if err := r.Bind(other, "room-2"); err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	if a.SessionKey() != "room-1" {
		t.Error("Bind should record the session on the connection")
	}

	members := r.SessionConnections("room-1")
	if len(members) != 2 {
		t.Fatalf("Expected 2 connections in room-1, got %d", len(members))
	}
	if len(r.SessionConnections("room-2")) != 1 {
		t.Error("Expected 1 connection in room-2")
	}
	if r.SessionConnections("empty") != nil {
		t.Error("Unknown session should return nil")
	}
}

func TestRegistry_UnbindLeavesRegistered(t *testing.T) {
	r := NewRegistry()

	conn := &stubConn{id: "c1"}
	r.Register(conn)
	r.Bind(conn, "room-1")

	r.Unbind(conn)

	if conn.SessionKey() != "" {
		t.Error("Unbind should clear the session binding")
	}
	if len(r.SessionConnections("room-1")) != 0 {
		t.Error("Unbound connection should leave the session group")
	}
	if _, ok := r.Get("c1"); !ok {
		t.Error("Unbind must not unregister the connection")
	}

	// empty groups are dropped
	if got := r.Stats()["bound_sessions"]; got != 0 {
		t.Errorf("Expected 0 bound sessions, got %d", got)
	}
}

func TestRegistry_UnregisterRemovesFromSession(t *testing.T) {
	r := NewRegistry()

	conn := &stubConn{id: "c1"}
	r.Register(conn)
	r.Bind(conn, "room-1")

	r.Unregister(conn)

	if _, ok := r.Get("c1"); ok {
		t.Error("Unregistered connection should be gone")
	}
	if len(r.SessionConnections("room-1")) != 0 {
		t.Error("Unregister should remove the connection from its session")
	}

	// repeat unregister is a no-op
	r.Unregister(conn)
	r.Unregister(nil)
}

func TestRegistry_Stats(t *testing.T) {
	r := NewRegistry()

	a := &stubConn{id: "c1"}
	b := &stubConn{id: "c2"}
	r.Register(a)
	r.Register(b)
	r.Bind(a, "room-1")

	stats := r.Stats()
	if stats["total_connections"] != 2 {
		t.Errorf("Expected 2 total connections, got %d", stats["total_connections"])
	}
	if stats["bound_sessions"] != 1 {
		t.Errorf("Expected 1 bound session, got %d", stats["bound_sessions"])
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			conn := &stubConn{id: string(rune('a' + n))}
			r.Register(conn)
			r.Bind(conn, "room-1")
			r.SessionConnections("room-1")
			r.Stats()
		}(i)
	}
	wg.Wait()

	if got := r.Stats()["total_connections"]; got != 20 {
		t.Errorf("Expected 20 connections, got %d", got)
	}
	if got := len(r.SessionConnections("room-1")); got != 20 {
		t.Errorf("Expected 20 in session, got %d", got)
	}
}
