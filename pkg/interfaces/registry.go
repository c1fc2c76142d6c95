package interfaces

// ConnRegistry tracks live connections globally and per session. All
// methods are safe for concurrent use.
type ConnRegistry interface {
	// Register adds a connection to the global map. Registering a second
	// connection under the same id replaces the first.
	Register(conn ClientConn) error

	// Unregister removes the connection from the global map and from its
	// session group, if bound. Idempotent.
	Unregister(conn ClientConn)

	// Bind adds a registered connection to a session group and records the
	// binding on the connection.
	Bind(conn ClientConn, sessionKey string) error

	// Unbind removes the connection from its session group without
	// unregistering it. Idempotent.
	Unbind(conn ClientConn)

	// Get returns the connection for an id.
	Get(connectionID string) (ClientConn, bool)

	// SessionConnections returns all connections bound to a session.
	SessionConnections(sessionKey string) []ClientConn

	// Stats reports connection counts for the health surface.
	Stats() map[string]int
}
