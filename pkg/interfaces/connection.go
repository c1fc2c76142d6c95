package interfaces

// ClientConn is a live client connection as seen by the gateway and API
// layers. Implementations must make WriteJSON safe for concurrent use and
// must never block indefinitely on a slow peer.
type ClientConn interface {
	// ConnectionID returns the server-assigned id for this connection.
	ConnectionID() string

	// SessionKey returns the session this connection is bound to, or ""
	// before a successful join and after removal.
	SessionKey() string

	// BindSession records the session this connection belongs to.
	BindSession(key string)

	// UnbindSession clears the session binding.
	UnbindSession()

	// WriteJSON sends a JSON-encoded message to the client.
	WriteJSON(v interface{}) error

	// Close tears down the connection and releases its resources.
	Close() error
}
