// Package ws wraps gorilla/websocket connections behind the ClientConn
// interface and tracks them in a registry keyed by connection id and
// session.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Connection wraps a WebSocket peer. All writes go through a single writer
// goroutine fed by a buffered channel, so a slow client backs up only its
// own buffer and never the session's event handling.
type Connection struct {
	conn         *websocket.Conn
	connectionID string
	writeCh      chan []byte
	writeTimeout time.Duration
	sessionKey   string
	ctx          context.Context
	cancel       context.CancelFunc
	closeOnce    sync.Once
	mu           sync.RWMutex // guards sessionKey
}

// NewConnection creates a connection wrapper with a fresh server-assigned id
// and starts its writer goroutine.
func NewConnection(conn *websocket.Conn, bufferSize int, writeTimeout time.Duration) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		conn:         conn,
		connectionID: uuid.New().String(),
		writeCh:      make(chan []byte, bufferSize),
		writeTimeout: writeTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}

	go c.writeLoop()

	return c
}

// writeCh is never closed: closing it would let a concurrent WriteJSON panic
// on send. The writer cancels the context on a write error instead, and
// queued messages are dropped with the channel when the connection dies.
func (c *Connection) writeLoop() {
	for {
		select {
		case data := <-c.writeCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				c.cancel()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.cancel()
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// WriteJSON queues a JSON message for the peer. It fails fast when the
// connection is closed or the write buffer stays full past the write
// timeout, so broadcast loops cannot stall on one dead client.
func (c *Connection) WriteJSON(v interface{}) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	data, err := json.Marshal(v)
	if err != nil {
		return ErrInvalidJSON
	}

	select {
	case c.writeCh <- data:
		return nil
	case <-time.After(c.writeTimeout):
		return ErrWriteTimeout
	case <-c.ctx.Done():
		return ErrConnectionClosed
	}
}

// Close shuts the connection down exactly once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}

// ConnectionID returns the server-assigned id for this connection.
func (c *Connection) ConnectionID() string {
	return c.connectionID
}

// SessionKey returns the bound session key, or "" when unbound.
func (c *Connection) SessionKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionKey
}

// BindSession records the session this connection joined.
func (c *Connection) BindSession(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionKey = key
}

// UnbindSession clears the session binding after a leave or kick.
func (c *Connection) UnbindSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionKey = ""
}
