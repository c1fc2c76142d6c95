package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"pollroom/internal/config"
	"pollroom/pkg/interfaces"
	"pollroom/pkg/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// all origins accepted; role is self-asserted and there is no
		// credential to protect at the handshake
		return true
	},
	HandshakeTimeout: 10 * time.Second,
}

// EventSink receives decoded client events and transport-level disconnects.
// The gateway implements it.
type EventSink interface {
	HandleEvent(conn interfaces.ClientConn, event *types.Event)
	Disconnect(conn interfaces.ClientConn)
}

// Handler upgrades HTTP requests to WebSocket connections and pumps their
// events into the sink.
type Handler struct {
	registry *Registry
	sink     EventSink
	cfg      *config.WebSocketConfig
}

// NewHandler creates a WebSocket handler.
func NewHandler(registry *Registry, sink EventSink, cfg *config.WebSocketConfig) *Handler {
	return &Handler{
		registry: registry,
		sink:     sink,
		cfg:      cfg,
	}
}

// HandleWebSocket upgrades the request, assigns a connection id, and runs
// the read loop until the peer goes away.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	wsConn := NewConnection(conn, h.cfg.BufferSize, h.cfg.WriteTimeout)

	if err := h.registry.Register(wsConn); err != nil {
		log.Printf("Failed to register connection: %v", err)
		_ = wsConn.Close()
		return
	}

	// report the server-assigned id so the client can be addressed (kicks)
	connected := &types.ServerEvent{
		Type:    types.EventConnected,
		Payload: types.ConnectedPayload{ConnectionID: wsConn.ConnectionID()},
	}
	if err := wsConn.WriteJSON(connected); err != nil {
		log.Printf("Failed to send connected event: %v", err)
		h.registry.Unregister(wsConn)
		_ = wsConn.Close()
		return
	}

	go h.handleConnection(wsConn)
}

// handleConnection owns the connection lifecycle: heartbeat, read pump, and
// cleanup. The transport-level close is reported to the sink as a leave.
func (h *Handler) handleConnection(conn *Connection) {
	defer func() {
		h.sink.Disconnect(conn)
		h.registry.Unregister(conn)
		_ = conn.Close()
	}()

	if err := conn.conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout)); err != nil {
		log.Printf("Failed to set read deadline: %v", err)
		return
	}
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})

	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(h.cfg.WriteTimeout)); err != nil {
					return
				}
			case <-conn.ctx.Done():
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error on %s: %v", conn.ConnectionID(), err)
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var event types.Event
		if err := json.Unmarshal(data, &event); err != nil || event.Type == "" {
			// malformed payloads are rejected at the boundary and never
			// reach the core components
			rejected := &types.ServerEvent{
				Type:    types.EventRejected,
				Payload: types.RejectedPayload{Code: types.RejectBadPayload, Detail: "malformed event"},
			}
			if err := conn.WriteJSON(rejected); err != nil {
				return
			}
			continue
		}

		h.sink.HandleEvent(conn, &event)
	}
}
