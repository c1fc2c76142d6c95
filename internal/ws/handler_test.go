package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pollroom/internal/config"
	"pollroom/pkg/interfaces"
	"pollroom/pkg/types"
)

// recordingSink captures everything the handler feeds it.
type recordingSink struct {
	mu          sync.Mutex
	events      []*types.Event
	disconnects []string
}

func (s *recordingSink) HandleEvent(conn interfaces.ClientConn, event *types.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) Disconnect(conn interfaces.ClientConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnects = append(s.disconnects, conn.ConnectionID())
}

func (s *recordingSink) eventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *recordingSink) disconnectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.disconnects)
}

func testWSConfig() *config.WebSocketConfig {
	return &config.WebSocketConfig{
		PingInterval: 100 * time.Millisecond,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: time.Second,
		BufferSize:   10,
	}
}

func startHandler(t *testing.T) (*Registry, *recordingSink, *websocket.Conn) {
	t.Helper()

	registry := NewRegistry()
	sink := &recordingSink{}
	handler := NewHandler(registry, sink, testWSConfig())

	srv := httptest.NewServer(http.HandlerFunc(handler.HandleWebSocket))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return registry, sink, client
}

// readEvent reads one server event off the client socket.
func readEvent(t *testing.T, client *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("Client read failed: %v", err)
	}
	var event map[string]json.RawMessage
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("Invalid event JSON: %v", err)
	}
	return event
}

func eventType(t *testing.T, event map[string]json.RawMessage) string {
	t.Helper()
	var typ string
	if err := json.Unmarshal(event["type"], &typ); err != nil {
		t.Fatalf("Event missing type: %v", err)
	}
	return typ
}

func TestHandler_SendsConnectedEvent(t *testing.T) {
	registry, _, client := startHandler(t)

	event := readEvent(t, client)
	if got := eventType(t, event); got != types.EventConnected {
		t.Fatalf("Expected %s first, got %s", types.EventConnected, got)
	}

	var payload types.ConnectedPayload
	if err := json.Unmarshal(event["payload"], &payload); err != nil {
		t.Fatalf("Invalid connected payload: %v", err)
	}
	if payload.ConnectionID == "" {
		t.Error("connected event should carry the server-assigned id")
	}

	if _, ok := registry.Get(payload.ConnectionID); !ok {
		t.Error("Connection should be registered under the reported id")
	}
}

func TestHandler_ForwardsEventsToSink(t *testing.T) {
	_, sink, client := startHandler(t)
	readEvent(t, client) // connected

	msg := `{"type":"get-session"}`
	if err := client.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("Client write failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for sink.eventCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("Event never reached the sink")
		case <-time.After(10 * time.Millisecond):
		}
	}

	sink.mu.Lock()
	got := sink.events[0]
	sink.mu.Unlock()
	if got.Type != types.EventGetSession {
		t.Errorf("Expected %s, got %s", types.EventGetSession, got.Type)
	}
}

func TestHandler_RejectsMalformedFrames(t *testing.T) {
	_, sink, client := startHandler(t)
	readEvent(t, client) // connected

	for _, frame := range []string{"not json", `{"payload":{}}`} {
		if err := client.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatalf("Client write failed: %v", err)
		}
		event := readEvent(t, client)
		if got := eventType(t, event); got != types.EventRejected {
			t.Fatalf("Expected %s for %q, got %s", types.EventRejected, frame, got)
		}
		var payload types.RejectedPayload
		if err := json.Unmarshal(event["payload"], &payload); err != nil {
			t.Fatalf("Invalid rejected payload: %v", err)
		}
		if payload.Code != types.RejectBadPayload {
			t.Errorf("Expected %s, got %s", types.RejectBadPayload, payload.Code)
		}
	}

	if sink.eventCount() != 0 {
		t.Error("Malformed frames must not reach the sink")
	}
}

func TestHandler_DisconnectReportedAndUnregistered(t *testing.T) {
	registry, sink, client := startHandler(t)

	event := readEvent(t, client)
	var payload types.ConnectedPayload
	if err := json.Unmarshal(event["payload"], &payload); err != nil {
		t.Fatalf("Invalid connected payload: %v", err)
	}

	client.Close()

	deadline := time.After(2 * time.Second)
	for sink.disconnectCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("Disconnect never reached the sink")
		case <-time.After(10 * time.Millisecond):
		}
	}

	sink.mu.Lock()
	gone := sink.disconnects[0]
	sink.mu.Unlock()
	if gone != payload.ConnectionID {
		t.Errorf("Expected disconnect for %s, got %s", payload.ConnectionID, gone)
	}

	if _, ok := registry.Get(payload.ConnectionID); ok {
		t.Error("Closed connection should be unregistered")
	}
}
