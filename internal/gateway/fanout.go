package gateway

import (
	"log"

	"pollroom/internal/session"
	"pollroom/pkg/interfaces"
	"pollroom/pkg/types"
)

// send delivers one event to a single connection. Delivery failures are
// logged, never propagated; the peer's read loop will notice a dead socket.
func (g *Gateway) send(conn interfaces.ClientConn, eventType string, payload interface{}) {
	event := &types.ServerEvent{Type: eventType, Payload: payload}
	if err := conn.WriteJSON(event); err != nil {
		log.Printf("Failed to deliver %s to %s: %v", eventType, conn.ConnectionID(), err)
	}
}

// broadcast delivers an event to every connection bound to a session. One
// failing connection does not stop delivery to the rest.
func (g *Gateway) broadcast(sessionKey, eventType string, payload interface{}) {
	g.broadcastExcept(sessionKey, "", eventType, payload)
}

// broadcastExcept is broadcast minus one connection id, used when the
// excluded party gets its own distinct event (snapshot, removal notice) or
// none at all.
func (g *Gateway) broadcastExcept(sessionKey, exceptConnectionID, eventType string, payload interface{}) {
	event := &types.ServerEvent{Type: eventType, Payload: payload}
	for _, conn := range g.registry.SessionConnections(sessionKey) {
		if conn.ConnectionID() == exceptConnectionID {
			continue
		}
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("Failed to deliver %s to %s: %v", eventType, conn.ConnectionID(), err)
		}
	}
}

// reject sends a typed rejection to the offending connection only.
func (g *Gateway) reject(conn interfaces.ClientConn, code, detail string) {
	g.send(conn, types.EventRejected, types.RejectedPayload{Code: code, Detail: detail})
}

// rejectErr maps a core error onto its wire code.
func (g *Gateway) rejectErr(conn interfaces.ClientConn, err error) {
	code := types.RejectBadPayload
	switch err {
	case session.ErrDuplicateName:
		code = types.RejectDuplicateName
	case session.ErrPollActive:
		code = types.RejectPollActive
	case session.ErrNoActivePoll:
		code = types.RejectNoActivePoll
	case session.ErrInvalidOption:
		code = types.RejectInvalidOption
	case session.ErrAlreadyAnswered:
		code = types.RejectAlreadyAnswered
	case session.ErrParticipantNotFound, session.ErrSessionNotFound:
		code = types.RejectNotFound
	}
	g.reject(conn, code, err.Error())
}
