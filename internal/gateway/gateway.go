// Package gateway bridges client events to the session core. It decodes and
// validates inbound events, invokes the membership, poll, and chat
// operations, and fans the results out to the right audience: the requester,
// the whole session, or a single targeted connection.
package gateway

import (
	"encoding/json"
	"log"

	"pollroom/internal/session"
	"pollroom/pkg/interfaces"
	"pollroom/pkg/types"
)

// Gateway routes inbound events to core operations and emits the resulting
// state to affected clients. Per-session serialization is provided by the
// session's own mutex; the gateway holds no lock while writing to clients.
type Gateway struct {
	store    *session.Store
	registry interfaces.ConnRegistry
	timers   *pollTimers

	maxTimeLimitSeconds int
}

// NewGateway creates a gateway over a session store and a connection
// registry. maxTimeLimitSeconds bounds the poll countdown a client may
// request.
func NewGateway(store *session.Store, registry interfaces.ConnRegistry, maxTimeLimitSeconds int) *Gateway {
	g := &Gateway{
		store:               store,
		registry:            registry,
		maxTimeLimitSeconds: maxTimeLimitSeconds,
	}
	g.timers = newPollTimers(g.expirePoll)
	return g
}

// Shutdown cancels all outstanding poll timers.
func (g *Gateway) Shutdown() {
	g.timers.Shutdown()
}

// HandleEvent dispatches one inbound event. Rejections go back to the
// originating connection only; they are never broadcast.
func (g *Gateway) HandleEvent(conn interfaces.ClientConn, event *types.Event) {
	switch event.Type {
	case types.EventJoin:
		g.handleJoin(conn, event)
	case types.EventCreatePoll:
		g.handleCreatePoll(conn, event)
	case types.EventSubmitAnswer:
		g.handleSubmitAnswer(conn, event)
	case types.EventEndPoll:
		g.handleEndPoll(conn)
	case types.EventSendMessage:
		g.handleSendMessage(conn, event)
	case types.EventKickStudent:
		g.handleKickStudent(conn, event)
	case types.EventGetSession:
		g.handleGetSession(conn)
	default:
		g.reject(conn, types.RejectBadPayload, "unknown event type")
	}
}

// Disconnect handles a transport-level close. The connection leaves its
// session, and the remaining participants are told. Unknown connections are
// a no-op.
func (g *Gateway) Disconnect(conn interfaces.ClientConn) {
	key := conn.SessionKey()
	if key == "" {
		return
	}

	sess, ok := g.store.Get(key)
	if !ok {
		return
	}

	participant, err := sess.Leave(conn.ConnectionID())
	if err != nil {
		return
	}

	log.Printf("Participant left: session=%s name=%s", key, participant.DisplayName)
	g.broadcastExcept(key, conn.ConnectionID(), types.EventParticipantLeft, participant)
}

func (g *Gateway) handleJoin(conn interfaces.ClientConn, event *types.Event) {
	var payload types.JoinPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		g.reject(conn, types.RejectBadPayload, "malformed join payload")
		return
	}
	if !types.IsValidSessionKey(event.SessionKey) {
		g.reject(conn, types.RejectBadPayload, types.ErrInvalidSessionKey.Error())
		return
	}
	if err := payload.Validate(); err != nil {
		g.reject(conn, types.RejectBadPayload, err.Error())
		return
	}
	if conn.SessionKey() != "" {
		g.reject(conn, types.RejectBadPayload, "already joined a session")
		return
	}

	sess := g.store.GetOrCreate(event.SessionKey)
	participant, err := sess.Join(conn.ConnectionID(), payload.DisplayName, payload.Role)
	if err != nil {
		g.rejectErr(conn, err)
		return
	}

	if err := g.registry.Bind(conn, event.SessionKey); err != nil {
		// connection vanished between upgrade and join; roll the member back
		_, _ = sess.Leave(conn.ConnectionID())
		return
	}

	log.Printf("Participant joined: session=%s name=%s role=%s", event.SessionKey, payload.DisplayName, payload.Role)

	g.send(conn, types.EventSessionSnapshot, sess.Snapshot())
	g.broadcastExcept(event.SessionKey, conn.ConnectionID(), types.EventParticipantJoined, participant)
}

func (g *Gateway) handleCreatePoll(conn interfaces.ClientConn, event *types.Event) {
	sess, ok := g.joinedSession(conn)
	if !ok {
		return
	}

	var payload types.CreatePollPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		g.reject(conn, types.RejectBadPayload, "malformed create-poll payload")
		return
	}
	if err := payload.Validate(g.maxTimeLimitSeconds); err != nil {
		g.reject(conn, types.RejectBadPayload, err.Error())
		return
	}

	poll, err := sess.CreatePoll(payload.Question, payload.Options, payload.TimeLimitSeconds)
	if err != nil {
		g.rejectErr(conn, err)
		return
	}

	g.timers.Schedule(sess.Key(), poll.ID, poll.TimeLimitSeconds)
	log.Printf("Poll started: session=%s poll=%s question=%q", sess.Key(), poll.ID, poll.Question)

	g.broadcast(sess.Key(), types.EventPollStarted, poll)
}

func (g *Gateway) handleSubmitAnswer(conn interfaces.ClientConn, event *types.Event) {
	sess, ok := g.joinedSession(conn)
	if !ok {
		return
	}

	var payload types.SubmitAnswerPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		g.reject(conn, types.RejectBadPayload, "malformed submit-answer payload")
		return
	}

	tally, err := sess.SubmitAnswer(conn.ConnectionID(), payload.OptionIndex)
	if err != nil {
		g.rejectErr(conn, err)
		return
	}

	g.broadcast(sess.Key(), types.EventTallyUpdated, tally)
}

func (g *Gateway) handleEndPoll(conn interfaces.ClientConn) {
	sess, ok := g.joinedSession(conn)
	if !ok {
		return
	}

	record, err := sess.EndPoll()
	if err != nil {
		g.rejectErr(conn, err)
		return
	}

	g.timers.Cancel(sess.Key())
	log.Printf("Poll ended: session=%s poll=%s votes=%d", sess.Key(), record.ID, record.Results.Total())

	g.broadcast(sess.Key(), types.EventPollHistoryUpdated, sess.PollHistory())
}

// expirePoll is the auto-end path invoked by a poll timer. It shares
// EndPollByID with nothing else, so a stale timer racing a manual end or a
// newer poll simply loses and nothing is broadcast twice.
func (g *Gateway) expirePoll(sessionKey, pollID string) {
	sess, ok := g.store.Get(sessionKey)
	if !ok {
		return
	}

	record, err := sess.EndPollByID(pollID)
	if err != nil {
		return
	}

	log.Printf("Poll expired: session=%s poll=%s votes=%d", sessionKey, record.ID, record.Results.Total())
	g.broadcast(sessionKey, types.EventPollHistoryUpdated, sess.PollHistory())
}

func (g *Gateway) handleSendMessage(conn interfaces.ClientConn, event *types.Event) {
	sess, ok := g.joinedSession(conn)
	if !ok {
		return
	}

	var payload types.SendMessagePayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		g.reject(conn, types.RejectBadPayload, "malformed send-message payload")
		return
	}
	if err := payload.Validate(); err != nil {
		g.reject(conn, types.RejectBadPayload, err.Error())
		return
	}

	// the author is the sender's own membership record, not a payload field
	participant, ok := sess.Participant(conn.ConnectionID())
	if !ok {
		g.reject(conn, types.RejectNotFound, session.ErrParticipantNotFound.Error())
		return
	}

	msg := sess.AppendChat(participant.DisplayName, payload.Text)
	g.broadcast(sess.Key(), types.EventChatMessage, msg)
}

func (g *Gateway) handleKickStudent(conn interfaces.ClientConn, event *types.Event) {
	sess, ok := g.joinedSession(conn)
	if !ok {
		return
	}

	var payload types.KickPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		g.reject(conn, types.RejectBadPayload, "malformed kick-student payload")
		return
	}
	if err := payload.Validate(); err != nil {
		g.reject(conn, types.RejectBadPayload, err.Error())
		return
	}

	removed, err := sess.Kick(payload.TargetConnectionID)
	if err != nil {
		// no-op on unknown targets: the requester hears about it, nobody
		// else does
		g.rejectErr(conn, err)
		return
	}

	log.Printf("Participant kicked: session=%s name=%s", sess.Key(), removed.DisplayName)

	// the target gets a terminal signal and stops receiving session traffic
	if target, ok := g.registry.Get(payload.TargetConnectionID); ok {
		g.send(target, types.EventYouWereRemoved, nil)
		g.registry.Unbind(target)
	}

	g.broadcastExcept(sess.Key(), payload.TargetConnectionID, types.EventParticipantRemoved, removed)
}

func (g *Gateway) handleGetSession(conn interfaces.ClientConn) {
	sess, ok := g.joinedSession(conn)
	if !ok {
		return
	}
	g.send(conn, types.EventSessionSnapshot, sess.Snapshot())
}

// joinedSession resolves the caller's bound session, rejecting callers that
// have not joined one.
func (g *Gateway) joinedSession(conn interfaces.ClientConn) (*session.Session, bool) {
	key := conn.SessionKey()
	if key == "" {
		g.reject(conn, types.RejectNotJoined, "join a session first")
		return nil, false
	}
	sess, ok := g.store.Get(key)
	if !ok {
		g.reject(conn, types.RejectNotFound, session.ErrSessionNotFound.Error())
		return nil, false
	}
	return sess, true
}
