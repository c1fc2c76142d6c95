package types

import "encoding/json"

// Inbound event types.
const (
	EventJoin         = "join"
	EventCreatePoll   = "create-poll"
	EventSubmitAnswer = "submit-answer"
	EventEndPoll      = "end-poll"
	EventSendMessage  = "send-message"
	EventKickStudent  = "kick-student"
	EventGetSession   = "get-session"
)

// Outbound event types.
const (
	EventConnected          = "connected"
	EventSessionSnapshot    = "session-snapshot"
	EventParticipantJoined  = "participant-joined"
	EventParticipantLeft    = "participant-left"
	EventParticipantRemoved = "participant-removed"
	EventYouWereRemoved     = "you-were-removed"
	EventPollStarted        = "poll-started"
	EventTallyUpdated       = "tally-updated"
	EventPollHistoryUpdated = "poll-history-updated"
	EventChatMessage        = "chat-message"
	EventRejected           = "rejected"
)

// Rejection codes surfaced to the offending connection only.
const (
	RejectDuplicateName   = "duplicate-name"
	RejectPollActive      = "poll-already-active"
	RejectNoActivePoll    = "no-active-poll"
	RejectInvalidOption   = "invalid-option"
	RejectAlreadyAnswered = "already-answered"
	RejectNotFound        = "not-found"
	RejectNotJoined       = "not-joined"
	RejectBadPayload      = "bad-payload"
)

// Event is the inbound wire envelope. The payload is decoded per event type
// after the envelope is validated.
type Event struct {
	Type       string          `json:"type"`
	SessionKey string          `json:"session_key,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// ServerEvent is the outbound wire envelope.
type ServerEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// JoinPayload carries the client-asserted identity for a join event.
type JoinPayload struct {
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// CreatePollPayload describes a new poll.
type CreatePollPayload struct {
	Question         string   `json:"question"`
	Options          []string `json:"options"`
	TimeLimitSeconds int      `json:"time_limit_seconds"`
}

// SubmitAnswerPayload carries a vote for the active poll.
type SubmitAnswerPayload struct {
	OptionIndex int `json:"option_index"`
}

// SendMessagePayload carries a chat message body. The author name comes from
// the sender's participant record, not the payload.
type SendMessagePayload struct {
	Text string `json:"text"`
}

// KickPayload names the connection to remove from the session.
type KickPayload struct {
	TargetConnectionID string `json:"target_connection_id"`
}

// ConnectedPayload reports the server-assigned connection id after upgrade.
type ConnectedPayload struct {
	ConnectionID string `json:"connection_id"`
}

// RejectedPayload is sent to a single connection when its request was
// refused. Rejections are never broadcast.
type RejectedPayload struct {
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}
