package types

import (
	"time"
)

// Participant roles. Role is declared by the client at join time and is a
// capability flag, not an enforced permission.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Participant is one live connection's membership record in a session.
// The connection id is the sole identity; a reconnecting client receives a
// new id and must join again.
type Participant struct {
	ConnectionID string    `json:"connection_id"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	JoinedAt     time.Time `json:"joined_at"`
}

// Poll is a multiple-choice question with a countdown. At most one poll per
// session has no ended record at any time.
type Poll struct {
	ID               string    `json:"id"`
	Question         string    `json:"question"`
	Options          []string  `json:"options"`
	TimeLimitSeconds int       `json:"time_limit_seconds"`
	CreatedAt        time.Time `json:"created_at"`
}

// PollRecord is an ended poll with its frozen results.
type PollRecord struct {
	Poll
	Results Tally     `json:"results"`
	EndedAt time.Time `json:"ended_at"`
}

// Tally maps option index to vote count for the active poll.
type Tally map[int]int

// Clone returns an independent copy safe to hand to other goroutines.
func (t Tally) Clone() Tally {
	out := make(Tally, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Total returns the sum of all vote counts.
func (t Tally) Total() int {
	total := 0
	for _, v := range t {
		total += v
	}
	return total
}

// ChatMessage is immutable once appended; ordering is arrival order.
type ChatMessage struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Text        string    `json:"text"`
	SentAt      time.Time `json:"sent_at"`
}

// Snapshot is the full state of a session as sent to a joining or querying
// client. All slices and maps are copies owned by the receiver.
type Snapshot struct {
	Key          string         `json:"key"`
	Participants []*Participant `json:"participants"`
	ActivePoll   *Poll          `json:"active_poll,omitempty"`
	Tally        Tally          `json:"tally"`
	PollHistory  []*PollRecord  `json:"poll_history"`
	ChatMessages []*ChatMessage `json:"chat_messages"`
}
