// Package session holds all per-session state and the invariants over it:
// membership with unique display names, the at-most-one-active-poll rule,
// exactly-once tallying, and ordered poll and chat history. It performs no
// I/O; fan-out is the gateway's job.
package session

import (
	"sync"
	"time"

	"pollroom/pkg/types"
)

// Session is one isolated poll/chat room. Every mutating method runs under
// the session mutex, so operations on the same session are serialized while
// distinct sessions proceed in parallel.
type Session struct {
	mu        sync.Mutex
	key       string
	createdAt time.Time

	participants []*types.Participant
	activePoll   *types.Poll
	tally        types.Tally
	voted        map[string]bool // connection ids that answered the active poll
	history      []*types.PollRecord
	chat         []*types.ChatMessage
}

// NewSession creates an empty session for a key.
func NewSession(key string) *Session {
	return &Session{
		key:       key,
		createdAt: time.Now(),
		tally:     make(types.Tally),
		voted:     make(map[string]bool),
	}
}

// Key returns the opaque session key.
func (s *Session) Key() string {
	return s.key
}

// ParticipantCount returns the number of currently connected participants.
func (s *Session) ParticipantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participants)
}

// HasActivePoll reports whether a poll is currently running.
func (s *Session) HasActivePoll() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePoll != nil
}

// Snapshot returns a deep copy of the full session state. The copy is safe
// to serialize outside the session lock.
func (s *Session) Snapshot() *types.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &types.Snapshot{
		Key:          s.key,
		Participants: make([]*types.Participant, len(s.participants)),
		Tally:        s.tally.Clone(),
		PollHistory:  make([]*types.PollRecord, len(s.history)),
		ChatMessages: make([]*types.ChatMessage, len(s.chat)),
	}
	for i, p := range s.participants {
		cp := *p
		snap.Participants[i] = &cp
	}
	if s.activePoll != nil {
		cp := *s.activePoll
		cp.Options = append([]string(nil), s.activePoll.Options...)
		snap.ActivePoll = &cp
	}
	for i, r := range s.history {
		snap.PollHistory[i] = copyRecord(r)
	}
	for i, m := range s.chat {
		cm := *m
		snap.ChatMessages[i] = &cm
	}
	return snap
}

// PollHistory returns a copy of the ended-poll history, oldest first.
func (s *Session) PollHistory() []*types.PollRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyHistoryLocked()
}

func (s *Session) copyHistoryLocked() []*types.PollRecord {
	out := make([]*types.PollRecord, len(s.history))
	for i, r := range s.history {
		out[i] = copyRecord(r)
	}
	return out
}

func copyRecord(r *types.PollRecord) *types.PollRecord {
	cp := *r
	cp.Options = append([]string(nil), r.Options...)
	cp.Results = r.Results.Clone()
	return &cp
}
