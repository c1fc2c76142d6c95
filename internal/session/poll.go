package session

import (
	"time"

	"github.com/google/uuid"

	"pollroom/pkg/types"
)

// CreatePoll starts a new poll and resets the live tally and the voted set.
// Input shape validation (non-empty question, >= 2 options, positive time
// limit) happens at the boundary; the engine enforces only the
// single-active-poll invariant.
func (s *Session) CreatePoll(question string, options []string, timeLimitSeconds int) (*types.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activePoll != nil {
		return nil, ErrPollActive
	}

	poll := &types.Poll{
		ID:               uuid.New().String(),
		Question:         question,
		Options:          append([]string(nil), options...),
		TimeLimitSeconds: timeLimitSeconds,
		CreatedAt:        time.Now(),
	}
	s.activePoll = poll
	s.tally = make(types.Tally)
	s.voted = make(map[string]bool)

	cp := *poll
	cp.Options = append([]string(nil), poll.Options...)
	return &cp, nil
}

// SubmitAnswer records one vote on the active poll. Each connection id may
// contribute at most one vote per poll; repeat votes are rejected with
// ErrAlreadyAnswered. Returns a copy of the updated tally.
func (s *Session) SubmitAnswer(connectionID string, optionIndex int) (types.Tally, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activePoll == nil {
		return nil, ErrNoActivePoll
	}
	if optionIndex < 0 || optionIndex >= len(s.activePoll.Options) {
		return nil, ErrInvalidOption
	}
	if s.voted[connectionID] {
		return nil, ErrAlreadyAnswered
	}

	s.voted[connectionID] = true
	s.tally[optionIndex]++
	return s.tally.Clone(), nil
}

// EndPoll freezes the tally onto the active poll, stamps it, appends it to
// the history, and returns the session to idle. Redundant calls return
// ErrNoActivePoll, never a fatal condition; the timer expiry path and the
// teacher's explicit end both rely on that.
func (s *Session) EndPoll() (*types.PollRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endPollLocked()
}

// EndPollByID ends the active poll only if its id matches. The auto-end
// timer uses this so a stale expiry can never end a newer poll.
func (s *Session) EndPollByID(pollID string) (*types.PollRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activePoll == nil || s.activePoll.ID != pollID {
		return nil, ErrNoActivePoll
	}
	return s.endPollLocked()
}

func (s *Session) endPollLocked() (*types.PollRecord, error) {
	if s.activePoll == nil {
		return nil, ErrNoActivePoll
	}

	record := &types.PollRecord{
		Poll:    *s.activePoll,
		Results: s.tally.Clone(),
		EndedAt: time.Now(),
	}
	record.Options = append([]string(nil), s.activePoll.Options...)
	s.history = append(s.history, record)

	s.activePoll = nil
	s.tally = make(types.Tally)
	s.voted = make(map[string]bool)

	return copyRecord(record), nil
}
