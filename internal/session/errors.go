package session

import "errors"

// Core rejection errors. All are recoverable and scoped to the offending
// request; none tears down a connection or a session.
var (
	ErrDuplicateName       = errors.New("display name already taken in this session")
	ErrParticipantNotFound = errors.New("participant not found in this session")
	ErrPollActive          = errors.New("a poll is already active")
	ErrNoActivePoll        = errors.New("no poll is active")
	ErrInvalidOption       = errors.New("option index out of range")
	ErrAlreadyAnswered     = errors.New("connection already answered this poll")
	ErrSessionNotFound     = errors.New("session not found")
)
