package types

import "errors"

// Boundary validation errors. These reject a payload before it reaches the
// core components; the core assumes validated shapes.
var (
	ErrInvalidSessionKey  = errors.New("session key must be 1-64 characters, alphanumeric + underscore/hyphen")
	ErrInvalidDisplayName = errors.New("display name must be 1-50 non-blank characters")
	ErrInvalidRole        = errors.New("role must be 'teacher' or 'student'")
	ErrEmptyQuestion      = errors.New("poll question cannot be empty")
	ErrTooFewOptions      = errors.New("poll requires at least 2 options")
	ErrEmptyOption        = errors.New("poll options cannot be blank")
	ErrInvalidTimeLimit   = errors.New("poll time limit must be positive")
	ErrEmptyMessage       = errors.New("chat message cannot be empty")
	ErrMessageTooLong     = errors.New("chat message exceeds 2000 characters")
	ErrMissingTarget      = errors.New("kick requires a target connection id")
)
