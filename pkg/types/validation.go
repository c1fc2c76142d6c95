package types

import (
	"regexp"
	"strings"
)

var sessionKeyRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// IsValidSessionKey checks the opaque session key format.
func IsValidSessionKey(key string) bool {
	if len(key) < 1 || len(key) > 64 {
		return false
	}
	return sessionKeyRegex.MatchString(key)
}

// IsValidRole checks the self-asserted role value.
func IsValidRole(role string) bool {
	return role == RoleTeacher || role == RoleStudent
}

// Validate checks a join payload. Display names are free-form but must not
// be blank or unreasonably long; uniqueness is the membership manager's job.
func (p *JoinPayload) Validate() error {
	name := strings.TrimSpace(p.DisplayName)
	if name == "" || len(p.DisplayName) > 50 {
		return ErrInvalidDisplayName
	}
	if !IsValidRole(p.Role) {
		return ErrInvalidRole
	}
	return nil
}

// Validate checks a poll definition against maxTimeLimit, the configured
// ceiling in seconds.
func (p *CreatePollPayload) Validate(maxTimeLimit int) error {
	if strings.TrimSpace(p.Question) == "" {
		return ErrEmptyQuestion
	}
	if len(p.Options) < 2 {
		return ErrTooFewOptions
	}
	for _, opt := range p.Options {
		if strings.TrimSpace(opt) == "" {
			return ErrEmptyOption
		}
	}
	if p.TimeLimitSeconds <= 0 || p.TimeLimitSeconds > maxTimeLimit {
		return ErrInvalidTimeLimit
	}
	return nil
}

// Validate checks a chat message body.
func (p *SendMessagePayload) Validate() error {
	if strings.TrimSpace(p.Text) == "" {
		return ErrEmptyMessage
	}
	if len(p.Text) > 2000 {
		return ErrMessageTooLong
	}
	return nil
}

// Validate checks a kick request.
func (p *KickPayload) Validate() error {
	if p.TargetConnectionID == "" {
		return ErrMissingTarget
	}
	return nil
}
