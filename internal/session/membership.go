package session

import (
	"strings"
	"time"

	"pollroom/pkg/types"
)

// Join adds a participant to the session. The display name must be unique
// (case-insensitively) among currently connected participants; names freed
// by a leave or kick may be reused immediately.
func (s *Session) Join(connectionID, displayName, role string) (*types.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.participants {
		if strings.EqualFold(p.DisplayName, displayName) {
			return nil, ErrDuplicateName
		}
	}

	p := &types.Participant{
		ConnectionID: connectionID,
		DisplayName:  displayName,
		Role:         role,
		JoinedAt:     time.Now(),
	}
	s.participants = append(s.participants, p)
	return p, nil
}

// Leave removes the participant with the given connection id. The removed
// record is returned for notification purposes; ErrParticipantNotFound means
// the connection was never a member and callers must treat it as a no-op.
func (s *Session) Leave(connectionID string) (*types.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(connectionID)
}

// Kick removes a participant on the teacher's request. Removal semantics are
// identical to Leave; the distinct signal to the removed client is the
// gateway's responsibility.
func (s *Session) Kick(targetConnectionID string) (*types.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(targetConnectionID)
}

// Participant returns the membership record for a connection id.
func (s *Session) Participant(connectionID string) (*types.Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.participants {
		if p.ConnectionID == connectionID {
			cp := *p
			return &cp, true
		}
	}
	return nil, false
}

func (s *Session) removeLocked(connectionID string) (*types.Participant, error) {
	for i, p := range s.participants {
		if p.ConnectionID == connectionID {
			s.participants = append(s.participants[:i], s.participants[i+1:]...)
			return p, nil
		}
	}
	return nil, ErrParticipantNotFound
}
