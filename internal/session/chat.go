package session

import (
	"time"

	"github.com/google/uuid"

	"pollroom/pkg/types"
)

// AppendChat appends a message to the session's chat history and returns it.
// The log is append-only and ordered by arrival; text validation is the
// caller's responsibility.
func (s *Session) AppendChat(displayName, text string) *types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := &types.ChatMessage{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		Text:        text,
		SentAt:      time.Now(),
	}
	s.chat = append(s.chat, msg)

	cp := *msg
	return &cp
}

// ChatMessages returns a copy of the chat history, oldest first.
func (s *Session) ChatMessages() []*types.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*types.ChatMessage, len(s.chat))
	for i, m := range s.chat {
		cm := *m
		out[i] = &cm
	}
	return out
}
