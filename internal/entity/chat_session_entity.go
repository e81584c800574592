package entity

import (
	"time"
)

// MaxConversationHistory bounds the messages kept per session.
const MaxConversationHistory = 20

type ChatSession struct {
	SessionId           string
	UserId              *string
	ConversationHistory []ChatMessage
	Preferences         map[string]interface{}
	CreatedAt           time.Time
	LastMessageAt       time.Time
	ExpiresAt           time.Time
}

// IsExpired reports whether the session is past its expiry at now.
func (s *ChatSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// AddMessage appends msg and drops the oldest entries beyond
// MaxConversationHistory.
func (s *ChatSession) AddMessage(msg ChatMessage) {
	s.ConversationHistory = append(s.ConversationHistory, msg)
	if over := len(s.ConversationHistory) - MaxConversationHistory; over > 0 {
		kept := make([]ChatMessage, MaxConversationHistory)
		copy(kept, s.ConversationHistory[over:])
		s.ConversationHistory = kept
	}
	s.LastMessageAt = msg.Timestamp
}

// RecentMessages returns up to limit of the newest messages, oldest first.
func (s *ChatSession) RecentMessages(limit int) []ChatMessage {
	if limit <= 0 || len(s.ConversationHistory) == 0 {
		return []ChatMessage{}
	}
	start := len(s.ConversationHistory) - limit
	if start < 0 {
		start = 0
	}
	out := make([]ChatMessage, len(s.ConversationHistory)-start)
	copy(out, s.ConversationHistory[start:])
	return out
}
