// Package types provides the core data types for the assistd server.
package types

import "time"

// Session is a caller-visible handle to one ongoing interaction. Each
// session owns exactly one conversation for its whole lifetime.
type Session struct {
	ID             string    `json:"session_id"`
	ConversationID string    `json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivity   time.Time `json:"last_activity"`
	MessageCount   int       `json:"message_count"`
	Active         bool      `json:"active"`
}

// IdleFor reports how long the session has been untouched.
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastActivity)
}

// Conversation is the ordered message history behind a session. Messages
// are append-only; insertion order is the chat history.
type Conversation struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}
