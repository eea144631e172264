package types

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Valid reports whether the role is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// Message is a single entry in a conversation. Immutable once appended.
// Metadata carries embedded tool-call records or tool-execution results.
type Message struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ContextMessage is the {role, content} projection sent to the inference
// backend. It deliberately strips IDs, timestamps, and metadata.
type ContextMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
