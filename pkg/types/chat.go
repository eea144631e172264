package types

// ChatRequest is the body of a send-message call.
type ChatRequest struct {
	SessionID   string   `json:"session_id,omitempty"`
	Message     string   `json:"message"`
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
}

// ChatResponse is the blocking-mode reply to a send-message call.
type ChatResponse struct {
	SessionID            string     `json:"session_id"`
	Message              *Message   `json:"message"`
	ToolCalls            []ToolCall `json:"tool_calls,omitempty"`
	RequiresConfirmation bool       `json:"requires_confirmation"`
}

// StreamEventType identifies one typed event in a streaming reply.
type StreamEventType string

const (
	StreamEventSession   StreamEventType = "session"
	StreamEventContent   StreamEventType = "content"
	StreamEventToolCalls StreamEventType = "tool_calls"
	StreamEventError     StreamEventType = "error"
	StreamEventDone      StreamEventType = "done"
)

// StreamEvent is one event in a streaming reply. The sequence per turn is:
// session (once), content (zero or more), tool_calls (zero or one),
// done (exactly once).
type StreamEvent struct {
	Type      StreamEventType `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	ToolCalls []ToolCall      `json:"tool_calls,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// ExecuteToolRequest is the body of a tool-execute call.
type ExecuteToolRequest struct {
	SessionID string   `json:"session_id"`
	ToolCall  ToolCall `json:"tool_call"`
	Confirm   bool     `json:"confirm"`
}

// ChatStats summarizes live chat state.
type ChatStats struct {
	ActiveSessions     int `json:"active_sessions"`
	TotalConversations int `json:"total_conversations"`
	TotalMessages      int `json:"total_messages"`
}

// ToolStats summarizes the registered tool set.
type ToolStats struct {
	TotalTools    int            `json:"total_tools"`
	ByCategory    map[string]int `json:"tools_by_category"`
	ByDangerLevel map[string]int `json:"tools_by_danger_level"`
	EnabledTools  int            `json:"enabled_tools"`
}
