package event

import "github.com/assistd-ai/assistd/pkg/types"

// SessionCreatedData is the data for session.created events.
type SessionCreatedData struct {
	Info *types.Session `json:"info"`
}

// SessionEndedData is the data for session.ended events.
type SessionEndedData struct {
	SessionID string `json:"session_id"`
}

// SessionExpiredData is the data for session.expired events.
type SessionExpiredData struct {
	SessionID string `json:"session_id"`
	IdleFor   string `json:"idle_for"`
}

// MessageCreatedData is the data for message.created events.
type MessageCreatedData struct {
	SessionID string         `json:"session_id"`
	Info      *types.Message `json:"info"`
}

// ToolExecutedData is the data for tool.executed events.
type ToolExecutedData struct {
	SessionID string `json:"session_id"`
	ToolName  string `json:"tool_name"`
	Success   bool   `json:"success"`
	Duration  string `json:"duration"`
}

// FileUploadedData is the data for file.uploaded events.
type FileUploadedData struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
	SavedAs   string `json:"saved_as"`
	Size      int64  `json:"size"`
}
