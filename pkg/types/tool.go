package types

import "time"

// ToolCategory groups tools by capability area.
type ToolCategory string

const (
	CategoryFileSystem ToolCategory = "file_system"
	CategoryWeb        ToolCategory = "web"
	CategorySystem     ToolCategory = "system"
	CategoryUtility    ToolCategory = "utility"
)

// DangerLevel classifies the blast radius of a tool.
type DangerLevel string

const (
	DangerSafe      DangerLevel = "safe"
	DangerCaution   DangerLevel = "caution"
	DangerDangerous DangerLevel = "dangerous"
)

// ToolParameter describes one declared parameter of a tool.
type ToolParameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// ToolMetadata is the static declaration a tool registers with. Registered
// once at startup, read-only thereafter.
type ToolMetadata struct {
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	Category             ToolCategory    `json:"category"`
	Parameters           []ToolParameter `json:"parameters"`
	DangerLevel          DangerLevel     `json:"danger_level"`
	RequiresConfirmation bool            `json:"requires_confirmation"`
	Examples             []string        `json:"examples,omitempty"`
}

// ToolCall is a structured invocation request parsed out of model text.
// Ephemeral: produced by the parser, consumed by the executor, retained
// only inside the message metadata that references it.
type ToolCall struct {
	ToolName             string            `json:"tool_name"`
	Parameters           map[string]string `json:"parameters"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
}

// ToolResult is the outcome of one tool invocation.
type ToolResult struct {
	Success       bool           `json:"success"`
	Output        any            `json:"output,omitempty"`
	Error         string         `json:"error,omitempty"`
	ExecutionTime time.Duration  `json:"execution_time"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}
