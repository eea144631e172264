package types

import "time"

// Config is the assistd configuration, loaded from JSONC files and
// environment overrides.
type Config struct {
	// Schema reference (for editor support)
	Schema string `json:"$schema,omitempty"`

	Debug bool `json:"debug,omitempty"`

	Server   ServerConfig   `json:"server"`
	Log      LogConfig      `json:"log"`
	LLM      LLMConfig      `json:"llm"`
	Sandbox  SandboxConfig  `json:"sandbox"`
	Commands CommandsConfig `json:"commands"`
	Session  SessionConfig  `json:"session"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string   `json:"host,omitempty"`
	Port        int      `json:"port,omitempty"`
	CORSOrigins []string `json:"cors_origins,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Pretty bool   `json:"pretty,omitempty"`
}

// LLMConfig holds inference backend settings.
type LLMConfig struct {
	// BaseURL is the OpenAI-compatible endpoint of the backend
	// (for Ollama: http://localhost:11434/v1).
	BaseURL       string  `json:"base_url,omitempty"`
	Model         string  `json:"model,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	MaxTokens     int     `json:"max_tokens,omitempty"`
	ContextWindow int     `json:"context_window,omitempty"`
}

// SandboxConfig holds file-system tool settings.
type SandboxConfig struct {
	Path              string   `json:"path,omitempty"`
	MaxFileSizeMB     int      `json:"max_file_size_mb,omitempty"`
	AllowedExtensions []string `json:"allowed_extensions,omitempty"`
}

// CommandsConfig holds system-command tool settings.
type CommandsConfig struct {
	Enabled        bool     `json:"enabled,omitempty"`
	Allowed        []string `json:"allowed,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty"`
}

// SessionConfig holds session lifecycle settings.
type SessionConfig struct {
	TimeoutMinutes       int `json:"timeout_minutes,omitempty"`
	SweepIntervalMinutes int `json:"sweep_interval_minutes,omitempty"`
}

// SessionTimeout returns the configured idle timeout.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.Session.TimeoutMinutes) * time.Minute
}

// SweepInterval returns the configured expiry sweep interval.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Session.SweepIntervalMinutes) * time.Minute
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Sandbox.MaxFileSizeMB) * 1024 * 1024
}

// CommandTimeout returns the system-command execution timeout.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.Commands.TimeoutSeconds) * time.Second
}
