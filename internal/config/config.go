// Package config loads assistd configuration from JSONC files and
// environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/assistd-ai/assistd/pkg/types"
)

// Load loads configuration from multiple sources (priority order, later
// wins):
// 1. Built-in defaults
// 2. Global config (~/.config/assistd/assistd.json[c])
// 3. Working-directory config (assistd.json[c])
// 4. ASSISTD_CONFIG file
// 5. Environment variables (ASSISTD_*)
func Load(directory string) (*types.Config, error) {
	cfg := Default()

	loaded := make(map[string]bool)
	loadOnce := func(path string) {
		absPath, err := filepath.Abs(path)
		if err != nil || loaded[absPath] {
			return
		}
		if loadConfigFile(path, cfg) == nil {
			loaded[absPath] = true
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		globalDir := filepath.Join(home, ".config", "assistd")
		loadOnce(filepath.Join(globalDir, "assistd.json"))
		loadOnce(filepath.Join(globalDir, "assistd.jsonc"))
	}

	if directory != "" {
		loadOnce(filepath.Join(directory, "assistd.json"))
		loadOnce(filepath.Join(directory, "assistd.jsonc"))
	}

	if path := os.Getenv("ASSISTD_CONFIG"); path != "" {
		loadOnce(path)
	}

	applyEnvOverrides(cfg)

	if err := normalize(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the built-in configuration defaults. They mirror a
// single-user local deployment against an Ollama instance.
func Default() *types.Config {
	return &types.Config{
		Server: types.ServerConfig{
			Host:        "127.0.0.1",
			Port:        8000,
			CORSOrigins: []string{"http://localhost:8000", "http://127.0.0.1:8000"},
		},
		Log: types.LogConfig{
			Level: "INFO",
		},
		LLM: types.LLMConfig{
			BaseURL:       "http://localhost:11434/v1",
			Model:         "mistral:latest",
			Temperature:   0.7,
			MaxTokens:     2048,
			ContextWindow: 10,
		},
		Sandbox: types.SandboxConfig{
			Path:          "./sandbox",
			MaxFileSizeMB: 10,
			AllowedExtensions: []string{
				".txt", ".md", ".json", ".csv", ".log",
				".py", ".js", ".go", ".html", ".css",
			},
		},
		Commands: types.CommandsConfig{
			Enabled:        false,
			Allowed:        []string{"ls", "echo", "cat", "date", "find", "grep"},
			TimeoutSeconds: 30,
		},
		Session: types.SessionConfig{
			TimeoutMinutes:       60,
			SweepIntervalMinutes: 5,
		},
	}
}

// loadConfigFile loads a single config file with interpolation support.
func loadConfigFile(path string, cfg *types.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err // File doesn't exist, skip
	}

	// Strip JSONC comments, then resolve {env:VAR} placeholders
	data = jsonc.ToJSON(data)
	data = interpolate(data)

	return json.Unmarshal(data, cfg)
}

var envPattern = regexp.MustCompile(`\{env:([^}]+)\}`)

// interpolate replaces {env:VAR_NAME} placeholders with environment values.
func interpolate(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

// applyEnvOverrides applies ASSISTD_* environment variables on top of the
// file configuration.
func applyEnvOverrides(cfg *types.Config) {
	if v := os.Getenv("ASSISTD_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("ASSISTD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ASSISTD_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("ASSISTD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ASSISTD_DEBUG"); v != "" {
		cfg.Debug = isTruthy(v)
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.LLM.BaseURL = strings.TrimSuffix(v, "/") + "/v1"
	}
	if v := os.Getenv("ASSISTD_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("ASSISTD_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("ASSISTD_SANDBOX_PATH"); v != "" {
		cfg.Sandbox.Path = v
	}
	if v := os.Getenv("ASSISTD_MAX_FILE_SIZE_MB"); v != "" {
		if mb, err := strconv.Atoi(v); err == nil {
			cfg.Sandbox.MaxFileSizeMB = mb
		}
	}
	if v := os.Getenv("ASSISTD_ENABLE_SYSTEM_COMMANDS"); v != "" {
		cfg.Commands.Enabled = isTruthy(v)
	}
	if v := os.Getenv("ASSISTD_ALLOWED_COMMANDS"); v != "" {
		cfg.Commands.Allowed = splitList(v)
	}
	if v := os.Getenv("ASSISTD_SESSION_TIMEOUT_MINUTES"); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			cfg.Session.TimeoutMinutes = m
		}
	}
}

// normalize validates and fixes up the merged configuration. The sandbox
// directory is created eagerly so the file tools always have a root.
func normalize(cfg *types.Config) error {
	abs, err := filepath.Abs(cfg.Sandbox.Path)
	if err != nil {
		return fmt.Errorf("resolve sandbox path: %w", err)
	}
	cfg.Sandbox.Path = abs
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("create sandbox directory: %w", err)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Session.TimeoutMinutes <= 0 {
		cfg.Session.TimeoutMinutes = 60
	}
	if cfg.Session.SweepIntervalMinutes <= 0 {
		cfg.Session.SweepIntervalMinutes = 5
	}
	if cfg.LLM.ContextWindow <= 0 {
		cfg.LLM.ContextWindow = 10
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
