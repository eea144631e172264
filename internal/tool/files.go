package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/assistd-ai/assistd/pkg/types"
)

// ReadFileTool reads a file from the sandbox.
type ReadFileTool struct{}

// NewReadFileTool creates a read_file tool.
func NewReadFileTool() *ReadFileTool { return &ReadFileTool{} }

func (t *ReadFileTool) Metadata() types.ToolMetadata {
	return types.ToolMetadata{
		Name:        "read_file",
		Description: "Read the contents of a file from the sandbox",
		Category:    types.CategoryFileSystem,
		Parameters: []types.ToolParameter{
			{Name: "path", Type: "string", Description: "Path relative to the sandbox root", Required: true},
		},
		DangerLevel:          types.DangerSafe,
		RequiresConfirmation: false,
		Examples:             []string{`[TOOL: read_file("notes.txt")]`},
	}
}

func (t *ReadFileTool) Execute(ctx context.Context, toolCtx *Context, params map[string]string) (any, error) {
	path, err := toolCtx.Sandbox.Resolve(params["path"])
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", params["path"])
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", params["path"])
	}
	if max := toolCtx.Sandbox.MaxBytes(); max > 0 && info.Size() > max {
		return nil, fmt.Errorf("file too large: %d bytes", info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return map[string]any{
		"path":    params["path"],
		"content": string(data),
		"size":    info.Size(),
	}, nil
}

// WriteFileTool writes a file into the sandbox. Confirmation-gated.
type WriteFileTool struct{}

// NewWriteFileTool creates a write_file tool.
func NewWriteFileTool() *WriteFileTool { return &WriteFileTool{} }

func (t *WriteFileTool) Metadata() types.ToolMetadata {
	return types.ToolMetadata{
		Name:        "write_file",
		Description: "Write content to a file in the sandbox, overwriting any existing file",
		Category:    types.CategoryFileSystem,
		Parameters: []types.ToolParameter{
			{Name: "path", Type: "string", Description: "Path relative to the sandbox root", Required: true},
			{Name: "content", Type: "string", Description: "Content to write"},
		},
		DangerLevel:          types.DangerCaution,
		RequiresConfirmation: true,
		Examples:             []string{`[TOOL: write_file("notes.txt", "hello")]`},
	}
}

func (t *WriteFileTool) Execute(ctx context.Context, toolCtx *Context, params map[string]string) (any, error) {
	path, err := toolCtx.Sandbox.Resolve(params["path"])
	if err != nil {
		return nil, err
	}
	if err := toolCtx.Sandbox.CheckExtension(path); err != nil {
		return nil, err
	}

	content := params["content"]
	if max := toolCtx.Sandbox.MaxBytes(); max > 0 && int64(len(content)) > max {
		return nil, fmt.Errorf("content too large: %d bytes", len(content))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}

	return map[string]any{
		"path":  params["path"],
		"bytes": len(content),
	}, nil
}

// DeleteFileTool removes a file from the sandbox. Confirmation-gated.
type DeleteFileTool struct{}

// NewDeleteFileTool creates a delete_file tool.
func NewDeleteFileTool() *DeleteFileTool { return &DeleteFileTool{} }

func (t *DeleteFileTool) Metadata() types.ToolMetadata {
	return types.ToolMetadata{
		Name:        "delete_file",
		Description: "Delete a file from the sandbox",
		Category:    types.CategoryFileSystem,
		Parameters: []types.ToolParameter{
			{Name: "path", Type: "string", Description: "Path relative to the sandbox root", Required: true},
		},
		DangerLevel:          types.DangerDangerous,
		RequiresConfirmation: true,
		Examples:             []string{`[TOOL: delete_file("old_notes.txt")]`},
	}
}

func (t *DeleteFileTool) Execute(ctx context.Context, toolCtx *Context, params map[string]string) (any, error) {
	path, err := toolCtx.Sandbox.Resolve(params["path"])
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", params["path"])
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", params["path"])
	}

	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("delete file: %w", err)
	}

	return map[string]any{"path": params["path"], "deleted": true}, nil
}

// ListFilesTool lists sandbox files matching a glob pattern.
type ListFilesTool struct{}

// NewListFilesTool creates a list_files tool.
func NewListFilesTool() *ListFilesTool { return &ListFilesTool{} }

func (t *ListFilesTool) Metadata() types.ToolMetadata {
	return types.ToolMetadata{
		Name:        "list_files",
		Description: "List files in the sandbox matching a glob pattern",
		Category:    types.CategoryFileSystem,
		Parameters: []types.ToolParameter{
			{Name: "pattern", Type: "string", Description: "Glob pattern, defaults to **/*"},
		},
		DangerLevel:          types.DangerSafe,
		RequiresConfirmation: false,
		Examples:             []string{`[TOOL: list_files("*.md")]`},
	}
}

func (t *ListFilesTool) Execute(ctx context.Context, toolCtx *Context, params map[string]string) (any, error) {
	pattern := params["pattern"]
	if pattern == "" {
		pattern = "**/*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern: %s", pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(toolCtx.Sandbox.Root()), pattern)
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}

	files := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(filepath.Join(toolCtx.Sandbox.Root(), m))
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, map[string]any{
			"path":     m,
			"size":     info.Size(),
			"modified": info.ModTime(),
		})
	}

	return map[string]any{
		"pattern": pattern,
		"count":   len(files),
		"files":   files,
	}, nil
}
