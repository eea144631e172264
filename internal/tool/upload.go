package tool

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/assistd-ai/assistd/pkg/types"
)

// FileUploadTool stores an uploaded file in the sandbox. The upload HTTP
// handler feeds it base64 content; saved names are prefixed with a ULID so
// repeated uploads never collide.
type FileUploadTool struct{}

// NewFileUploadTool creates a file_upload tool.
func NewFileUploadTool() *FileUploadTool { return &FileUploadTool{} }

func (t *FileUploadTool) Metadata() types.ToolMetadata {
	return types.ToolMetadata{
		Name:        "file_upload",
		Description: "Store an uploaded file in the sandbox",
		Category:    types.CategoryFileSystem,
		Parameters: []types.ToolParameter{
			{Name: "filename", Type: "string", Description: "Original file name", Required: true},
			{Name: "content", Type: "string", Description: "Base64-encoded file content", Required: true},
		},
		DangerLevel:          types.DangerCaution,
		RequiresConfirmation: false,
	}
}

func (t *FileUploadTool) Execute(ctx context.Context, toolCtx *Context, params map[string]string) (any, error) {
	filename := filepath.Base(strings.TrimSpace(params["filename"]))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, fmt.Errorf("filename is required")
	}
	if err := toolCtx.Sandbox.CheckExtension(filename); err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(params["content"])
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if max := toolCtx.Sandbox.MaxBytes(); max > 0 && int64(len(data)) > max {
		return nil, fmt.Errorf("file too large: %d bytes", len(data))
	}

	savedAs := fmt.Sprintf("%s_%s", strings.ToLower(ulid.Make().String()[:10]), filename)
	path, err := toolCtx.Sandbox.Resolve(savedAs)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("save file: %w", err)
	}

	return map[string]any{
		"original_name": filename,
		"saved_as":      savedAs,
		"size":          len(data),
	}, nil
}
