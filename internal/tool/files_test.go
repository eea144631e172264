package tool

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToolContext(t *testing.T) *Context {
	return &Context{
		SessionID: "test-session",
		Sandbox:   NewSandbox(t.TempDir(), 1024*1024, nil),
	}
}

func TestWriteThenReadFile(t *testing.T) {
	toolCtx := newToolContext(t)

	_, err := NewWriteFileTool().Execute(context.Background(), toolCtx, map[string]string{
		"path":    "notes/todo.txt",
		"content": "buy milk",
	})
	require.NoError(t, err)

	out, err := NewReadFileTool().Execute(context.Background(), toolCtx, map[string]string{
		"path": "notes/todo.txt",
	})
	require.NoError(t, err)

	result := out.(map[string]any)
	assert.Equal(t, "buy milk", result["content"])
}

func TestReadFile_Missing(t *testing.T) {
	toolCtx := newToolContext(t)

	_, err := NewReadFileTool().Execute(context.Background(), toolCtx, map[string]string{
		"path": "nope.txt",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestReadFile_EscapeRejected(t *testing.T) {
	toolCtx := newToolContext(t)

	_, err := NewReadFileTool().Execute(context.Background(), toolCtx, map[string]string{
		"path": "../secrets.txt",
	})
	assert.Error(t, err)
}

func TestWriteFile_ContentSizeCap(t *testing.T) {
	toolCtx := &Context{Sandbox: NewSandbox(t.TempDir(), 8, nil)}

	_, err := NewWriteFileTool().Execute(context.Background(), toolCtx, map[string]string{
		"path":    "big.txt",
		"content": "way more than eight bytes",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestDeleteFile(t *testing.T) {
	toolCtx := newToolContext(t)
	path := filepath.Join(toolCtx.Sandbox.Root(), "gone.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	out, err := NewDeleteFileTool().Execute(context.Background(), toolCtx, map[string]string{
		"path": "gone.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, true, out.(map[string]any)["deleted"])

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDeleteFile_Missing(t *testing.T) {
	toolCtx := newToolContext(t)

	_, err := NewDeleteFileTool().Execute(context.Background(), toolCtx, map[string]string{
		"path": "never.txt",
	})
	assert.Error(t, err)
}

func TestListFiles_GlobPattern(t *testing.T) {
	toolCtx := newToolContext(t)
	root := toolCtx.Sandbox.Root()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "c.md"), []byte("x"), 0o644))

	out, err := NewListFilesTool().Execute(context.Background(), toolCtx, map[string]string{
		"pattern": "**/*.md",
	})
	require.NoError(t, err)

	result := out.(map[string]any)
	assert.Equal(t, 2, result["count"])
}

func TestListFiles_DefaultPattern(t *testing.T) {
	toolCtx := newToolContext(t)
	require.NoError(t, os.WriteFile(filepath.Join(toolCtx.Sandbox.Root(), "only.txt"), []byte("x"), 0o644))

	out, err := NewListFilesTool().Execute(context.Background(), toolCtx, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.(map[string]any)["count"])
}

func TestFileUpload_SavesWithPrefix(t *testing.T) {
	toolCtx := newToolContext(t)

	out, err := NewFileUploadTool().Execute(context.Background(), toolCtx, map[string]string{
		"filename": "report.txt",
		"content":  base64.StdEncoding.EncodeToString([]byte("contents")),
	})
	require.NoError(t, err)

	result := out.(map[string]any)
	assert.Equal(t, "report.txt", result["original_name"])
	assert.Equal(t, 8, result["size"])

	savedAs := result["saved_as"].(string)
	assert.NotEqual(t, "report.txt", savedAs)
	assert.Contains(t, savedAs, "report.txt")

	data, err := os.ReadFile(filepath.Join(toolCtx.Sandbox.Root(), savedAs))
	require.NoError(t, err)
	assert.Equal(t, "contents", string(data))
}

func TestFileUpload_StripsDirectoryComponents(t *testing.T) {
	toolCtx := newToolContext(t)

	out, err := NewFileUploadTool().Execute(context.Background(), toolCtx, map[string]string{
		"filename": "../../evil.txt",
		"content":  base64.StdEncoding.EncodeToString([]byte("x")),
	})
	require.NoError(t, err)

	assert.Equal(t, "evil.txt", out.(map[string]any)["original_name"])
}

func TestFileUpload_InvalidBase64(t *testing.T) {
	toolCtx := newToolContext(t)

	_, err := NewFileUploadTool().Execute(context.Background(), toolCtx, map[string]string{
		"filename": "a.txt",
		"content":  "not base64!!!",
	})
	assert.Error(t, err)
}

func TestFileUpload_SizeCap(t *testing.T) {
	toolCtx := &Context{Sandbox: NewSandbox(t.TempDir(), 4, nil)}

	_, err := NewFileUploadTool().Execute(context.Background(), toolCtx, map[string]string{
		"filename": "a.txt",
		"content":  base64.StdEncoding.EncodeToString([]byte("more than four")),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestFileUpload_ExtensionAllowlist(t *testing.T) {
	toolCtx := &Context{Sandbox: NewSandbox(t.TempDir(), 0, []string{".txt"})}

	_, err := NewFileUploadTool().Execute(context.Background(), toolCtx, map[string]string{
		"filename": "script.sh",
		"content":  base64.StdEncoding.EncodeToString([]byte("x")),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension not allowed")
}
