package tool

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Sandbox is the shared filesystem root the file tools operate in. Every
// path a tool resolves must stay inside the root.
type Sandbox struct {
	root        string
	maxBytes    int64
	allowedExts map[string]bool
}

// NewSandbox creates a sandbox rooted at path. allowedExts is the set of
// permitted file extensions (lower-case, dot included); empty means any.
func NewSandbox(path string, maxBytes int64, allowedExts []string) *Sandbox {
	exts := make(map[string]bool, len(allowedExts))
	for _, e := range allowedExts {
		exts[strings.ToLower(e)] = true
	}
	return &Sandbox{
		root:        filepath.Clean(path),
		maxBytes:    maxBytes,
		allowedExts: exts,
	}
}

// Root returns the sandbox root directory.
func (s *Sandbox) Root() string { return s.root }

// MaxBytes returns the per-file size limit.
func (s *Sandbox) MaxBytes() int64 { return s.maxBytes }

// Resolve maps a caller-supplied path onto an absolute path inside the
// sandbox. Absolute input paths and traversal outside the root are
// rejected.
func (s *Sandbox) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("absolute paths are not allowed: %s", path)
	}

	resolved := filepath.Join(s.root, filepath.Clean(path))

	rel, err := filepath.Rel(s.root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes sandbox: %s", path)
	}
	return resolved, nil
}

// CheckExtension rejects files whose extension is not on the allowlist.
func (s *Sandbox) CheckExtension(path string) error {
	if len(s.allowedExts) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !s.allowedExts[ext] {
		return fmt.Errorf("file extension not allowed: %s", ext)
	}
	return nil
}
