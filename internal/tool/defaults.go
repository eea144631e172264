package tool

import (
	"github.com/assistd-ai/assistd/pkg/types"
)

// DefaultRegistry creates a registry with all built-in tools. Registration
// replaces the original's directory-scanning discovery: adding a tool
// means adding one constructor call here, nothing in the orchestrator
// changes.
func DefaultRegistry(cfg *types.Config) *Registry {
	r := NewRegistry()

	// file_system
	r.Register(NewReadFileTool())
	r.Register(NewWriteFileTool())
	r.Register(NewDeleteFileTool())
	r.Register(NewListFilesTool())
	r.Register(NewFileUploadTool())

	// web
	r.Register(NewWebSearchTool())
	r.Register(NewWebFetchTool())

	// system
	r.Register(NewSystemCommandTool(cfg.Commands.Allowed, cfg.CommandTimeout()))

	// utility
	r.Register(NewCurrentTimeTool())

	return r
}
