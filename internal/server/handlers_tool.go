package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/assistd-ai/assistd/internal/tool"
	"github.com/assistd-ai/assistd/pkg/types"
)

// toolInfo is the list-endpoint projection of a tool's metadata.
type toolInfo struct {
	types.ToolMetadata
	Enabled bool `json:"enabled"`
}

// handleListTools handles GET /api/v1/tools.
func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	executor := s.orchestrator.Executor()

	metas := executor.Registry().List()
	if category := r.URL.Query().Get("category"); category != "" {
		metas = executor.Registry().ByCategory(types.ToolCategory(category))
	}

	tools := make([]toolInfo, 0, len(metas))
	for _, meta := range metas {
		tools = append(tools, toolInfo{ToolMetadata: meta, Enabled: executor.Enabled(meta)})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tools": tools,
		"stats": executor.Registry().Stats(executor.Enabled),
	})
}

// handleDescribeTool handles GET /api/v1/tools/{toolName}.
func (s *Server) handleDescribeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "toolName")

	executor := s.orchestrator.Executor()
	t, ok := executor.Registry().Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "unknown tool: "+name)
		return
	}

	meta := t.Metadata()
	writeJSON(w, http.StatusOK, toolInfo{ToolMetadata: meta, Enabled: executor.Enabled(meta)})
}

// handleExecuteTool handles POST /api/v1/tools/execute. Confirmation-gated
// tools are refused unless the request sets confirm; the refusal comes
// back as a failed ToolResult, not an HTTP error, because it is part of
// the normal confirmation round trip.
func (s *Server) handleExecuteTool(w http.ResponseWriter, r *http.Request) {
	var req types.ExecuteToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if req.ToolCall.ToolName == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "tool_call.tool_name is required")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "session_id is required")
		return
	}

	if _, ok := s.orchestrator.Manager().GetSession(req.SessionID); !ok {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "session not found")
		return
	}

	result, err := s.orchestrator.ExecuteTool(r.Context(), req.SessionID, req.ToolCall, req.Confirm)
	if err != nil {
		if errors.Is(err, tool.ErrUnknownTool) {
			writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": req.SessionID,
		"tool_name":  req.ToolCall.ToolName,
		"result":     result,
	})
}
