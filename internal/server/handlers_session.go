package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/assistd-ai/assistd/pkg/types"
)

// handleGetSession handles GET /api/v1/chat/sessions/{sessionID}.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, ok := s.orchestrator.Manager().GetSession(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// handleEndSession handles DELETE /api/v1/chat/sessions/{sessionID}.
// Ending an unknown session is a no-op, so the delete is idempotent.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	s.orchestrator.Manager().EndSession(chi.URLParam(r, "sessionID"))
	writeSuccess(w)
}

// handleExportSession handles GET /api/v1/chat/sessions/{sessionID}/export.
// Supported formats: json (default) and markdown.
func (s *Server) handleExportSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	conv, ok := s.orchestrator.Manager().GetConversation(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "session not found")
		return
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "json":
		writeJSON(w, http.StatusOK, conv)
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(renderMarkdown(sessionID, conv)))
	default:
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported format: %s", format))
	}
}

// renderMarkdown renders a conversation transcript as markdown.
func renderMarkdown(sessionID string, conv *types.Conversation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Conversation %s\n\n", sessionID)
	fmt.Fprintf(&b, "Started: %s\n\n", conv.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	for _, msg := range conv.Messages {
		switch msg.Role {
		case types.RoleSystem:
			// System primer is server internals, not transcript content.
			continue
		case types.RoleUser:
			b.WriteString("## User\n\n")
		case types.RoleAssistant:
			b.WriteString("## Assistant\n\n")
		case types.RoleTool:
			b.WriteString("## Tool\n\n")
		}
		fmt.Fprintf(&b, "_%s_\n\n", msg.Timestamp.Format("15:04:05"))
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}

// handleChatStats handles GET /api/v1/chat/stats.
func (s *Server) handleChatStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orchestrator.Manager().Stats())
}
