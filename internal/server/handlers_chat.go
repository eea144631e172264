package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/assistd-ai/assistd/internal/chat"
	"github.com/assistd-ai/assistd/internal/provider"
	"github.com/assistd-ai/assistd/pkg/types"
)

// handleChatMessage handles POST /api/v1/chat/message.
func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "message is required")
		return
	}

	resp, err := s.orchestrator.ProcessTurn(r.Context(), req)
	if err != nil {
		s.writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleChatMessageStream handles POST /api/v1/chat/message/stream. The
// reply is an SSE stream of session, content, tool_calls, and done events.
func (s *Server) handleChatMessageStream(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "message is required")
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	emit := func(ev types.StreamEvent) error {
		return sse.writeEvent(string(ev.Type), ev)
	}

	if err := s.orchestrator.ProcessTurnStream(r.Context(), req, emit); err != nil {
		if chat.IsClientGone(err) {
			return
		}
		// Headers are gone; surface the failure as a stream event.
		sse.writeEvent(string(types.StreamEventError), types.StreamEvent{
			Type:  types.StreamEventError,
			Error: err.Error(),
		})
	}
}

// writeChatError maps orchestrator errors onto HTTP statuses.
func (s *Server) writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "session not found")
	case errors.Is(err, provider.ErrUnavailable):
		writeError(w, http.StatusBadGateway, ErrCodeProviderError, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
	}
}
