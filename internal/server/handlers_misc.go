package server

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"github.com/assistd-ai/assistd/internal/event"
	"github.com/assistd-ai/assistd/pkg/types"
)

// handleUpload handles POST /api/v1/upload. Multipart uploads are fed
// through the file_upload tool so the same sandbox rules apply whether
// the file arrives over HTTP or from a model-issued tool call.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.appConfig.MaxUploadBytes()
	if maxBytes > 0 {
		// Generous slack for multipart framing and base64 expansion.
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes*2+1024)
	}

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "upload too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "read upload")
		return
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "upload too large")
		return
	}

	sessionID := r.FormValue("session_id")

	result, err := s.orchestrator.ExecuteTool(r.Context(), sessionID, types.ToolCall{
		ToolName: "file_upload",
		Parameters: map[string]string{
			"filename": header.Filename,
			"content":  base64.StdEncoding.EncodeToString(data),
		},
	}, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	if !result.Success {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, result.Error)
		return
	}

	saved, _ := result.Output.(map[string]any)
	savedAs, _ := saved["saved_as"].(string)

	s.bus.Publish(event.Event{
		Type: event.FileUploaded,
		Data: event.FileUploadedData{
			SessionID: sessionID,
			Filename:  header.Filename,
			SavedAs:   savedAs,
			Size:      int64(len(data)),
		},
	})

	writeJSON(w, http.StatusOK, result.Output)
}

// handleListModels handles GET /api/v1/models.
func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.llm.ListModels(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, ErrCodeProviderError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"models":  models,
		"current": s.llm.Model(),
	})
}

// handleHealth handles GET /api/v1/health. The server reports healthy
// even when the backend is down; the llm field tells the caller whether
// inference will work.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ok"
	llmStatus := "ok"
	if !s.llm.Healthy(ctx) {
		llmStatus = "unavailable"
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"llm": map[string]any{
			"status": llmStatus,
			"model":  s.llm.Model(),
		},
		"sessions": s.orchestrator.Manager().Stats().ActiveSessions,
		"sandbox":  s.appConfig.Sandbox.Path,
	})
}
