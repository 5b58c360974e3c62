package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

// chatRequest is the request body for the chat endpoint
type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// chatResponse is the response body for the chat endpoint
type chatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports the index readiness state. The service accepts
// chat traffic in any state; this endpoint exists so deployments can
// gate traffic on the first ingestion run having finished.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	state := s.readiness.State()
	body := map[string]interface{}{"state": string(state)}
	if summary := s.readiness.Summary(); summary != nil {
		body["documents_indexed"] = summary.DocumentsIndexed
		body["collections_skipped"] = summary.Skipped
	}

	status := http.StatusOK
	if !state.Queryable() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, body)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Chat endpoint

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.chatService.Chat(r.Context(), domain.ChatRequest{
		Message:   req.Message,
		SessionID: req.SessionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "message is required")
		case errors.Is(err, domain.ErrGenerationUnavailable),
			errors.Is(err, domain.ErrEmbeddingUnavailable),
			errors.Is(err, domain.ErrIndexUnavailable):
			writeError(w, http.StatusServiceUnavailable, "upstream service unavailable")
		default:
			s.logger.Error("chat request failed", "error", err)
			writeError(w, http.StatusInternalServerError, "chat failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Reply:     resp.Reply,
		SessionID: resp.SessionID,
	})
}

// Admin endpoints

// handleReingest triggers a full index rebuild in the background. The
// rebuild detaches from the request context so a closed connection
// does not abort it.
func (s *Server) handleReingest(w http.ResponseWriter, r *http.Request) {
	if s.readiness.State() == domain.IndexRunning {
		writeError(w, http.StatusConflict, "ingestion already in progress")
		return
	}

	go func() {
		summary, err := s.ingestionService.Run(context.Background())
		if err != nil {
			if errors.Is(err, domain.ErrIngestionInProgress) {
				return
			}
			s.logger.Error("reingest failed", "error", err)
			return
		}
		s.logger.Info("reingest finished",
			"documents", summary.DocumentsIndexed,
			"skipped", summary.Skipped,
		)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
