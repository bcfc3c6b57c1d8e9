package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/xaenox/hr-hub/internal/classifier"
	"github.com/xaenox/hr-hub/internal/conversation"
	"github.com/xaenox/hr-hub/internal/models"
	"github.com/xaenox/hr-hub/internal/storage"
)

const defaultSession = "default"

type chatRequest struct {
	Session string `json:"session"`
	Text    string `json:"text"`
}

type ChatHistoryResponse struct {
	Session string        `json:"session"`
	Busy    bool          `json:"busy"`
	Turns   []models.Turn `json:"turns"`
}

func sessionID(id string) string {
	if id == "" {
		return defaultSession
	}
	return id
}

func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r.URL.Query().Get("session"))
	s, err := h.chats.Session(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to open chat session", zap.Error(err), zap.String("session_id", id))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load conversation", r))
		return
	}

	turns := s.Turns()
	if turns == nil {
		turns = []models.Turn{}
	}
	writeJSON(w, http.StatusOK, ChatHistoryResponse{Session: id, Busy: s.Busy(), Turns: turns})
}

// SendChat logs the user turn and answers 202 with it; the assistant turn
// shows up in the history once the reply delay has passed.
func (h *Handler) SendChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	id := sessionID(req.Session)
	s, err := h.chats.Session(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to open chat session", zap.Error(err), zap.String("session_id", id))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load conversation", r))
		return
	}

	snap, err := storage.LoadSnapshot(r.Context(), h.store, h.employeeID)
	if err != nil {
		h.logger.Error("Failed to load employee snapshot", zap.Error(err), zap.String("employee_id", h.employeeID))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load employee data", r))
		return
	}

	user, _, err := s.Submit(r.Context(), req.Text, classifier.Context{Snapshot: snap, Formatter: h.viewer(r)})
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message must not be empty", r))
		return
	case errors.Is(err, conversation.ErrBusy):
		writeJSON(w, http.StatusConflict, errorResp("BUSY", "The assistant is still answering your previous message", r))
		return
	case err != nil:
		h.logger.Error("Failed to submit chat message", zap.Error(err), zap.String("session_id", id))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
		return
	}
	writeJSON(w, http.StatusAccepted, user)
}
