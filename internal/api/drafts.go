package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xaenox/hr-hub/internal/models"
	"github.com/xaenox/hr-hub/internal/requests"
)

type openDraftRequest struct {
	ServiceKind models.ServiceKind `json:"service_kind"`
}

type setFieldsRequest struct {
	Fields map[string]string `json:"fields"`
}

func (h *Handler) OpenDraft(w http.ResponseWriter, r *http.Request) {
	var req openDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	draft, err := h.flow.Open(req.ServiceKind)
	if err != nil {
		h.handleFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.flow.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.handleFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// SetDraftFields merges the given values into an editing draft
func (h *Handler) SetDraftFields(w http.ResponseWriter, r *http.Request) {
	var req setFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	id := chi.URLParam(r, "id")
	draft, err := h.flow.Get(id)
	if err != nil {
		h.handleFlowError(w, r, err)
		return
	}
	for name, value := range req.Fields {
		if draft, err = h.flow.SetField(id, name, value); err != nil {
			h.handleFlowError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, draft)
}

// SubmitDraft starts resolution and answers 202 with the submitting draft.
// The outcome arrives on the notification feed and on the draft itself.
func (h *Handler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.flow.Submit(r.Context(), id); err != nil {
		h.handleFlowError(w, r, err)
		return
	}

	draft, err := h.flow.Get(id)
	if err != nil {
		h.handleFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, draft)
}

func (h *Handler) CancelDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.flow.Cancel(chi.URLParam(r, "id"))
	if err != nil {
		h.handleFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) ReopenDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.flow.Reopen(chi.URLParam(r, "id"))
	if err != nil {
		h.handleFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

func (h *Handler) handleFlowError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *requests.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity,
			errorRespWithFields("VALIDATION_ERROR", "Validation failed", map[string]string{verr.Field: verr.Reason}, r))
	case errors.Is(err, requests.ErrUnknownServiceKind):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
	case errors.Is(err, requests.ErrDraftNotFound):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Draft not found", r))
	case errors.Is(err, requests.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", err.Error(), r))
	default:
		h.logger.Error("Draft operation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
