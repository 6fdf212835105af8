package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/companion/internal/chat"
	"github.com/iammorganparry/companion/internal/models"
)

type SessionHandler struct {
	svc *chat.Service
}

func NewSessionHandler(svc *chat.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// Opening handles GET /v1/sessions/{id}/opening
func (h *SessionHandler) Opening(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	msg, err := h.svc.Opening(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.OpeningResponse{SessionID: id, Message: msg})
}

// Reset handles DELETE /v1/sessions/{id}/opening
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetOpening(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
