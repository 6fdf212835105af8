package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/companion/internal/chat"
	"github.com/iammorganparry/companion/internal/models"
	"github.com/iammorganparry/companion/internal/summary"
)

type ConversationHandler struct {
	svc        *chat.Service
	summaries  summary.Store
	summarizer *summary.AutoManager
	defaults   models.SummaryConfig
}

func NewConversationHandler(svc *chat.Service, summaries summary.Store, summarizer *summary.AutoManager, defaults models.SummaryConfig) *ConversationHandler {
	return &ConversationHandler{svc: svc, summaries: summaries, summarizer: summarizer, defaults: defaults}
}

// List handles GET /v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ConversationsOverview(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Messages handles GET /v1/conversations/{id}/messages?limit=N
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	msgs, err := h.svc.Messages(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// Summary handles GET /v1/conversations/{id}/summary
func (h *ConversationHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.svc.Conversation(r.Context(), userIDFrom(r.Context()), id); err != nil {
		writeServiceError(w, err)
		return
	}

	s, err := h.summaries.GetSummary(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if s == nil {
		writeError(w, http.StatusNotFound, "conversation has no summary yet")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Summarize handles POST /v1/conversations/{id}/summary. The optional body
// overrides the summary configuration for this run only.
func (h *ConversationHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.svc.Conversation(r.Context(), userIDFrom(r.Context()), id); err != nil {
		writeServiceError(w, err)
		return
	}

	// Fields absent from the body keep their configured values.
	cfg := h.defaults
	req := models.SummarizeRequest{Config: &cfg}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Config != nil {
		cfg = *req.Config
	}

	s, err := h.summarizer.RefreshWith(r.Context(), id, cfg)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Analysis handles GET /v1/conversations/{id}/analysis
func (h *ConversationHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Analysis(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Delete handles DELETE /v1/conversations/{id}
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteConversation(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
