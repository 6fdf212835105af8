package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/companion/internal/emotion"
	"github.com/iammorganparry/companion/internal/models"
	"github.com/iammorganparry/companion/internal/persona"
	"github.com/iammorganparry/companion/internal/prompt"
)

// AnalyzeHandler exposes the pure analysis pipeline for inspection.
type AnalyzeHandler struct {
	personas *persona.Resolver
}

func NewAnalyzeHandler(personas *persona.Resolver) *AnalyzeHandler {
	return &AnalyzeHandler{personas: personas}
}

// Emotion handles POST /v1/analyze/emotion
func (h *AnalyzeHandler) Emotion(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeEmotionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	writeJSON(w, http.StatusOK, emotion.Detect(req.Message))
}

// Prompt handles POST /v1/analyze/prompt
func (h *AnalyzeHandler) Prompt(w http.ResponseWriter, r *http.Request) {
	var req models.BuildPromptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	p := h.personas.Resolve(r.Context(), req.CharacterID)
	c := prompt.DefaultSmartContext(p, req.Message)
	if req.Context != nil {
		c = *req.Context
		c.CurrentMessage = req.Message
		if c.Persona.Name == "" {
			c.Persona = p
		}
	}

	text := prompt.BuildSmartPrompt(c)
	writeJSON(w, http.StatusOK, models.BuildPromptResponse{Prompt: text, Length: len(text)})
}

// Schema handles GET /v1/schemas/{kind}
func (h *AnalyzeHandler) Schema(w http.ResponseWriter, r *http.Request) {
	schema, err := models.BlobSchema(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, schema)
}
