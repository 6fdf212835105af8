package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/companion/internal/models"
	"github.com/iammorganparry/companion/internal/persona"
)

type PersonaHandler struct {
	personas *persona.Resolver
}

func NewPersonaHandler(personas *persona.Resolver) *PersonaHandler {
	return &PersonaHandler{personas: personas}
}

// List handles GET /v1/personas
func (h *PersonaHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.personas.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []*models.Persona{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /v1/personas/{id}
func (h *PersonaHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.personas.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "persona not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Types handles GET /v1/personality-types
func (h *PersonaHandler) Types(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, persona.PersonalityTypes())
}
