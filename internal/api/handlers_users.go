package api

import (
	"net/http"

	"github.com/iammorganparry/companion/internal/profile"
)

type UserHandler struct {
	profiles *profile.Manager
}

func NewUserHandler(profiles *profile.Manager) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// Profile handles GET /v1/users/me/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p := h.profiles.Load(r.Context(), userIDFrom(r.Context()))
	if p == nil {
		writeError(w, http.StatusNotFound, "no profile yet")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Refresh handles POST /v1/users/me/profile/refresh
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Rebuild(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Insights handles GET /v1/users/me/insights
func (h *UserHandler) Insights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.profiles.Insights(r.Context(), userIDFrom(r.Context())))
}
