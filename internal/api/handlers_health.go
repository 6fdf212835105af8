package api

import (
	"context"
	"net/http"

	"github.com/iammorganparry/companion/internal/llm"
	"github.com/iammorganparry/companion/internal/models"
)

// DBChecker is the database side of the health check.
type DBChecker interface {
	HealthCheck(ctx context.Context) error
	MessageCount(ctx context.Context) (int, error)
}

type HealthHandler struct {
	db     DBChecker
	qdrant llm.Checker
	llm    llm.Checker
}

func NewHealthHandler(db DBChecker, qdrant, provider llm.Checker) *HealthHandler {
	return &HealthHandler{db: db, qdrant: qdrant, llm: provider}
}

func check(ctx context.Context, c llm.Checker) models.ServiceCheck {
	if c == nil {
		return models.ServiceCheck{Status: "disabled"}
	}
	if err := c.HealthCheck(ctx); err != nil {
		return models.ServiceCheck{Status: "error", Message: err.Error()}
	}
	return models.ServiceCheck{Status: "ok"}
}

// Health handles GET /health. Only a database failure makes the service
// unavailable; search and completion degrade.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := models.HealthResponse{
		Status: "ok",
		Qdrant: check(ctx, h.qdrant),
		LLM:    check(ctx, h.llm),
	}
	if resp.Qdrant.Status == "error" || resp.LLM.Status == "error" {
		resp.Status = "degraded"
	}

	count, err := h.db.MessageCount(ctx)
	if err == nil {
		err = h.db.HealthCheck(ctx)
	}
	if err != nil {
		resp.DB = models.ServiceCheck{Status: "error", Message: err.Error()}
		resp.Status = "unavailable"
	} else {
		resp.DB = models.ServiceCheck{Status: "ok"}
		resp.Messages = count
	}

	status := http.StatusOK
	if resp.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
