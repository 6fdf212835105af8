package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/iammorganparry/companion/internal/chat"
	"github.com/iammorganparry/companion/internal/llm"
	"github.com/iammorganparry/companion/internal/models"
	"github.com/iammorganparry/companion/internal/persona"
	"github.com/iammorganparry/companion/internal/profile"
	"github.com/iammorganparry/companion/internal/summary"
)

// Deps are the services behind the HTTP surface. Qdrant and LLM may be nil
// and are then reported as disabled by /health.
type Deps struct {
	DB         DBChecker
	Qdrant     llm.Checker
	LLM        llm.Checker
	Chat       *chat.Service
	Summaries  summary.Store
	Summarizer *summary.AutoManager
	SummaryCfg models.SummaryConfig
	Profiles   *profile.Manager
	Personas   *persona.Resolver
}

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(d Deps, apiKey string, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	healthH := NewHealthHandler(d.DB, d.Qdrant, d.LLM)
	chatH := NewChatHandler(d.Chat, logger)
	convH := NewConversationHandler(d.Chat, d.Summaries, d.Summarizer, d.SummaryCfg)
	userH := NewUserHandler(d.Profiles)
	sessionH := NewSessionHandler(d.Chat)
	personaH := NewPersonaHandler(d.Personas)
	analyzeH := NewAnalyzeHandler(d.Personas)

	// Unauthenticated routes
	r.Get("/health", healthH.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Use(BearerAuth(apiKey))

		r.Get("/personas", personaH.List)
		r.Get("/personas/{id}", personaH.Get)
		r.Get("/personality-types", personaH.Types)
		r.Post("/analyze/emotion", analyzeH.Emotion)
		r.Post("/analyze/prompt", analyzeH.Prompt)
		r.Get("/schemas/{kind}", analyzeH.Schema)

		r.Get("/sessions/{id}/opening", sessionH.Opening)
		r.Delete("/sessions/{id}/opening", sessionH.Reset)

		// Routes acting on behalf of a user
		r.Group(func(r chi.Router) {
			r.Use(UserExtractor)

			r.Post("/chat", chatH.Chat)
			r.Get("/chat/ws", chatH.Stream)

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", convH.List)
				r.Get("/{id}/messages", convH.Messages)
				r.Get("/{id}/summary", convH.Summary)
				r.Post("/{id}/summary", convH.Summarize)
				r.Get("/{id}/analysis", convH.Analysis)
				r.Delete("/{id}", convH.Delete)
			})

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/profile", userH.Profile)
				r.Post("/profile/refresh", userH.Refresh)
				r.Get("/insights", userH.Insights)
			})
		})
	})

	return r
}
