// Package llm wraps the language-model providers behind the completion and
// embedding contracts used by the rest of the service.
package llm

import (
	"context"
	"log/slog"

	"github.com/iammorganparry/companion/internal/models"
)

// FallbackReply is sent to the user when the provider cannot answer.
const FallbackReply = "I'm sorry, I'm having trouble responding right now..."

// Options tune a single completion. Zero values fall back to the client's
// defaults.
type Options struct {
	Model       string
	Temperature *float64
	MaxTokens   int
	// Backoff overrides the client's retry waits for this call.
	Backoff *Backoff
}

// Temperature returns a pointer for Options.Temperature.
func Temperature(t float64) *float64 { return &t }

// Completer returns the assistant text for a message list.
type Completer interface {
	Complete(ctx context.Context, messages []models.ChatMessage, opts Options) (string, error)
}

// Embedder returns the embedding vector of a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Checker reports whether a provider is reachable.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// ChatReply is the user-facing completion path. It never fails: provider
// errors and empty answers are logged and replaced by FallbackReply.
func ChatReply(ctx context.Context, c Completer, messages []models.ChatMessage, opts Options, logger *slog.Logger) string {
	reply, err := c.Complete(ctx, messages, opts)
	if err != nil {
		logger.Error("chat completion failed", "error", err)
		return FallbackReply
	}
	if reply == "" {
		logger.Warn("chat completion returned empty reply")
		return FallbackReply
	}
	return reply
}
