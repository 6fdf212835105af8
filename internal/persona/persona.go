// Package persona resolves the character the companion plays in a
// conversation.
package persona

import (
	"context"
	"log/slog"

	"github.com/iammorganparry/companion/internal/models"
)

// Default is played when a conversation names no character, or the named
// one cannot be loaded.
var Default = models.Persona{
	Name: "Emma",
	Traits: []string{
		"warm and caring",
		"playfully flirty",
		"emotionally intelligent",
		"supportive and understanding",
		"curious about your life",
		"romantic and affectionate",
	},
}

// Store persists personas. Get returns nil, nil when absent.
type Store interface {
	Get(ctx context.Context, id string) (*models.Persona, error)
	List(ctx context.Context) ([]*models.Persona, error)
	Upsert(ctx context.Context, p *models.Persona) error
}

type Resolver struct {
	store  Store
	logger *slog.Logger
}

func NewResolver(store Store, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// Resolve never fails: lookup errors are logged and the default persona is
// returned in their place.
func (r *Resolver) Resolve(ctx context.Context, characterID string) models.Persona {
	if characterID == "" {
		return DefaultPersona()
	}

	p, err := r.store.Get(ctx, characterID)
	if err != nil {
		r.logger.Warn("persona lookup failed, using default", "character_id", characterID, "error", err)
		return DefaultPersona()
	}
	if p == nil {
		return DefaultPersona()
	}
	if len(p.Traits) == 0 {
		p.Traits = Default.Traits
	}
	return *p
}

// Get returns a stored persona, or nil when it does not exist.
func (r *Resolver) Get(ctx context.Context, id string) (*models.Persona, error) {
	return r.store.Get(ctx, id)
}

func (r *Resolver) List(ctx context.Context) ([]*models.Persona, error) {
	return r.store.List(ctx)
}

// DefaultPersona returns a copy of Default.
func DefaultPersona() models.Persona {
	p := Default
	p.Traits = append([]string(nil), Default.Traits...)
	return p
}
