package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iammorganparry/companion/internal/models"
)

// PersonaStore handles persona rows. Traits are stored as the
// comma-separated personality string.
type PersonaStore struct {
	db *DB
}

func NewPersonaStore(db *DB) *PersonaStore {
	return &PersonaStore{db: db}
}

// Get returns a persona by ID, or nil if not found.
func (s *PersonaStore) Get(ctx context.Context, id string) (*models.Persona, error) {
	p, err := scanPersona(s.db.QueryRowContext(ctx,
		`SELECT id, name, personality, description FROM personas WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get persona: %w", err)
	}
	return p, nil
}

// List returns every persona ordered by name.
func (s *PersonaStore) List(ctx context.Context) ([]*models.Persona, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, personality, description FROM personas ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	defer rows.Close()

	var out []*models.Persona
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, fmt.Errorf("scan persona: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Upsert creates or updates a persona.
func (s *PersonaStore) Upsert(ctx context.Context, p *models.Persona) error {
	now := toMillis(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO personas (id, name, personality, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			personality = excluded.personality,
			description = excluded.description,
			updated_at = excluded.updated_at
	`, p.ID, p.Name, strings.Join(p.Traits, ", "), nullString(p.Description), now, now)
	if err != nil {
		return fmt.Errorf("upsert persona: %w", err)
	}
	return nil
}

// scanPersona leaves Traits nil when the personality column is empty so
// callers can substitute their own defaults.
func scanPersona(row scanner) (*models.Persona, error) {
	var (
		p                        models.Persona
		personality, description sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &personality, &description); err != nil {
		return nil, err
	}
	p.Description = description.String
	if personality.String != "" {
		for _, t := range strings.Split(personality.String, ",") {
			p.Traits = append(p.Traits, strings.TrimSpace(t))
		}
	}
	return &p, nil
}
