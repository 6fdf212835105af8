package persona

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iammorganparry/companion/internal/models"
)

// Catalog is the persona file format:
//
//	personas:
//	  - id: luna
//	    name: Luna
//	    traits: [witty, curious]
//	    description: Night-owl astronomer.
type Catalog struct {
	Personas []models.Persona `yaml:"personas"`
}

// LoadCatalog reads a persona file. A missing file is an empty catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("read persona catalog %s: %w", path, err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse persona catalog %s: %w", path, err)
	}

	for i := range c.Personas {
		p := &c.Personas[i]
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		p.Description = strings.TrimSpace(p.Description)
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("persona catalog %s: entry %d needs id and name", path, i+1)
		}
	}
	return &c, nil
}

// Seed upserts every catalog persona and returns how many were written.
func Seed(ctx context.Context, store Store, c *Catalog) (int, error) {
	for i := range c.Personas {
		if err := store.Upsert(ctx, &c.Personas[i]); err != nil {
			return i, fmt.Errorf("seed persona %s: %w", c.Personas[i].ID, err)
		}
	}
	return len(c.Personas), nil
}
