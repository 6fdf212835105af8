package persona

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iammorganparry/companion/internal/models"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type memStore struct {
	personas map[string]*models.Persona
	err      error
}

func (m *memStore) Get(_ context.Context, id string) (*models.Persona, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.personas[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) List(context.Context) ([]*models.Persona, error) {
	var out []*models.Persona
	for _, p := range m.personas {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) Upsert(_ context.Context, p *models.Persona) error {
	if m.err != nil {
		return m.err
	}
	cp := *p
	m.personas[p.ID] = &cp
	return nil
}

func TestResolve(t *testing.T) {
	store := &memStore{personas: map[string]*models.Persona{
		"luna":  {ID: "luna", Name: "Luna", Traits: []string{"witty"}},
		"blank": {ID: "blank", Name: "Blank"},
	}}
	r := NewResolver(store, quiet)
	ctx := context.Background()

	tests := []struct {
		name, id, wantName string
		wantTraits         int
	}{
		{"no character", "", "Emma", 6},
		{"stored", "luna", "Luna", 1},
		{"missing", "ghost", "Emma", 6},
		{"stored without traits", "blank", "Blank", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(ctx, tt.id)
			if got.Name != tt.wantName || len(got.Traits) != tt.wantTraits {
				t.Errorf("Resolve(%q) = %+v", tt.id, got)
			}
		})
	}

	t.Run("store error", func(t *testing.T) {
		store.err = errors.New("db locked")
		defer func() { store.err = nil }()
		if got := r.Resolve(ctx, "luna"); got.Name != "Emma" {
			t.Errorf("Resolve on error = %+v", got)
		}
	})
}

func TestDefaultPersonaIsACopy(t *testing.T) {
	p := DefaultPersona()
	p.Traits[0] = "changed"
	if Default.Traits[0] != "warm and caring" {
		t.Error("DefaultPersona shares its traits slice")
	}
}

func TestLoadCatalogAndSeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	content := `personas:
  - id: luna
    name: " Luna "
    traits: [witty, curious]
    description: Night-owl astronomer.
  - id: sol
    name: Sol
    traits:
      - sunny
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Personas) != 2 || c.Personas[0].Name != "Luna" || c.Personas[0].Traits[1] != "curious" {
		t.Fatalf("catalog = %+v", c)
	}

	store := &memStore{personas: map[string]*models.Persona{}}
	n, err := Seed(context.Background(), store, c)
	if err != nil || n != 2 {
		t.Fatalf("Seed = %d, %v", n, err)
	}
	if store.personas["sol"].Traits[0] != "sunny" {
		t.Errorf("seeded sol = %+v", store.personas["sol"])
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		c, err := LoadCatalog(filepath.Join(dir, "none.yaml"))
		if err != nil || len(c.Personas) != 0 {
			t.Fatalf("LoadCatalog = %+v, %v", c, err)
		}
	})

	t.Run("entry without id", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		os.WriteFile(path, []byte("personas:\n  - name: Nobody\n"), 0o644)
		_, err := LoadCatalog(path)
		if err == nil || !strings.Contains(err.Error(), "entry 1") {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		os.WriteFile(path, []byte("personas: [\n"), 0o644)
		if _, err := LoadCatalog(path); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestPersonalityTypes(t *testing.T) {
	types := PersonalityTypes()
	if len(types) != 5 {
		t.Fatalf("types = %d, want 5", len(types))
	}
	ids := make([]string, len(types))
	for i, pt := range types {
		ids[i] = pt.ID
		if len(pt.Traits) != 5 {
			t.Errorf("%s has %d traits", pt.ID, len(pt.Traits))
		}
	}
	if strings.Join(ids, ",") != "supportive,playful,intellectual,admirer,growth" {
		t.Errorf("ids = %v", ids)
	}

	types[0].Traits[0] = "changed"
	if PersonalityTypes()[0].Traits[0] != "Caring" {
		t.Error("PersonalityTypes shares state")
	}
}
