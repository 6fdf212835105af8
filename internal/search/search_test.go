package search

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/iammorganparry/companion/internal/models"
	"github.com/iammorganparry/companion/internal/store"
	"github.com/iammorganparry/companion/internal/vectorstore"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeEmbedder struct {
	err   error
	calls int
	mu    sync.Mutex
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

// fakeQdrant stores upserted points and answers searches with all of them.
type fakeQdrant struct {
	mu          sync.Mutex
	collections map[string]bool
	points      []vectorstore.Point
	searches    []map[string]any
	deleted     []string
	failSearch  bool
}

func (f *fakeQdrant) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/collections/")
	switch {
	case r.Method == http.MethodGet:
		if f.collections[path] {
			w.Write([]byte(`{"result":{}}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut && !strings.Contains(path, "/"):
		f.collections[path] = true
		w.Write([]byte(`{"result":true}`))
	case r.Method == http.MethodPut && strings.HasSuffix(path, "/points"):
		var body struct {
			Points []vectorstore.Point `json:"points"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.points = append(f.points, body.Points...)
		w.Write([]byte(`{"result":{}}`))
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/points/search"):
		if f.failSearch {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.searches = append(f.searches, body)
		type hit struct {
			ID      string         `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		}
		var hits []hit
		for i, p := range f.points {
			hits = append(hits, hit{ID: p.ID, Score: 0.5 + float64(i)/10, Payload: p.Payload})
		}
		json.NewEncoder(w).Encode(map[string]any{"result": hits})
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/points/delete"):
		var body struct {
			Points []string `json:"points"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.deleted = append(f.deleted, body.Points...)
		drop := map[string]bool{}
		for _, id := range body.Points {
			drop[id] = true
		}
		kept := f.points[:0]
		for _, p := range f.points {
			if !drop[p.ID] {
				kept = append(kept, p)
			}
		}
		f.points = kept
		w.Write([]byte(`{"result":{}}`))
	default:
		http.Error(w, "unexpected", http.StatusBadRequest)
	}
}

type fixture struct {
	qdrant   *fakeQdrant
	embedder *fakeEmbedder
	indexer  *Indexer
	search   *SemanticRetriever
	bm25     *store.BM25Store
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fq := &fakeQdrant{collections: map[string]bool{}}
	srv := httptest.NewServer(fq)
	t.Cleanup(srv.Close)

	client := vectorstore.NewQdrantClient(srv.URL, 3)
	emb := &fakeEmbedder{}
	bm25 := store.NewBM25Store(db)
	return &fixture{
		qdrant:   fq,
		embedder: emb,
		indexer:  NewIndexer(emb, vectorstore.NewCollectionManager(client), bm25, quiet),
		search:   NewSemanticRetriever(emb, client, bm25, 0.3, quiet),
		bm25:     bm25,
	}
}

func msg(id, conv, content string) models.Message {
	return models.Message{
		ID: id, ConversationID: conv, Content: content, IsUserMessage: true,
		CreatedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestChunk(t *testing.T) {
	t.Run("blank", func(t *testing.T) {
		if got := Chunk("  \n "); got != nil {
			t.Errorf("Chunk(blank) = %v", got)
		}
	})

	t.Run("short text is one chunk", func(t *testing.T) {
		got := Chunk("Hello there. How are you?")
		if len(got) != 1 || got[0] != "Hello there. How are you?" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("long text is packed by sentence", func(t *testing.T) {
		sentence := strings.Repeat("a", 300)
		text := strings.Repeat(sentence+". ", 5)
		got := Chunk(text)
		if len(got) != 2 {
			t.Fatalf("chunks = %d, want 2", len(got))
		}
		for _, c := range got {
			if len(c) > MaxChunkSize {
				t.Errorf("chunk of %d runes exceeds max", len(c))
			}
		}
		if !strings.Contains(got[0], ". ") {
			t.Errorf("sentences not rejoined: %q", got[0][:20])
		}
	})

	t.Run("one oversized sentence is kept whole", func(t *testing.T) {
		text := strings.Repeat("b", MaxChunkSize+10)
		got := Chunk(text)
		if len(got) != 1 || got[0] != text {
			t.Errorf("got %d chunks", len(got))
		}
	})
}

func TestChunkID(t *testing.T) {
	if got := ChunkID("m1", 0, 1); got != "m1" {
		t.Errorf("single chunk id = %q", got)
	}
	a, b := ChunkID("m1", 0, 2), ChunkID("m1", 1, 2)
	if a == b || a == "m1" {
		t.Errorf("chunk ids not distinct: %q %q", a, b)
	}
	if ChunkID("m1", 1, 2) != b {
		t.Error("chunk ids are not deterministic")
	}
}

func TestFTSQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"the and of", ""},
		{"I walked my DOG, the dog!", `"walked" OR "dog"`},
		{"coffee? tea.", `"coffee" OR "tea"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FTSQuery(tt.in); got != tt.want {
				t.Errorf("FTSQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIngestAndVectorQuery(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.indexer.Ingest(ctx, "u1", msg("m1", "c1", "I adopted a puppy named Biscuit"))
	f.indexer.Ingest(ctx, "u1", msg("m2", "c1", "<private>my address</private>"))

	if len(f.qdrant.points) != 1 {
		t.Fatalf("points = %d, want 1", len(f.qdrant.points))
	}
	p := f.qdrant.points[0]
	if p.ID != "m1" || p.Payload["userId"] != "u1" || p.Payload["conversationId"] != "c1" {
		t.Errorf("point = %+v", p)
	}

	got, err := f.search.Query(ctx, "tell me about Biscuit", Scope{UserID: "u1", ConversationID: "c1"}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Text != "I adopted a puppy named Biscuit" || got[0].ConversationID != "c1" {
		t.Fatalf("results = %+v", got)
	}

	filter, _ := json.Marshal(f.qdrant.searches[0]["filter"])
	if !strings.Contains(string(filter), `"c1"`) || !strings.Contains(string(filter), `"u1"`) {
		t.Errorf("search filter = %s", filter)
	}
}

func TestQueryFallsBackToKeywords(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.indexer.Ingest(ctx, "u1", msg("m1", "c1", "We went hiking near the lake"))
	f.indexer.Ingest(ctx, "u2", msg("m2", "c9", "hiking is boring"))

	t.Run("vector search error", func(t *testing.T) {
		f.qdrant.failSearch = true
		defer func() { f.qdrant.failSearch = false }()

		got, err := f.search.Query(ctx, "hiking trip", Scope{UserID: "u1"}, 5)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != "m1" {
			t.Fatalf("results = %+v", got)
		}
		if got[0].Score < 0 || got[0].Score >= 1 {
			t.Errorf("score = %v", got[0].Score)
		}
	})

	t.Run("embedding failure", func(t *testing.T) {
		f.embedder.err = errors.New("provider down")
		defer func() { f.embedder.err = nil }()

		got, err := f.search.Query(ctx, "lake", Scope{UserID: "u1"}, 5)
		if err != nil || len(got) != 1 {
			t.Fatalf("results = %+v, %v", got, err)
		}
	})

	t.Run("no collection for user", func(t *testing.T) {
		got, err := f.search.Query(ctx, "lake", Scope{UserID: "nobody"}, 5)
		if err != nil || len(got) != 0 {
			t.Fatalf("results = %+v, %v", got, err)
		}
	})
}

func TestQueryEmptyInput(t *testing.T) {
	f := setup(t)
	got, err := f.search.Query(context.Background(), "   ", Scope{UserID: "u1"}, 5)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("Query(blank) = %v, %v", got, err)
	}
	if f.embedder.calls != 0 {
		t.Errorf("embedder called for blank query")
	}
}

func TestForget(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	f.indexer.Ingest(ctx, "u1", msg("m1", "c1", "I adopted a puppy named Biscuit"))
	f.indexer.Ingest(ctx, "u1", msg("m2", "c2", "Biscuit chewed my shoes"))

	if err := f.indexer.Forget(ctx, "u1", "c1"); err != nil {
		t.Fatal(err)
	}
	if len(f.qdrant.deleted) != 1 || f.qdrant.deleted[0] != "m1" {
		t.Errorf("deleted points = %v", f.qdrant.deleted)
	}
	if len(f.qdrant.points) != 1 || f.qdrant.points[0].ID != "m2" {
		t.Errorf("remaining points = %+v", f.qdrant.points)
	}
	if ids, _ := f.bm25.ChunkIDs(ctx, "c1"); len(ids) != 0 {
		t.Errorf("keyword chunks left = %v", ids)
	}

	t.Run("no vector collection", func(t *testing.T) {
		f := setup(t)
		f.embedder.err = errors.New("offline")
		f.indexer.Ingest(ctx, "u2", msg("m3", "c3", "keyword only"))
		if err := f.indexer.Forget(ctx, "u2", "c3"); err != nil {
			t.Fatal(err)
		}
		if len(f.qdrant.deleted) != 0 {
			t.Errorf("deleted = %v", f.qdrant.deleted)
		}
		if ids, _ := f.bm25.ChunkIDs(ctx, "c3"); len(ids) != 0 {
			t.Errorf("keyword chunks left = %v", ids)
		}
	})
}
