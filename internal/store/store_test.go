package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/iammorganparry/companion/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func seedConversation(t *testing.T, db *DB, userID string) string {
	t.Helper()
	id := uuid.NewString()
	err := NewConversationStore(db).Create(context.Background(), &models.Conversation{
		ID: id, UserID: userID, CreatedAt: t0, UpdatedAt: t0,
	})
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	return id
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 2; i++ {
		db, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		db.Close()
	}
}

func TestConversationStore(t *testing.T) {
	db := setupTestDB(t)
	cs := NewConversationStore(db)
	ctx := context.Background()

	t.Run("Get returns nil for missing conversation", func(t *testing.T) {
		c, err := cs.Get(ctx, "missing")
		if err != nil || c != nil {
			t.Fatalf("Get = %v, %v", c, err)
		}
	})

	id := seedConversation(t, db, "u1")
	other := seedConversation(t, db, "u1")
	seedConversation(t, db, "u2")

	t.Run("ListByUser orders by activity", func(t *testing.T) {
		if err := cs.Touch(ctx, id, t0.Add(time.Hour)); err != nil {
			t.Fatal(err)
		}
		list, err := cs.ListByUser(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 2 || list[0].ID != id || list[1].ID != other {
			t.Fatalf("ListByUser = %+v", list)
		}
	})

	t.Run("SetLegacySummary", func(t *testing.T) {
		if err := cs.SetLegacySummary(ctx, id, "Summary of: x", t0); err != nil {
			t.Fatal(err)
		}
		c, err := cs.Get(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if c.LegacySummary != "Summary of: x" {
			t.Errorf("legacy summary = %q", c.LegacySummary)
		}
	})
}

func TestMessageStore(t *testing.T) {
	db := setupTestDB(t)
	ms := NewMessageStore(db)
	ctx := context.Background()
	cid := seedConversation(t, db, "u1")
	cid2 := seedConversation(t, db, "u1")

	for i, content := range []string{"one", "two", "three", "four"} {
		err := ms.Add(ctx, &models.Message{
			ID: uuid.NewString(), ConversationID: cid, Content: content,
			IsUserMessage: i%2 == 0, CreatedAt: t0.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	ms.Add(ctx, &models.Message{ID: uuid.NewString(), ConversationID: cid2, Content: "five", CreatedAt: t0.Add(time.Hour)})

	t.Run("ListMessages returns the tail in order", func(t *testing.T) {
		got, err := ms.ListMessages(ctx, cid, 2)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].Content != "three" || got[1].Content != "four" {
			t.Fatalf("got %+v", got)
		}
		if !got[0].IsUserMessage || got[1].IsUserMessage {
			t.Errorf("user flags lost: %+v", got)
		}
	})

	t.Run("ListMessages without limit", func(t *testing.T) {
		got, _ := ms.ListMessages(ctx, cid, 0)
		if len(got) != 4 || got[0].Content != "one" {
			t.Fatalf("got %+v", got)
		}
		if !got[0].CreatedAt.Equal(t0) {
			t.Errorf("created at = %v", got[0].CreatedAt)
		}
	})

	t.Run("CountMessages", func(t *testing.T) {
		n, err := ms.CountMessages(ctx, cid)
		if err != nil || n != 4 {
			t.Fatalf("count = %d, %v", n, err)
		}
	})

	t.Run("ListUserMessages spans conversations", func(t *testing.T) {
		got, err := ms.ListUserMessages(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 5 || got[4].Content != "five" {
			t.Fatalf("got %+v", got)
		}
	})
}

func TestSummaryStoreUpsert(t *testing.T) {
	db := setupTestDB(t)
	ss := NewSummaryStore(db)
	ctx := context.Background()
	cid := seedConversation(t, db, "u1")

	if got, err := ss.GetSummary(ctx, cid); err != nil || got != nil {
		t.Fatalf("GetSummary on empty = %v, %v", got, err)
	}

	sum := &models.ConversationSummary{ID: "s1", ConversationID: cid, Summary: "first", KeyTopics: []string{"work"}, LastUpdated: t0}
	if err := ss.UpsertSummary(ctx, sum); err != nil {
		t.Fatal(err)
	}
	sum.Summary = "second"
	if err := ss.UpsertSummary(ctx, sum); err != nil {
		t.Fatal(err)
	}

	got, err := ss.GetSummary(ctx, cid)
	if err != nil {
		t.Fatal(err)
	}
	if got.Summary != "second" || got.KeyTopics[0] != "work" {
		t.Errorf("got %+v", got)
	}

	var rows int
	db.QueryRow(`SELECT COUNT(*) FROM conversation_summaries`).Scan(&rows)
	if rows != 1 {
		t.Errorf("rows = %d, want 1", rows)
	}
}

func TestProfileStoreUpsert(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProfileStore(db)
	ctx := context.Background()

	p := &models.UserProfile{UserID: "u1", ConfidenceScore: 0.4, LastUpdated: t0}
	p.PersonalityTraits.Interests = []string{"music"}
	if err := ps.UpsertProfile(ctx, p); err != nil {
		t.Fatal(err)
	}
	p.ConfidenceScore = 0.9
	if err := ps.UpsertProfile(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := ps.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ConfidenceScore != 0.9 || got.PersonalityTraits.Interests[0] != "music" {
		t.Errorf("got %+v", got)
	}

	var score float64
	db.QueryRow(`SELECT confidence_score FROM user_profiles WHERE user_id = 'u1'`).Scan(&score)
	if score != 0.9 {
		t.Errorf("confidence column = %v", score)
	}
}

func TestPersonaStore(t *testing.T) {
	db := setupTestDB(t)
	ps := NewPersonaStore(db)
	ctx := context.Background()

	if err := ps.Upsert(ctx, &models.Persona{ID: "luna", Name: "Luna", Traits: []string{"witty", "curious"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO personas (id, name, personality, created_at, updated_at) VALUES ('blank', 'Blank', '', 0, 0)`); err != nil {
		t.Fatal(err)
	}

	got, err := ps.Get(ctx, "luna")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Luna" || len(got.Traits) != 2 || got.Traits[1] != "curious" {
		t.Errorf("got %+v", got)
	}

	blank, _ := ps.Get(ctx, "blank")
	if blank.Traits != nil {
		t.Errorf("blank traits = %v, want nil", blank.Traits)
	}

	list, _ := ps.List(ctx)
	if len(list) != 2 || list[0].Name != "Blank" {
		t.Errorf("list = %+v", list)
	}

	if missing, err := ps.Get(ctx, "nope"); missing != nil || err != nil {
		t.Errorf("missing = %v, %v", missing, err)
	}
}

func TestEmbeddingCacheStore(t *testing.T) {
	db := setupTestDB(t)
	es := NewEmbeddingCacheStore(db)
	ctx := context.Background()

	if got, err := es.Get(ctx, "h"); got != nil || err != nil {
		t.Fatalf("Get on empty = %v, %v", got, err)
	}
	if err := es.Put(ctx, &models.EmbeddingCacheEntry{ContentHash: "h", Embedding: []byte{1, 2, 3, 4}, Dimension: 1, Model: "m"}); err != nil {
		t.Fatal(err)
	}
	got, err := es.Get(ctx, "h")
	if err != nil || got == nil || got.Model != "m" || len(got.Embedding) != 4 {
		t.Fatalf("Get = %+v, %v", got, err)
	}
}

func TestBM25Store(t *testing.T) {
	db := setupTestDB(t)
	bs := NewBM25Store(db)
	ctx := context.Background()

	chunks := []Chunk{
		{ID: "a", MessageID: "m1", ConversationID: "c1", UserID: "u1", TotalChunks: 1, Text: "we talked about my dog and the beach"},
		{ID: "b", MessageID: "m2", ConversationID: "c2", UserID: "u1", TotalChunks: 1, Text: "the dog chewed my shoes"},
		{ID: "c", MessageID: "m3", ConversationID: "c3", UserID: "u2", TotalChunks: 1, Text: "another user's dog"},
	}
	for i := range chunks {
		if err := bs.Index(ctx, &chunks[i]); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("scoped to user", func(t *testing.T) {
		got, err := bs.Search(ctx, `"dog"`, "u1", "", 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("results = %d, want 2", len(got))
		}
		for _, r := range got {
			if r.UserID != "u1" {
				t.Errorf("leaked result from %s", r.UserID)
			}
		}
	})

	t.Run("scoped to conversation", func(t *testing.T) {
		got, _ := bs.Search(ctx, `"dog" OR "beach"`, "u1", "c1", 10)
		if len(got) != 1 || got[0].ID != "a" {
			t.Fatalf("got %+v", got)
		}
		sr := got[0].ToSemanticResult()
		if sr.Score < 0 || sr.Score >= 1 {
			t.Errorf("normalized score = %v", sr.Score)
		}
	})

	t.Run("reindex updates text", func(t *testing.T) {
		chunks[0].Text = "now about cats"
		if err := bs.Index(ctx, &chunks[0]); err != nil {
			t.Fatal(err)
		}
		got, _ := bs.Search(ctx, `"cats"`, "u1", "", 10)
		if len(got) != 1 {
			t.Fatalf("results = %d, want 1", len(got))
		}
		got, _ = bs.Search(ctx, `"beach"`, "u1", "", 10)
		if len(got) != 0 {
			t.Errorf("stale text still indexed")
		}
	})
}

func TestConversationDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	cs := NewConversationStore(db)
	ms := NewMessageStore(db)
	bs := NewBM25Store(db)

	cid := seedConversation(t, db, "u1")
	keep := seedConversation(t, db, "u1")
	for _, c := range []string{cid, keep} {
		if err := ms.Add(ctx, &models.Message{ID: uuid.NewString(), ConversationID: c, Content: "hello", CreatedAt: t0}); err != nil {
			t.Fatal(err)
		}
	}
	if err := NewSummaryStore(db).UpsertSummary(ctx, &models.ConversationSummary{ID: "s1", ConversationID: cid, LastUpdated: t0}); err != nil {
		t.Fatal(err)
	}
	for i, c := range []string{cid, cid, keep} {
		ch := Chunk{ID: uuid.NewString(), MessageID: "m", ConversationID: c, UserID: "u1", ChunkIndex: i, TotalChunks: 3, Text: "we talked about the dog"}
		if err := bs.Index(ctx, &ch); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := bs.ChunkIDs(ctx, cid)
	if err != nil || len(ids) != 2 {
		t.Fatalf("ChunkIDs = %v, %v", ids, err)
	}
	if err := bs.DeleteConversation(ctx, cid); err != nil {
		t.Fatal(err)
	}
	if got, _ := bs.Search(ctx, `"dog"`, "u1", "", 10); len(got) != 1 || got[0].ConversationID != keep {
		t.Errorf("search after delete = %+v", got)
	}

	if err := cs.Delete(ctx, cid); err != nil {
		t.Fatal(err)
	}
	if c, _ := cs.Get(ctx, cid); c != nil {
		t.Error("conversation still present")
	}
	if n, _ := ms.CountMessages(ctx, cid); n != 0 {
		t.Errorf("messages left = %d", n)
	}
	if s, _ := NewSummaryStore(db).GetSummary(ctx, cid); s != nil {
		t.Error("summary survived its conversation")
	}
	if n, _ := ms.CountMessages(ctx, keep); n != 1 {
		t.Errorf("other conversation messages = %d", n)
	}
}
