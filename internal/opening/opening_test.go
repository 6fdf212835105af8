package opening

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisStateStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStateStore(client, "opening", time.Hour), mr
}

func stores(t *testing.T) map[string]StateStore {
	rs, _ := newRedisStore(t)
	return map[string]StateStore{
		"memory": NewMemoryStateStore(0),
		"redis":  rs,
	}
}

func TestFullCycle(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sel := NewSelector(DefaultMessages, st)

			seen := map[string]bool{}
			var last string
			for i := range DefaultMessages {
				msg, err := sel.Next(ctx, "s1")
				if err != nil {
					t.Fatalf("Next: %v", err)
				}
				if msg != DefaultMessages[i] {
					t.Errorf("call %d = %q, want list order", i, msg)
				}
				if seen[msg] {
					t.Errorf("repeat within cycle: %q", msg)
				}
				seen[msg] = true
				last = msg
			}

			next, err := sel.Next(ctx, "s1")
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			if next == last {
				t.Errorf("back-to-back repeat across cycles: %q", next)
			}
			if next != DefaultMessages[0] {
				t.Errorf("new cycle starts with %q", next)
			}
		})
	}
}

func TestNewCycleAvoidsLast(t *testing.T) {
	sel := NewSelector([]string{"a", "b"}, NewMemoryStateStore(10))
	ctx := context.Background()

	var got []string
	for range 6 {
		msg, err := sel.Next(ctx, "s")
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, msg)
	}
	for i := 1; i < len(got); i++ {
		if got[i] == got[i-1] {
			t.Fatalf("back-to-back repeat in %v", got)
		}
	}
}

func TestSingleMessageRepeats(t *testing.T) {
	sel := NewSelector([]string{"only"}, NewMemoryStateStore(10))
	for range 3 {
		msg, err := sel.Next(context.Background(), "s")
		if err != nil || msg != "only" {
			t.Fatalf("Next = %q, %v", msg, err)
		}
	}
}

func TestNoMessages(t *testing.T) {
	sel := NewSelector(nil, NewMemoryStateStore(10))
	if _, err := sel.Next(context.Background(), "s"); !errors.Is(err, ErrNoMessages) {
		t.Fatalf("err = %v, want ErrNoMessages", err)
	}
}

func TestSessionsIndependent(t *testing.T) {
	sel := NewSelector(DefaultMessages, NewMemoryStateStore(10))
	ctx := context.Background()

	a, _ := sel.Next(ctx, "a")
	b, _ := sel.Next(ctx, "b")
	if a != b {
		t.Errorf("fresh sessions got %q and %q", a, b)
	}
}

func TestReset(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sel := NewSelector(DefaultMessages, st)
			sel.Next(ctx, "s")
			sel.Next(ctx, "s")

			if err := sel.Reset(ctx, "s"); err != nil {
				t.Fatalf("Reset: %v", err)
			}
			msg, _ := sel.Next(ctx, "s")
			if msg != DefaultMessages[0] {
				t.Errorf("after reset got %q", msg)
			}
		})
	}
}

func TestMemoryStateStoreEvicts(t *testing.T) {
	st := NewMemoryStateStore(3)
	ctx := context.Background()
	for i := range 5 {
		st.Save(ctx, fmt.Sprintf("s%d", i), State{Used: []int{0}, Last: 0})
	}
	if st.Len() != 3 {
		t.Fatalf("len = %d, want 3", st.Len())
	}
	if _, ok, _ := st.Load(ctx, "s0"); ok {
		t.Error("oldest session not evicted")
	}

	// touching s2 keeps it alive past the next insert
	st.Load(ctx, "s2")
	st.Save(ctx, "s5", State{Last: -1})
	if _, ok, _ := st.Load(ctx, "s2"); !ok {
		t.Error("recently used session evicted")
	}
	if _, ok, _ := st.Load(ctx, "s3"); ok {
		t.Error("least recently used session kept")
	}
}

func TestRedisStateStoreTTL(t *testing.T) {
	st, mr := newRedisStore(t)
	ctx := context.Background()

	if err := st.Save(ctx, "s", State{Used: []int{0, 1}, Last: 1}); err != nil {
		t.Fatal(err)
	}
	got, ok, err := st.Load(ctx, "s")
	if err != nil || !ok || got.Last != 1 || len(got.Used) != 2 {
		t.Fatalf("Load = %+v, %v, %v", got, ok, err)
	}
	if ttl := mr.TTL("opening:s"); ttl != time.Hour {
		t.Errorf("ttl = %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, ok, _ := st.Load(ctx, "s"); ok {
		t.Error("state survived its TTL")
	}
}

func TestRedisStateStoreKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	for _, prefix := range []string{"companion:opening", "companion:opening:"} {
		st := NewRedisStateStore(client, prefix, time.Hour)
		if err := st.Save(ctx, "s1", State{Used: []int{0}, Last: 0}); err != nil {
			t.Fatal(err)
		}
		if !mr.Exists("companion:opening:s1") {
			t.Errorf("prefix %q: keys = %v", prefix, mr.Keys())
		}
		mr.FlushAll()
	}
}
