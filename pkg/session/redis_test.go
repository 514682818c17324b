package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, ttl), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	turns := []Turn{
		{Role: RoleUser, Content: "查一下订单 ORD20240115001", Timestamp: time.Now().UTC().Truncate(time.Second)},
		{Role: RoleAssistant, Content: "订单已发货", Mode: "tool", Timestamp: time.Now().UTC().Truncate(time.Second)},
	}

	if err := store.Append(ctx, "u1", "s1", turns...); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := store.Get(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Get() returned %d turns, want 2", len(got))
	}
	for i := range turns {
		if got[i].Role != turns[i].Role || got[i].Content != turns[i].Content || got[i].Mode != turns[i].Mode {
			t.Errorf("turn %d = %+v, want %+v", i, got[i], turns[i])
		}
	}
}

func TestRedisStoreAppendPreservesOrder(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	contents := []string{"第一条", "第二条", "第三条"}
	for _, c := range contents {
		if err := store.Append(ctx, "u1", "s1", Turn{Role: RoleUser, Content: c}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := store.Get(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != len(contents) {
		t.Fatalf("Get() returned %d turns, want %d", len(got), len(contents))
	}
	for i, c := range contents {
		if got[i].Content != c {
			t.Errorf("turn %d content = %q, want %q", i, got[i].Content, c)
		}
	}
}

func TestRedisStoreMissingSessionIsEmpty(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)

	got, err := store.Get(context.Background(), "u1", "never-seen")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Get() on absent session returned %d turns, want 0", len(got))
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	if err := store.Append(ctx, "u1", "s1", Turn{Role: RoleUser, Content: "hello"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	mr.FastForward(time.Hour + time.Minute)

	got, err := store.Get(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Get() after expiry returned %d turns, want 0", len(got))
	}
}

func TestRedisStoreTTLSlidesOnAppend(t *testing.T) {
	store, mr := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	if err := store.Append(ctx, "u1", "s1", Turn{Role: RoleUser, Content: "one"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	mr.FastForward(40 * time.Minute)
	if err := store.Append(ctx, "u1", "s1", Turn{Role: RoleAssistant, Content: "two"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	// 80 minutes after the first write but only 40 after the second.
	mr.FastForward(40 * time.Minute)

	got, err := store.Get(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Get() returned %d turns, want 2 (TTL should reset on append)", len(got))
	}
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	if err := store.Append(ctx, "u1", "s1", Turn{Role: RoleUser, Content: "hello"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Delete(ctx, "u1", "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := store.Get(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Get() after delete returned %d turns, want 0", len(got))
	}
}

func TestRedisStoreSessionsAreIsolated(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Hour)
	ctx := context.Background()

	if err := store.Append(ctx, "u1", "s1", Turn{Role: RoleUser, Content: "for u1"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(ctx, "u2", "s1", Turn{Role: RoleUser, Content: "for u2"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := store.Get(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 1 || got[0].Content != "for u1" {
		t.Errorf("Get(u1, s1) = %+v, want only u1's turn", got)
	}
}
