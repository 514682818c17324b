package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	if err := store.Append(ctx, "u1", "s1",
		Turn{Role: RoleUser, Content: "在吗"},
		Turn{Role: RoleAssistant, Content: "您好，请问有什么可以帮您？", Mode: "rag"},
	); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := store.Get(ctx, "u1", "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Get() returned %d turns, want 2", len(got))
	}
	if got[0].Role != RoleUser || got[1].Role != RoleAssistant {
		t.Errorf("roles = %q, %q; want user, assistant", got[0].Role, got[1].Role)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	if err := store.Append(ctx, "u1", "s1", Turn{Role: RoleUser, Content: "original"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, _ := store.Get(ctx, "u1", "s1")
	got[0].Content = "mutated"

	again, _ := store.Get(ctx, "u1", "s1")
	if again[0].Content != "original" {
		t.Errorf("stored history mutated through returned slice")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(time.Hour)
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
