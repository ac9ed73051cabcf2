package snapshot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"modoojob/search-service/internal/snapshot"
)

// ── MemoryStore basics ─────────────────────────────────────────────────────

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := snapshot.NewMemoryStore()

	if _, err := s.Get(ctx, "k"); !errors.Is(err, snapshot.ErrNotFound) {
		t.Errorf("Get on empty store = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v1" {
		t.Errorf("Get = (%q, %v), want v1", got, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, snapshot.ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}

	// Deleting a missing key is not an error.
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestMemoryStore_ValueIsolated(t *testing.T) {
	ctx := context.Background()
	s := snapshot.NewMemoryStore()

	src := []byte("original")
	if err := s.Set(ctx, "k", src, 0); err != nil {
		t.Fatal(err)
	}
	src[0] = 'X'

	got, _ := s.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("stored value aliased caller slice: %q", got)
	}

	got[0] = 'Y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("returned value aliased store: %q", again)
	}
}

// ── Expiry ─────────────────────────────────────────────────────────────────

func TestMemoryStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := snapshot.NewMemoryStore()

	if err := s.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, snapshot.ErrNotFound) {
		t.Errorf("Get after expiry = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	s := snapshot.NewMemoryStore()

	s.Set(ctx, "expired", []byte("v"), time.Millisecond)
	s.Set(ctx, "forever", []byte("v"), 0)
	s.Set(ctx, "alive", []byte("v"), time.Hour)

	time.Sleep(5 * time.Millisecond)
	if removed := s.Sweep(); removed != 1 {
		t.Errorf("Sweep removed %d entries, want 1", removed)
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d after sweep, want 2", s.Len())
	}
}

// ── Quota ──────────────────────────────────────────────────────────────────

func TestMemoryStore_MaxValueBytes(t *testing.T) {
	ctx := context.Background()
	s := snapshot.NewMemoryStore()
	s.MaxValueBytes = 4

	if err := s.Set(ctx, "k", []byte("12345"), 0); !errors.Is(err, snapshot.ErrTooLarge) {
		t.Errorf("oversized Set = %v, want ErrTooLarge", err)
	}
	if err := s.Set(ctx, "k", []byte("1234"), 0); err != nil {
		t.Errorf("fitting Set = %v, want nil", err)
	}
}
