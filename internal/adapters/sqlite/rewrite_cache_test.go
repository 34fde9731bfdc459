package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/pebble/internal/adapters/sqlite"
	"github.com/example/pebble/internal/core/stage"
)

func TestRewriteCache_PutGet(t *testing.T) {
	db := setupTestDB(t)
	cache := sqlite.NewRewriteCache(db)
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "walk daily", stage.Wearing); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := cache.Put(ctx, "walk daily", stage.Wearing, "walk most days"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := cache.Get(ctx, "walk daily", stage.Wearing)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got != "walk most days" {
		t.Errorf("expected 'walk most days', got %q", got)
	}

	// Keys are exact on both text and stage.
	if _, ok, _ := cache.Get(ctx, "walk daily", stage.Drifting); ok {
		t.Error("different stage should miss")
	}
	if _, ok, _ := cache.Get(ctx, "Walk daily", stage.Wearing); ok {
		t.Error("different text should miss")
	}
}

func TestRewriteCache_StageZeroNeverStored(t *testing.T) {
	db := setupTestDB(t)
	cache := sqlite.NewRewriteCache(db)
	ctx := context.Background()

	if err := cache.Put(ctx, "walk daily", stage.Untouched, "something else"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "walk daily", stage.Untouched); ok {
		t.Error("stage 0 should never be cached")
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty kv table, got %d rows", count)
	}
}
