package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/pebble/internal/adapters/sqlite"
)

func TestStateStore_ApplyAndLoad(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewStateStore(db)
	ctx := context.Background()

	err := store.Apply(ctx, map[string]string{"a": "1", "b": "2"}, nil)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	values, err := store.Load(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("expected 2 values, got %d", len(values))
	}
	if values["a"] != "1" || values["b"] != "2" {
		t.Errorf("unexpected values: %v", values)
	}
	if _, ok := values["missing"]; ok {
		t.Error("absent key should be omitted")
	}
}

func TestStateStore_Overwrite(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewStateStore(db)
	ctx := context.Background()

	_ = store.Apply(ctx, map[string]string{"a": "1"}, nil)
	if err := store.Apply(ctx, map[string]string{"a": "2"}, nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	values, _ := store.Load(ctx, []string{"a"})
	if values["a"] != "2" {
		t.Errorf("expected overwritten value '2', got %q", values["a"])
	}
}

func TestStateStore_Remove(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewStateStore(db)
	ctx := context.Background()

	_ = store.Apply(ctx, map[string]string{"a": "1", "b": "2"}, nil)
	if err := store.Apply(ctx, map[string]string{"c": "3"}, []string{"a", "never-set"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	values, _ := store.Load(ctx, []string{"a", "b", "c"})
	if _, ok := values["a"]; ok {
		t.Error("expected 'a' to be removed")
	}
	if values["b"] != "2" || values["c"] != "3" {
		t.Errorf("unexpected values: %v", values)
	}
}

func TestStateStore_LoadNoKeys(t *testing.T) {
	db := setupTestDB(t)
	store := sqlite.NewStateStore(db)

	values, err := store.Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("expected no values, got %v", values)
	}
}
