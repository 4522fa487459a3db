package stubs

import (
	"context"
	"errors"
	"testing"

	"catalog/internal/storage"
)

func TestMockDB_GetMissing(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	if err := db.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}

	_, ok, err := db.Get(ctx, "library_books")
	if err != nil {
		t.Fatalf("Failed to get key: %v", err)
	}
	if ok {
		t.Error("Expected missing key to report ok=false")
	}
}

func TestMockDB_PutMany(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	err := db.PutMany(ctx, []storage.Entry{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
	})
	if err != nil {
		t.Fatalf("Failed to put entries: %v", err)
	}

	for key, want := range map[string]string{"a": "1", "b": "2"} {
		got, ok, err := db.Get(ctx, key)
		if err != nil {
			t.Fatalf("Failed to get %s: %v", key, err)
		}
		if !ok || got != want {
			t.Errorf("Expected %s=%q, got %q (ok=%v)", key, want, got, ok)
		}
	}

	if db.Writes() != 1 {
		t.Errorf("Expected 1 write, got %d", db.Writes())
	}
}

func TestMockDB_FailWrites(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()
	boom := errors.New("quota exceeded")

	db.FailWrites(boom)
	err := db.PutMany(ctx, []storage.Entry{{Key: "a", Value: "1"}})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected injected error, got %v", err)
	}

	if _, ok, _ := db.Get(ctx, "a"); ok {
		t.Error("Expected failed write to leave no value behind")
	}

	db.FailWrites(nil)
	if err := db.PutMany(ctx, []storage.Entry{{Key: "a", Value: "1"}}); err != nil {
		t.Fatalf("Expected write to succeed after recovery: %v", err)
	}
}
