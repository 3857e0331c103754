package progress

import (
	"path/filepath"
	"testing"
)

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.db")

	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Set(PositionKey("c1", "a1"), "42"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(PositionKey("c1", "a1"), "90"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	value, ok := store.Get(PositionKey("c1", "a1"))
	if !ok || value != "90" {
		t.Errorf("expected persisted value 90, got %q ok=%v", value, ok)
	}

	if _, ok := store.Get("missing"); ok {
		t.Error("expected missing key to report absence")
	}
}
