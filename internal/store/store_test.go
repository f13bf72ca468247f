package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	if _, err := s.Load(ctx, KeyTransactions); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}

	if err := s.Save(ctx, KeyTransactions, []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx, KeyTransactions)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `[{"id":"a"}]` {
		t.Fatalf("round trip mismatch: %s", got)
	}

	// Overwrite: last write wins.
	if err := s.Save(ctx, KeyTransactions, []byte(`[]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ = s.Load(ctx, KeyTransactions)
	if string(got) != `[]` {
		t.Fatalf("overwrite not applied: %s", got)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "hishab.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	if _, err := s.Load(ctx, KeySettings); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}

	doc := []byte(`{"currency":"BDT","dateFormat":"dd-mm-yyyy","darkMode":false,"language":"bn"}`)
	if err := s.Save(ctx, KeySettings, doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Saved values survive a reopen.
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	s, err = NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer s.Close()

	got, err := s.Load(ctx, KeySettings)
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if string(got) != string(doc) {
		t.Fatalf("round trip mismatch: %s", got)
	}
}

func TestLoadJSONDefaults(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// Missing key: fallback untouched.
	out := []string{"default"}
	LoadJSON(ctx, s, KeyFixed, &out)
	if len(out) != 1 || out[0] != "default" {
		t.Fatalf("missing key should keep fallback, got %v", out)
	}

	// Corrupt payload: fallback untouched, no panic.
	_ = s.Save(ctx, KeyFixed, []byte(`{not json`))
	LoadJSON(ctx, s, KeyFixed, &out)
	if len(out) != 1 || out[0] != "default" {
		t.Fatalf("corrupt payload should keep fallback, got %v", out)
	}

	// Well-formed JSON of the wrong shape: fallback untouched, not half
	// overwritten by the elements decoded before the type error.
	_ = s.Save(ctx, KeyFixed, []byte(`["a",3]`))
	LoadJSON(ctx, s, KeyFixed, &out)
	if len(out) != 1 || out[0] != "default" {
		t.Fatalf("type error should keep fallback, got %v", out)
	}

	// Valid payload decodes.
	_ = s.Save(ctx, KeyFixed, []byte(`["a","b"]`))
	LoadJSON(ctx, s, KeyFixed, &out)
	if len(out) != 2 || out[0] != "a" {
		t.Fatalf("valid payload not decoded: %v", out)
	}
}
