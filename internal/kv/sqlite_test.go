package kv

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "yangfinder.db")

	s, err := OpenSQLite(ctx, SQLiteOptions{Path: path})
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := s.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set() upsert error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = OpenSQLite(ctx, SQLiteOptions{Path: path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || v != "v2" {
		t.Errorf("Get() = %q ok=%v err=%v, want v2", v, ok, err)
	}
	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Errorf("Get(missing) = ok=%v err=%v", ok, err)
	}
}

func TestSQLiteFullIsQuota(t *testing.T) {
	ctx := context.Background()

	// max_page_count below the current size clamps to the current size,
	// so the database cannot grow at all.
	s, err := OpenSQLite(ctx, SQLiteOptions{Path: ":memory:", MaxPages: 1})
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer s.Close()

	err = s.Set(ctx, "big", strings.Repeat("x", 1<<20))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("Set() on full database = %v, want ErrQuotaExceeded", err)
	}
	if _, ok, _ := s.Get(ctx, "big"); ok {
		t.Error("rejected value should not be stored")
	}
}

func TestSQLiteClosedIsUnavailable(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, SQLiteOptions{Path: ":memory:"})
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	_ = s.Close()

	if err := s.Set(ctx, "k", "v"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Set() after Close() = %v, want ErrUnavailable", err)
	}
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite(context.Background(), SQLiteOptions{}); err == nil {
		t.Error("OpenSQLite() without path should fail")
	}
}

func TestSQLiteDelete(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, SQLiteOptions{Path: ":memory:"})
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer s.Close()

	if err := s.Set(ctx, "alice:recent", "[]"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Delete(ctx, "alice:recent"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, "alice:recent"); ok {
		t.Error("key still present after Delete()")
	}
	if err := s.Delete(ctx, "absent"); err != nil {
		t.Errorf("Delete() of an absent key = %v", err)
	}
}
