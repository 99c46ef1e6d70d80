package filebackend

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReportsAbsence(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "backend.json"))

	blob, found, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if found {
		t.Error("missing file reported found = true")
	}
	if blob != nil {
		t.Errorf("blob = %q, want nil", blob)
	}
}

func TestSaveThenLoad(t *testing.T) {
	// Save creates intermediate directories.
	path := filepath.Join(t.TempDir(), "nested", "backend.json")
	store := New(path)
	ctx := context.Background()

	want := []byte(`{"document":{},"version":3}`)
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, found, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !found {
		t.Fatal("saved blob not found")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Load() = %s, want %s", got, want)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := New(filepath.Join(dir, "backend.json"))

	if err := store.Save(context.Background(), []byte(`{}`)); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "backend.json" {
		t.Errorf("directory contents = %v, want only backend.json", entries)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "backend.json"))
	ctx := context.Background()

	if err := store.Save(ctx, []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	want := []byte(`{"b":2}`)
	if err := store.Save(ctx, want); err != nil {
		t.Fatal(err)
	}

	got, _, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Load() = %s, want %s", got, want)
	}
}
