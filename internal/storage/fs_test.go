package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/starford/memo/internal/apperr"
)

func tempFS(t *testing.T) *FS {
	t.Helper()
	s, err := NewFS(afero.NewMemMapFs(), "/data")
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func TestSetAndGet(t *testing.T) {
	s := tempFS(t)
	value := []byte(`[{"id":"1"}]`)
	if err := s.Set("memos", value); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get("memos")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("value mismatch: got %q", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := tempFS(t)
	_, err := s.Get("memos")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestOverwrite(t *testing.T) {
	s := tempFS(t)
	_ = s.Set("memos", []byte("original"))
	if err := s.Set("memos", []byte("updated")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _ := s.Get("memos")
	if string(got) != "updated" {
		t.Errorf("expected updated value, got %q", got)
	}

	// Confirm no leftover temp files.
	matches, _ := afero.Glob(s.fs, filepath.Join(s.root, ".memo-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestDelete(t *testing.T) {
	s := tempFS(t)
	_ = s.Set("memos", []byte("bye"))
	if err := s.Delete("memos"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("memos"); err == nil {
		t.Error("expected error reading deleted key")
	}
	if err := s.Delete("memos"); err != nil {
		t.Errorf("deleting absent key should be a no-op: %v", err)
	}
}

func TestInvalidKeys(t *testing.T) {
	s := tempFS(t)
	for _, k := range []string{"", "..", "../outside", "a/b", `a\b`} {
		if _, err := s.Get(k); !errors.Is(err, apperr.ErrInvalidKey) {
			t.Errorf("Get(%q) err = %v, want ErrInvalidKey", k, err)
		}
		if err := s.Set(k, []byte("x")); !errors.Is(err, apperr.ErrInvalidKey) {
			t.Errorf("Set(%q) err = %v, want ErrInvalidKey", k, err)
		}
	}
}

func TestOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFS(afero.NewOsFs(), filepath.Join(dir, "nested"))
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	if err := s.Set("memos", []byte("[]")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, err := afero.ReadFile(afero.NewOsFs(), filepath.Join(dir, "nested", "memos.json"))
	if err != nil {
		t.Fatalf("file not on disk: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("content = %q", data)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/file", []byte("x"), 0o644)
	if _, err := NewFS(fs, "/file"); err == nil {
		t.Error("expected error when root is a file")
	}
}
