// Package testutil provides shared test helpers for setting up storage and
// note stores.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/starford/memo/internal/notestore"
	"github.com/starford/memo/internal/storage"
)

// TestProvider returns a file provider backed by an in-memory filesystem.
func TestProvider(t *testing.T) storage.Provider {
	t.Helper()
	p, err := storage.NewFS(afero.NewMemMapFs(), "/data")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// TestSQLite opens a SQLite provider in a temporary directory that is
// automatically cleaned up.
func TestSQLite(t *testing.T) *storage.SQLite {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "memo-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore opens a note store on p, or on a fresh TestProvider when p is
// nil. The store is closed when the test ends.
func TestStore(t *testing.T, p storage.Provider, opts ...notestore.Option) *notestore.Store {
	t.Helper()
	if p == nil {
		p = TestProvider(t)
	}
	s, err := notestore.Open(p, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s
}
