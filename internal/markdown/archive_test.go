package markdown

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/starford/memo/internal/models"
)

func TestExportAndReadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	notes := []models.Note{
		{ID: "01A", Title: "one", Content: "first"},
		{ID: "01B", Title: "two", Content: "second", Favorite: true},
	}

	n, err := Export(fs, "/out", notes)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n == 0 {
		t.Error("no bytes written")
	}

	doc, err := ReadFile(fs, "/out/01B.md")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if doc.Title != "two" || doc.Content != "second" || !doc.Favorite {
		t.Errorf("doc = %+v", doc)
	}

	if _, err := ReadFile(fs, "/out/missing.md"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExportStaysInDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	notes := []models.Note{{ID: "../../outside", Title: "t", Content: "c"}}

	if _, err := Export(fs, "/home/u/export", notes); err != nil {
		t.Fatalf("export: %v", err)
	}
	if ok, _ := afero.Exists(fs, "/home/outside.md"); ok {
		t.Fatal("note written outside the export dir")
	}
	if ok, _ := afero.Exists(fs, "/home/u/export/______outside.md"); !ok {
		t.Error("sanitized file missing")
	}
}
