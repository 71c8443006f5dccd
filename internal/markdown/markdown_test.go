package markdown

import (
	"strings"
	"testing"
	"time"

	"github.com/starford/memo/internal/models"
)

func TestRender(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	n := models.Note{
		ID:        "01HQ",
		Title:     "買い物",
		Content:   "牛乳\n卵",
		Favorite:  true,
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}
	out, err := Render(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)
	if !strings.HasPrefix(s, "---\nid: 01HQ\ntitle: 買い物\nfavorite: true\n") {
		t.Errorf("unexpected header:\n%s", s)
	}
	if !strings.HasSuffix(s, "---\n牛乳\n卵\n") {
		t.Errorf("unexpected body:\n%s", s)
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	n := models.Note{ID: "01X", Title: "Title", Content: "line one\n\nline two", Favorite: true}
	out, err := Render(n)
	if err != nil {
		t.Fatal(err)
	}
	doc := Parse(out)
	if doc.ID != "01X" || doc.Title != "Title" || doc.Content != n.Content || !doc.Favorite {
		t.Errorf("round trip = %+v", doc)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	doc := Parse([]byte("# Just a heading\nSome text.\n"))
	if doc.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", doc.Title, "Just a heading")
	}
	if doc.Content != "Some text." {
		t.Errorf("content = %q", doc.Content)
	}
	if doc.Favorite || doc.ID != "" {
		t.Errorf("unexpected fields: %+v", doc)
	}
}

func TestParse_FrontmatterTitleWins(t *testing.T) {
	doc := Parse([]byte("---\ntitle: FM Title\n---\n# H1 Title\ntext\n"))
	if doc.Title != "FM Title" {
		t.Errorf("title = %q, want %q", doc.Title, "FM Title")
	}
	if doc.Content != "# H1 Title\ntext" {
		t.Errorf("content = %q", doc.Content)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := "---\n: invalid: yaml: {{{\n---\nBody\n"
	doc := Parse([]byte(input))
	if doc.Title != "" {
		t.Errorf("title = %q, want empty", doc.Title)
	}
	if doc.Content != strings.TrimSpace(input) {
		t.Errorf("content = %q", doc.Content)
	}
}

func TestParse_PlainText(t *testing.T) {
	doc := Parse([]byte("just a line"))
	if doc.Title != "" || doc.Content != "just a line" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"01ABC":         "01ABC.md",
		"a-b_c":         "a-b_c.md",
		"../../outside": "______outside.md",
		`a\b"c`:         "a_b_c.md",
		"":              "note.md",
	}
	for id, want := range tests {
		if got := FileName(models.Note{ID: id}); got != want {
			t.Errorf("FileName(%q) = %q, want %q", id, got, want)
		}
	}
}
