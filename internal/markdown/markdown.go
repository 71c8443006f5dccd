// Package markdown converts notes to and from Markdown files with a YAML
// frontmatter header.
package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/memo/internal/models"
)

const delim = "---"

type frontmatter struct {
	ID       string    `yaml:"id,omitempty"`
	Title    string    `yaml:"title,omitempty"`
	Favorite bool      `yaml:"favorite,omitempty"`
	Created  time.Time `yaml:"created,omitempty"`
	Updated  time.Time `yaml:"updated,omitempty"`
}

// Document is a note parsed from Markdown.
type Document struct {
	ID       string
	Title    string
	Content  string
	Favorite bool
}

// Render writes n as frontmatter followed by the note content.
func Render(n models.Note) ([]byte, error) {
	fm := frontmatter{
		ID:       n.ID,
		Title:    n.Title,
		Favorite: n.Favorite,
		Created:  n.CreatedAt.UTC(),
		Updated:  n.UpdatedAt.UTC(),
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("markdown: render frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	buf.Write(head)
	buf.WriteString(delim + "\n")
	buf.WriteString(n.Content)
	if n.Content != "" && !strings.HasSuffix(n.Content, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Parse reads a Markdown document. The title comes from the frontmatter, or
// failing that from the first H1 heading, which is then dropped from the body.
func Parse(data []byte) Document {
	fm, body := splitFrontmatter(data)

	doc := Document{
		ID:       fm.ID,
		Title:    strings.TrimSpace(fm.Title),
		Favorite: fm.Favorite,
	}
	if doc.Title == "" {
		doc.Title, body = takeHeading(body)
	}
	doc.Content = strings.TrimSpace(body)
	return doc
}

// splitFrontmatter separates YAML frontmatter between leading --- lines from
// the body. Missing or invalid frontmatter leaves the whole input as body.
func splitFrontmatter(data []byte) (frontmatter, string) {
	var fm frontmatter
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, string(data)
	}

	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(after), "\n\r")

	if err := yaml.Unmarshal(block, &fm); err != nil {
		return frontmatter{}, string(data)
	}
	return fm, body
}

func takeHeading(body string) (string, string) {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			title := strings.TrimSpace(trimmed[2:])
			rest := append(lines[:i:i], lines[i+1:]...)
			return title, strings.Join(rest, "\n")
		}
	}
	return "", body
}

// FileName returns a file name for n that is stable across exports. Only
// letters, digits, '-' and '_' of the id are kept; anything else becomes '_'.
func FileName(n models.Note) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, n.ID)
	if name == "" {
		name = "note"
	}
	return name + ".md"
}
