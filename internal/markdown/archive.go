package markdown

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/starford/memo/internal/models"
)

// Export writes one Markdown file per note into dir and returns the total
// number of bytes written.
func Export(fs afero.Fs, dir string, notes []models.Note) (int64, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("markdown: create %s: %w", dir, err)
	}
	var total int64
	for _, n := range notes {
		data, err := Render(n)
		if err != nil {
			return total, err
		}
		path := filepath.Join(dir, FileName(n))
		if rel, err := filepath.Rel(dir, path); err != nil || rel != filepath.Base(path) {
			return total, fmt.Errorf("markdown: path escapes export dir: %s", path)
		}
		if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
			return total, fmt.Errorf("markdown: write %s: %w", path, err)
		}
		total += int64(len(data))
	}
	return total, nil
}

// ReadFile parses the Markdown file at path.
func ReadFile(fs afero.Fs, path string) (Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Document{}, fmt.Errorf("markdown: read %s: %w", path, err)
	}
	return Parse(data), nil
}
