package notestore

import (
	"encoding/json"
	"fmt"

	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/storage"
)

// Encode serializes the collection in storage order. Timestamps are written
// as RFC 3339 strings.
func Encode(notes []models.Note) ([]byte, error) {
	if notes == nil {
		notes = []models.Note{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return nil, fmt.Errorf("notestore: encode: %w", err)
	}
	return data, nil
}

// Decode parses a collection written by Encode (or by the browser app).
// Records without an id, with a duplicate id, or with an id that is not a
// valid storage key (path separators, "..") make the whole value malformed.
func Decode(data []byte) ([]models.Note, error) {
	var notes []models.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("notestore: decode: %w", err)
	}
	if notes == nil {
		return nil, fmt.Errorf("notestore: decode: not a note list")
	}
	seen := make(map[string]struct{}, len(notes))
	for i := range notes {
		n := &notes[i]
		if n.ID == "" {
			return nil, fmt.Errorf("notestore: decode: record %d has no id", i)
		}
		if err := storage.ValidateKey(n.ID); err != nil {
			return nil, fmt.Errorf("notestore: decode: record %d: %w", i, err)
		}
		if _, dup := seen[n.ID]; dup {
			return nil, fmt.Errorf("notestore: decode: duplicate id %s", n.ID)
		}
		seen[n.ID] = struct{}{}
		if n.UpdatedAt.Before(n.CreatedAt) {
			n.UpdatedAt = n.CreatedAt
		}
	}
	return notes, nil
}
