package notestore

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/memo/internal/models"
)

func TestCodecRoundTrip(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	base := time.Date(2025, 6, 1, 10, 0, 0, 123456789, jst)

	var notes []models.Note
	for i := range 7 {
		created := base.Add(time.Duration(i) * time.Minute)
		notes = append(notes, models.Note{
			ID:        fmt.Sprintf("id-%d", i),
			Title:     fmt.Sprintf("タイトル %d", i),
			Content:   strings.Repeat("x\n", i),
			Favorite:  i%2 == 0,
			CreatedAt: created,
			UpdatedAt: created.Add(time.Duration(i) * time.Second),
		})
	}
	// Monotonic clock readings must not matter.
	now := time.Now()
	notes = append(notes, models.Note{ID: "now", CreatedAt: now, UpdatedAt: now})

	data, err := Encode(notes)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	assertSameNotes(t, notes, got)
}

func TestEncode_NilIsEmptyList(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEncode_TimestampsAreStrings(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := Encode([]models.Note{{ID: "1", CreatedAt: ts, UpdatedAt: ts}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"createdAt":"2024-01-02T03:04:05Z"`)
}

func TestDecode_Rejects(t *testing.T) {
	for _, raw := range []string{
		``,
		`{}`,
		`null`,
		`[{"id":""}]`,
		`[{"id":"a"},{"id":"a"}]`,
		`[{"id":"a","createdAt":"yesterday"}]`,
		`[{"id":"../../outside"}]`,
		`[{"id":"a/b"}]`,
		`[{"id":"a\\b"}]`,
	} {
		_, err := Decode([]byte(raw))
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestDecode_ClampsUpdatedAt(t *testing.T) {
	raw := `[{"id":"a","createdAt":"2024-01-02T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`
	got, err := Decode([]byte(raw))
	require.NoError(t, err)
	assert.True(t, got[0].UpdatedAt.Equal(got[0].CreatedAt))
}
