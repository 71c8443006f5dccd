package notestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/memo/internal/models"
)

func at(minute int) time.Time {
	return time.Date(2025, 3, 1, 12, minute, 0, 0, time.UTC)
}

func ids(notes []models.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func TestView_FavoritesFirstThenUpdatedDesc(t *testing.T) {
	notes := []models.Note{
		{ID: "old", UpdatedAt: at(1)},
		{ID: "fav-old", Favorite: true, UpdatedAt: at(2)},
		{ID: "new", UpdatedAt: at(9)},
		{ID: "fav-new", Favorite: true, UpdatedAt: at(5)},
	}
	got := View(notes, Filter{Scope: ScopeAll})
	assert.Equal(t, []string{"fav-new", "fav-old", "new", "old"}, ids(got))
}

func TestView_FavoriteBeatsNewer(t *testing.T) {
	a := models.Note{ID: "A", Favorite: true, UpdatedAt: at(1)}
	b := models.Note{ID: "B", UpdatedAt: at(30)}
	assert.Equal(t, []string{"A", "B"}, ids(View([]models.Note{b, a}, Filter{})))
	assert.Equal(t, []string{"A", "B"}, ids(View([]models.Note{a, b}, Filter{})))
}

func TestView_TiesKeepStorageOrder(t *testing.T) {
	notes := []models.Note{
		{ID: "1", UpdatedAt: at(3)},
		{ID: "2", UpdatedAt: at(3)},
		{ID: "3", UpdatedAt: at(3)},
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids(View(notes, Filter{})))
}

func TestView_Search(t *testing.T) {
	notes := []models.Note{
		{ID: "title", Title: "Grocery LIST", UpdatedAt: at(1)},
		{ID: "body", Title: "x", Content: "remember the list", UpdatedAt: at(2)},
		{ID: "none", Title: "other", Content: "nothing", UpdatedAt: at(3)},
		{ID: "jp", Title: "会議メモ", Content: "議事録", UpdatedAt: at(4)},
	}
	assert.Equal(t, []string{"body", "title"}, ids(View(notes, Filter{Query: "List"})))
	assert.Equal(t, []string{"jp"}, ids(View(notes, Filter{Query: "議事"})))
	assert.Len(t, View(notes, Filter{Query: ""}), len(notes))
	assert.Empty(t, View(notes, Filter{Query: "zzz"}))
}

func TestView_FavoritesScope(t *testing.T) {
	notes := []models.Note{
		{ID: "a", Title: "alpha", Favorite: true, UpdatedAt: at(1)},
		{ID: "b", Title: "alpha beta", UpdatedAt: at(2)},
		{ID: "c", Title: "gamma", Favorite: true, UpdatedAt: at(3)},
	}
	assert.Equal(t, []string{"c", "a"}, ids(View(notes, Filter{Scope: ScopeFavorites})))
	assert.Equal(t, []string{"a"}, ids(View(notes, Filter{Scope: ScopeFavorites, Query: "alpha"})))
}

func TestView_DoesNotMutateInput(t *testing.T) {
	notes := []models.Note{
		{ID: "1", UpdatedAt: at(1)},
		{ID: "2", UpdatedAt: at(2)},
	}
	_ = View(notes, Filter{})
	assert.Equal(t, []string{"1", "2"}, ids(notes))
}

func TestFilterValidate(t *testing.T) {
	require.NoError(t, Filter{}.Validate())
	require.NoError(t, Filter{Scope: ScopeAll}.Validate())
	require.NoError(t, Filter{Scope: ScopeFavorites}.Validate())
	require.Error(t, Filter{Scope: "archived"}.Validate())
}
