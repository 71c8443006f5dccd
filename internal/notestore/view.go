package notestore

import (
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/cases"

	"github.com/starford/memo/internal/models"
)

// Scope restricts a view to a subset of notes.
type Scope string

// View scopes. The zero value behaves as ScopeAll.
const (
	ScopeAll       Scope = "all"
	ScopeFavorites Scope = "favorites"
)

// Filter configures a derived view of the collection.
type Filter struct {
	Query string
	Scope Scope
}

// Validate checks the filter scope.
func (f Filter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Scope, validation.In(ScopeAll, ScopeFavorites)),
	)
}

// View returns the notes whose title or content contains f.Query (Unicode
// case-insensitive), limited to favorites for ScopeFavorites. The result is
// sorted favorites first, then by UpdatedAt descending; ties keep storage order.
// notes is not modified.
func View(notes []models.Note, f Filter) []models.Note {
	fold := cases.Fold()
	q := fold.String(f.Query)

	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if f.Scope == ScopeFavorites && !n.Favorite {
			continue
		}
		if q != "" &&
			!strings.Contains(fold.String(n.Title), q) &&
			!strings.Contains(fold.String(n.Content), q) {
			continue
		}
		out = append(out, n)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Favorite != out[j].Favorite {
			return out[i].Favorite
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}
