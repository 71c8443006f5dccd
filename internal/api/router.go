package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// events, if non-nil, is mounted at GET /events.
func NewRouter(h *Handler, events http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(BodyLimit(DefaultBodyLimit))

	// Notes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.AddNote)
	r.Delete("/notes/{id}", h.DeleteNote)
	r.Post("/notes/{id}/favorite", h.ToggleFavorite)
	r.Get("/notes/{id}/markdown", h.NoteMarkdown)

	// Summaries.
	r.Post("/summarize", h.Summarize)
	r.Post("/summarize/all", h.SummarizeAll)
	r.Get("/summarize/status", h.SummaryStatus)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
