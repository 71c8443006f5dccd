package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/memo/internal/apperr"
	"github.com/starford/memo/internal/markdown"
	"github.com/starford/memo/internal/notestore"
	"github.com/starford/memo/internal/summarize"
	"github.com/starford/memo/internal/task"
)

// Handler holds API route handlers.
type Handler struct {
	store     NoteStore
	summaries *Summaries
}

// NewHandler creates a new Handler.
func NewHandler(store NoteStore, summaries *Summaries) *Handler {
	return &Handler{store: store, summaries: summaries}
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes filtered by search text and scope
//	@Tags			notes
//	@Produce		json
//	@Param			q		query		string	false	"Search text (title or content)"
//	@Param			scope	query		string	false	"View scope"	Enums(all, favorites)
//	@Param			If-None-Match	header	string	false	"ETag of a previous response"
//	@Success		200		{object}	NoteListResponse
//	@Success		304		"Not modified"
//	@Failure		400		{object}	errResponse
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := notestore.Filter{
		Query: q.Get("q"),
		Scope: notestore.Scope(q.Get("scope")),
	}
	if err := f.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(kindBadRequest, err.Error()))
		return
	}

	all, err := h.store.Notes(r.Context())
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(kindInternal, "internal error"))
		return
	}
	notes := notestore.View(all, f)
	favorites := 0
	for _, n := range all {
		if n.Favorite {
			favorites++
		}
	}
	writeJSONCached(w, r, NoteListResponse{
		Notes:     notes,
		Total:     len(notes),
		All:       len(all),
		Favorites: favorites,
	})
}

// AddNote handles POST /api/notes.
//
//	@Summary		Create a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddNoteRequest	true	"Note to create"
//	@Success		201		{object}	models.Note
//	@Success		200		{object}	AddNoteSkipped	"Both fields were blank"
//	@Failure		400		{object}	errResponse
//	@Failure		413		{object}	errResponse
//	@Router			/notes [post]
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req AddNoteRequest
	if err := decodeBody(r, &req); err != nil {
		if bodyTooLarge(w, err) {
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody(kindBadRequest, "invalid JSON body"))
		return
	}
	note, added, err := h.store.Add(r.Context(), req.Title, req.Content)
	if err != nil {
		slog.Error("add note failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(kindInternal, "internal error"))
		return
	}
	if !added {
		writeJSON(w, http.StatusOK, AddNoteSkipped{Added: false})
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id	path	string	true	"Note ID"
//	@Success		204	"Note deleted or already absent"
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.Remove(r.Context(), id); err != nil {
		slog.Error("delete note failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(kindInternal, "internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite handles POST /api/notes/{id}/favorite.
//
//	@Summary		Flip the favorite flag of a note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note ID"
//	@Success		200	{object}	models.Note
//	@Failure		404	{object}	errResponse
//	@Router			/notes/{id}/favorite [post]
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, found, err := h.store.ToggleFavorite(r.Context(), id)
	if err != nil {
		slog.Error("toggle favorite failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(kindInternal, "internal error"))
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorBody(kindNotFound, "not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// NoteMarkdown handles GET /api/notes/{id}/markdown.
//
//	@Summary		Export a note as Markdown
//	@Tags			notes
//	@Produce		text/markdown
//	@Param			id	path		string	true	"Note ID"
//	@Success		200	{string}	string
//	@Failure		404	{object}	errResponse
//	@Router			/notes/{id}/markdown [get]
func (h *Handler) NoteMarkdown(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody(kindNotFound, "not found"))
		} else {
			slog.Error("get note failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody(kindInternal, "internal error"))
		}
		return
	}
	out, err := markdown.Render(note)
	if err != nil {
		slog.Error("render note failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(kindInternal, "internal error"))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+markdown.FileName(note)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// Summarize handles POST /api/summarize.
//
//	@Summary		Summarize text in Japanese
//	@Tags			summarize
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SummarizeRequest	true	"Text to summarize"
//	@Success		200		{object}	SummarizeResponse
//	@Failure		400		{object}	errResponse	"EmptyInput"
//	@Failure		409		{object}	errResponse	"Busy"
//	@Failure		413		{object}	errResponse	"Body over 1 MiB"
//	@Failure		500		{object}	errResponse	"MissingCredentials, UpstreamError or UnknownError"
//	@Router			/summarize [post]
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := decodeBody(r, &req); err != nil {
		if bodyTooLarge(w, err) {
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody(string(summarize.EmptyInput), "invalid JSON body"))
		return
	}
	res, err := h.summaries.Summarize(r.Context(), req.Content)
	h.writeSummary(w, res, err)
}

// SummarizeAll handles POST /api/summarize/all.
//
//	@Summary		Summarize every note in Japanese
//	@Tags			summarize
//	@Produce		json
//	@Success		200		{object}	SummarizeResponse
//	@Failure		400		{object}	errResponse	"EmptyInput"
//	@Failure		409		{object}	errResponse	"Busy"
//	@Failure		500		{object}	errResponse	"MissingCredentials, UpstreamError or UnknownError"
//	@Router			/summarize/all [post]
func (h *Handler) SummarizeAll(w http.ResponseWriter, r *http.Request) {
	res, err := h.summaries.SummarizeAll(r.Context())
	h.writeSummary(w, res, err)
}

// SummaryStatus handles GET /api/summarize/status.
//
//	@Summary		Report running summarize actions
//	@Tags			summarize
//	@Produce		json
//	@Success		200	{object}	SummaryStatus
//	@Router			/summarize/status [get]
func (h *Handler) SummaryStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.summaries.Status())
}

func (h *Handler) writeSummary(w http.ResponseWriter, res summarize.Result, err error) {
	if err != nil {
		if errors.Is(err, task.ErrBusy) {
			writeJSON(w, http.StatusConflict, errorBody(kindBusy, "要約を生成中です"))
			return
		}
		slog.Error("summarize failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError,
			errorBody(string(summarize.UnknownError), summarize.UnknownError.Message()))
		return
	}
	if res.Success {
		writeJSON(w, http.StatusOK, SummarizeResponse{Summary: res.Summary})
		return
	}
	status := http.StatusInternalServerError
	if res.Error == summarize.EmptyInput {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorBody(string(res.Error), res.Message()))
}
