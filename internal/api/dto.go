package api

import (
	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/summarize"
)

// AddNoteRequest is the request body for creating a note.
type AddNoteRequest struct {
	Title   string `json:"title" example:"買い物"`
	Content string `json:"content" example:"牛乳と卵"`
}

// AddNoteSkipped is returned when both title and content were blank.
type AddNoteSkipped struct {
	Added bool `json:"added" example:"false"`
}

// NoteListResponse wraps a derived view of the collection. Total counts the
// view; All and Favorites count the whole collection for the scope tabs.
type NoteListResponse struct {
	Notes     []models.Note `json:"notes" validate:"required"`
	Total     int           `json:"total" example:"3" validate:"required"`
	All       int           `json:"all" example:"42" validate:"required"`
	Favorites int           `json:"favorites" example:"5" validate:"required"`
}

// SummarizeRequest is the request body for summarizing free text.
type SummarizeRequest struct {
	Content string `json:"content" example:"今日は会議が三つあった。" validate:"required"`
}

// SummarizeResponse is the success body of both summarize endpoints.
type SummarizeResponse struct {
	Summary string `json:"summary" validate:"required"`
}

// SummaryStatus reports which summarize actions are running.
type SummaryStatus struct {
	IsSummarizing    bool              `json:"isSummarizing"`
	IsSummarizingAll bool              `json:"isSummarizingAll"`
	LastAll          *summarize.Result `json:"lastAll,omitempty"`
}

// summaryEvent is the payload of summary.* SSE events.
type summaryEvent struct {
	Scope   string              `json:"scope"`
	Success bool                `json:"success"`
	Error   summarize.ErrorKind `json:"error,omitempty"`
}
