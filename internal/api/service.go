package api

import (
	"context"

	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/sse"
	"github.com/starford/memo/internal/summarize"
	"github.com/starford/memo/internal/task"
)

// Summary scopes.
const (
	ScopeOne = "one"
	ScopeAll = "all"
)

// NoteStore is the subset of *notestore.Store used by the handlers.
type NoteStore interface {
	Add(ctx context.Context, title, content string) (models.Note, bool, error)
	Remove(ctx context.Context, id string) (bool, error)
	ToggleFavorite(ctx context.Context, id string) (models.Note, bool, error)
	Get(ctx context.Context, id string) (models.Note, error)
	Notes(ctx context.Context) ([]models.Note, error)
}

// Summarizer is the subset of *summarize.Gateway used by Summaries.
type Summarizer interface {
	Summarize(ctx context.Context, text string) summarize.Result
	SummarizeNotes(ctx context.Context, notes []models.Note) summarize.Result
}

// Publisher receives summary events.
type Publisher interface {
	Publish(event sse.Event)
}

// Summaries owns the two summarize actions and their busy flags. Each action
// runs one request at a time; the two do not block each other.
type Summaries struct {
	gw     Summarizer
	store  NoteStore
	events Publisher

	one task.Slot[summarize.Result]
	all task.Slot[summarize.Result]
}

// NewSummaries creates the summarize actions. events may be nil.
func NewSummaries(gw Summarizer, store NoteStore, events Publisher) *Summaries {
	return &Summaries{gw: gw, store: store, events: events}
}

// Summarize summarizes text. It returns task.ErrBusy if a previous call is
// still running.
func (s *Summaries) Summarize(ctx context.Context, text string) (summarize.Result, error) {
	res, err := s.one.Do(ctx, func(ctx context.Context) summarize.Result {
		return s.gw.Summarize(ctx, text)
	})
	if err != nil {
		return summarize.Result{}, err
	}
	s.publish(ScopeOne, res)
	return res, nil
}

// SummarizeAll summarizes the whole collection in storage order. It returns
// task.ErrBusy if a previous call is still running.
func (s *Summaries) SummarizeAll(ctx context.Context) (summarize.Result, error) {
	var loadErr error
	res, err := s.all.Do(ctx, func(ctx context.Context) summarize.Result {
		notes, err := s.store.Notes(ctx)
		if err != nil {
			loadErr = err
			return summarize.Result{Error: summarize.UnknownError}
		}
		return s.gw.SummarizeNotes(ctx, notes)
	})
	if err != nil {
		return summarize.Result{}, err
	}
	if loadErr != nil {
		return summarize.Result{}, loadErr
	}
	s.publish(ScopeAll, res)
	return res, nil
}

// NotesChanged discards the remembered collection summary, including one
// still being generated.
func (s *Summaries) NotesChanged() {
	s.all.Invalidate()
}

// Status reports the busy flags and the last collection summary.
func (s *Summaries) Status() SummaryStatus {
	st := SummaryStatus{
		IsSummarizing:    s.one.Busy(),
		IsSummarizingAll: s.all.Busy(),
	}
	if last, ok := s.all.Last(); ok && last.Success {
		st.LastAll = &last
	}
	return st
}

func (s *Summaries) publish(scope string, res summarize.Result) {
	if s.events == nil {
		return
	}
	s.events.Publish(sse.Event{
		Type: sse.TypeSummaryFinished,
		Data: summaryEvent{Scope: scope, Success: res.Success, Error: res.Error},
	})
}
