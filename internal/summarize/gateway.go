// Package summarize turns free text into a short Japanese summary using an
// external text-generation model.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/memo/internal/models"
)

// SystemPrompt is the fixed instruction sent with every request.
const SystemPrompt = "あなたはプロの編集者です。以下の文章を日本語で3行以内で簡潔に要約してください。"

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 30 * time.Second

// noteSeparator joins notes when summarizing the whole collection.
const noteSeparator = "\n\n---\n\n"

var (
	// ErrMissingCredentials is returned by a Generator that has no API key.
	ErrMissingCredentials = errors.New("summarize: api key is not configured")
	// ErrUpstream marks failures reported by the remote model.
	ErrUpstream = errors.New("summarize: upstream error")
)

// ErrorKind classifies a failed summarization.
type ErrorKind string

// Error kinds.
const (
	EmptyInput         ErrorKind = "EmptyInput"
	MissingCredentials ErrorKind = "MissingCredentials"
	UpstreamError      ErrorKind = "UpstreamError"
	UnknownError       ErrorKind = "UnknownError"
)

// Message returns text suitable for showing to the user.
func (k ErrorKind) Message() string {
	switch k {
	case EmptyInput:
		return "メモの内容が空です"
	case MissingCredentials:
		return "ANTHROPIC_API_KEY is not configured"
	case UpstreamError:
		return "要約の生成に失敗しました"
	default:
		return "エラーが発生しました"
	}
}

// Result is the outcome of one summarization. Either Success is true and
// Summary is set, or Error names the failure.
type Result struct {
	Success bool      `json:"success"`
	Summary string    `json:"summary,omitempty"`
	Error   ErrorKind `json:"error,omitempty"`
}

// Message returns the human-readable error text, or "" on success.
func (r Result) Message() string {
	if r.Success {
		return ""
	}
	return r.Error.Message()
}

func ok(summary string) Result { return Result{Success: true, Summary: summary} }

func fail(kind ErrorKind) Result { return Result{Error: kind} }

// Generator produces text from a system instruction and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Recorder receives the outcome of each summarization. outcome is "success"
// or an ErrorKind.
type Recorder interface {
	RecordSummary(outcome string, d time.Duration)
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout sets the remote call ceiling.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(g *Gateway) { g.recorder = r }
}

// Gateway is stateless apart from its configuration; concurrent calls share nothing.
type Gateway struct {
	gen      Generator
	timeout  time.Duration
	logger   *slog.Logger
	recorder Recorder
}

// New creates a Gateway backed by gen.
func New(gen Generator, opts ...Option) *Gateway {
	g := &Gateway{
		gen:     gen,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Summarize makes exactly one generator call for non-blank text and
// converts every failure into a Result; it never panics or returns an error.
func (g *Gateway) Summarize(ctx context.Context, text string) (res Result) {
	if strings.TrimSpace(text) == "" {
		g.record(fail(EmptyInput), 0)
		return fail(EmptyInput)
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("summarize: generator panicked", slog.String("panic", fmt.Sprint(r)))
			res = fail(UnknownError)
		}
		g.record(res, time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	summary, err := g.gen.Generate(ctx, SystemPrompt, text)
	if err != nil {
		kind := classify(ctx, err)
		g.logger.Warn("summarize: failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
		return fail(kind)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		g.logger.Warn("summarize: empty model output")
		return fail(UpstreamError)
	}
	return ok(summary)
}

// SummarizeNotes summarizes the whole collection, one "title\ncontent" block
// per note.
func (g *Gateway) SummarizeNotes(ctx context.Context, notes []models.Note) Result {
	return g.Summarize(ctx, JoinNotes(notes))
}

// JoinNotes renders notes as the text sent by SummarizeNotes.
func JoinNotes(notes []models.Note) string {
	parts := make([]string, len(notes))
	for i, n := range notes {
		parts[i] = n.Title + "\n" + n.Content
	}
	return strings.Join(parts, noteSeparator)
}

func classify(ctx context.Context, err error) ErrorKind {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return MissingCredentials
	case errors.Is(err, ErrUpstream),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(ctx.Err(), context.DeadlineExceeded):
		return UpstreamError
	default:
		return UnknownError
	}
}

func (g *Gateway) record(res Result, d time.Duration) {
	if g.recorder == nil {
		return
	}
	outcome := "success"
	if !res.Success {
		outcome = string(res.Error)
	}
	g.recorder.RecordSummary(outcome, d)
}
