// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes memo tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/memo/internal/apperr"
	"github.com/starford/memo/internal/markdown"
	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/notestore"
	"github.com/starford/memo/internal/summarize"
	"github.com/starford/memo/internal/task"
)

// Notes is the note store used by the tools.
type Notes interface {
	Add(ctx context.Context, title, content string) (models.Note, bool, error)
	Remove(ctx context.Context, id string) (bool, error)
	ToggleFavorite(ctx context.Context, id string) (models.Note, bool, error)
	Get(ctx context.Context, id string) (models.Note, error)
	View(ctx context.Context, f notestore.Filter) ([]models.Note, error)
}

// Summarizer runs the two summarize actions.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (summarize.Result, error)
	SummarizeAll(ctx context.Context) (summarize.Result, error)
}

// Server wraps the MCP server with memo tools.
type Server struct {
	mcp       *server.MCPServer
	notes     Notes
	summaries Summarizer
}

// New creates a new MCP server with all memo tools registered.
func New(notes Notes, summaries Summarizer, version string) *Server {
	s := &Server{notes: notes, summaries: summaries}

	s.mcp = server.NewMCPServer(
		"Memo",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List memos, favorites first then most recently updated. "+
			"Optionally filter by text and restrict to favorites."),
		mcp.WithString("query", mcp.Description("Case-insensitive text to match in title or content")),
		mcp.WithString("scope", mcp.Description("all (default) or favorites"), mcp.Enum("all", "favorites")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a memo as Markdown with a YAML header. See the note format resource."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Memo ID")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Create a memo. Blank title and content is a no-op; "+
			"a missing title becomes 無題のメモ."),
		mcp.WithString("title", mcp.Description("Memo title")),
		mcp.WithString("content", mcp.Description("Memo body (plain text)")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a memo. Unknown IDs are ignored."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Memo ID")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("toggle_favorite",
		mcp.WithDescription("Flip the favorite flag of a memo."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Memo ID")),
	), s.toggleFavorite)

	s.mcp.AddTool(mcp.NewTool("summarize",
		mcp.WithDescription("Summarize text in at most three lines of Japanese."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text to summarize")),
	), s.summarize)

	s.mcp.AddTool(mcp.NewTool("summarize_all",
		mcp.WithDescription("Summarize every memo in at most three lines of Japanese."),
	), s.summarizeAll)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the memo format and the rules the store applies."),
	), s.getNoteContract)

	s.mcp.AddResource(
		mcp.NewResource(NoteFormatURI, "Memo Format",
			mcp.WithResourceDescription("Markdown form of a memo and the rules the store applies."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := notestore.Filter{
		Query: req.GetString("query", ""),
		Scope: notestore.Scope(req.GetString("scope", "")),
	}
	notes, err := s.notes.View(ctx, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(notes)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.notes.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := markdown.Render(note)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, added, err := s.notes.Add(ctx, req.GetString("title", ""), req.GetString("content", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !added {
		return mcp.NewToolResultText("skipped: title and content are empty"), nil
	}
	return jsonResult(note)
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	removed, err := s.notes.Remove(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !removed {
		return mcp.NewToolResultText(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) toggleFavorite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, found, err := s.notes.ToggleFavorite(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(note)
}

func (s *Server) summarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.summaries.Summarize(ctx, content)
	return summaryResult(res, err), nil
}

func (s *Server) summarizeAll(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.summaries.SummarizeAll(ctx)
	return summaryResult(res, err), nil
}

func summaryResult(res summarize.Result, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, task.ErrBusy):
		return mcp.NewToolResultError("Busy: 要約を生成中です")
	case err != nil:
		return mcp.NewToolResultError(err.Error())
	case !res.Success:
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", res.Error, res.Message()))
	}
	return mcp.NewToolResultText(res.Summary)
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NoteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
