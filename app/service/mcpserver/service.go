package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"studymate/app/service/memory"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
)

const serverName = "studymate"

// NoteStore is the memory surface the tools operate on.
type NoteStore interface {
	Save(ctx context.Context, note memory.Note) error
	Search(ctx context.Context, query string, k int) ([]memory.Snippet, error)
}

// Service exposes the study-note store as MCP tools over stdio, so external
// agents can save and search the same long-term memory the assistant uses.
type Service struct {
	memorySvc NoteStore
	version   string
}

func New(di *do.Injector) (*Service, error) {
	return NewService(do.MustInvoke[*memory.Service](di)), nil
}

func NewService(memorySvc NoteStore) *Service {
	return &Service{
		memorySvc: memorySvc,
		version:   "1.0.0",
	}
}

// Run serves the MCP protocol on stdin/stdout until the peer disconnects.
func (s *Service) Run() error {
	srv := server.NewMCPServer(serverName, s.version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	saveTool := mcp.NewTool("save_note",
		mcp.WithDescription("Persist a study note for long-term semantic retrieval"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Free-text content of the note"),
		),
		mcp.WithString("source",
			mcp.Description("Optional origin of the note"),
		),
	)
	srv.AddTool(saveTool, s.handleSaveNote)

	searchTool := mcp.NewTool("search_notes",
		mcp.WithDescription("Retrieve study notes semantically related to a query"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search for"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of notes to return"),
		),
	)
	srv.AddTool(searchTool, s.handleSearchNotes)

	return server.ServeStdio(srv)
}

func (s *Service) handleSaveNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	note := memory.Note{
		Text:   text,
		Source: request.GetString("source", "mcp"),
	}

	if err := s.memorySvc.Save(ctx, note); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save note: %v", err)), nil
	}

	return mcp.NewToolResultText("note saved"), nil
}

func (s *Service) handleSearchNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	snippets, err := s.memorySvc.Search(ctx, query, request.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to search notes: %v", err)), nil
	}

	if len(snippets) == 0 {
		return mcp.NewToolResultText("no notes found"), nil
	}

	var builder strings.Builder
	for i, snippet := range snippets {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(fmt.Sprintf("[%d] score=%.3f", i+1, snippet.Score))
		if snippet.Source != "" {
			builder.WriteString(" source=" + snippet.Source)
		}
		builder.WriteString("\n")
		builder.WriteString(snippet.Text)
	}

	return mcp.NewToolResultText(builder.String()), nil
}
