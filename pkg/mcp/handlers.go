package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unowned-ai/nota/pkg/notes"
)

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the Nota MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_nota"), nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// RegisterAddNoteTool registers the add_note tool.
func RegisterAddNoteTool(s *server.MCPServer, db *sql.DB) {
	addNote := mcp.NewTool("add_note",
		mcp.WithDescription("Adds a new note to the store."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the note.")),
		mcp.WithString("content", mcp.Description("Free-text content of the note.")),
		mcp.WithString("keywords", mcp.Description("Comma-separated keywords to attach.")),
		mcp.WithString("due", mcp.Description("Relative due expression, e.g. 'tomorrow' or '3 days'.")),
		mcp.WithString("book", mcp.Description("Name of the book to file the note under.")),
	)
	s.AddTool(addNote, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, titleOk := request.Params.Arguments["title"].(string)
		if !titleOk || title == "" {
			return mcp.NewToolResultError("'title' parameter is required and must be a non-empty string."), nil
		}
		content, _ := request.Params.Arguments["content"].(string)
		keywordsArg, _ := request.Params.Arguments["keywords"].(string)
		due, _ := request.Params.Arguments["due"].(string)
		bookName, _ := request.Params.Arguments["book"].(string)

		in := notes.NoteInput{
			Title:   title,
			Content: content,
			Due:     due,
			Book:    notes.BookUnspecified,
		}
		for _, k := range strings.Split(keywordsArg, ",") {
			if k = strings.TrimSpace(k); k != "" {
				in.Keywords = append(in.Keywords, k)
			}
		}
		if bookName != "" {
			book, err := notes.GetBookByName(ctx, db, bookName)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Unknown book '%s': %v", bookName, err)), nil
			}
			in.Book = book.ID
		}

		noteID, err := notes.Add(ctx, db, in)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to add note: %v", err)), nil
		}
		note, err := notes.GetNote(ctx, db, noteID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to reload added note: %v", err)), nil
		}
		return jsonResult(note)
	})
}

// RegisterFindNotesTool registers the find_notes tool (hash-prefix lookup).
func RegisterFindNotesTool(s *server.MCPServer, db *sql.DB) {
	findNotes := mcp.NewTool("find_notes",
		mcp.WithDescription("Lists notes, optionally narrowed by an abbreviated hash prefix."),
		mcp.WithString("hash", mcp.Description("Hash prefix to match; empty matches every note in scope.")),
		mcp.WithBoolean("trash", mcp.Description("Search the trash instead of active books.")),
	)
	s.AddTool(findNotes, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prefix, _ := request.Params.Arguments["hash"].(string)
		inTrash, _ := request.Params.Arguments["trash"].(bool)

		book := notes.AllBooks
		if inTrash {
			book = notes.TrashBookID
		}
		found, err := notes.FindByHash(ctx, db, prefix, book)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to find notes: %v", err)), nil
		}
		if len(found) == 0 {
			return mcp.NewToolResultText("[]"), nil
		}
		return jsonResult(found)
	})
}

// RegisterSearchKeywordTool registers the search_keyword tool.
func RegisterSearchKeywordTool(s *server.MCPServer, db *sql.DB) {
	searchKeyword := mcp.NewTool("search_keyword",
		mcp.WithDescription("Finds notes by keyword, with fuzzy fallback unless strict is set."),
		mcp.WithString("keyword", mcp.Required(), mcp.Description("The keyword to search for.")),
		mcp.WithBoolean("strict", mcp.Description("Require an exact, case-sensitive keyword match.")),
	)
	s.AddTool(searchKeyword, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		keyword, ok := request.Params.Arguments["keyword"].(string)
		if !ok || keyword == "" {
			return mcp.NewToolResultError("'keyword' parameter is required and must be a non-empty string."), nil
		}
		strict, _ := request.Params.Arguments["strict"].(bool)

		found, err := notes.FindByKeyword(ctx, db, []string{keyword}, strict, notes.AllBooks)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to search notes: %v", err)), nil
		}
		if len(found) == 0 {
			return mcp.NewToolResultText("[]"), nil
		}
		return jsonResult(found)
	})
}

// RegisterListBooksTool registers the list_books tool.
func RegisterListBooksTool(s *server.MCPServer, db *sql.DB) {
	listBooks := mcp.NewTool("list_books",
		mcp.WithDescription("Lists every book, the reserved Trash entry included."),
	)
	s.AddTool(listBooks, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		books, err := notes.ListBooks(ctx, db)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list books: %v", err)), nil
		}
		return jsonResult(books)
	})
}

// RegisterCreateBookTool registers the create_book tool.
func RegisterCreateBookTool(s *server.MCPServer, db *sql.DB) {
	createBook := mcp.NewTool("create_book",
		mcp.WithDescription("Creates a new named book for grouping notes."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name for the new book.")),
	)
	s.AddTool(createBook, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, ok := request.Params.Arguments["name"].(string)
		if !ok || name == "" {
			return mcp.NewToolResultError("'name' parameter is required and must be a non-empty string."), nil
		}
		book, err := notes.CreateBook(ctx, db, name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create book: %v", err)), nil
		}
		return jsonResult(book)
	})
}

// RegisterTrashTools registers trash_status and empty_trash.
func RegisterTrashTools(s *server.MCPServer, db *sql.DB) {
	trashStatus := mcp.NewTool("trash_status",
		mcp.WithDescription("Reports how many notes are currently in the trash."),
	)
	s.AddTool(trashStatus, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		n, err := notes.TrashLength(ctx, db)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to inspect trash: %v", err)), nil
		}
		return jsonResult(map[string]int64{"trashed": n})
	})

	emptyTrash := mcp.NewTool("empty_trash",
		mcp.WithDescription("Permanently removes every trashed note, its keyword links and attachments. Not reversible."),
	)
	s.AddTool(emptyTrash, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		n, err := notes.EmptyTrash(ctx, db)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to empty trash: %v", err)), nil
		}
		return jsonResult(map[string]int64{"purged": n})
	})
}
