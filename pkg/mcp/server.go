package mcp

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	notapkg "github.com/unowned-ai/nota/pkg"
	pkgdb "github.com/unowned-ai/nota/pkg/db"
	"github.com/unowned-ai/nota/pkg/utils"
)

// NotaMCPServer exposes the note store over MCP stdio.
type NotaMCPServer struct {
	mcpServer *server.MCPServer
	db        *sql.DB
	DbPath    string
}

// NewNotaMCPServer spins up an MCP server backed by the SQLite database at
// dbPath, creating or migrating the store as needed.
func NewNotaMCPServer(dbPath string) (*NotaMCPServer, error) {
	resolved, err := utils.ResolveAndEnsureDBPath(dbPath)
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer(
		"Nota MCP Server",
		notapkg.Version,
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	dbConn, err := pkgdb.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open note store '%s': %w", resolved, err)
	}

	return &NotaMCPServer{
		mcpServer: s,
		db:        dbConn,
		DbPath:    resolved,
	}, nil
}

// RegisterTools wires every note-store tool onto the server.
func (s *NotaMCPServer) RegisterTools() {
	RegisterPingTool(s.mcpServer)
	RegisterAddNoteTool(s.mcpServer, s.db)
	RegisterFindNotesTool(s.mcpServer, s.db)
	RegisterSearchKeywordTool(s.mcpServer, s.db)
	RegisterListBooksTool(s.mcpServer, s.db)
	RegisterCreateBookTool(s.mcpServer, s.db)
	RegisterTrashTools(s.mcpServer, s.db)
}

// Start runs the stdio event loop. Make sure to register tools beforehand.
func (s *NotaMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// DB returns the underlying *sql.DB.
func (s *NotaMCPServer) DB() *sql.DB {
	return s.db
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *NotaMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

// Close cleans up allocated resources.
func (s *NotaMCPServer) Close() error {
	if s.db != nil {
		// TRUNCATE mode waits for transactions and writes the WAL back to the main DB.
		_, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: WAL checkpoint failed during close: %v\n", err)
		}
		return s.db.Close()
	}
	return nil
}
