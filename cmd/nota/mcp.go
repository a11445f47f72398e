package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/nota/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the nota MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes the note store
over STDIO: adding notes, hash and keyword search, book management and the
trash lifecycle.

The --db flag is optional; without it the per-OS default location is used.

Example:

  nota mcp --db nota.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := mcp.NewNotaMCPServer(dbPath)
		if err != nil {
			return err
		}
		defer srv.Close()

		srv.RegisterTools()

		fmt.Fprintf(os.Stderr, "Starting nota MCP server using database: %s\n", srv.DbPath)
		return srv.Start()
	},
}
