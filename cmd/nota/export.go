package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/nota/pkg/notes"
)

var exportCmd = &cobra.Command{
	Use:   "export [hash]",
	Short: "Export notes as one JSON object per line",
	Long: `Write every active note whose hash starts with the given prefix (or all
active notes when the prefix is omitted or '-') to stdout, one JSON object
per line. Content newlines are escaped to a literal \n sequence so each
record stays on a single line; 'nota import' reverses the escaping.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 && args[0] != "-" {
			prefix = args[0]
		}

		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		return notes.Export(context.Background(), dbConn, os.Stdout, prefix)
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import notes from an export file",
	Long: `Read one JSON object per line from the file produced by 'nota export' and
re-add each as a new note. Imported notes get fresh ids and hashes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("cannot read file %q: %w", args[0], err)
		}
		defer f.Close()

		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		count, err := notes.Import(context.Background(), dbConn, f)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d note(s)\n", count)
		return nil
	},
}
