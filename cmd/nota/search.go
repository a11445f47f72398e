package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/nota/pkg/notes"
)

// abbreviated shortens a hash to the minimum collision-free prefix over the
// currently stored hash set.
func abbreviated(ctx context.Context, db *sql.DB, hash string) string {
	hashes, err := notes.ActiveHashes(ctx, db)
	if err != nil {
		return hash
	}
	n := notes.MinUniquePrefixLength(hashes)
	if len(hash) > n {
		return hash[:n]
	}
	return hash
}

func printNoteList(ctx context.Context, db *sql.DB, found []notes.Note) {
	if len(found) == 0 {
		fmt.Println("No notes found.")
		return
	}
	hashes, _ := notes.ActiveHashes(ctx, db)
	n := notes.MinUniquePrefixLength(hashes)
	for _, note := range found {
		hash := note.Hash
		if len(hash) > n {
			hash = hash[:n]
		}
		line := fmt.Sprintf("%s: %s [%s]", hash, note.Title, strings.Join(note.Keywords, ", "))
		if note.Due != nil {
			line += fmt.Sprintf(" (due %s)", note.Due.Format(notes.TimeLayout))
		}
		fmt.Println(line)
	}
}

var listCmd = &cobra.Command{
	Use:   "list [hash]",
	Short: "List notes, optionally narrowed by an abbreviated hash",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		bookName, _ := cmd.Flags().GetString("book")
		showContent, _ := cmd.Flags().GetBool("content")

		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		ctx := context.Background()
		scope := notes.AllBooks
		if bookName != "" {
			book, err := notes.GetBookByName(ctx, dbConn, bookName)
			if err != nil {
				return fmt.Errorf("unknown book %q: %w", bookName, err)
			}
			scope = book.ID
		}

		found, err := notes.FindByHash(ctx, dbConn, prefix, scope)
		if err != nil {
			return err
		}
		printNoteList(ctx, dbConn, found)
		if showContent {
			for _, note := range found {
				fmt.Printf("\n%s\n%s\n", note.Title, note.Content)
			}
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Find notes by keyword",
	Long: `Find notes carrying the given keyword. Without --strict the query is
narrowed by case-insensitive prefix, falling back to the closest known
keyword when nothing matches.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")
		trash, _ := cmd.Flags().GetBool("trash")

		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		ctx := context.Background()
		scope := notes.AllBooks
		if trash {
			scope = notes.TrashBookID
		}
		found, err := notes.FindByKeyword(ctx, dbConn, []string{args[0]}, strict, scope)
		if err != nil {
			return err
		}
		printNoteList(ctx, dbConn, found)
		return nil
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent [n]",
	Short: "List the most recently dated active notes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 5
		if len(args) == 1 {
			if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil || n < 1 {
				return fmt.Errorf("invalid count %q", args[0])
			}
		}

		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		ctx := context.Background()
		found, err := notes.FindRecent(ctx, dbConn, n)
		if err != nil {
			return err
		}
		printNoteList(ctx, dbConn, found)
		return nil
	},
}

func init() {
	listCmd.Flags().String("book", "", "restrict the listing to one book (use Trash to list the trash)")
	listCmd.Flags().Bool("content", false, "print full note content")
	searchCmd.Flags().Bool("strict", false, "require an exact, case-sensitive keyword match")
	searchCmd.Flags().Bool("trash", false, "search trashed notes instead of active ones")
}
