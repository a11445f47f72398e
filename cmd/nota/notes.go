package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/nota/pkg/editor"
	"github.com/unowned-ai/nota/pkg/notes"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a note",
	Long: `Add a note to the store. With --title the note is created directly from
flags; without it an editor session is opened with the template for
interactive entry.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		content, _ := cmd.Flags().GetString("content")
		keywords, _ := cmd.Flags().GetString("keywords")
		attachments, _ := cmd.Flags().GetString("attach")
		due, _ := cmd.Flags().GetString("due")
		bookName, _ := cmd.Flags().GetString("book")

		in := notes.NoteInput{
			Title:       title,
			Content:     content,
			Keywords:    splitCommaList(keywords),
			Attachments: splitCommaList(attachments),
			Due:         due,
			Book:        notes.BookUnspecified,
		}

		if title == "" {
			edited, err := editor.EditNote(editor.Fields{
				Keywords:    in.Keywords,
				Attachments: in.Attachments,
				Due:         in.Due,
				Content:     in.Content,
			})
			if errors.Is(err, notes.ErrEmptyNote) {
				return fmt.Errorf("no title, keywords or content given, so no note stored")
			}
			if err != nil {
				return err
			}
			in.Title = edited.Title
			in.Content = edited.Content
			in.Keywords = edited.Keywords
			in.Attachments = edited.Attachments
			in.Due = edited.Due
			bookName = edited.Book
		}

		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		ctx := context.Background()
		if bookName != "" {
			book, err := notes.GetBookByName(ctx, dbConn, bookName)
			if err != nil {
				return fmt.Errorf("unknown book %q: %w", bookName, err)
			}
			in.Book = book.ID
		}

		noteID, err := notes.Add(ctx, dbConn, in)
		if err != nil {
			return fmt.Errorf("failed to add note: %w", err)
		}

		note, err := notes.GetNote(ctx, dbConn, noteID)
		if err != nil {
			return err
		}
		fmt.Printf("Added note %s\n", abbreviated(ctx, dbConn, note.Hash))
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit [hash]",
	Short: "Edit a note in your editor",
	Long: `Resolve the abbreviated hash to exactly one note (trashed notes are
editable too), open it in the editor, and persist whatever the session
returns. The note's hash never changes on edit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		ctx := context.Background()
		note, err := notes.ResolveHash(ctx, dbConn, args[0])
		if errors.Is(err, notes.ErrAmbiguousHash) {
			return fmt.Errorf("cannot edit more than one note at once; try adding more letters to the hash code")
		}
		if errors.Is(err, notes.ErrNoteNotFound) {
			return fmt.Errorf("no notes match abbreviated hash %q", args[0])
		}
		if err != nil {
			return err
		}

		fields := editor.Fields{
			Title:    note.Title,
			Keywords: note.Keywords,
			Content:  note.Content,
		}
		if book, err := notes.GetBook(ctx, dbConn, note.Book); err == nil {
			fields.Book = book.Name
		}
		if note.Due != nil {
			fields.Due = notes.DescribeRemaining(*note.Due, time.Now())
		}

		edited, err := editor.EditNote(fields)
		if err != nil {
			return err
		}

		book := notes.BookUnspecified
		if edited.Book != "" {
			b, err := notes.GetBookByName(ctx, dbConn, edited.Book)
			if err != nil {
				return fmt.Errorf("unknown book %q: %w", edited.Book, err)
			}
			book = b.ID
		}

		if err := notes.Update(ctx, dbConn, note.ID, edited.Title, edited.Content, edited.Keywords, edited.Due, book); err != nil {
			return fmt.Errorf("failed to update note: %w", err)
		}
		fmt.Printf("Updated note %s\n", abbreviated(ctx, dbConn, note.Hash))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [hash]",
	Short: "Move a note to the trash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		err = notes.Delete(context.Background(), dbConn, args[0])
		if errors.Is(err, notes.ErrNoteNotFound) {
			return fmt.Errorf("no active notes match abbreviated hash %q", args[0])
		}
		if errors.Is(err, notes.ErrAmbiguousHash) {
			return fmt.Errorf("cannot delete more than one note at once; try adding more letters to the hash code")
		}
		return err
	},
}

var undeleteCmd = &cobra.Command{
	Use:   "undelete [hash]",
	Short: "Restore trashed notes to the Default book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		count, err := notes.Undelete(context.Background(), dbConn, args[0])
		if errors.Is(err, notes.ErrNoteNotFound) {
			return fmt.Errorf("no trashed notes match abbreviated hash %q", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Printf("Restored %d note(s)\n", count)
		return nil
	},
}

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "List the contents of the trash",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		ctx := context.Background()
		trashed, err := notes.FindByHash(ctx, dbConn, "", notes.TrashBookID)
		if err != nil {
			return err
		}
		printNoteList(ctx, dbConn, trashed)
		return nil
	},
}

var emptyTrashCmd = &cobra.Command{
	Use:   "emptytrash",
	Short: "Permanently remove every trashed note",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		count, err := notes.EmptyTrash(context.Background(), dbConn)
		if err != nil {
			return err
		}
		fmt.Printf("Purged %d note(s)\n", count)
		return nil
	},
}

var rehashCmd = &cobra.Command{
	Use:   "rehash",
	Short: "Recompute every stored note hash",
	Long: `Recompute and overwrite every note's hash from its current id, date and
title. A repair operation for suspected hash collisions.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		count, err := notes.Rehash(context.Background(), dbConn)
		if err != nil {
			return err
		}
		fmt.Printf("Rehashed %d note(s)\n", count)
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove keywords with no remaining note associations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		count, err := notes.Cleanup(context.Background(), dbConn)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d unused keyword(s)\n", count)
		return nil
	},
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func init() {
	addCmd.Flags().String("title", "", "note title (omit to open an editor)")
	addCmd.Flags().String("content", "", "note content")
	addCmd.Flags().String("keywords", "", "comma-separated keywords")
	addCmd.Flags().String("attach", "", "comma-separated attachment file paths")
	addCmd.Flags().String("due", "", "relative due time, e.g. 'tomorrow' or '3 days'")
	addCmd.Flags().String("book", "", "book name to file the note under")
}
