package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/nota/pkg/notes"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Manage books",
	Long:  `Create, list and rename the named books that group notes.`,
}

var bookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every book",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		books, err := notes.ListBooks(context.Background(), dbConn)
		if err != nil {
			return fmt.Errorf("failed to list books: %w", err)
		}
		for _, book := range books {
			fmt.Printf("%d  %s\n", book.Number, book.Name)
		}
		return nil
	},
}

var bookCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		book, err := notes.CreateBook(context.Background(), dbConn, args[0])
		if err != nil {
			return fmt.Errorf("failed to create book: %w", err)
		}
		fmt.Printf("Created book %q (number %d)\n", book.Name, book.Number)
		return nil
	},
}

var bookRenameCmd = &cobra.Command{
	Use:   "rename [old] [new]",
	Short: "Rename a book",
	Long: `Rename a book, preserving its id and every note filed under it. The
reserved Trash book cannot be renamed, and no book may take its name.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		if err := notes.RenameBook(context.Background(), dbConn, args[0], args[1]); err != nil {
			return fmt.Errorf("failed to rename book: %w", err)
		}
		fmt.Printf("Renamed book %q to %q\n", args[0], args[1])
		return nil
	},
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Manage keywords",
}

var keywordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every known keyword",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		keywords, err := notes.ListKeywords(context.Background(), dbConn)
		if err != nil {
			return fmt.Errorf("failed to list keywords: %w", err)
		}
		for _, k := range keywords {
			fmt.Println(k)
		}
		return nil
	},
}

var keywordRenameCmd = &cobra.Command{
	Use:   "rename [old] [new]",
	Short: "Rename a keyword across every note that carries it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openStore()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		if err := notes.RenameKeyword(context.Background(), dbConn, args[0], args[1]); err != nil {
			return fmt.Errorf("failed to rename keyword: %w", err)
		}
		fmt.Printf("Renamed keyword %q to %q\n", args[0], args[1])
		return nil
	},
}

func init() {
	booksCmd.AddCommand(bookListCmd)
	booksCmd.AddCommand(bookCreateCmd)
	booksCmd.AddCommand(bookRenameCmd)

	keywordsCmd.AddCommand(keywordListCmd)
	keywordsCmd.AddCommand(keywordRenameCmd)
}
