package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// TrashBookName is the reserved name of the soft-delete book.
const TrashBookName = "Trash"

const (
	getBookStatement = `
	SELECT bookId, number, name
	FROM book
	WHERE bookId = ?
	`

	getBookByNameStatement = `
	SELECT bookId, number, name
	FROM book
	WHERE name = ?
	`

	listBooksStatement = `
	SELECT bookId, number, name
	FROM book
	ORDER BY bookId ASC
	`
)

func validateBookName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidBookName)
	}
	if strings.Contains(name, ",") {
		return fmt.Errorf("%w: name must not contain a comma", ErrInvalidBookName)
	}
	return nil
}

// GetBook retrieves a book by id.
func GetBook(ctx context.Context, db *sql.DB, id int64) (Book, error) {
	var book Book
	err := db.QueryRowContext(ctx, getBookStatement, id).Scan(&book.ID, &book.Number, &book.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrBookNotFound
		}
		return Book{}, err
	}
	return book, nil
}

// GetBookByName retrieves a book by its unique name.
func GetBookByName(ctx context.Context, db *sql.DB, name string) (Book, error) {
	var book Book
	err := db.QueryRowContext(ctx, getBookByNameStatement, name).Scan(&book.ID, &book.Number, &book.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrBookNotFound
		}
		return Book{}, err
	}
	return book, nil
}

// ListBooks returns every book in insertion order, the reserved Trash and
// Default entries first.
func ListBooks(ctx context.Context, db *sql.DB) ([]Book, error) {
	rows, err := db.QueryContext(ctx, listBooksStatement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var book Book
		if err := rows.Scan(&book.ID, &book.Number, &book.Name); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// CreateBook creates a new named book. Names must be non-empty, unique,
// contain no comma, and may not claim the reserved Trash name.
func CreateBook(ctx context.Context, db *sql.DB, name string) (Book, error) {
	if err := validateBookName(name); err != nil {
		return Book{}, err
	}
	if name == TrashBookName {
		return Book{}, ErrReservedBook
	}
	if _, err := GetBookByName(ctx, db, name); err == nil {
		return Book{}, fmt.Errorf("%w: a book named %q already exists", ErrInvalidBookName, name)
	} else if !errors.Is(err, ErrBookNotFound) {
		return Book{}, err
	}

	var next int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(number), 0) + 1 FROM book;`).Scan(&next); err != nil {
		return Book{}, fmt.Errorf("failed to pick next book number: %w", err)
	}

	res, err := db.ExecContext(ctx, `INSERT INTO book (number, name) VALUES (?, ?);`, next, name)
	if err != nil {
		return Book{}, fmt.Errorf("failed to create book %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Book{}, err
	}
	return GetBook(ctx, db, id)
}

// RenameBook renames a book, preserving its numeric id and every note
// association. The Trash book cannot be renamed, and no book may be renamed
// to Trash.
func RenameBook(ctx context.Context, db *sql.DB, oldName, newName string) error {
	if oldName == TrashBookName || newName == TrashBookName {
		return ErrReservedBook
	}
	if err := validateBookName(newName); err != nil {
		return err
	}

	book, err := GetBookByName(ctx, db, oldName)
	if err != nil {
		return err
	}
	if _, err := GetBookByName(ctx, db, newName); err == nil {
		return fmt.Errorf("%w: a book named %q already exists", ErrInvalidBookName, newName)
	} else if !errors.Is(err, ErrBookNotFound) {
		return err
	}

	_, err = db.ExecContext(ctx, `UPDATE book SET name = ? WHERE bookId = ?;`, newName, book.ID)
	if err != nil {
		return fmt.Errorf("failed to rename book %q: %w", oldName, err)
	}
	return nil
}
