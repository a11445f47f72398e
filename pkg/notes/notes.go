package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const defaultAuthorID int64 = 1

const (
	getNoteStatement = `
	SELECT noteId, authorId, date, modified, due, title, content, hash, privacy, book
	FROM note
	WHERE noteId = ?
	`

	listHashesStatement = `
	SELECT noteId, hash, book
	FROM note
	`
)

func parseStoredTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func scanNote(row *sql.Row) (Note, error) {
	var note Note
	var date, modified, due sql.NullString
	var author sql.NullInt64
	err := row.Scan(&note.ID, &author, &date, &modified, &due, &note.Title, &note.Content, &note.Hash, &note.Privacy, &note.Book)
	if err != nil {
		return Note{}, err
	}
	note.AuthorID = author.Int64
	if t, ok := parseStoredTime(date.String); ok {
		note.Date = t
	}
	if t, ok := parseStoredTime(modified.String); ok {
		note.Modified = t
	}
	if t, ok := parseStoredTime(due.String); ok {
		note.Due = &t
	}
	return note, nil
}

// GetNote retrieves one note by id, hydrated with its keyword and attachment
// associations.
func GetNote(ctx context.Context, db *sql.DB, id int64) (Note, error) {
	note, err := scanNote(db.QueryRowContext(ctx, getNoteStatement, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Note{}, ErrNoteNotFound
		}
		return Note{}, err
	}

	note.Keywords, err = keywordsForNote(ctx, db, id)
	if err != nil {
		return Note{}, err
	}
	note.Attachments, err = ListAttachmentRefs(ctx, db, id)
	if err != nil {
		return Note{}, err
	}
	return note, nil
}

func keywordsForNote(ctx context.Context, db *sql.DB, noteID int64) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
	SELECT k.keyword
	FROM notekeyword nk
	JOIN keyword k ON k.keywordId = nk.keywordid
	WHERE nk.noteid = ?
	ORDER BY nk.notekeywordId ASC;`, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords for note %d: %w", noteID, err)
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

// Add stores a new note, assigning its id and content hash, creating keyword
// rows lazily and attaching the named files. An unrecognized book id falls
// back to Default with a warning; BookUnspecified falls back silently. A
// missing attachment file is a warning, not an error: the note is still
// created without it.
func Add(ctx context.Context, db *sql.DB, in NoteInput) (int64, error) {
	now := in.Date
	if now.IsZero() {
		now = time.Now()
	}
	date := now.Format(TimeLayout)

	dueStored := ""
	if in.Due != "" {
		if due, _, ok := InterpretTime(in.Due, time.Now()); ok {
			dueStored = due.Format(TimeLayout)
		}
	}

	book := in.Book
	switch {
	case book == BookUnspecified:
		book = DefaultBookID
	default:
		if _, err := GetBook(ctx, db, book); err != nil {
			if !errors.Is(err, ErrBookNotFound) {
				return 0, err
			}
			fmt.Fprintf(os.Stderr, "Warning: no book with id %d; filing note under Default\n", book)
			book = DefaultBookID
		}
	}

	res, err := db.ExecContext(ctx, `
	INSERT INTO note (authorId, date, modified, due, title, content, privacy, book)
	VALUES (?, ?, ?, ?, ?, ?, 0, ?);`,
		defaultAuthorID, date, date, dueStored, in.Title, in.Content, book)
	if err != nil {
		return 0, fmt.Errorf("failed to add note: %w", err)
	}
	noteID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	hash := ComputeHash(noteID, date, in.Title)
	if _, err := db.ExecContext(ctx, `UPDATE note SET hash = ? WHERE noteId = ?;`, hash, noteID); err != nil {
		return 0, fmt.Errorf("failed to store note hash: %w", err)
	}

	if err := hookupKeywords(ctx, db, noteID, in.Keywords); err != nil {
		return 0, err
	}

	for _, path := range in.Attachments {
		if _, err := AttachFile(ctx, db, noteID, path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	return noteID, nil
}

// hookupKeywords replaces the full keyword association set for a note.
// Duplicate entries within one call are collapsed; the join table itself
// carries no uniqueness constraint.
func hookupKeywords(ctx context.Context, db *sql.DB, noteID int64, keywords []string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM notekeyword WHERE noteid = ?;`, noteID); err != nil {
		return fmt.Errorf("failed to unhook previous keywords: %w", err)
	}
	seen := make(map[string]bool, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" || seen[keyword] {
			continue
		}
		seen[keyword] = true
		keywordID, err := lookupOrCreateKeyword(ctx, db, keyword)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO notekeyword (noteid, keywordid) VALUES (?, ?);`, noteID, keywordID); err != nil {
			return fmt.Errorf("failed to hook up keyword %q: %w", keyword, err)
		}
	}
	return nil
}

// ResolveHash resolves an abbreviated hash to exactly one note across every
// book, trash included. Zero matches is ErrNoteNotFound, more than one is
// ErrAmbiguousHash; in both cases the store is left unmodified.
func ResolveHash(ctx context.Context, db *sql.DB, prefix string) (Note, error) {
	ids, err := matchHashPrefix(ctx, db, prefix, nil)
	if err != nil {
		return Note{}, err
	}
	if len(ids) == 0 {
		return Note{}, ErrNoteNotFound
	}
	if len(ids) > 1 {
		return Note{}, ErrAmbiguousHash
	}
	return GetNote(ctx, db, ids[0])
}

// matchHashPrefix returns the ids of notes whose hash starts with prefix,
// filtered by scope when non-nil. An empty prefix matches everything in
// scope. Comparison is a plain case-sensitive string prefix; hashes get no
// fuzzy fallback.
func matchHashPrefix(ctx context.Context, db *sql.DB, prefix string, scope func(book int64) bool) ([]int64, error) {
	rows, err := db.QueryContext(ctx, listHashesStatement)
	if err != nil {
		return nil, fmt.Errorf("failed to list note hashes: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id, book int64
		var hash string
		if err := rows.Scan(&id, &hash, &book); err != nil {
			return nil, err
		}
		if scope != nil && !scope(book) {
			continue
		}
		if prefix != "" && !strings.HasPrefix(hash, prefix) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func activeScope(book int64) bool { return book != TrashBookID }
func trashScope(book int64) bool  { return book == TrashBookID }

func bookScope(target int64) func(int64) bool {
	return func(book int64) bool { return book == target }
}

// Update persists an edited note. Title, content and the full keyword set are
// replaced outright; book changes only for a valid non-zero id; due changes
// only when the expression is recognized. The hash is never recomputed, so
// edits preserve identity. The modified timestamp is bumped.
func Update(ctx context.Context, db *sql.DB, id int64, title, content string, keywords []string, due string, book int64) error {
	if _, err := GetNote(ctx, db, id); err != nil {
		return err
	}

	modified := time.Now().Format(TimeLayout)
	if _, err := db.ExecContext(ctx, `
	UPDATE note SET title = ?, content = ?, modified = ? WHERE noteId = ?;`,
		title, content, modified, id); err != nil {
		return fmt.Errorf("failed to update note %d: %w", id, err)
	}

	if book != BookUnspecified {
		if _, err := GetBook(ctx, db, book); err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, `UPDATE note SET book = ? WHERE noteId = ?;`, book, id); err != nil {
			return fmt.Errorf("failed to move note %d to book %d: %w", id, book, err)
		}
	}

	if due != "" {
		if dueTime, _, ok := InterpretTime(due, time.Now()); ok {
			if _, err := db.ExecContext(ctx, `UPDATE note SET due = ? WHERE noteId = ?;`, dueTime.Format(TimeLayout), id); err != nil {
				return fmt.Errorf("failed to update due date for note %d: %w", id, err)
			}
		}
	}

	return hookupKeywords(ctx, db, id, keywords)
}

// Delete soft-deletes the single active note matching the abbreviated hash by
// moving it to the Trash book. An already-trashed note is out of scope here,
// so deleting twice reports ErrNoteNotFound rather than silently succeeding.
func Delete(ctx context.Context, db *sql.DB, prefix string) error {
	if prefix == "" {
		return ErrNoteNotFound
	}
	ids, err := matchHashPrefix(ctx, db, prefix, activeScope)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrNoteNotFound
	}
	if len(ids) > 1 {
		return ErrAmbiguousHash
	}
	if _, err := db.ExecContext(ctx, `UPDATE note SET book = ? WHERE noteId = ?;`, TrashBookID, ids[0]); err != nil {
		return fmt.Errorf("failed to move note %d to the trash: %w", ids[0], err)
	}
	return nil
}

// Undelete restores every trashed note matching the abbreviated hash to the
// Default book and returns how many were restored. Unlike Delete, multiple
// matches are all restored; that asymmetry is deliberate, since restoring
// too much is recoverable while deleting too much is not.
func Undelete(ctx context.Context, db *sql.DB, prefix string) (int64, error) {
	if prefix == "" {
		return 0, ErrNoteNotFound
	}
	ids, err := matchHashPrefix(ctx, db, prefix, trashScope)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, ErrNoteNotFound
	}
	var count int64
	for _, id := range ids {
		if _, err := db.ExecContext(ctx, `UPDATE note SET book = ? WHERE noteId = ?;`, DefaultBookID, id); err != nil {
			return count, fmt.Errorf("failed to restore note %d: %w", id, err)
		}
		count++
	}
	return count, nil
}

// EmptyTrash permanently removes every note in the Trash book, cascading to
// keyword joins, attachment joins and attachment payloads. Not reversible.
func EmptyTrash(ctx context.Context, db *sql.DB) (int64, error) {
	ids, err := matchHashPrefix(ctx, db, "", trashScope)
	if err != nil {
		return 0, err
	}

	var count int64
	for _, id := range ids {
		if err := purgeAttachments(ctx, db, id); err != nil {
			return count, err
		}
		if _, err := db.ExecContext(ctx, `DELETE FROM notekeyword WHERE noteid = ?;`, id); err != nil {
			return count, fmt.Errorf("failed to remove keyword links for note %d: %w", id, err)
		}
		if _, err := db.ExecContext(ctx, `DELETE FROM note WHERE noteId = ?;`, id); err != nil {
			return count, fmt.Errorf("failed to purge note %d: %w", id, err)
		}
		count++
	}
	return count, nil
}

// TrashLength reports how many notes currently sit in the Trash book.
func TrashLength(ctx context.Context, db *sql.DB) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(noteId) FROM note WHERE book = ?;`, TrashBookID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count trashed notes: %w", err)
	}
	return n, nil
}
