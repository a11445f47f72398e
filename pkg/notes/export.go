package notes

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// exportedNote is the line-oriented interchange record: one JSON object per
// line per note. Content newlines are pre-escaped to a literal two-character
// "\n" sequence before marshalling, so each record stays on a single line
// even for tools that treat the file as plain text; Import reverses the
// escaping.
type exportedNote struct {
	NoteID   int64    `json:"noteId"`
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
	Content  string   `json:"content"`
	Due      string   `json:"due"`
	Privacy  int      `json:"privacy"`
	Date     string   `json:"date"`
	Modified string   `json:"modified"`
	Hash     string   `json:"hash"`
}

func escapeContent(s string) string { return strings.ReplaceAll(s, "\n", `\n`) }
func unescapeContent(s string) string { return strings.ReplaceAll(s, `\n`, "\n") }

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(TimeLayout)
}

// Export writes every active note whose hash starts with prefix (all active
// notes when prefix is empty) to w, one JSON object per line.
func Export(ctx context.Context, db *sql.DB, w io.Writer, prefix string) error {
	found, err := FindByHash(ctx, db, prefix, AllBooks)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for _, note := range found {
		rec := exportedNote{
			NoteID:   note.ID,
			Title:    note.Title,
			Keywords: note.Keywords,
			Content:  escapeContent(note.Content),
			Due:      formatOptional(note.Due),
			Privacy:  note.Privacy,
			Date:     note.Date.Format(TimeLayout),
			Modified: note.Modified.Format(TimeLayout),
			Hash:     note.Hash,
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to export note %d: %w", note.ID, err)
		}
	}
	return nil
}

// Import reads one JSON object per line from r and re-adds each as a new
// note. Every imported note receives a fresh id and hash; the original hash
// is never reused. The original date is preserved, and an absolute due
// timestamp is restored verbatim rather than being pushed back through the
// relative-time vocabulary.
func Import(ctx context.Context, db *sql.DB, r io.Reader) (int64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var count int64
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec exportedNote
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return count, fmt.Errorf("cannot read line %d of import stream: %w", lineNo, err)
		}

		in := NoteInput{
			Title:    rec.Title,
			Content:  unescapeContent(rec.Content),
			Keywords: rec.Keywords,
			Book:     BookUnspecified,
		}
		if t, ok := parseStoredTime(rec.Date); ok {
			in.Date = t
		}
		noteID, err := Add(ctx, db, in)
		if err != nil {
			return count, fmt.Errorf("cannot import note %q from line %d: %w", rec.Title, lineNo, err)
		}
		if _, ok := parseStoredTime(rec.Due); ok {
			if _, err := db.ExecContext(ctx, `UPDATE note SET due = ? WHERE noteId = ?;`, rec.Due, noteID); err != nil {
				return count, fmt.Errorf("cannot restore due date for imported note %d: %w", noteID, err)
			}
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read import stream: %w", err)
	}
	return count, nil
}
