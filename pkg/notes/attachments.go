package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// AttachFile reads the file at path in full and stores its bytes inline,
// linked to the note. A missing or unreadable file returns an error wrapping
// ErrAttachmentRead, which Add degrades to a warning. The whole payload is
// buffered in memory, so attachment size is bounded only by available
// memory.
func AttachFile(ctx context.Context, db *sql.DB, noteID int64, path string) (int64, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrAttachmentRead, path, err)
	}

	res, err := db.ExecContext(ctx, `INSERT INTO attachment (filename, contents) VALUES (?, ?);`,
		filepath.Base(path), contents)
	if err != nil {
		return 0, fmt.Errorf("failed to store attachment %q: %w", path, err)
	}
	attachmentID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO note_attachment (noteId, attachmentId) VALUES (?, ?);`,
		noteID, attachmentID); err != nil {
		return 0, fmt.Errorf("failed to link attachment %q to note %d: %w", path, noteID, err)
	}
	return attachmentID, nil
}

// GetAttachment retrieves an attachment with its payload.
func GetAttachment(ctx context.Context, db *sql.DB, id int64) (Attachment, error) {
	var a Attachment
	err := db.QueryRowContext(ctx, `SELECT attachmentId, filename, contents FROM attachment WHERE attachmentId = ?;`, id).
		Scan(&a.ID, &a.Filename, &a.Contents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attachment{}, ErrNoteNotFound
		}
		return Attachment{}, err
	}
	return a, nil
}

// ListAttachmentRefs returns id and filename for every attachment linked to
// the note, in attachment order, without loading payloads.
func ListAttachmentRefs(ctx context.Context, db *sql.DB, noteID int64) ([]AttachmentRef, error) {
	rows, err := db.QueryContext(ctx, `
	SELECT a.attachmentId, a.filename
	FROM note_attachment na
	JOIN attachment a ON a.attachmentId = na.attachmentId
	WHERE na.noteId = ?
	ORDER BY na.note_attachmentId ASC;`, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments for note %d: %w", noteID, err)
	}
	defer rows.Close()

	var refs []AttachmentRef
	for rows.Next() {
		var ref AttachmentRef
		if err := rows.Scan(&ref.ID, &ref.Filename); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// purgeAttachments removes a note's attachment payloads and join rows; part
// of the EmptyTrash cascade.
func purgeAttachments(ctx context.Context, db *sql.DB, noteID int64) error {
	refs, err := ListAttachmentRefs(ctx, db, noteID)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if _, err := db.ExecContext(ctx, `DELETE FROM attachment WHERE attachmentId = ?;`, ref.ID); err != nil {
			return fmt.Errorf("failed to purge attachment %d: %w", ref.ID, err)
		}
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM note_attachment WHERE noteId = ?;`, noteID); err != nil {
		return fmt.Errorf("failed to unlink attachments for note %d: %w", noteID, err)
	}
	return nil
}
