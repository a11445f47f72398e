package notes

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	pkgdb "github.com/unowned-ai/nota/pkg/db"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "nota_test.db")
	testDB, err := pkgdb.OpenDBConnection(path, true, "NORMAL")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { testDB.Close() })

	if err := pkgdb.InitializeSchema(testDB, pkgdb.TargetVersion); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}
	return testDB
}

func addTestNote(t *testing.T, ctx context.Context, db *sql.DB, in NoteInput) Note {
	t.Helper()
	id, err := Add(ctx, db, in)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	note, err := GetNote(ctx, db, id)
	if err != nil {
		t.Fatalf("GetNote failed after Add: %v", err)
	}
	return note
}

func TestAddRoundTrip(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	in := NoteInput{
		Title:    "shopping",
		Content:  "milk\nbread\neggs",
		Keywords: []string{"errands", "food"},
		Due:      "tomorrow",
		Book:     BookUnspecified,
	}
	note := addTestNote(t, ctx, testDB, in)

	if note.ID == 0 {
		t.Errorf("Expected a store-assigned id, got 0")
	}
	if note.Title != in.Title || note.Content != in.Content {
		t.Errorf("Round-trip mismatch: got title %q content %q", note.Title, note.Content)
	}
	if len(note.Hash) != 64 {
		t.Errorf("Expected a 64-character hex hash, got %q", note.Hash)
	}
	if note.Book != DefaultBookID {
		t.Errorf("Expected note in Default book, got %d", note.Book)
	}
	if len(note.Keywords) != 2 || note.Keywords[0] != "errands" || note.Keywords[1] != "food" {
		t.Errorf("Keyword associations mismatch: %v", note.Keywords)
	}
	if note.Due == nil {
		t.Errorf("Expected a due date for 'tomorrow'")
	}
	if note.Date.IsZero() || note.Modified.IsZero() {
		t.Errorf("Expected date and modified to be set")
	}

	// Listing with no prefix returns exactly the added note.
	found, err := FindByHash(ctx, testDB, "", AllBooks)
	if err != nil {
		t.Fatalf("FindByHash failed: %v", err)
	}
	if len(found) != 1 || found[0].ID != note.ID {
		t.Fatalf("Expected exactly the added note, got %d notes", len(found))
	}
}

func TestAddUnrecognizedDue(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	note := addTestNote(t, ctx, testDB, NoteInput{Title: "no due", Due: "whenever"})
	if note.Due != nil {
		t.Errorf("Expected no due date for unrecognized expression, got %v", note.Due)
	}
}

func TestAddUnknownBookFallsBack(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	note := addTestNote(t, ctx, testDB, NoteInput{Title: "orphan", Book: 99})
	if note.Book != DefaultBookID {
		t.Errorf("Expected fallback to Default book, got %d", note.Book)
	}
}

func TestAddMissingAttachmentIsNotFatal(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	note := addTestNote(t, ctx, testDB, NoteInput{
		Title:       "with ghost attachment",
		Attachments: []string{filepath.Join(t.TempDir(), "no-such-file.bin")},
	})
	if len(note.Attachments) != 0 {
		t.Errorf("Expected no attachments for a missing file, got %v", note.Attachments)
	}
}

func TestAddAndRetrieveAttachment(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "photo.bin")
	payload := []byte{0x00, 0x01, 0xfe, 0xff}
	if err := os.WriteFile(path, payload, 0644); err != nil {
		t.Fatalf("failed to write attachment fixture: %v", err)
	}

	note := addTestNote(t, ctx, testDB, NoteInput{Title: "holiday", Attachments: []string{path}})
	if len(note.Attachments) != 1 {
		t.Fatalf("Expected one attachment, got %d", len(note.Attachments))
	}
	if note.Attachments[0].Filename != "photo.bin" {
		t.Errorf("Expected original filename preserved, got %q", note.Attachments[0].Filename)
	}

	att, err := GetAttachment(ctx, testDB, note.Attachments[0].ID)
	if err != nil {
		t.Fatalf("GetAttachment failed: %v", err)
	}
	if string(att.Contents) != string(payload) {
		t.Errorf("Attachment payload mismatch")
	}
}

// Mirrors the add/delete scenario the store has supported since its earliest
// generation: counts across scopes after adding two notes and trashing one.
func TestDeleteAndScopes(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	first := addTestNote(t, ctx, testDB, NoteInput{Title: "foo", Keywords: []string{"test", "foo"}})
	addTestNote(t, ctx, testDB, NoteInput{Title: "bar", Keywords: []string{"test", "bar"}})

	all, err := FindByHash(ctx, testDB, "", AllBooks)
	if err != nil {
		t.Fatalf("FindByHash failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 active notes, got %d", len(all))
	}

	strict, err := FindByKeyword(ctx, testDB, []string{"foo"}, true, AllBooks)
	if err != nil {
		t.Fatalf("FindByKeyword failed: %v", err)
	}
	if len(strict) != 1 {
		t.Fatalf("Expected 1 note for strict keyword 'foo', got %d", len(strict))
	}

	if err := Delete(ctx, testDB, first.Hash); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	active, err := FindByHash(ctx, testDB, "", AllBooks)
	if err != nil {
		t.Fatalf("FindByHash (active) failed: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("Expected 1 active note after delete, got %d", len(active))
	}

	trashed, err := FindByHash(ctx, testDB, "", TrashBookID)
	if err != nil {
		t.Fatalf("FindByHash (trash) failed: %v", err)
	}
	if len(trashed) != 1 || trashed[0].ID != first.ID {
		t.Errorf("Expected the deleted note in the trash, got %d notes", len(trashed))
	}

	// Deleting again must miss: the note is no longer in the active scope.
	if err := Delete(ctx, testDB, first.Hash); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound on double delete, got %v", err)
	}

	// Undelete reverses the move.
	count, err := Undelete(ctx, testDB, first.Hash)
	if err != nil {
		t.Fatalf("Undelete failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 restored note, got %d", count)
	}
	restored, err := GetNote(ctx, testDB, first.ID)
	if err != nil {
		t.Fatalf("GetNote after undelete failed: %v", err)
	}
	if restored.Book != DefaultBookID {
		t.Errorf("Expected restored note in Default book, got %d", restored.Book)
	}
}

func TestUndeleteRestoresAllMatches(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	a := addTestNote(t, ctx, testDB, NoteInput{Title: "one"})
	b := addTestNote(t, ctx, testDB, NoteInput{Title: "two"})

	// Force a shared hash prefix so one abbreviation covers both notes.
	if _, err := testDB.Exec(`UPDATE note SET hash = 'dead01' || hash WHERE noteId = ?;`, a.ID); err != nil {
		t.Fatalf("failed to rewrite hash: %v", err)
	}
	if _, err := testDB.Exec(`UPDATE note SET hash = 'dead02' || hash WHERE noteId = ?;`, b.ID); err != nil {
		t.Fatalf("failed to rewrite hash: %v", err)
	}
	if _, err := testDB.Exec(`UPDATE note SET book = ? WHERE noteId IN (?, ?);`, TrashBookID, a.ID, b.ID); err != nil {
		t.Fatalf("failed to trash notes: %v", err)
	}

	count, err := Undelete(ctx, testDB, "dead")
	if err != nil {
		t.Fatalf("Undelete failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected both trashed notes restored, got %d", count)
	}

	// Delete, by contrast, refuses the same ambiguity.
	if err := Delete(ctx, testDB, "dead"); !errors.Is(err, ErrAmbiguousHash) {
		t.Errorf("Expected ErrAmbiguousHash from Delete, got %v", err)
	}
}

func TestUpdatePreservesHashAndReplacesKeywords(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	note := addTestNote(t, ctx, testDB, NoteInput{
		Title:    "draft",
		Content:  "v1",
		Keywords: []string{"alpha", "beta"},
	})

	if err := Update(ctx, testDB, note.ID, "final", "v2", []string{"gamma"}, "2 days", BookUnspecified); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, err := GetNote(ctx, testDB, note.ID)
	if err != nil {
		t.Fatalf("GetNote after update failed: %v", err)
	}
	if updated.Hash != note.Hash {
		t.Errorf("Edit must not recompute the hash: %q became %q", note.Hash, updated.Hash)
	}
	if updated.Title != "final" || updated.Content != "v2" {
		t.Errorf("Update fields not persisted: %+v", updated)
	}
	if len(updated.Keywords) != 1 || updated.Keywords[0] != "gamma" {
		t.Errorf("Expected keyword set fully replaced, got %v", updated.Keywords)
	}
	if updated.Due == nil {
		t.Errorf("Expected due date set from '2 days'")
	}
	if !updated.Modified.After(updated.Date) && !updated.Modified.Equal(updated.Date) {
		t.Errorf("Expected modified bumped to at least the creation date")
	}
}

func TestResolveHash(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	note := addTestNote(t, ctx, testDB, NoteInput{Title: "findable"})

	got, err := ResolveHash(ctx, testDB, note.Hash)
	if err != nil {
		t.Fatalf("ResolveHash with full hash failed: %v", err)
	}
	if got.ID != note.ID {
		t.Errorf("ResolveHash returned note %d, want %d", got.ID, note.ID)
	}

	if _, err := ResolveHash(ctx, testDB, "ffffffffffffffff"); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("Expected ErrNoteNotFound, got %v", err)
	}

	// Trashed notes stay resolvable: editing in the trash is permitted.
	if err := Delete(ctx, testDB, note.Hash); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := ResolveHash(ctx, testDB, note.Hash); err != nil {
		t.Errorf("Expected trashed note to resolve, got %v", err)
	}
}

func TestEmptyTrashCascade(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}
	for _, p := range paths {
		if err := os.WriteFile(p, []byte("payload"), 0644); err != nil {
			t.Fatalf("failed to write attachment fixture: %v", err)
		}
	}

	note := addTestNote(t, ctx, testDB, NoteInput{
		Title:       "doomed",
		Keywords:    []string{"gone"},
		Attachments: paths,
	})
	keep := addTestNote(t, ctx, testDB, NoteInput{Title: "survivor"})

	if err := Delete(ctx, testDB, note.Hash); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	count, err := EmptyTrash(ctx, testDB)
	if err != nil {
		t.Fatalf("EmptyTrash failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 purged note, got %d", count)
	}

	for _, scope := range []int64{AllBooks, TrashBookID, DefaultBookID} {
		found, err := FindByHash(ctx, testDB, note.Hash, scope)
		if err != nil {
			t.Fatalf("FindByHash failed: %v", err)
		}
		if len(found) != 0 {
			t.Errorf("Expected purged note gone in scope %d, found %d", scope, len(found))
		}
	}

	var n int64
	if err := testDB.QueryRow(`SELECT COUNT(*) FROM attachment;`).Scan(&n); err != nil || n != 0 {
		t.Errorf("Expected all attachment payloads purged, %d remain (err: %v)", n, err)
	}
	if err := testDB.QueryRow(`SELECT COUNT(*) FROM note_attachment;`).Scan(&n); err != nil || n != 0 {
		t.Errorf("Expected all attachment joins purged, %d remain (err: %v)", n, err)
	}
	if err := testDB.QueryRow(`SELECT COUNT(*) FROM notekeyword WHERE noteid = ?;`, note.ID).Scan(&n); err != nil || n != 0 {
		t.Errorf("Expected keyword joins purged, %d remain (err: %v)", n, err)
	}

	// The untouched note survives.
	if _, err := GetNote(ctx, testDB, keep.ID); err != nil {
		t.Errorf("Survivor note lost: %v", err)
	}
}

func TestCleanupRemovesOrphanKeywords(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	note := addTestNote(t, ctx, testDB, NoteInput{Title: "temp", Keywords: []string{"orphan", "shared"}})
	addTestNote(t, ctx, testDB, NoteInput{Title: "keeper", Keywords: []string{"shared"}})

	if err := Delete(ctx, testDB, note.Hash); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := EmptyTrash(ctx, testDB); err != nil {
		t.Fatalf("EmptyTrash failed: %v", err)
	}

	removed, err := Cleanup(ctx, testDB)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 orphan keyword removed, got %d", removed)
	}

	keywords, err := ListKeywords(ctx, testDB)
	if err != nil {
		t.Fatalf("ListKeywords failed: %v", err)
	}
	if len(keywords) != 1 || keywords[0] != "shared" {
		t.Errorf("Expected only 'shared' to survive cleanup, got %v", keywords)
	}
}

func TestTrashLength(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	note := addTestNote(t, ctx, testDB, NoteInput{Title: "t"})
	n, err := TrashLength(ctx, testDB)
	if err != nil || n != 0 {
		t.Fatalf("Expected empty trash, got %d (err: %v)", n, err)
	}
	if err := Delete(ctx, testDB, note.Hash); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	n, err = TrashLength(ctx, testDB)
	if err != nil || n != 1 {
		t.Errorf("Expected 1 trashed note, got %d (err: %v)", n, err)
	}
}

func TestDueInterpretationOnAdd(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	before := time.Now()
	note := addTestNote(t, ctx, testDB, NoteInput{Title: "deadline", Due: "2 weeks"})
	if note.Due == nil {
		t.Fatalf("Expected due date stored")
	}
	lower := before.Add(14*24*time.Hour - time.Minute)
	upper := before.Add(14*24*time.Hour + time.Minute)
	if note.Due.Before(lower) || note.Due.After(upper) {
		t.Errorf("Due date %v outside expected window around %v", note.Due, before.Add(14*24*time.Hour))
	}
}
