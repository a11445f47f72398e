package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestExportOneLinePerNote(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	addTestNote(t, ctx, testDB, NoteInput{
		Title:    "multiline",
		Content:  "first\nsecond\nthird",
		Keywords: []string{"export"},
		Due:      "tomorrow",
	})
	addTestNote(t, ctx, testDB, NoteInput{Title: "plain", Content: "single"})

	var buf bytes.Buffer
	if err := Export(ctx, testDB, &buf, ""); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected one line per note, got %d lines", len(lines))
	}

	var rec exportedNote
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("Export line is not valid JSON: %v", err)
	}
	if rec.Title != "multiline" {
		t.Errorf("Expected first exported note 'multiline', got %q", rec.Title)
	}
	if rec.Content != `first\nsecond\nthird` {
		t.Errorf("Expected content newlines escaped, got %q", rec.Content)
	}
	if rec.Due == "" {
		t.Errorf("Expected due timestamp serialized")
	}
	if len(rec.Keywords) != 1 || rec.Keywords[0] != "export" {
		t.Errorf("Expected keywords carried, got %v", rec.Keywords)
	}
}

func TestExportScopedByPrefix(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	target := addTestNote(t, ctx, testDB, NoteInput{Title: "wanted"})
	addTestNote(t, ctx, testDB, NoteInput{Title: "other"})

	var buf bytes.Buffer
	if err := Export(ctx, testDB, &buf, target.Hash[:10]); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected a single exported note, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], `"wanted"`) {
		t.Errorf("Expected the prefixed note exported, got %q", lines[0])
	}
}

func TestImportRoundTrip(t *testing.T) {
	source := setupTestDB(t)
	ctx := context.Background()

	orig := addTestNote(t, ctx, source, NoteInput{
		Title:    "roundtrip",
		Content:  "alpha\nbeta",
		Keywords: []string{"carried"},
		Due:      "3 days",
	})

	var buf bytes.Buffer
	if err := Export(ctx, source, &buf, ""); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dest := setupTestDB(t)
	count, err := Import(ctx, dest, &buf)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 imported note, got %d", count)
	}

	found, err := FindByKeyword(ctx, dest, []string{"carried"}, true, AllBooks)
	if err != nil {
		t.Fatalf("FindByKeyword failed: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("Expected the imported note findable by keyword, got %d", len(found))
	}
	got := found[0]

	if got.Content != "alpha\nbeta" {
		t.Errorf("Expected content newlines restored, got %q", got.Content)
	}
	if !got.Date.Equal(orig.Date) {
		t.Errorf("Expected original date preserved: %v vs %v", got.Date, orig.Date)
	}
	if got.Due == nil || !got.Due.Equal(*orig.Due) {
		t.Errorf("Expected absolute due restored: %v vs %v", got.Due, orig.Due)
	}
	if got.Hash == orig.Hash {
		t.Errorf("Imported note must not reuse the original hash")
	}
	if got.Book != DefaultBookID {
		t.Errorf("Expected imported note filed in Default, got %d", got.Book)
	}
}

func TestImportSkipsBlankLines(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	stream := strings.NewReader("\n" +
		`{"noteId":1,"title":"a","keywords":[],"content":"x","due":"","privacy":0,"date":"2024-01-01 00:00:00","modified":"2024-01-01 00:00:00","hash":"abc"}` +
		"\n\n" +
		`{"noteId":2,"title":"b","keywords":[],"content":"y","due":"","privacy":0,"date":"2024-01-02 00:00:00","modified":"2024-01-02 00:00:00","hash":"def"}` +
		"\n\n")

	count, err := Import(ctx, testDB, stream)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 imported notes, got %d", count)
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	testDB := setupTestDB(t)
	ctx := context.Background()

	stream := strings.NewReader(
		`{"noteId":1,"title":"ok","keywords":[],"content":"x","due":"","privacy":0,"date":"2024-01-01 00:00:00","modified":"2024-01-01 00:00:00","hash":"abc"}` +
			"\nnot json at all\n")

	count, err := Import(ctx, testDB, stream)
	if err == nil {
		t.Fatalf("Expected an error for a malformed line")
	}
	if count != 1 {
		t.Errorf("Expected the valid leading note counted, got %d", count)
	}
}
