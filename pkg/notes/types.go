package notes

import "time"

// TimeLayout is the storage format for date, modified and due columns.
const TimeLayout = "2006-01-02 15:04:05"

// Reserved book ids. Trash is seeded as the first book row and Default as the
// second, so their ids are stable across every database this code creates.
const (
	TrashBookID   int64 = 1
	DefaultBookID int64 = 2

	// AllBooks scopes a search to every non-trash book.
	AllBooks int64 = -1

	// BookUnspecified tells Add that the caller wants no particular book;
	// the note lands in Default without a warning.
	BookUnspecified int64 = 0
)

// Note is a single stored note, fully hydrated with its keyword and
// attachment associations.
type Note struct {
	ID          int64           `json:"noteId"`
	AuthorID    int64           `json:"authorId"`
	Date        time.Time       `json:"-"`
	Modified    time.Time       `json:"-"`
	Due         *time.Time      `json:"-"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Hash        string          `json:"hash"`
	Privacy     int             `json:"privacy"`
	Book        int64           `json:"book"`
	Keywords    []string        `json:"keywords"`
	Attachments []AttachmentRef `json:"attachments,omitempty"`
}

// Book is a named grouping bucket for notes. The row named Trash is reserved
// and acts as the soft-delete destination.
type Book struct {
	ID     int64  `json:"bookId"`
	Number int64  `json:"number"`
	Name   string `json:"name"`
}

// Keyword is a shared label attached to notes through the notekeyword join
// table.
type Keyword struct {
	ID      int64  `json:"keywordId"`
	Keyword string `json:"keyword"`
}

// Attachment is a file stored inline with the note store.
type Attachment struct {
	ID       int64  `json:"attachmentId"`
	Filename string `json:"filename"`
	Contents []byte `json:"-"`
}

// AttachmentRef identifies an attachment without carrying its payload.
type AttachmentRef struct {
	ID       int64  `json:"attachmentId"`
	Filename string `json:"filename"`
}

// NoteInput carries the caller-supplied fields for Add. A zero Date means
// "now"; Due is a relative-time expression interpreted by InterpretTime.
type NoteInput struct {
	Title       string
	Content     string
	Keywords    []string
	Attachments []string
	Due         string
	Book        int64
	Date        time.Time
}
