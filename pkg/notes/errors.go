package notes

import "errors"

var (
	// ErrNoteNotFound is returned when a hash prefix or keyword resolves to
	// zero notes in the requested scope. The store is left unmodified.
	ErrNoteNotFound = errors.New("note not found")

	// ErrAmbiguousHash is returned when a hash prefix matches more than one
	// note where exactly one is required. Callers should retry with more
	// characters of the hash.
	ErrAmbiguousHash = errors.New("abbreviated hash matches more than one note")

	ErrBookNotFound    = errors.New("book not found")
	ErrKeywordNotFound = errors.New("keyword not found")
	ErrInvalidBookName = errors.New("invalid book name")
	ErrReservedBook    = errors.New("the Trash book is reserved")

	// ErrEmptyNote is reported by the editor layer when a session yields no
	// title, content or keywords; the repository itself accepts empty notes.
	ErrEmptyNote = errors.New("empty note")

	// ErrAttachmentRead wraps a missing or unreadable attachment file. Add
	// degrades it to a warning and creates the note without the attachment.
	ErrAttachmentRead = errors.New("cannot read attachment")
)
