package db

const (
	// SchemaCurrent defines the SQL statements for the current generation of
	// the note store schema. A fresh database is created directly at this
	// layout; older databases reach it through the steps in migrate.go.
	SchemaCurrent = `
CREATE TABLE IF NOT EXISTS version (
    major INTEGER,
    middle INTEGER,
    minor INTEGER
);

CREATE TABLE IF NOT EXISTS note (
    noteId INTEGER PRIMARY KEY AUTOINCREMENT,
    authorId INTEGER,
    date TEXT,
    modified TEXT,
    due TEXT DEFAULT '',
    title TEXT,
    content TEXT,
    hash TEXT DEFAULT '',
    privacy INTEGER DEFAULT 0,
    book INTEGER DEFAULT 2
);

CREATE TABLE IF NOT EXISTS book (
    bookId INTEGER PRIMARY KEY AUTOINCREMENT,
    number INTEGER,
    name TEXT
);

CREATE TABLE IF NOT EXISTS keyword (
    keywordId INTEGER PRIMARY KEY AUTOINCREMENT,
    keyword TEXT
);

CREATE TABLE IF NOT EXISTS notekeyword (
    notekeywordId INTEGER PRIMARY KEY AUTOINCREMENT,
    noteid INTEGER,
    keywordid INTEGER
);

CREATE TABLE IF NOT EXISTS attachment (
    attachmentId INTEGER PRIMARY KEY AUTOINCREMENT,
    filename TEXT,
    contents BLOB
);

CREATE TABLE IF NOT EXISTS note_attachment (
    note_attachmentId INTEGER PRIMARY KEY AUTOINCREMENT,
    noteId INTEGER,
    attachmentId INTEGER
);
`

	// seedBooksSQL inserts the two reserved books. Trash must be the first
	// row so that its bookId is always 1; Default follows at 2.
	seedBooksSQL = `
INSERT INTO book (number, name) VALUES (0, 'Trash');
INSERT INTO book (number, name) VALUES (1, 'Default');
`
)
