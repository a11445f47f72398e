package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TargetVersion is the schema version this build of the application expects.
// The first two components gate migrations; the minor component only keeps
// the stored marker current.
var TargetVersion = Version{Major: 0, Middle: 8, Minor: 1}

// Version is the (major, middle, minor) triple persisted in the version table.
type Version struct {
	Major  int
	Middle int
	Minor  int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Middle, v.Minor)
}

// Less reports whether v precedes other, comparing only the schema-relevant
// major and middle components.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	return v.Middle < other.Middle
}

// MigrationError reports a failed schema migration step. Migrations are not
// re-entrant-safe if interrupted mid-step, so callers must treat this as
// fatal rather than retrying.
type MigrationError struct {
	Step string
	Err  error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("schema migration step %q failed: %v", e.Step, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// migrationStep carries one versioned schema change. apply is a pure function
// of the prior schema; whether it runs is decided solely by comparing the
// stored version marker against to, never by probing table existence.
type migrationStep struct {
	to    Version
	name  string
	apply func(tx *sql.Tx) error
}

var migrations = []migrationStep{
	{
		to:   Version{0, 2, 0},
		name: "add note.due",
		apply: func(tx *sql.Tx) error {
			_, err := tx.Exec(`ALTER TABLE note ADD due DEFAULT '';`)
			return err
		},
	},
	{
		to:   Version{0, 3, 0},
		name: "add note.modified",
		apply: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`ALTER TABLE note ADD modified DEFAULT '';`); err != nil {
				return err
			}
			_, err := tx.Exec(`UPDATE note SET modified = date;`)
			return err
		},
	},
	{
		to:   Version{0, 4, 0},
		name: "add note.hash",
		apply: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`ALTER TABLE note ADD hash DEFAULT '';`); err != nil {
				return err
			}
			rows, err := tx.Query(`SELECT noteId, date, title FROM note;`)
			if err != nil {
				return err
			}
			type idHash struct {
				id   int64
				hash string
			}
			var pending []idHash
			for rows.Next() {
				var id int64
				var date, title string
				if err := rows.Scan(&id, &date, &title); err != nil {
					rows.Close()
					return err
				}
				pending = append(pending, idHash{id, legacyNoteHash(id, date, title)})
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return err
			}
			rows.Close()
			for _, p := range pending {
				if _, err := tx.Exec(`UPDATE note SET hash = ? WHERE noteId = ?;`, p.hash, p.id); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		to:   Version{0, 5, 0},
		name: "add note.in_trash",
		apply: func(tx *sql.Tx) error {
			_, err := tx.Exec(`ALTER TABLE note ADD in_trash DEFAULT 0;`)
			return err
		},
	},
	{
		to:   Version{0, 6, 0},
		name: "add version.middle",
		apply: func(tx *sql.Tx) error {
			// IF EXISTS covers databases whose marker was lost entirely.
			if _, err := tx.Exec(`DROP TABLE IF EXISTS version;`); err != nil {
				return err
			}
			if _, err := tx.Exec(`CREATE TABLE version (major INTEGER, middle INTEGER, minor INTEGER);`); err != nil {
				return err
			}
			_, err := tx.Exec(`INSERT INTO version (major, middle, minor) VALUES (0, 6, 0);`)
			return err
		},
	},
	{
		to:   Version{0, 7, 0},
		name: "introduce books",
		apply: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`CREATE TABLE book (bookId INTEGER PRIMARY KEY AUTOINCREMENT, number INTEGER, name TEXT);`); err != nil {
				return err
			}
			if _, err := tx.Exec(seedBooksSQL); err != nil {
				return err
			}
			// SQLite cannot drop a column, so replacing in_trash with book
			// takes the create-new/copy/drop-old route.
			if _, err := tx.Exec(`
CREATE TABLE note_new (
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
);`); err != nil {
				return err
			}
			if _, err := tx.Exec(`
INSERT INTO note_new (noteId, authorId, date, modified, due, title, content, hash, privacy, book)
SELECT noteId, authorId, date, modified, due, title, content, hash, privacy,
       CASE in_trash WHEN 1 THEN 1 ELSE 2 END
FROM note;`); err != nil {
				return err
			}
			if _, err := tx.Exec(`DROP TABLE note;`); err != nil {
				return err
			}
			_, err := tx.Exec(`ALTER TABLE note_new RENAME TO note;`)
			return err
		},
	},
	{
		to:   Version{0, 8, 0},
		name: "introduce attachments",
		apply: func(tx *sql.Tx) error {
			if _, err := tx.Exec(`CREATE TABLE attachment (attachmentId INTEGER PRIMARY KEY AUTOINCREMENT, filename TEXT, contents BLOB);`); err != nil {
				return err
			}
			_, err := tx.Exec(`CREATE TABLE note_attachment (note_attachmentId INTEGER PRIMARY KEY AUTOINCREMENT, noteId INTEGER, attachmentId INTEGER);`)
			return err
		},
	},
}

// legacyNoteHash mirrors the hash formula in use when the hash column was
// introduced; the live formula lives in pkg/notes.
func legacyNoteHash(id int64, date, title string) string {
	sum := sha256.Sum256([]byte(strconv.FormatInt(id, 10) + date + title))
	return hex.EncodeToString(sum[:])
}

// GetSchemaVersion reads the stored version marker. A missing or unreadable
// marker on an otherwise populated database is treated as the oldest known
// version rather than an error; a legacy two-column marker reads as minor 0.
func GetSchemaVersion(db *sql.DB) (Version, error) {
	var v Version
	err := db.QueryRow(`SELECT major, middle, minor FROM version;`).Scan(&v.Major, &v.Middle, &v.Minor)
	if err == nil {
		return v, nil
	}

	// Pre-0.6 databases stored only (major, minor).
	err = db.QueryRow(`SELECT major, minor FROM version;`).Scan(&v.Major, &v.Middle)
	if err == nil {
		v.Minor = 0
		return v, nil
	}

	if err == sql.ErrNoRows || strings.Contains(err.Error(), "no such table") {
		return Version{0, 1, 0}, nil
	}
	return Version{}, fmt.Errorf("failed to read schema version: %w", err)
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var found string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?;`, name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InitializeSchema creates the full current-generation schema in an empty
// database, seeds the reserved books, and writes the version marker.
func InitializeSchema(db *sql.DB, version Version) error {
	if _, err := db.Exec(SchemaCurrent); err != nil {
		return fmt.Errorf("failed to create base schema: %w", err)
	}
	if _, err := db.Exec(seedBooksSQL); err != nil {
		return fmt.Errorf("failed to seed reserved books: %w", err)
	}
	if err := writeVersionMarker(db, version); err != nil {
		return err
	}
	return nil
}

func writeVersionMarker(db *sql.DB, v Version) error {
	stmts := []string{
		`DROP TABLE IF EXISTS version;`,
		`CREATE TABLE version (major INTEGER, middle INTEGER, minor INTEGER);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("failed to rewrite version marker: %w", err)
		}
	}
	if _, err := db.Exec(`INSERT INTO version (major, middle, minor) VALUES (?, ?, ?);`, v.Major, v.Middle, v.Minor); err != nil {
		return fmt.Errorf("failed to write version marker %s: %w", v, err)
	}
	return nil
}

// Migrate brings the database identified by dbIdentifierForLog up to
// TargetVersion. A brand-new database gets the current schema directly; an
// existing one is walked through every pending migration step in ascending
// order, each in its own transaction. The marker is rewritten to
// TargetVersion afterwards even when no step ran, which keeps its format
// current.
func Migrate(db *sql.DB, dbIdentifierForLog string) error {
	hasNotes, err := tableExists(db, "note")
	if err != nil {
		return fmt.Errorf("failed to inspect database '%s': %w", dbIdentifierForLog, err)
	}
	if !hasNotes {
		fmt.Fprintf(os.Stderr, "Creating new note store '%s' at schema version %s\n", dbIdentifierForLog, TargetVersion)
		return InitializeSchema(db, TargetVersion)
	}

	installed, err := GetSchemaVersion(db)
	if err != nil {
		return err
	}

	if TargetVersion.Less(installed) {
		return fmt.Errorf("database '%s' has schema version %s, which is newer than this application's %s; please upgrade the application", dbIdentifierForLog, installed, TargetVersion)
	}

	for _, step := range migrations {
		if !installed.Less(step.to) {
			continue
		}
		fmt.Fprintf(os.Stderr, "Updating database '%s' to schema version %s (%s)\n", dbIdentifierForLog, step.to, step.name)
		tx, err := db.Begin()
		if err != nil {
			return &MigrationError{Step: step.name, Err: err}
		}
		if err := step.apply(tx); err != nil {
			tx.Rollback()
			return &MigrationError{Step: step.name, Err: err}
		}
		if err := tx.Commit(); err != nil {
			return &MigrationError{Step: step.name, Err: err}
		}
	}

	return writeVersionMarker(db, TargetVersion)
}
