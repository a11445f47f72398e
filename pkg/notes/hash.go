package notes

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/google/uuid"
)

// ComputeHash derives the stable identity string for a note from its id,
// creation date and title. A missing id or title is substituted with a
// random filler so legacy rows lacking either field still get a usable,
// extremely-low-collision hash.
func ComputeHash(id int64, date, title string) string {
	idPart := strconv.FormatInt(id, 10)
	if id <= 0 {
		idPart = uuid.NewString()
	}
	titlePart := title
	if titlePart == "" {
		titlePart = uuid.NewString()
	}
	sum := sha256.Sum256([]byte(idPart + date + titlePart))
	return hex.EncodeToString(sum[:])
}

// MinUniquePrefixLength returns the smallest n such that truncating every
// hash to its first n characters yields no duplicates. An empty set returns
// 1. Recomputed on every listing since the stored hash set changes between
// calls.
func MinUniquePrefixLength(hashes []string) int {
	if len(hashes) == 0 {
		return 1
	}

	maxLen := 1
	for _, h := range hashes {
		if len(h) > maxLen {
			maxLen = len(h)
		}
	}

	for n := 1; n < maxLen; n++ {
		prefixes := make([]string, len(hashes))
		for i, h := range hashes {
			if len(h) > n {
				prefixes[i] = h[:n]
			} else {
				prefixes[i] = h
			}
		}
		sort.Strings(prefixes)
		duplicate := false
		for i := 0; i < len(prefixes)-1; i++ {
			if prefixes[i] == prefixes[i+1] {
				duplicate = true
				break
			}
		}
		if !duplicate {
			return n
		}
	}
	return maxLen
}

// ActiveHashes returns the hashes of every stored note, trash included, for
// abbreviation-length computation.
func ActiveHashes(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT hash FROM note;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list note hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}

// Rehash recomputes and overwrites every stored note's hash from its current
// fields. A row discovered without a usable primary id is removed with a
// diagnostic rather than aborting the pass. Returns the number of notes
// rehashed. Intended as a repair operation when hash collisions are
// suspected.
func Rehash(ctx context.Context, db *sql.DB) (int64, error) {
	rows, err := db.QueryContext(ctx, `SELECT noteId, date, title FROM note;`)
	if err != nil {
		return 0, fmt.Errorf("failed to list notes for rehash: %w", err)
	}

	type pending struct {
		id    int64
		valid bool
		hash  string
	}
	var work []pending
	for rows.Next() {
		var id sql.NullInt64
		var date, title sql.NullString
		if err := rows.Scan(&id, &date, &title); err != nil {
			rows.Close()
			return 0, err
		}
		if !id.Valid || id.Int64 == 0 {
			work = append(work, pending{valid: false})
			continue
		}
		work = append(work, pending{
			id:    id.Int64,
			valid: true,
			hash:  ComputeHash(id.Int64, date.String, title.String),
		})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	var count int64
	dropped := false
	for _, w := range work {
		if !w.valid {
			dropped = true
			continue
		}
		if _, err := db.ExecContext(ctx, `UPDATE note SET hash = ? WHERE noteId = ?;`, w.hash, w.id); err != nil {
			return count, fmt.Errorf("failed to update hash for note %d: %w", w.id, err)
		}
		count++
	}
	if dropped {
		res, err := db.ExecContext(ctx, `DELETE FROM note WHERE noteId IS NULL OR noteId = 0;`)
		if err != nil {
			return count, fmt.Errorf("failed to remove notes without ids: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			fmt.Fprintf(os.Stderr, "Warning: removed %d note(s) without a primary id during rehash\n", n)
		}
	}
	return count, nil
}
