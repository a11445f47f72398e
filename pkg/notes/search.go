package notes

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// fuzzyCutoff is the minimum similarity for the approximate-match fallback.
const fuzzyCutoff = 0.6

// prefixMinQueryLen gates prefix narrowing: the query term must be longer
// than this for prefix matching to engage.
const prefixMinQueryLen = 3

// FindByHash returns every note whose hash starts with prefix, scoped by
// book: a negative book means all active (non-trash) books, a concrete id
// scopes to exactly that book (passing TrashBookID lists the trash). An
// empty prefix returns everything in scope. Hash lookup is a plain
// case-sensitive prefix comparison with no fuzzy fallback.
func FindByHash(ctx context.Context, db *sql.DB, prefix string, book int64) ([]Note, error) {
	scope := activeScope
	if book >= 0 {
		scope = bookScope(book)
	}
	ids, err := matchHashPrefix(ctx, db, prefix, scope)
	if err != nil {
		return nil, err
	}
	return hydrateNotes(ctx, db, ids)
}

// FindByKeyword resolves a keyword query to notes. Only the first element of
// keywords is consulted; the slice signature survives from the import format
// and a possible future multi-keyword search (see DESIGN.md). With strict
// set, only exact case-sensitive matches count. Otherwise candidates are
// narrowed by case-insensitive prefix (for queries longer than three
// characters); if that yields nothing, the single closest known keyword
// above the similarity cutoff is tried.
func FindByKeyword(ctx context.Context, db *sql.DB, keywords []string, strict bool, book int64) ([]Note, error) {
	if len(keywords) == 0 || keywords[0] == "" {
		return nil, nil
	}
	query := keywords[0]

	known, err := ListKeywords(ctx, db)
	if err != nil {
		return nil, err
	}

	var candidates []string
	if strict {
		for _, k := range known {
			if k == query {
				candidates = append(candidates, k)
				break
			}
		}
	} else {
		if len(query) > prefixMinQueryLen {
			lower := strings.ToLower(query)
			for _, k := range known {
				if strings.HasPrefix(strings.ToLower(k), lower) {
					candidates = append(candidates, k)
				}
			}
		}
		if len(candidates) == 0 {
			if best, ok := closestMatch(query, known); ok {
				candidates = append(candidates, best)
			}
		}
	}

	idSet := make(map[int64]bool)
	var ids []int64
	for _, keyword := range candidates {
		rows, err := db.QueryContext(ctx, `
		SELECT nk.noteid
		FROM keyword k
		JOIN notekeyword nk ON nk.keywordid = k.keywordId
		WHERE k.keyword = ?;`, keyword)
		if err != nil {
			return nil, fmt.Errorf("failed to find notes for keyword %q: %w", keyword, err)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			if !idSet[id] {
				idSet[id] = true
				ids = append(ids, id)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	scope := activeScope
	if book >= 0 {
		scope = bookScope(book)
	}
	var scoped []int64
	for _, id := range ids {
		var b int64
		if err := db.QueryRowContext(ctx, `SELECT book FROM note WHERE noteId = ?;`, id).Scan(&b); err != nil {
			return nil, fmt.Errorf("failed to look up note %d: %w", id, err)
		}
		if scope(b) {
			scoped = append(scoped, id)
		}
	}
	return hydrateNotes(ctx, db, scoped)
}

// FindRecent returns the n most recently dated active notes, newest first.
func FindRecent(ctx context.Context, db *sql.DB, n int) ([]Note, error) {
	rows, err := db.QueryContext(ctx, `
	SELECT noteId FROM note WHERE book != ? ORDER BY date DESC LIMIT ?;`, TrashBookID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent notes: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hydrateNotes(ctx, db, ids)
}

func hydrateNotes(ctx context.Context, db *sql.DB, ids []int64) ([]Note, error) {
	var result []Note
	for _, id := range ids {
		note, err := GetNote(ctx, db, id)
		if err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, nil
}

// closestMatch returns the known keyword most similar to query, if its
// similarity clears fuzzyCutoff. Ties break toward the alphabetically first
// candidate so repeated queries stay deterministic.
func closestMatch(query string, known []string) (string, bool) {
	sorted := make([]string, len(known))
	copy(sorted, known)
	sort.Strings(sorted)

	best := ""
	bestScore := 0.0
	for _, k := range sorted {
		if score := stringSimilarity(query, k); score > bestScore {
			best = k
			bestScore = score
		}
	}
	if bestScore >= fuzzyCutoff {
		return best, true
	}
	return "", false
}

// stringSimilarity calculates the similarity between two strings (0.0-1.0)
// as a Levenshtein ratio.
func stringSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	distance := levenshteinDistance(a, b)
	maxLen := max(len(a), len(b))

	return 1.0 - float64(distance)/float64(maxLen)
}

// levenshteinDistance calculates the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
