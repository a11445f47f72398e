package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ListKeywords returns every known keyword string in alphabetical order.
func ListKeywords(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT keyword FROM keyword ORDER BY keyword ASC;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query keywords: %w", err)
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

// lookupOrCreateKeyword returns the id of the keyword row matching the exact
// string, creating it lazily on first use. No case folding happens at write
// time; search is where case-insensitive matching lives.
func lookupOrCreateKeyword(ctx context.Context, db *sql.DB, keyword string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, `SELECT keywordId FROM keyword WHERE keyword = ?;`, keyword).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	res, err := db.ExecContext(ctx, `INSERT INTO keyword (keyword) VALUES (?);`, keyword)
	if err != nil {
		return 0, fmt.Errorf("failed to create keyword %q: %w", keyword, err)
	}
	return res.LastInsertId()
}

// RenameKeyword changes a keyword string in place; every note association
// follows along since the join table references the keyword id.
func RenameKeyword(ctx context.Context, db *sql.DB, old, new string) error {
	res, err := db.ExecContext(ctx, `UPDATE keyword SET keyword = ? WHERE keyword = ?;`, new, old)
	if err != nil {
		return fmt.Errorf("failed to rename keyword %q to %q: %w", old, new, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrKeywordNotFound
	}
	return nil
}

// Cleanup removes keyword rows with zero remaining note associations and
// returns how many were removed.
func Cleanup(ctx context.Context, db *sql.DB) (int64, error) {
	res, err := db.ExecContext(ctx, `
	DELETE FROM keyword
	WHERE keywordId NOT IN (SELECT keywordid FROM notekeyword);`)
	if err != nil {
		return 0, fmt.Errorf("failed to remove unused keywords: %w", err)
	}
	return res.RowsAffected()
}
