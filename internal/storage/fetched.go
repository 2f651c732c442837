package storage

import (
	"context"
	"time"
)

// MarkFetched records that a repository's sample has been downloaded.
func (db *DB) MarkFetched(ctx context.Context, name string) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR IGNORE INTO fetched_repos (name, fetched_at) VALUES (?, ?)",
		name, time.Now().UTC().Format(time.RFC3339))
	return err
}

// FetchedRepos returns the names of every repository already fetched.
func (db *DB) FetchedRepos(ctx context.Context) (map[string]bool, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT name FROM fetched_repos")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names[name] = true
	}
	return names, rows.Err()
}
