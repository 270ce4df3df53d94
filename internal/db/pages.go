package db

import (
	"context"
	"fmt"
	"time"
)

// GetJobPage returns cached posting text fetched within maxAge.
func (db *DB) GetJobPage(ctx context.Context, url string, maxAge time.Duration) (string, bool, error) {
	var text string
	err := db.pool.QueryRow(ctx,
		`SELECT text FROM job_pages WHERE url = $1 AND fetched_at > $2`,
		url, time.Now().Add(-maxAge),
	).Scan(&text)
	if err != nil {
		if notFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read job page: %w", err)
	}
	return text, true, nil
}

// PutJobPage stores or refreshes posting text for url.
func (db *DB) PutJobPage(ctx context.Context, url, text string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO job_pages (url, text) VALUES ($1, $2)
		 ON CONFLICT (url) DO UPDATE SET text = $2, fetched_at = NOW()`,
		url, text,
	)
	if err != nil {
		return fmt.Errorf("failed to cache job page: %w", err)
	}
	return nil
}

// DeleteExpiredPages removes cached pages older than maxAge.
func (db *DB) DeleteExpiredPages(ctx context.Context, maxAge time.Duration) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM job_pages WHERE fetched_at <= $1`, time.Now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired pages: %w", err)
	}
	return tag.RowsAffected(), nil
}
