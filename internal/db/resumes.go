package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// SaveGeneratedResume stores a generated document record. runID may be nil.
func (db *DB) SaveGeneratedResume(ctx context.Context, runID *uuid.UUID, rec types.GeneratedRecord) (uuid.UUID, error) {
	created := rec.Timestamp
	if created.IsZero() {
		created = time.Now()
	}
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO generated_resumes (run_id, path, source_checksum, company, job_title, first_name, last_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		runID, rec.Path, rec.SourceChecksum, rec.Company, rec.JobTitle, rec.FirstName, rec.LastName, created,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save generated resume: %w", err)
	}
	return id, nil
}

// ListGeneratedResumes returns stored records, newest first.
func (db *DB) ListGeneratedResumes(ctx context.Context, limit int) ([]GeneratedResume, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, path, source_checksum, company, job_title, first_name, last_name, created_at
		 FROM generated_resumes ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list generated resumes: %w", err)
	}
	defer rows.Close()

	var out []GeneratedResume
	for rows.Next() {
		var r GeneratedResume
		if err := rows.Scan(&r.ID, &r.RunID, &r.Path, &r.SourceChecksum, &r.Company, &r.JobTitle,
			&r.FirstName, &r.LastName, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan generated resume: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Record converts the row to the on-disk record form.
func (r GeneratedResume) Record() types.GeneratedRecord {
	return types.GeneratedRecord{
		Path:           r.Path,
		SourceChecksum: r.SourceChecksum,
		Company:        r.Company,
		JobTitle:       r.JobTitle,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Timestamp:      r.CreatedAt,
	}
}
