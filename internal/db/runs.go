package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const runColumns = `id, company, role_title, job_url, source_checksum, mode, no_shame, max_iterations,
	status, iterations, passed, error, created_at, completed_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.Company, &run.RoleTitle, &run.JobURL, &run.SourceChecksum, &run.Mode,
		&run.NoShame, &run.MaxIterations, &run.Status, &run.Iterations, &run.Passed, &run.Error,
		&run.CreatedAt, &run.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// CreateRun inserts a running run and returns its ID.
func (db *DB) CreateRun(ctx context.Context, in RunInput) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO runs (company, role_title, job_url, source_checksum, mode, no_shame, max_iterations, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		in.Company, in.RoleTitle, in.JobURL, in.SourceChecksum, in.Mode, in.NoShame, in.MaxIterations, RunStatusRunning,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun records the final state of a run. errMsg is stored when non-empty.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, iterations int, passed bool, errMsg string) error {
	var errVal *string
	if errMsg != "" {
		errVal = &errMsg
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE runs SET status = $1, iterations = $2, passed = $3, error = $4, completed_at = NOW() WHERE id = $5`,
		status, iterations, passed, errVal, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	run, err := scanRun(db.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, runID))
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// buildRunQuery assembles the filtered run listing query.
func buildRunQuery(filters RunFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = 50
	}

	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	var args []any
	if filters.Company != "" {
		args = append(args, "%"+filters.Company+"%")
		query += fmt.Sprintf(" AND company ILIKE $%d", len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	args = append(args, filters.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	return query, args
}

// ListRuns returns recent runs, newest first.
func (db *DB) ListRuns(ctx context.Context, filters RunFilters) ([]Run, error) {
	query, args := buildRunQuery(filters)
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// DeleteRun deletes a run and its iterations.
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// SaveIteration stores one iteration's verdict. verdict is marshalled to JSON.
func (db *DB) SaveIteration(ctx context.Context, runID uuid.UUID, index int, passed bool, verdict any, content string, pageCount int) error {
	verdictJSON, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to marshal verdict: %w", err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO iterations (run_id, iteration, passed, verdict, content, page_count)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (run_id, iteration) DO UPDATE
		 SET passed = $3, verdict = $4, content = $5, page_count = $6, created_at = NOW()`,
		runID, index, passed, verdictJSON, content, pageCount,
	)
	if err != nil {
		return fmt.Errorf("failed to save iteration %d: %w", index, err)
	}
	return nil
}

// ListIterations returns a run's iterations in order.
func (db *DB) ListIterations(ctx context.Context, runID uuid.UUID) ([]Iteration, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, iteration, passed, verdict, content, page_count, created_at
		 FROM iterations WHERE run_id = $1 ORDER BY iteration`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list iterations: %w", err)
	}
	defer rows.Close()

	var out []Iteration
	for rows.Next() {
		var it Iteration
		var verdict []byte
		if err := rows.Scan(&it.RunID, &it.Index, &it.Passed, &verdict, &it.Content, &it.PageCount, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan iteration: %w", err)
		}
		it.Verdict = verdict
		out = append(out, it)
	}
	return out, rows.Err()
}
