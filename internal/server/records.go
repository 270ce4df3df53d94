package server

import (
	"context"

	"github.com/jonathan/resume-optimizer/internal/db"
	"github.com/jonathan/resume-optimizer/internal/storage"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// RecordLister lists generated resumes, newest first.
type RecordLister interface {
	ListRecords(ctx context.Context, limit int) ([]types.GeneratedRecord, error)
}

// FileRecords lists records from the output directory index.
type FileRecords struct {
	Store *storage.FileStore
}

// ListRecords implements RecordLister.
func (f FileRecords) ListRecords(_ context.Context, limit int) ([]types.GeneratedRecord, error) {
	records, err := f.Store.List()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// DBRecords lists records from the generated_resumes table.
type DBRecords struct {
	DB *db.DB
}

// ListRecords implements RecordLister.
func (d DBRecords) ListRecords(ctx context.Context, limit int) ([]types.GeneratedRecord, error) {
	rows, err := d.DB.ListGeneratedResumes(ctx, limit)
	if err != nil {
		return nil, err
	}
	records := make([]types.GeneratedRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.Record())
	}
	return records, nil
}
