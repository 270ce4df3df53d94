package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/optimize"
	"github.com/jonathan/resume-optimizer/internal/storage"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// debugObserver writes iteration_N.html (or .json) and iteration_N.pdf into dir.
// N is 1-based to match the progress output.
func debugObserver(store *storage.FileStore, dir string, progress ProgressCallback) optimize.Observer {
	return func(_ context.Context, i int, c *types.Candidate, _ evaluation.Verdict) error {
		n := i + 1
		ext := ".html"
		if c.Content != nil && c.Content.Kind() == types.ContentStructured {
			ext = ".json"
		}
		if raw := c.Raw(); raw != "" {
			if err := store.WriteFile(filepath.Join(dir, fmt.Sprintf("iteration_%d%s", n, ext)), []byte(raw)); err != nil {
				return err
			}
		}

		if len(c.PDF) == 0 {
			emit(progress, ProgressEvent{Step: StepDebug, Iteration: i, Message: "Debug: no PDF (render failed)"})
			return nil
		}
		pdfPath := filepath.Join(dir, fmt.Sprintf("iteration_%d.pdf", n))
		if err := store.WriteFile(pdfPath, c.PDF); err != nil {
			return err
		}
		emit(progress, ProgressEvent{Step: StepDebug, Iteration: i, Message: "Debug: saved " + pdfPath})
		return nil
	}
}
