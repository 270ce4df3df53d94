package evaluators

import (
	"context"
	"time"

	"github.com/jonathan/resume-optimizer/internal/types"
)

const sampleHTML = `<h1>Ada Lovelace</h1>
<h2>Experience</h2><ul><li>Built Go services on Kubernetes serving 2M requests a day</li></ul>
<h2>Skills</h2><p>Go, Kubernetes, PostgreSQL</p>`

var fixedNow = func() time.Time { return time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC) }

func sampleInputs() (*types.Candidate, *types.JobPosting, *types.SourceDocument) {
	candidate := (&types.Candidate{Content: types.Markup{HTML: sampleHTML}, Iteration: 1}).
		WithRender("Ada Lovelace\nBuilt Go services on Kubernetes serving 2M requests a day\nGo, Kubernetes, PostgreSQL", []byte("%PDF-1.4"), 1, nil)
	job := &types.JobPosting{
		Title:        "Backend Engineer",
		Company:      "Acme",
		Description:  "Build Go services on Kubernetes.",
		Requirements: []string{"3+ years of Go", "Kubernetes experience"},
		Keywords:     []string{"go", "kubernetes", "postgresql"},
	}
	source := types.NewSourceDocument("Ada Lovelace. Wrote Go services on Kubernetes.", "Ada", "Lovelace")
	return candidate, job, source
}

func stubImage(img []byte, err error) PageImager {
	return func(context.Context, []byte) ([]byte, int, error) {
		return img, 1, err
	}
}
