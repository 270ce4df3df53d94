package parsing

import (
	"strings"

	"github.com/jonathan/resume-optimizer/internal/keywords"
	"github.com/jonathan/resume-optimizer/internal/types"
)

var bulletPrefixes = []string{"- ", "* ", "• ", "· "}

// NormalizeRequirement trims list markers and collapses whitespace.
func NormalizeRequirement(req string) string {
	req = strings.TrimSpace(req)
	for _, p := range bulletPrefixes {
		req = strings.TrimPrefix(req, p)
	}
	return strings.Join(strings.Fields(req), " ")
}

// NormalizeRequirements normalizes requirements and drops empties and
// case-insensitive duplicates, keeping the first occurrence.
func NormalizeRequirements(reqs []string) []string {
	out := make([]string, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		n := NormalizeRequirement(r)
		key := strings.ToLower(n)
		if n == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// postProcess normalizes a decoded posting in place.
func postProcess(job *types.JobPosting) error {
	job.Title = strings.Join(strings.Fields(job.Title), " ")
	job.Company = strings.Join(strings.Fields(job.Company), " ")
	job.Description = strings.TrimSpace(job.Description)

	if job.Title == "" {
		return &ValidationError{Field: "title", Message: "job title is required"}
	}
	if job.Company == "" {
		return &ValidationError{Field: "company", Message: "company name is required"}
	}

	job.Requirements = NormalizeRequirements(job.Requirements)
	job.Keywords = keywords.NormalizeAll(job.Keywords)
	return nil
}
