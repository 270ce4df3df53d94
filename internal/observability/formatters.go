// Package observability formats optimizer progress and results for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/resume-optimizer/internal/evaluation"
	"github.com/jonathan/resume-optimizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// recordTimeLayout formats record timestamps in listings.
	recordTimeLayout = "2006-01-02 15:04"
)

// Printer writes human-readable output for the CLI.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Printf writes a formatted line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		runes := []rune(line)
		if len(runes) > boxWidth-4 {
			line = string(runes[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	for _, item := range items[:min(len(items), limit)] {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
	sb.WriteString("\n")
}

// PrintJobPosting outputs a summary of the parsed job posting.
func (p *Printer) PrintJobPosting(job *types.JobPosting) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", job.Company))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", job.Title))
	sb.WriteString("\n")

	writeList(&sb, "Requirements", job.Requirements, maxItemsToShow)
	writeList(&sb, "Keywords", job.Keywords, maxItemsToShow*2)

	p.printBox("PARSED JOB POSTING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintIteration prints the one-line progress report for a 0-based iteration.
func (p *Printer) PrintIteration(index int, verdict evaluation.Verdict) {
	status := "PASS"
	if !verdict.Passed() {
		status = "FAIL"
	}
	p.Printf("  Iteration %d: %s [%s]", index+1, status, verdict.Scores())
}

// PrintVerdict outputs every evaluator result with its issues.
func (p *Printer) PrintVerdict(verdict evaluation.Verdict) {
	if len(verdict.Results) == 0 {
		return
	}

	var sb strings.Builder
	for i, r := range verdict.Results {
		mark := "✓"
		if !r.Passed {
			mark = "✗"
		}
		sb.WriteString(fmt.Sprintf("%s %s  %.2f / %.2f\n", mark, r.Name, r.Score, r.Threshold))
		for _, issue := range r.Issues[:min(len(r.Issues), 3)] {
			sb.WriteString(fmt.Sprintf("  - %s\n", issue))
		}
		if i < len(verdict.Results)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("EVALUATION RESULTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintViolations outputs any structure violations found.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintViolations(violations *types.Violations) {
	if violations.Empty() {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO VIOLATIONS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violations:\n\n", len(violations.Violations)))

	for i, v := range violations.Violations {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", v.Type))
		sb.WriteString(fmt.Sprintf("  %s\n", v.String()))
		if i < len(violations.Violations)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("STRUCTURE VIOLATIONS", sb.String())
}

// PrintRecords lists generated documents, newest first as given. exists reports
// whether a record's file is still on disk.
func (p *Printer) PrintRecords(records []types.GeneratedRecord, exists func(path string) bool) {
	if len(records) == 0 {
		p.Printf("No PDFs generated yet")
		return
	}
	for _, rec := range records {
		p.Printf("%s", FormatRecord(rec, exists(rec.Path)))
	}
}

// FormatRecord renders "[+] file.pdf - Title @ Company (2006-01-02 15:04)". The
// marker is "-" when the file no longer exists.
func FormatRecord(rec types.GeneratedRecord, exists bool) string {
	marker := "-"
	if exists {
		marker = "+"
	}
	return fmt.Sprintf("[%s] %s - %s @ %s (%s)",
		marker, baseName(rec.Path), rec.JobTitle, rec.Company, rec.Timestamp.In(time.Local).Format(recordTimeLayout))
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
