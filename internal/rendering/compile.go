package rendering

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DefaultCompilationTimeout is the maximum time to wait for LaTeX compilation
const DefaultCompilationTimeout = 30 * time.Second

var overfullPattern = regexp.MustCompile(`(?m)^(Overfull|Underfull) \\hbox.*$`)

// CompileLaTeX compiles LaTeX source with pdflatex in a temporary directory and
// returns the PDF bytes and the compiler log. A PDF produced alongside a
// non-zero exit is returned together with a *CompilationError.
func CompileLaTeX(ctx context.Context, source string, timeout time.Duration) ([]byte, string, error) {
	if _, err := exec.LookPath("pdflatex"); err != nil {
		return nil, "", &CompilationError{
			Message: "pdflatex not found in PATH. Please install a LaTeX distribution (e.g., TeX Live, MiKTeX)",
			Cause:   err,
		}
	}
	if timeout <= 0 {
		timeout = DefaultCompilationTimeout
	}

	workDir, err := os.MkdirTemp("", "latex-compile-*")
	if err != nil {
		return nil, "", &CompilationError{
			Message: "failed to create temporary working directory",
			Cause:   err,
		}
	}
	defer os.RemoveAll(workDir)

	texPath := filepath.Join(workDir, "resume.tex")
	if err := os.WriteFile(texPath, []byte(source), 0o644); err != nil {
		return nil, "", &CompilationError{
			Message: fmt.Sprintf("failed to write LaTeX file to working directory: %s", workDir),
			Cause:   err,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// nonstopmode keeps pdflatex from waiting on stdin after an error
	cmd := exec.CommandContext(ctx, "pdflatex", "-interaction=nonstopmode", "-halt-on-error", "-output-directory", workDir, texPath)
	cmd.Dir = workDir

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	logOutput := stdout.String() + stderr.String()

	pdfBytes, readErr := os.ReadFile(filepath.Join(workDir, "resume.pdf"))
	if readErr != nil {
		return nil, logOutput, &CompilationError{
			Message:   "LaTeX compilation failed: PDF was not generated",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}

	if runErr != nil {
		return pdfBytes, logOutput, &CompilationError{
			Message:   "LaTeX compilation completed with errors (PDF may be incomplete)",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}

	return pdfBytes, logOutput, nil
}

// LaTeXWarnings extracts overfull and underfull box warnings from a pdflatex log.
func LaTeXWarnings(logOutput string) []string {
	matches := overfullPattern.FindAllString(logOutput, -1)
	warnings := make([]string, 0, len(matches))
	for _, m := range matches {
		warnings = append(warnings, strings.TrimSpace(m))
	}
	return warnings
}
