package rendering

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	blankRuns  = regexp.MustCompile(`[ \t]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// ExtractPDFText returns the plain text and page count of a PDF document.
func ExtractPDFText(data []byte) (string, int, error) {
	if len(data) == 0 {
		return "", 0, &RenderError{Message: "empty PDF"}
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, &RenderError{Message: "failed to open PDF", Cause: err}
	}

	pages := r.NumPage()
	rs, err := r.GetPlainText()
	if err != nil {
		return "", pages, &RenderError{Message: "failed to extract PDF text", Cause: err}
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return "", pages, &RenderError{Message: "failed to read PDF text", Cause: err}
	}

	return normalizeText(buf.String()), pages, nil
}

// CountPDFPages counts pages with pdfinfo, falling back to ghostscript.
func CountPDFPages(ctx context.Context, data []byte) (int, error) {
	path, cleanup, err := writeTemp(data, "count-*.pdf")
	if err != nil {
		return 0, err
	}
	defer cleanup()

	// Try pdfinfo first (from poppler-utils)
	if count, err := countPagesWithPdfinfo(ctx, path); err == nil {
		return count, nil
	}

	if count, err := countPagesWithGhostscript(ctx, path); err == nil {
		return count, nil
	}

	return 0, &ToolMissingError{Tools: []string{"pdfinfo", "gs"}}
}

// countPagesWithPdfinfo uses pdfinfo to count PDF pages
func countPagesWithPdfinfo(ctx context.Context, pdfPath string) (int, error) {
	output, err := exec.CommandContext(ctx, "pdfinfo", pdfPath).Output()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo command failed: %w", err)
	}
	return parsePdfinfoPages(string(output))
}

func parsePdfinfoPages(output string) (int, error) {
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "Pages:") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				if count, err := strconv.Atoi(parts[1]); err == nil {
					return count, nil
				}
			}
		}
	}
	return 0, fmt.Errorf("could not parse page count from pdfinfo output")
}

// countPagesWithGhostscript uses ghostscript to count PDF pages
func countPagesWithGhostscript(ctx context.Context, pdfPath string) (int, error) {
	script := fmt.Sprintf("(%s) (r) file runpdfbegin pdfpagecount = quit", pdfPath)
	output, err := exec.CommandContext(ctx, "gs", "-q", "-dNODISPLAY", "-dNOSAFER", "-c", script).Output()
	if err != nil {
		return 0, fmt.Errorf("ghostscript command failed: %w", err)
	}

	outputStr := strings.TrimSpace(string(output))
	count, err := strconv.Atoi(outputStr)
	if err != nil {
		return 0, fmt.Errorf("could not parse page count from ghostscript output: %s", outputStr)
	}
	return count, nil
}

// FirstPageImage rasterizes page one of a PDF to PNG and returns the image and
// the document's page count. pdftoppm is preferred, ghostscript is the fallback.
func FirstPageImage(ctx context.Context, data []byte) ([]byte, int, error) {
	_, pages, err := ExtractPDFText(data)
	if err != nil || pages == 0 {
		if pages, err = CountPDFPages(ctx, data); err != nil {
			return nil, 0, err
		}
	}

	dir, err := os.MkdirTemp("", "pdf-image-*")
	if err != nil {
		return nil, pages, &RenderError{Message: "failed to create temporary directory", Cause: err}
	}
	defer os.RemoveAll(dir)

	pdfPath := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(pdfPath, data, 0o644); err != nil {
		return nil, pages, &RenderError{Message: "failed to write PDF", Cause: err}
	}

	// 144 dpi matches a 2x zoom of a 72 dpi page
	if _, lookErr := exec.LookPath("pdftoppm"); lookErr == nil {
		prefix := filepath.Join(dir, "page")
		cmd := exec.CommandContext(ctx, "pdftoppm", "-png", "-f", "1", "-l", "1", "-r", "144", "-singlefile", pdfPath, prefix)
		if out, err := cmd.CombinedOutput(); err == nil {
			img, readErr := os.ReadFile(prefix + ".png")
			if readErr == nil {
				return img, pages, nil
			}
		} else if _, gsErr := exec.LookPath("gs"); gsErr != nil {
			return nil, pages, &RenderError{Message: "pdftoppm failed: " + strings.TrimSpace(string(out)), Cause: err}
		}
	}

	if _, lookErr := exec.LookPath("gs"); lookErr == nil {
		outPath := filepath.Join(dir, "page.png")
		cmd := exec.CommandContext(ctx, "gs", "-q", "-dSAFER", "-dBATCH", "-dNOPAUSE", "-sDEVICE=png16m",
			"-r144", "-dFirstPage=1", "-dLastPage=1", "-sOutputFile="+outPath, pdfPath)
		if out, err := cmd.CombinedOutput(); err != nil {
			return nil, pages, &RenderError{Message: "ghostscript failed: " + strings.TrimSpace(string(out)), Cause: err}
		}
		img, err := os.ReadFile(outPath)
		if err != nil {
			return nil, pages, &RenderError{Message: "failed to read rendered page", Cause: err}
		}
		return img, pages, nil
	}

	return nil, pages, &ToolMissingError{Tools: []string{"pdftoppm", "gs"}}
}

func writeTemp(data []byte, pattern string) (string, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, &RenderError{Message: "failed to create temporary file", Cause: err}
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, &RenderError{Message: "failed to write temporary file", Cause: err}
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, &RenderError{Message: "failed to close temporary file", Cause: err}
	}
	return f.Name(), cleanup, nil
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = blankRuns.ReplaceAllString(s, " ")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
