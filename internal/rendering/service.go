package rendering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// PDFPrinter turns a full HTML document into PDF bytes.
type PDFPrinter interface {
	RenderPDF(ctx context.Context, document string) ([]byte, error)
}

// LaTeXCompiler turns LaTeX source into PDF bytes plus the compiler log.
type LaTeXCompiler func(ctx context.Context, source string, timeout time.Duration) ([]byte, string, error)

// TextExtractor returns the text and page count of a PDF.
type TextExtractor func(data []byte) (string, int, error)

// Result is one rendered document.
type Result struct {
	PDF       []byte
	Text      string
	PageCount int
	Warnings  []string
}

// Service renders candidates to PDF and extracts their text.
type Service struct {
	printer  PDFPrinter
	compile  LaTeXCompiler
	extract  TextExtractor
	timeout  time.Duration
	maxPages int
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPrinter replaces the headless Chrome printer.
func WithPrinter(p PDFPrinter) Option {
	return func(s *Service) { s.printer = p }
}

// WithCompiler replaces the pdflatex compiler.
func WithCompiler(c LaTeXCompiler) Option {
	return func(s *Service) { s.compile = c }
}

// WithExtractor replaces the PDF text extractor.
func WithExtractor(e TextExtractor) Option {
	return func(s *Service) { s.extract = e }
}

// WithTimeout bounds a single render.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithMaxPages sets the page limit above which a warning is attached.
func WithMaxPages(n int) Option {
	return func(s *Service) { s.maxPages = n }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service backed by headless Chrome, pdflatex and the
// built-in PDF text extractor unless overridden.
func NewService(opts ...Option) *Service {
	s := &Service{
		compile:  CompileLaTeX,
		extract:  ExtractPDFText,
		timeout:  60 * time.Second,
		maxPages: 1,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.printer == nil {
		s.printer = &HTMLRenderer{Timeout: s.timeout}
	}
	return s
}

// RenderAndExtract renders the candidate and returns a copy carrying the PDF,
// extracted text, page count and warnings. Failures are *RenderError.
func (s *Service) RenderAndExtract(ctx context.Context, candidate *types.Candidate) (*types.Candidate, error) {
	if candidate == nil || candidate.Content == nil {
		return nil, &RenderError{Message: "candidate has no content"}
	}

	res, err := s.Render(ctx, candidate.Content)
	if err != nil {
		return nil, err
	}
	return candidate.WithRender(res.Text, res.PDF, res.PageCount, res.Warnings), nil
}

// Render renders either content variant.
func (s *Service) Render(ctx context.Context, content types.Content) (*Result, error) {
	start := time.Now()
	var (
		res *Result
		err error
	)
	switch c := content.(type) {
	case types.Markup:
		res, err = s.RenderHTML(ctx, c.HTML)
	case types.Structured:
		res, err = s.RenderStructured(ctx, c.Data)
	default:
		err = &RenderError{Message: fmt.Sprintf("unsupported content %T", content)}
	}

	s.logger.Debug("render finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("ok", err == nil))
	return res, err
}

// RenderHTML renders an HTML body fragment.
func (s *Service) RenderHTML(ctx context.Context, body string) (*Result, error) {
	document, err := WrapHTML(body, "")
	if err != nil {
		return nil, &RenderError{Message: "failed to build HTML document", Cause: err}
	}

	pdf, err := s.printer.RenderPDF(ctx, document)
	if err != nil {
		return nil, &RenderError{Message: "failed to print HTML to PDF", Cause: err}
	}

	res := &Result{PDF: pdf}
	text, pages, err := s.extract(pdf)
	if err != nil {
		// Chrome output is reliable; fall back to the markup's own text.
		res.Warnings = append(res.Warnings, "PDF text extraction failed, using HTML text")
		text = HTMLText(body)
		if pages, err = CountPDFPages(ctx, pdf); err != nil {
			return nil, &RenderError{Message: "failed to read rendered PDF", Cause: err}
		}
	}
	res.Text = text
	res.PageCount = pages
	s.pageWarning(res)
	return res, nil
}

// RenderStructured renders resume data through the LaTeX template.
func (s *Service) RenderStructured(ctx context.Context, data types.ResumeData) (*Result, error) {
	source, err := RenderLaTeX(data)
	if err != nil {
		return nil, &RenderError{Message: "failed to build LaTeX source", Cause: err}
	}

	pdf, logOutput, err := s.compile(ctx, source, s.timeout)
	var compileErr *CompilationError
	switch {
	case err != nil && len(pdf) == 0:
		return nil, &RenderError{Message: "failed to compile LaTeX", Cause: err}
	case err != nil && !errors.As(err, &compileErr):
		return nil, &RenderError{Message: "failed to compile LaTeX", Cause: err}
	}

	res := &Result{PDF: pdf, Warnings: LaTeXWarnings(logOutput)}
	if err != nil {
		res.Warnings = append(res.Warnings, "pdflatex reported errors; output may be incomplete")
	}

	text, pages, err := s.extract(pdf)
	if err != nil {
		return nil, &RenderError{Message: "failed to extract PDF text", Cause: err}
	}
	res.Text = text
	res.PageCount = pages
	s.pageWarning(res)
	return res, nil
}

func (s *Service) pageWarning(res *Result) {
	if s.maxPages > 0 && res.PageCount > s.maxPages {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Content spans %d pages (limit %d)", res.PageCount, s.maxPages))
	}
}
