package rendering

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Letter paper in inches.
const (
	paperWidth  = 8.5
	paperHeight = 11.0
)

var (
	htmlTemplate     *template.Template
	htmlTemplateErr  error
	htmlTemplateOnce sync.Once
)

type htmlDocument struct {
	Title string
	Body  template.HTML
}

// WrapHTML places a body fragment inside the resume page template.
func WrapHTML(body, title string) (string, error) {
	htmlTemplateOnce.Do(func() {
		content, err := templateFS.ReadFile("templates/resume.html.tmpl")
		if err != nil {
			htmlTemplateErr = err
			return
		}
		htmlTemplate, htmlTemplateErr = template.New("resume.html").Parse(string(content))
	})
	if htmlTemplateErr != nil {
		return "", &TemplateError{Message: "failed to load HTML template", Cause: htmlTemplateErr}
	}

	if title == "" {
		title = "Resume"
	}

	var buf bytes.Buffer
	// The body is model output destined for a sandboxed headless browser.
	if err := htmlTemplate.Execute(&buf, htmlDocument{Title: title, Body: template.HTML(body)}); err != nil {
		return "", &TemplateError{Message: "failed to execute HTML template", Cause: err}
	}
	return buf.String(), nil
}

// HTMLText returns the visible text of an HTML document or fragment, one line
// per block element.
func HTMLText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return normalizeText(html)
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, li, h1, h2, h3, h4, h5, h6, div, section, header, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return normalizeText(doc.Text())
}

// HTMLRenderer prints HTML documents to PDF with headless Chrome.
type HTMLRenderer struct {
	Timeout time.Duration
}

// RenderPDF loads document into a blank page and prints it to Letter-size PDF.
// Requires Chrome/Chromium to be installed on the system.
func (r *HTMLRenderer) RenderPDF(ctx context.Context, document string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("browser PDF rendering failed: %w", err)
	}
	return pdf, nil
}
