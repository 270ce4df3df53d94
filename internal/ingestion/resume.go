package ingestion

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LoadResume reads a resume file and returns its content. Markup formats
// (.html, .tex, .md, .txt) are returned as written so comments and structure
// stay available to the rewriter; .pdf and .docx are reduced to text.
func LoadResume(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &Error{Source: path, Message: "failed to read resume", Cause: err}
	}

	var content string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		content, err = pdfText(data)
	case ".docx":
		content, err = docxText(data)
	case ".html", ".htm", ".tex", ".md", ".markdown", ".txt", ".rst", "":
		content = strings.TrimSpace(normalizeNewlines(string(data)))
	default:
		return "", &UnsupportedFormatError{Extension: ext}
	}
	if err != nil {
		return "", &Error{Source: path, Message: "failed to extract text", Cause: err}
	}
	if strings.TrimSpace(content) == "" {
		return "", &Error{Source: path, Message: "no text found", Cause: ErrEmptyInput}
	}
	return content, nil
}

// pdfText extracts text page by page, one line per text row.
func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", err
		}
		for _, row := range rows {
			var words []string
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			sb.WriteString(strings.Join(words, ""))
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return CleanText(sb.String()), nil
}

// docxText reads word/document.xml and keeps paragraph breaks.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", &Error{Source: "docx", Message: "word/document.xml not found"}
	}

	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	var sb strings.Builder
	dec := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return CleanText(sb.String()), nil
}

// SupportedExtensions lists the resume formats LoadResume accepts.
func SupportedExtensions() []string {
	exts := []string{".pdf", ".docx", ".html", ".htm", ".tex", ".md", ".markdown", ".txt", ".rst"}
	sort.Strings(exts)
	return exts
}
