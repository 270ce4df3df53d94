package ingestion

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func docxBytes(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestLoadResume_TextFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"latex keeps comments", "cv.tex", "\\section{Experience}\r\n% \\item hidden project\n", "\\section{Experience}\n% \\item hidden project"},
		{"markdown", "cv.md", "# Ada Lovelace\n\n- Go  services\n", "# Ada Lovelace\n\n- Go  services"},
		{"html", "cv.html", "<h1>Ada</h1>\n", "<h1>Ada</h1>"},
		{"plain", "cv.txt", "  Ada Lovelace  ", "Ada Lovelace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadResume(writeFile(t, tt.file, []byte(tt.content)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadResume_Docx(t *testing.T) {
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Ada Lovelace</w:t></w:r></w:p>
<w:p><w:r><w:t>Engineer</w:t><w:tab/><w:t>London</w:t></w:r></w:p>
</w:body></w:document>`

	got, err := LoadResume(writeFile(t, "cv.docx", docxBytes(t, xml)))
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace\nEngineer London", got)
}

func TestLoadResume_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadResume(filepath.Join(t.TempDir(), "nope.txt"))
		var ingErr *Error
		assert.ErrorAs(t, err, &ingErr)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadResume(writeFile(t, "cv.odt", []byte("x")))
		var fmtErr *UnsupportedFormatError
		require.ErrorAs(t, err, &fmtErr)
		assert.Equal(t, ".odt", fmtErr.Extension)
		assert.Contains(t, err.Error(), ".docx, .htm, .html")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := LoadResume(writeFile(t, "cv.txt", []byte("  \n ")))
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("corrupt pdf", func(t *testing.T) {
		_, err := LoadResume(writeFile(t, "cv.pdf", []byte("not a pdf")))
		var ingErr *Error
		require.ErrorAs(t, err, &ingErr)
		assert.Contains(t, err.Error(), "failed to extract text")
	})

	t.Run("docx without document", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		_, _ = zw.Create("docProps/core.xml")
		require.NoError(t, zw.Close())
		_, err := LoadResume(writeFile(t, "cv.docx", buf.Bytes()))
		assert.ErrorContains(t, err, "word/document.xml not found")
	})
}
