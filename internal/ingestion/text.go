package ingestion

import (
	"regexp"
	"strings"
)

var (
	spaceRun  = regexp.MustCompile(`[ \t]+`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes line endings, collapses inner whitespace and limits
// blank runs to one empty line. Markdown headings, bullets and leading
// indentation survive.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = normalizeNewlines(content)
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}
	return strings.TrimSpace(blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "#") {
		return spaceRun.ReplaceAllString(trimmed, " ")
	}
	indent := strings.Repeat(" ", len(line)-len(trimmed))
	return indent + spaceRun.ReplaceAllString(trimmed, " ")
}
