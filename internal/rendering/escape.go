// Package rendering turns candidate content into PDF documents and extracts text back out.
package rendering

import "strings"

// latexReplacer escapes LaTeX specials and maps the typographic characters
// model output tends to contain onto pdflatex-safe sequences. Replacement is
// single pass, so inserted backslashes are never escaped again.
var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`^`, `\textasciicircum{}`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`<`, `\textless{}`,
	`>`, `\textgreater{}`,
	"\u2013", "--",
	"\u2014", "---",
	"\u2018", "`",
	"\u2019", "'",
	"\u201c", "``",
	"\u201d", "''",
	"\u2022", `\textbullet{}`,
	"\u2026", `\ldots{}`,
	"\u00a0", "~",
)

// EscapeLaTeX makes resume text safe to place inside the LaTeX template.
func EscapeLaTeX(text string) string {
	return latexReplacer.Replace(text)
}
