package validation

import (
	"fmt"
	"html"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// DefaultForbiddenPhrases are the stylistic markers that give away generated text.
var DefaultForbiddenPhrases = []string{"\u2014", "delve"}

// CheckForbiddenPhrases checks every line of text for the given phrases.
// Matching is case-insensitive and at most one violation is reported per line.
func CheckForbiddenPhrases(text string, phrases []string) []types.Violation {
	if len(phrases) == 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	var violations []types.Violation
	for i, line := range strings.Split(text, "\n") {
		normalizedLine := normalizeForMatching(line)
		for _, phrase := range phrases {
			normalizedPhrase := strings.ToLower(strings.TrimSpace(phrase))
			if normalizedPhrase == "" {
				continue
			}
			if strings.Contains(normalizedLine, normalizedPhrase) {
				lineNum := i + 1
				violations = append(violations, types.Violation{
					Type:       types.ViolationForbiddenPhrase,
					Severity:   "error",
					Details:    fmt.Sprintf("Contains forbidden phrase: %s", describePhrase(phrase)),
					LineNumber: &lineNum,
				})
				break
			}
		}
	}
	return violations
}

// normalizeForMatching decodes HTML entities so &mdash; and the literal dash match alike.
func normalizeForMatching(text string) string {
	return strings.ToLower(html.UnescapeString(text))
}

func describePhrase(phrase string) string {
	if phrase == "\u2014" {
		return "em dash"
	}
	return phrase
}
