package rewriting

import (
	"regexp"
	"strings"
)

// Common strong action verbs for resume bullets (heuristic check)
var strongVerbs = map[string]bool{
	"achieved": true, "architected": true, "built": true, "created": true,
	"delivered": true, "designed": true, "developed": true, "engineered": true,
	"implemented": true, "improved": true, "increased": true, "launched": true,
	"led": true, "optimized": true, "reduced": true, "scaled": true,
	"shipped": true, "transformed": true, "owned": true, "drove": true,
	"migrated": true, "automated": true, "cut": true, "grew": true,
}

var digitPattern = regexp.MustCompile(`\d`)

// StyleReport summarizes bullet-level style hints. It is advisory only; the
// evaluators decide pass or fail.
type StyleReport struct {
	Bullets      int      `json:"bullets"`
	WeakOpeners  []string `json:"weak_openers,omitempty"`
	Unquantified int      `json:"unquantified"`
}

// CheckBulletStyle flags bullets that do not open with an action verb and
// counts bullets without any figure.
func CheckBulletStyle(bullets []string) StyleReport {
	report := StyleReport{}
	for _, b := range bullets {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		report.Bullets++
		if !checkStrongVerb(strings.ToLower(b)) {
			report.WeakOpeners = append(report.WeakOpeners, firstWords(b, 4))
		}
		if !checkQuantifiedImpact(b) {
			report.Unquantified++
		}
	}
	return report
}

// checkStrongVerb checks if text starts with a strong action verb
func checkStrongVerb(textLower string) bool {
	words := strings.Fields(textLower)
	if len(words) == 0 {
		return false
	}

	firstWord := strings.TrimRight(words[0], ".,!?;:")
	if strongVerbs[firstWord] {
		return true
	}

	// Past-tense openers are usually action verbs.
	return strings.HasSuffix(firstWord, "ed") && len(firstWord) > 3
}

// checkQuantifiedImpact checks if text contains numbers or metrics
func checkQuantifiedImpact(text string) bool {
	return digitPattern.MatchString(text) || strings.Contains(text, "%")
}

func firstWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		return strings.Join(words[:n], " ") + "..."
	}
	return strings.Join(words, " ")
}
