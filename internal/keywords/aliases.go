package keywords

import (
	"sort"
	"strings"
)

// aliases map common spellings onto one canonical keyword.
var aliases = map[string]string{
	"k8s":                 "kubernetes",
	"golang":              "go",
	"js":                  "javascript",
	"ts":                  "typescript",
	"postgres":            "postgresql",
	"psql":                "postgresql",
	"ml":                  "machine learning",
	"gcp":                 "google cloud",
	"amazon web services": "aws",
	"node":                "node.js",
	"nodejs":              "node.js",
	"reactjs":             "react",
	"react.js":            "react",
	"cicd":                "ci/cd",
	"tf":                  "terraform",
}

// phrase is a multi-word alias key split into tokens.
type phrase struct {
	tokens    []string
	canonical string
}

// phrases holds the multi-word alias keys, longest first, so tokenize can fold
// a spelled-out phrase the same way Normalize folds a keyword.
var phrases = func() []phrase {
	var out []phrase
	for k, v := range aliases {
		if f := strings.Fields(k); len(f) > 1 {
			out = append(out, phrase{tokens: f, canonical: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].tokens) != len(out[j].tokens) {
			return len(out[i].tokens) > len(out[j].tokens)
		}
		return out[i].canonical < out[j].canonical
	})
	return out
}()

// matchPhrase returns the phrase starting at toks[0] and its length, if any.
func matchPhrase(toks []string) (phrase, bool) {
	for _, p := range phrases {
		if len(toks) < len(p.tokens) {
			continue
		}
		ok := true
		for i, t := range p.tokens {
			if toks[i] != t {
				ok = false
				break
			}
		}
		if ok {
			return p, true
		}
	}
	return phrase{}, false
}

// Normalize lowercases a keyword, collapses whitespace and resolves aliases.
func Normalize(keyword string) string {
	k := strings.ToLower(strings.Join(strings.Fields(keyword), " "))
	if canonical, ok := aliases[k]; ok {
		return canonical
	}
	return k
}

// NormalizeAll normalizes keywords and drops empties and duplicates, keeping first-seen order.
func NormalizeAll(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		n := Normalize(k)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
