// Package keywords scores how well resume text covers a job posting's keywords.
package keywords

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/types"
)

const (
	// maxTerms bounds how many weighted terms a posting contributes.
	maxTerms = 40
	// keywordBoost favours terms the posting lists explicitly.
	keywordBoost = 2.0
	minTokenLen  = 3
)

var tokenPattern = regexp.MustCompile(`[a-z0-9][a-z0-9+#./-]*[a-z0-9+#]|[a-z0-9]`)

// Term is a weighted job term.
type Term struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// Result is the outcome of matching resume text against a job.
type Result struct {
	// Score is the matched share of total term weight, in [0, 1].
	Score   float64 `json:"score"`
	Matched []Term  `json:"matched"`
	// Missing is ordered by descending weight.
	Missing []Term `json:"missing"`
}

// MissingTerms returns up to n missing terms, most important first. n <= 0 returns all.
func (r Result) MissingTerms(n int) []string {
	out := make([]string, 0, len(r.Missing))
	for i, t := range r.Missing {
		if n > 0 && i >= n {
			break
		}
		out = append(out, t.Term)
	}
	return out
}

// Check scores text against the posting's keywords and requirement vocabulary.
// Terms are weighted by TF-IDF across the posting's requirements, description
// and keyword list. A posting with no terms scores 1.
func Check(text string, job *types.JobPosting) Result {
	terms := JobTerms(job)
	if len(terms) == 0 {
		return Result{Score: 1}
	}

	resumeTokens := tokenize(text)
	tokenSet := make(map[string]bool, len(resumeTokens))
	for _, tok := range resumeTokens {
		tokenSet[tok] = true
	}
	joined := " " + strings.Join(resumeTokens, " ") + " "

	var res Result
	var total, matched float64
	for _, t := range terms {
		total += t.Weight
		if containsTerm(t.Term, tokenSet, joined) {
			matched += t.Weight
			res.Matched = append(res.Matched, t)
		} else {
			res.Missing = append(res.Missing, t)
		}
	}
	if total > 0 {
		res.Score = matched / total
	}
	return res
}

// JobTerms returns the posting's weighted terms, heaviest first.
func JobTerms(job *types.JobPosting) []Term {
	if job == nil {
		return nil
	}

	var docs [][]string
	for _, req := range job.Requirements {
		if toks := tokenize(req); len(toks) > 0 {
			docs = append(docs, toks)
		}
	}
	if toks := tokenize(job.Description); len(toks) > 0 {
		docs = append(docs, toks)
	}
	var kwDoc []string
	for _, k := range job.Keywords {
		kwDoc = append(kwDoc, tokenize(k)...)
	}
	if len(kwDoc) > 0 {
		docs = append(docs, kwDoc)
	}
	if len(docs) == 0 {
		return nil
	}

	joinedDocs := make([]string, len(docs))
	for i, d := range docs {
		joinedDocs[i] = " " + strings.Join(d, " ") + " "
	}

	weight := func(term string, boost float64) float64 {
		needle := " " + term + " "
		var tf, df int
		for _, d := range joinedDocs {
			if n := strings.Count(d, needle); n > 0 {
				tf += n
				df++
			}
		}
		if tf == 0 {
			tf, df = 1, 1
		}
		idf := math.Log(float64(1+len(docs))/float64(1+df)) + 1
		return (1 + math.Log(float64(tf))) * idf * boost
	}

	seen := make(map[string]bool)
	var explicit, implicit []Term
	for _, k := range job.Keywords {
		term := canonical(k)
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		explicit = append(explicit, Term{Term: term, Weight: weight(term, keywordBoost)})
	}
	for _, req := range job.Requirements {
		for _, tok := range tokenize(req) {
			if seen[tok] || !salient(tok) {
				continue
			}
			seen[tok] = true
			implicit = append(implicit, Term{Term: tok, Weight: weight(tok, 1)})
		}
	}

	sortTerms(explicit)
	sortTerms(implicit)
	terms := explicit
	if room := maxTerms - len(terms); room > 0 {
		if len(implicit) > room {
			implicit = implicit[:room]
		}
		terms = append(terms, implicit...)
	}
	sortTerms(terms)
	return terms
}

func sortTerms(terms []Term) {
	sort.SliceStable(terms, func(i, j int) bool {
		if terms[i].Weight != terms[j].Weight {
			return terms[i].Weight > terms[j].Weight
		}
		return terms[i].Term < terms[j].Term
	})
}

func containsTerm(term string, tokens map[string]bool, joined string) bool {
	if !strings.Contains(term, " ") {
		return tokens[term]
	}
	return strings.Contains(joined, " "+term+" ")
}

// tokenize lowercases text and splits it into alias-normalized tokens.
// Multi-word aliases ("amazon web services") fold to their canonical form.
func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if p, ok := matchPhrase(raw[i:]); ok {
			out = append(out, strings.Fields(p.canonical)...)
			i += len(p.tokens) - 1
			continue
		}
		tok := raw[i]
		if canonical, ok := aliases[tok]; ok {
			out = append(out, strings.Fields(canonical)...)
			continue
		}
		out = append(out, tok)
	}
	return out
}

func canonical(keyword string) string {
	return Normalize(strings.Join(tokenize(keyword), " "))
}

func salient(tok string) bool {
	if stopwords[tok] || isNumber(tok) {
		return false
	}
	return strings.ContainsAny(tok, "+#") || len(tok) >= minTokenLen
}

func isNumber(tok string) bool {
	for _, r := range tok {
		if (r < '0' || r > '9') && r != '.' && r != '+' {
			return false
		}
	}
	return true
}
