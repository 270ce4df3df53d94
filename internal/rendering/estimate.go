package rendering

import "strings"

// ContentEstimate is a rough size measure of resume content against the configured budget.
type ContentEstimate struct {
	Chars         int `json:"chars"`
	Words         int `json:"words"`
	MaxChars      int `json:"max_chars"`
	MaxWords      int `json:"max_words"`
	OverflowChars int `json:"overflow_chars"`
	OverflowWords int `json:"overflow_words"`
}

// FitsBudget reports whether both counts are within their limits.
func (e ContentEstimate) FitsBudget() bool {
	return e.OverflowChars == 0 && e.OverflowWords == 0
}

// EstimateContentLength measures the visible text of an HTML fragment.
// Non-positive limits disable the corresponding overflow figure.
func EstimateContentLength(html string, maxChars, maxWords int) ContentEstimate {
	return EstimateText(HTMLText(html), maxChars, maxWords)
}

// EstimateText measures plain text against the budget.
func EstimateText(text string, maxChars, maxWords int) ContentEstimate {
	est := ContentEstimate{
		Chars:    len([]rune(text)),
		Words:    len(strings.Fields(text)),
		MaxChars: maxChars,
		MaxWords: maxWords,
	}
	if maxChars > 0 && est.Chars > maxChars {
		est.OverflowChars = est.Chars - maxChars
	}
	if maxWords > 0 && est.Words > maxWords {
		est.OverflowWords = est.Words - maxWords
	}
	return est
}
