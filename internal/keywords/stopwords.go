package keywords

var stopwords = toSet(
	"a", "about", "above", "across", "after", "all", "also", "an", "and", "any", "are", "as", "at",
	"be", "been", "being", "both", "but", "by", "can", "could", "do", "does", "each", "either", "etc",
	"for", "from", "has", "have", "having", "how", "if", "in", "including", "into", "is", "it", "its",
	"least", "like", "may", "more", "most", "must", "not", "of", "on", "one", "or", "other", "our",
	"out", "over", "own", "plus", "preferred", "required", "should", "such", "than", "that", "the",
	"their", "them", "then", "there", "these", "they", "this", "those", "through", "to", "under",
	"using", "very", "via", "was", "we", "well", "were", "what", "when", "where", "which", "while",
	"who", "will", "with", "within", "would", "year", "years", "you", "your",
	"ability", "able", "experience", "experienced", "knowledge", "strong", "excellent", "good",
	"great", "proven", "solid", "skills", "skill", "work", "working", "understanding", "familiarity",
	"familiar", "background", "degree", "equivalent", "related", "field", "team", "teams", "plus",
	"bonus", "nice", "have", "minimum", "qualifications", "responsibilities", "role",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
