package analyze

// englishStopWords is the NLTK English stop-word list. Descriptions on the
// job board mix Russian and English; only Latin-alphabet tokens survive
// tokenization, so an English list is sufficient.
var englishStopWords = map[string]struct{}{}

// noiseTokens are HTML entity remnants that regex-based tag stripping leaves
// behind in older cache entries.
var noiseTokens = []string{"amp", "quot"}

func init() {
	words := []string{
		"i", "me", "my", "myself", "we", "our", "ours", "ourselves",
		"you", "your", "yours", "yourself", "yourselves",
		"he", "him", "his", "himself", "she", "her", "hers", "herself",
		"it", "its", "itself", "they", "them", "their", "theirs", "themselves",
		"what", "which", "who", "whom", "this", "that", "these", "those",
		"am", "is", "are", "was", "were", "be", "been", "being",
		"have", "has", "had", "having", "do", "does", "did", "doing",
		"a", "an", "the", "and", "but", "if", "or", "because", "as",
		"until", "while", "of", "at", "by", "for", "with", "about",
		"against", "between", "into", "through", "during", "before",
		"after", "above", "below", "to", "from", "up", "down", "in",
		"out", "on", "off", "over", "under", "again", "further", "then",
		"once", "here", "there", "when", "where", "why", "how", "all",
		"any", "both", "each", "few", "more", "most", "other", "some",
		"such", "no", "nor", "not", "only", "own", "same", "so", "than",
		"too", "very", "s", "t", "can", "will", "just", "don", "should",
		"now", "d", "ll", "m", "o", "re", "ve", "y", "ain", "aren",
		"couldn", "didn", "doesn", "hadn", "hasn", "haven", "isn", "ma",
		"mightn", "mustn", "needn", "shan", "shouldn", "wasn", "weren",
		"won", "wouldn",
	}
	for _, w := range words {
		englishStopWords[w] = struct{}{}
	}
	for _, w := range noiseTokens {
		englishStopWords[w] = struct{}{}
	}
}
