package analyze

import (
	"regexp"
	"sort"
	"strings"
)

// TokenCount is one row of a frequency table.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// FreqTable is an ordered frequency table: descending by count, ties broken
// lexicographically so results are reproducible.
type FreqTable []TokenCount

// Top returns the first n rows (or fewer).
func (t FreqTable) Top(n int) FreqTable {
	if n > len(t) {
		n = len(t)
	}
	return t[:n]
}

// newFreqTable sorts raw counts into table order.
func newFreqTable(counts map[string]int) FreqTable {
	table := make(FreqTable, 0, len(counts))
	for token, count := range counts {
		table = append(table, TokenCount{Token: token, Count: count})
	}
	sort.Slice(table, func(i, j int) bool {
		if table[i].Count != table[j].Count {
			return table[i].Count > table[j].Count
		}
		return table[i].Token < table[j].Token
	})
	return table
}

// keywordFrequencies counts lower-cased key skills across all records.
func keywordFrequencies(keys [][]string) FreqTable {
	counts := make(map[string]int)
	for _, recordKeys := range keys {
		for _, key := range recordKeys {
			key = strings.ToLower(strings.TrimSpace(key))
			if key == "" {
				continue
			}
			counts[key]++
		}
	}
	return newFreqTable(counts)
}

var (
	digitsPattern = regexp.MustCompile(`\d+`)
	spacesPattern = regexp.MustCompile(` +`)
	wordPattern   = regexp.MustCompile(`[a-zA-Z]+`)
)

// wordFrequencies counts words across all description texts: lower-cased,
// digits stripped, whitespace collapsed, tokenized on alphabetic runs.
// Tokens of length <= 2, English stop words and entity remnants are dropped.
func wordFrequencies(descriptions []string) FreqTable {
	cleaned := make([]string, 0, len(descriptions))
	for _, text := range descriptions {
		text = strings.ToLower(strings.TrimSpace(text))
		text = digitsPattern.ReplaceAllString(text, "")
		text = spacesPattern.ReplaceAllString(text, " ")
		cleaned = append(cleaned, text)
	}

	counts := make(map[string]int)
	for _, token := range wordPattern.FindAllString(strings.Join(cleaned, " "), -1) {
		if len(token) <= 2 {
			continue
		}
		if _, stop := englishStopWords[token]; stop {
			continue
		}
		counts[token]++
	}
	return newFreqTable(counts)
}
