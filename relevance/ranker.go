package relevance

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"

	"weblookup/extract"
)

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "how": true,
	"in": true, "is": true, "it": true, "of": true, "on": true, "or": true,
	"that": true, "the": true, "to": true, "was": true, "what": true,
	"when": true, "where": true, "which": true, "who": true, "why": true,
	"will": true, "with": true,
}

var nonWord = regexp.MustCompile(`[^\w\s]`)

// Ranker scores search results against the query they came from, using
// stemmed token overlap between query and title.
type Ranker struct {
	terms []string
}

// NewRanker builds a Ranker from a free-text query. Stop words are dropped
// and the remaining tokens stemmed.
func NewRanker(rawQuery string) *Ranker {
	return &Ranker{terms: stemTokens(rawQuery)}
}

// Score returns the fraction of query terms whose stem appears in the
// title, in [0, 1]. A ranker with no usable query terms scores everything 0.
func (r *Ranker) Score(title string) float64 {
	if len(r.terms) == 0 {
		return 0
	}
	titleTerms := make(map[string]bool)
	for _, tok := range stemTokens(title) {
		titleTerms[tok] = true
	}
	matched := 0
	for _, term := range r.terms {
		if titleTerms[term] {
			matched++
		}
	}
	return float64(matched) / float64(len(r.terms))
}

// Best returns the index of the highest-scoring result. Ties keep the
// earliest result, preserving the extractor's order of appearance.
// Returns -1 for an empty slice.
func (r *Ranker) Best(results []extract.SearchResult) int {
	best := -1
	bestScore := -1.0
	for i, res := range results {
		if score := r.Score(res.Title); score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

func stemTokens(text string) []string {
	text = strings.ToLower(text)
	text = nonWord.ReplaceAllString(text, " ")

	var tokens []string
	seen := make(map[string]bool)
	for _, word := range strings.Fields(text) {
		if len(word) < 2 || stopWords[word] {
			continue
		}
		stemmed, err := snowball.Stem(word, "english", true)
		if err != nil {
			stemmed = word
		}
		if !seen[stemmed] {
			seen[stemmed] = true
			tokens = append(tokens, stemmed)
		}
	}
	return tokens
}
