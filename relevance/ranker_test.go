package relevance

import (
	"testing"

	"weblookup/extract"
)

func TestScore(t *testing.T) {
	testCases := []struct {
		name  string
		query string
		title string
		zero  bool
	}{
		{"ExactOverlap", "golang channels", "Golang Channels Tutorial", false},
		{"StemmedOverlap", "running races", "The Runner's Guide to Race Day", false},
		{"NoOverlap", "golang channels", "Cooking with Cast Iron", true},
		{"StopWordsOnly", "the of and", "Anything At All", true},
		{"EmptyQuery", "", "Some Title", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			score := NewRanker(tc.query).Score(tc.title)
			if tc.zero && score != 0 {
				t.Errorf("Score(%q, %q) = %v, want 0", tc.query, tc.title, score)
			}
			if !tc.zero && score <= 0 {
				t.Errorf("Score(%q, %q) = %v, want > 0", tc.query, tc.title, score)
			}
		})
	}
}

func TestScoreOrdering(t *testing.T) {
	r := NewRanker("golang context cancellation")
	full := r.Score("Context Cancellation in Golang")
	partial := r.Score("Golang Basics")
	if full <= partial {
		t.Errorf("full overlap (%v) should outscore partial (%v)", full, partial)
	}
}

func TestBest(t *testing.T) {
	results := []extract.SearchResult{
		{Title: "Cooking with Cast Iron", URL: "https://a.example/1"},
		{Title: "Golang Context Patterns", URL: "https://a.example/2"},
		{Title: "Golang Context Cancellation Explained", URL: "https://a.example/3"},
	}
	r := NewRanker("golang context cancellation")
	if got := r.Best(results); got != 2 {
		t.Errorf("Best() = %d, want 2", got)
	}
}

func TestBestTieKeepsOrder(t *testing.T) {
	results := []extract.SearchResult{
		{Title: "Golang Context", URL: "https://a.example/1"},
		{Title: "Context Golang", URL: "https://a.example/2"},
	}
	r := NewRanker("golang context")
	if got := r.Best(results); got != 0 {
		t.Errorf("Best() = %d, want 0 on a tie", got)
	}
}

func TestBestEmpty(t *testing.T) {
	if got := NewRanker("anything").Best(nil); got != -1 {
		t.Errorf("Best(nil) = %d, want -1", got)
	}
}
