package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// SearchResult is one title/URL pair pulled out of the browser binary's
// search output.
type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

const (
	DefaultSeparatorRun = 10
	DefaultMaxResults   = 10
)

// A result line looks like `Some Title ( https://example.com/page )`.
// The URL may not contain whitespace or a closing paren.
var resultLine = regexp.MustCompile(`^(.+?)\s+\(\s*(https?://[^\s)]+)\s*\)$`)

// Extractor parses the raw terminal output of a search invocation into
// structured results. The output is human-oriented text, not a protocol:
// genuine results are bracketed between dashed separator lines, with
// breadcrumbs, "did you mean" suggestions and other scaffolding interleaved.
// Only lines between two separators that also match the result-line shape
// are kept.
type Extractor struct {
	// SeparatorRun is the minimum run of consecutive dashes that marks a
	// line as a block separator.
	SeparatorRun int
	// MaxResults caps the number of results returned.
	MaxResults int
}

// NewExtractor returns an Extractor with the defaults tuned against the
// browser binary's current output format.
func NewExtractor() *Extractor {
	return &Extractor{
		SeparatorRun: DefaultSeparatorRun,
		MaxResults:   DefaultMaxResults,
	}
}

// Extract parses raw search output into an ordered result list. The order
// of appearance in the raw output is preserved. The returned slice has at
// most MaxResults entries and may be empty; Extract never fails.
func (e *Extractor) Extract(raw string) []SearchResult {
	lines := strings.Split(raw, "\n")
	sep := strings.Repeat("-", e.SeparatorRun)

	var separators []int
	for i, line := range lines {
		if strings.Contains(line, sep) {
			separators = append(separators, i)
		}
	}

	// Every adjacent separator pair delimits a candidate block, stepping by
	// one so results between inner separator runs are captured exactly once.
	var results []SearchResult
	for k := 0; k+1 < len(separators); k++ {
		lo, hi := separators[k], separators[k+1]
		if hi <= lo+1 {
			continue
		}
		for _, line := range lines[lo+1 : hi] {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			m := resultLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			results = append(results, SearchResult{
				Title: strings.TrimSpace(m[1]),
				URL:   strings.TrimSpace(m[2]),
			})
			if len(results) >= e.MaxResults {
				return results
			}
		}
	}
	return results
}

// FormatBlocks renders results back into the canonical bracketed-block
// text form, one block per result. Extracting the rendered text yields the
// same list, which makes the format safe to embed in sub-task instructions.
func (e *Extractor) FormatBlocks(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	sep := strings.Repeat("-", e.SeparatorRun)
	var b strings.Builder
	b.WriteString(sep)
	b.WriteString("\n")
	for _, r := range results {
		fmt.Fprintf(&b, "%s ( %s )\n", r.Title, r.URL)
		b.WriteString(sep)
		b.WriteString("\n")
	}
	return b.String()
}
