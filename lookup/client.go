// Package lookup runs the end-to-end web lookup pipeline: sanitize the
// query, drive the browser binary, parse its output, hand the chosen page
// to the sub-task and validate what comes back. Every failure path
// produces a human-readable string, never a raw failure.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"weblookup/browser"
	"weblookup/extract"
	"weblookup/history"
	"weblookup/query"
	"weblookup/relevance"
	"weblookup/subtask"
	"weblookup/validate"
)

// Invoker is the slice of browser.Invoker the pipeline needs.
type Invoker interface {
	Search(ctx context.Context, sanitizedQuery string) (*browser.Invocation, error)
	Fetch(ctx context.Context, pageURL string) (*browser.Invocation, error)
}

// Fetcher retrieves one page as markdown. The binary-backed adapter below
// is the default; headless and httpfetch provide alternatives.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// SearchOutcome is the consistent shape every search produces, error or not.
type SearchOutcome struct {
	Status  string                 `json:"status"`
	Results []extract.SearchResult `json:"results,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// InvokerFetcher adapts an Invoker's fetch mode to the Fetcher interface.
type InvokerFetcher struct {
	Invoker Invoker
}

func (f InvokerFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	inv, err := f.Invoker.Fetch(ctx, pageURL)
	var exitErr *browser.ExitError
	if errors.As(err, &exitErr) {
		return "", fmt.Errorf("fetch of %s failed: %s", pageURL, strings.TrimSpace(exitErr.Output))
	}
	if err != nil {
		return "", fmt.Errorf("fetch of %s failed: %w", pageURL, err)
	}
	return inv.Output, nil
}

type Client struct {
	invoker   Invoker
	fetcher   Fetcher
	extractor *extract.Extractor
	runner    subtask.Runner
	store     *history.Store
	logger    *zap.Logger
}

// NewClient wires the pipeline. store may be nil to disable history;
// fetcher may be nil to fall back to the invoker's fetch mode.
func NewClient(
	invoker Invoker,
	fetcher Fetcher,
	extractor *extract.Extractor,
	runner subtask.Runner,
	store *history.Store,
	logger *zap.Logger,
) *Client {
	if fetcher == nil {
		fetcher = InvokerFetcher{Invoker: invoker}
	}
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	return &Client{
		invoker:   invoker,
		fetcher:   fetcher,
		extractor: extractor,
		runner:    runner,
		store:     store,
		logger:    logger,
	}
}

// Search sanitizes rawQuery, runs a search invocation and extracts the
// results. The outcome always has the same shape; a degenerate query
// short-circuits before any subprocess runs.
func (c *Client) Search(ctx context.Context, rawQuery string) *SearchOutcome {
	sanitized := query.Sanitize(rawQuery)
	if strings.TrimSpace(sanitized) == "" {
		c.logger.Warn("query degenerate after sanitization", zap.String("raw", rawQuery))
		return &SearchOutcome{
			Status: StatusError,
			Error:  "query is empty after removing unsupported characters",
		}
	}

	inv, err := c.invoker.Search(ctx, sanitized)
	var exitErr *browser.ExitError
	if errors.As(err, &exitErr) {
		return &SearchOutcome{
			Status: StatusError,
			Error:  fmt.Sprintf("search failed: %s", strings.TrimSpace(exitErr.Output)),
		}
	}
	if err != nil {
		return &SearchOutcome{
			Status: StatusError,
			Error:  fmt.Sprintf("search failed: %v", err),
		}
	}

	results := c.extractor.Extract(inv.Output)
	c.logger.Info("search complete",
		zap.String("query", sanitized),
		zap.Int("results", len(results)))
	return &SearchOutcome{Status: StatusSuccess, Results: results}
}

// Fetch retrieves one page as markdown through the configured backend.
func (c *Client) Fetch(ctx context.Context, pageURL string) (string, error) {
	return c.fetcher.Fetch(ctx, pageURL)
}

// Lookup runs the whole pipeline for rawQuery. The returned string is
// display-ready; so is the message of any returned error.
func (c *Client) Lookup(ctx context.Context, rawQuery string) (string, error) {
	id := uuid.NewString()
	logger := c.logger.With(zap.String("lookup_id", id))
	logger.Info("lookup started", zap.String("query", rawQuery))

	outcome := c.Search(ctx, rawQuery)
	if outcome.Status != StatusSuccess {
		kind := history.OutcomeSearchFail
		if strings.Contains(outcome.Error, "empty after removing") {
			kind = history.OutcomeEmptyQuery
		}
		c.record(history.Record{ID: id, Query: rawQuery, Outcome: kind, Detail: outcome.Error})
		return "", fmt.Errorf("web lookup failed: %s", outcome.Error)
	}
	if len(outcome.Results) == 0 {
		c.record(history.Record{ID: id, Query: rawQuery, Outcome: history.OutcomeNoResults})
		return "", fmt.Errorf("web lookup failed: no search results for %q", query.Sanitize(rawQuery))
	}

	best := relevance.NewRanker(query.Sanitize(rawQuery)).Best(outcome.Results)
	if best < 0 {
		best = 0
	}
	chosen := outcome.Results[best]
	logger.Info("chose result",
		zap.String("title", chosen.Title),
		zap.String("url", chosen.URL))

	raw, err := c.runner.Run(ctx, c.buildInstructions(rawQuery, outcome.Results, chosen))
	if err != nil {
		c.record(history.Record{ID: id, Query: rawQuery, URL: chosen.URL,
			Outcome: history.OutcomeSubtaskErr, Detail: err.Error()})
		return "", fmt.Errorf("web lookup failed: %v", err)
	}

	formatted, err := validate.Validate(raw)
	if err != nil {
		logger.Warn("sub-task response rejected", zap.Error(err))
		c.record(history.Record{ID: id, Query: rawQuery, URL: chosen.URL,
			Outcome: history.OutcomeInvalid, Detail: err.Error()})
		return "", fmt.Errorf("web lookup failed: %v", err)
	}

	c.record(history.Record{ID: id, Query: rawQuery, URL: chosen.URL,
		Outcome: history.OutcomeSuccess})
	logger.Info("lookup complete")
	return formatted, nil
}

// History returns up to n recent lookup records, newest first.
func (c *Client) History(n int) ([]history.Record, error) {
	if c.store == nil {
		return nil, nil
	}
	return c.store.Recent(n)
}

func (c *Client) record(rec history.Record) {
	if c.store == nil {
		return
	}
	if err := c.store.Append(rec); err != nil {
		c.logger.Error("failed to record lookup", zap.Error(err))
	}
}

func (c *Client) buildInstructions(rawQuery string, results []extract.SearchResult, chosen extract.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Answer the question %q using the web.\n\n", rawQuery)
	b.WriteString("A search already ran; its results were:\n\n")
	b.WriteString(c.extractor.FormatBlocks(results))
	fmt.Fprintf(&b, "\nStart by fetching %s (%q), the most promising result. ", chosen.URL, chosen.Title)
	b.WriteString("Use the search and fetch tools if you need other sources.\n\n")
	b.WriteString("Reply with a single JSON object and nothing else. On success:\n")
	b.WriteString(`{"status": "success", "source_title": "...", "source_url": "...", "information": "..."}`)
	b.WriteString("\nIf you cannot answer from the pages you fetched:\n")
	b.WriteString(`{"status": "error", "information": "why the lookup failed"}`)
	return b.String()
}
