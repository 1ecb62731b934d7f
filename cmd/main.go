package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"weblookup/browser"
	"weblookup/config"
	"weblookup/extract"
	"weblookup/headless"
	"weblookup/history"
	"weblookup/httpfetch"
	"weblookup/lookup"
	"weblookup/subtask"
)

type SearchRequest struct {
	Query string `json:"query"`
}

type FetchRequest struct {
	URL string `json:"url"`
}

type LookupRequest struct {
	Query string `json:"query"`
}

type LookupResponse struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func main() {
	// =========
	// Config
	// =========
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.BrowserBin == "" {
		log.Fatalf("Environment variable BROWSER_BIN is required but not set")
	}
	engines, err := config.LoadEngines(cfg.EnginesPath)
	if err != nil {
		log.Fatalf("Failed to load engines: %v", err)
	}
	engine := config.ResolveEngine(engines, cfg.EngineName)

	// =========
	// Logging
	// =========
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// =========
	// Browser binary
	// =========
	invoker := browser.NewInvoker(cfg.BrowserBin, engine, logger)

	// =========
	// Fetch backend
	// =========
	var fetcher lookup.Fetcher
	switch cfg.FetchBackend {
	case "binary":
		fetcher = lookup.InvokerFetcher{Invoker: invoker}
	case "headless":
		fetcher = headless.NewFetcher(logger, cfg.ProxyURL)
	case "http":
		fetcher, err = httpfetch.NewFetcher(cfg.ProxyURL, logger)
		if err != nil {
			log.Fatalf("failed to create http fetcher: %v", err)
		}
	default:
		log.Fatalf("unknown FETCH_BACKEND %q", cfg.FetchBackend)
	}

	// =========
	// Extractor
	// =========
	extractor := &extract.Extractor{
		SeparatorRun: cfg.SeparatorRun,
		MaxResults:   cfg.MaxResults,
	}

	// =========
	// History
	// =========
	store, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		log.Fatalf("failed to open history store: %v", err)
	}
	defer store.Close()

	// =========
	// Sub-task runner
	// =========
	model, err := openai.New(openai.WithModel(cfg.SubtaskModel))
	if err != nil {
		log.Fatalf("failed to create sub-task model: %v", err)
	}
	tools := subtask.Tools{
		Search: func(ctx context.Context, q string) (string, error) {
			inv, err := invoker.Search(ctx, q)
			if err != nil {
				return "", err
			}
			results := extractor.Extract(inv.Output)
			if len(results) == 0 {
				return "no results", nil
			}
			return extractor.FormatBlocks(results), nil
		},
		Fetch: fetcher.Fetch,
	}
	runner := subtask.NewLLMRunner(model, tools, cfg.SubtaskRounds, logger)

	// =========
	// Lookup client
	// =========
	client := lookup.NewClient(invoker, fetcher, extractor, runner, store, logger)

	// =========
	// HTTP handler func
	// =========
	searchh := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		outcome := client.Search(r.Context(), req.Query)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(outcome)
	}

	fetchh := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req FetchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
			http.Error(w, "url must be http or https", http.StatusBadRequest)
			return
		}

		md, err := client.Fetch(r.Context(), req.URL)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		fmt.Fprint(w, md)
	}

	lookuph := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req LookupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		w.Header().Set("Content-Type", "application/json")
		result, err := client.Lookup(r.Context(), req.Query)
		if err != nil {
			// Failures are display-ready tool output, not transport errors.
			json.NewEncoder(w).Encode(LookupResponse{Error: err.Error()})
			return
		}
		json.NewEncoder(w).Encode(LookupResponse{Result: result})
	}

	historyh := func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 1 {
				http.Error(w, "invalid limit parameter", http.StatusBadRequest)
				return
			}
			limit = parsed
		}
		records, err := client.History(limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	}

	http.HandleFunc("/search", searchh)
	http.HandleFunc("/fetch", fetchh)
	http.HandleFunc("/lookup", lookuph)
	http.HandleFunc("/history", historyh)
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	logger.Info("starting web lookup server", zap.Int("port", cfg.AppPort))
	log.Fatal(http.ListenAndServe(":"+strconv.Itoa(cfg.AppPort), nil))
}
