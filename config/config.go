package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"weblookup/browser"
)

type Config struct {
	AppPort       int
	BrowserBin    string
	FetchBackend  string // binary, headless or http
	ProxyURL      string
	EnginesPath   string
	EngineName    string
	HistoryDBPath string
	SeparatorRun  int
	MaxResults    int
	SubtaskModel  string
	SubtaskRounds int
}

func Load() (*Config, error) {
	appPort, err := strconv.Atoi(getEnvDefault("APP_PORT", "8089"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	separatorRun, err := strconv.Atoi(getEnvDefault("SEPARATOR_RUN", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEPARATOR_RUN: %w", err)
	}
	maxResults, err := strconv.Atoi(getEnvDefault("MAX_RESULTS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_RESULTS: %w", err)
	}
	subtaskRounds, err := strconv.Atoi(getEnvDefault("SUBTASK_MAX_ROUNDS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid SUBTASK_MAX_ROUNDS: %w", err)
	}

	return &Config{
		AppPort:       appPort,
		BrowserBin:    os.Getenv("BROWSER_BIN"),
		FetchBackend:  getEnvDefault("FETCH_BACKEND", "binary"),
		ProxyURL:      os.Getenv("PROXY_URL"),
		EnginesPath:   os.Getenv("ENGINES_PATH"),
		EngineName:    getEnvDefault("SEARCH_ENGINE", "DuckDuckGo"),
		HistoryDBPath: getEnvDefault("HISTORY_DB_PATH", "data/lookup_history.db"),
		SeparatorRun:  separatorRun,
		MaxResults:    maxResults,
		SubtaskModel:  getEnvDefault("SUBTASK_MODEL", "gpt-4o-mini"),
		SubtaskRounds: subtaskRounds,
	}, nil
}

func getEnvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Engines the browser binary knows how to drive. The kd/kp style flags
// disable engine-side redirects and personalization so the output stays
// parseable.
var defaultEngines = []browser.Engine{
	{
		Name:      "DuckDuckGo",
		SearchURL: "https://lite.duckduckgo.com/lite/?kd=-1&kp=-2",
		Form:      "form",
		Input:     "q",
	},
	{
		Name:      "Startpage",
		SearchURL: "https://www.startpage.com/do/search?cat=web&abp=-1",
		Form:      "form",
		Input:     "query",
	},
}

// LoadEngines reads an engine manifest from a YAML file. An empty path
// returns the built-in table.
func LoadEngines(path string) ([]browser.Engine, error) {
	if path == "" {
		return defaultEngines, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine manifest: %w", err)
	}
	var engines []browser.Engine
	if err := yaml.Unmarshal(data, &engines); err != nil {
		return nil, fmt.Errorf("failed to parse engine manifest: %w", err)
	}
	if len(engines) == 0 {
		return nil, fmt.Errorf("engine manifest %s is empty", path)
	}
	return engines, nil
}

// ResolveEngine picks an engine by name, falling back to the first entry
// when the name is unknown.
func ResolveEngine(engines []browser.Engine, name string) browser.Engine {
	for _, e := range engines {
		if e.Name == name {
			return e
		}
	}
	return engines[0]
}
