// Package browser wraps invocation of the external browser-automation
// binary. The binary is always spawned with an argument vector, never
// through a shell, and its stdout and stderr are captured as one stream
// because it emits diagnostics on stderr that matter when a call fails.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// Invocation is the raw outcome of one binary run.
type Invocation struct {
	Output   string
	ExitCode int
}

// SpawnError reports that the binary could not be started at all
// (missing, not executable). Distinct from a run that started and failed.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError reports a run that completed with a non-zero exit code. The
// captured combined output is carried for diagnostics. This is a normal,
// recoverable outcome, not a crash.
type ExitError struct {
	ExitCode int
	Output   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("browser binary exited with code %d", e.ExitCode)
}

// Engine describes the search engine the binary is pointed at: a URL with
// fixed query flags that disable personalization and redirects, plus the
// form and input the binary fills with the query value.
type Engine struct {
	Name      string `yaml:"name"`
	SearchURL string `yaml:"search_url"`
	Form      string `yaml:"form"`
	Input     string `yaml:"input"`
}

// Invoker runs the configured binary in the two supported shapes.
type Invoker struct {
	binaryPath string
	engine     Engine
	logger     *zap.Logger
}

// NewInvoker creates an Invoker for the given binary path and engine.
func NewInvoker(binaryPath string, engine Engine, logger *zap.Logger) *Invoker {
	return &Invoker{
		binaryPath: binaryPath,
		engine:     engine,
		logger:     logger,
	}
}

// Invoke runs the binary once with the given argument vector, blocking
// until it exits or ctx is done. No retry and no internal timeout; the
// caller owns the deadline. On a non-zero exit both the Invocation and an
// *ExitError are returned so diagnostics are never lost.
func (inv *Invoker) Invoke(ctx context.Context, args ...string) (*Invocation, error) {
	cmd := exec.CommandContext(ctx, inv.binaryPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			inv.logger.Warn("browser binary exited non-zero",
				zap.Int("exit_code", code),
				zap.Int("output_bytes", len(out)))
			return &Invocation{Output: string(out), ExitCode: code},
				&ExitError{ExitCode: code, Output: string(out)}
		}
		inv.logger.Error("failed to spawn browser binary",
			zap.String("path", inv.binaryPath),
			zap.Error(err))
		return nil, &SpawnError{Path: inv.binaryPath, Err: err}
	}
	return &Invocation{Output: string(out), ExitCode: 0}, nil
}

// Search drives the engine's search form with an already-sanitized query.
func (inv *Invoker) Search(ctx context.Context, sanitizedQuery string) (*Invocation, error) {
	inv.logger.Info("search invocation",
		zap.String("engine", inv.engine.Name),
		zap.String("query", sanitizedQuery))
	return inv.Invoke(ctx, inv.searchArgs(sanitizedQuery)...)
}

// Fetch retrieves a single URL; the binary renders the page as markdown.
func (inv *Invoker) Fetch(ctx context.Context, pageURL string) (*Invocation, error) {
	inv.logger.Info("fetch invocation", zap.String("url", pageURL))
	return inv.Invoke(ctx, pageURL)
}

func (inv *Invoker) searchArgs(sanitizedQuery string) []string {
	return []string{
		inv.engine.SearchURL,
		"--form", inv.engine.Form,
		"--input", inv.engine.Input,
		"--value", sanitizedQuery,
	}
}
