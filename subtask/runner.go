// Package subtask runs the LLM-driven lookup sub-task. The model gets
// exactly two tools, search and fetch; no filesystem, no shell. Its final
// text blob goes back to the caller unparsed, validation happens there.
package subtask

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"
)

// Runner executes natural-language instructions and returns the raw text
// the model produced.
type Runner interface {
	Run(ctx context.Context, instructions string) (string, error)
}

// Tools are the two operations exposed to the model.
type Tools struct {
	Search func(ctx context.Context, query string) (string, error)
	Fetch  func(ctx context.Context, url string) (string, error)
}

const (
	// DefaultMaxRounds bounds tool-call rounds so a confused model cannot
	// loop forever.
	DefaultMaxRounds = 8

	// toolOutputLimit caps how many characters of tool output are fed back
	// to the model per call.
	toolOutputLimit = 16000
)

var toolDefinitions = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "search",
			Description: "Search the web. Returns a list of result titles and URLs.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query.",
					},
				},
				"required": []string{"query"},
			},
		},
	},
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "fetch",
			Description: "Fetch a web page. Returns its content as markdown.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{
						"type":        "string",
						"description": "The http(s) URL to fetch.",
					},
				},
				"required": []string{"url"},
			},
		},
	},
}

// LLMRunner implements Runner on a langchaingo model.
type LLMRunner struct {
	model     llms.Model
	tools     Tools
	maxRounds int
	splitter  textsplitter.RecursiveCharacter
	logger    *zap.Logger
}

func NewLLMRunner(model llms.Model, tools Tools, maxRounds int, logger *zap.Logger) *LLMRunner {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &LLMRunner{
		model:     model,
		tools:     tools,
		maxRounds: maxRounds,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(toolOutputLimit),
			textsplitter.WithChunkOverlap(0),
		),
		logger: logger,
	}
}

// Run drives the tool-call loop until the model answers with plain text
// or the round limit runs out.
func (r *LLMRunner) Run(ctx context.Context, instructions string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, instructions),
	}

	for round := 0; round < r.maxRounds; round++ {
		resp, err := r.model.GenerateContent(ctx, messages, llms.WithTools(toolDefinitions))
		if err != nil {
			return "", fmt.Errorf("sub-task generation failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("sub-task model returned no choices")
		}
		choice := resp.Choices[0]

		if len(choice.ToolCalls) == 0 {
			return choice.Content, nil
		}

		assistant := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		for _, call := range choice.ToolCalls {
			assistant.Parts = append(assistant.Parts, call)
		}
		messages = append(messages, assistant)

		for _, call := range choice.ToolCalls {
			output := r.dispatch(ctx, call)
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: call.ID,
						Name:       call.FunctionCall.Name,
						Content:    output,
					},
				},
			})
		}
	}

	return "", fmt.Errorf("sub-task exceeded %d tool rounds without answering", r.maxRounds)
}

// dispatch executes one tool call. Tool failures are reported back to the
// model as text so it can recover or give up on its own.
func (r *LLMRunner) dispatch(ctx context.Context, call llms.ToolCall) string {
	if call.FunctionCall == nil {
		return "error: malformed tool call"
	}
	name := call.FunctionCall.Name
	r.logger.Info("sub-task tool call", zap.String("tool", name))

	switch name {
	case "search":
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(call.FunctionCall.Arguments), &args); err != nil {
			return fmt.Sprintf("error: invalid search arguments: %v", err)
		}
		out, err := r.tools.Search(ctx, args.Query)
		if err != nil {
			return fmt.Sprintf("error: search failed: %v", err)
		}
		return r.clip(out)
	case "fetch":
		var args struct {
			URL string `json:"url"`
		}
		if err := json.Unmarshal([]byte(call.FunctionCall.Arguments), &args); err != nil {
			return fmt.Sprintf("error: invalid fetch arguments: %v", err)
		}
		out, err := r.tools.Fetch(ctx, args.URL)
		if err != nil {
			return fmt.Sprintf("error: fetch failed: %v", err)
		}
		return r.clip(out)
	default:
		return fmt.Sprintf("error: unknown tool %q", name)
	}
}

func (r *LLMRunner) clip(text string) string {
	if len(text) <= toolOutputLimit {
		return text
	}
	chunks, err := r.splitter.SplitText(text)
	if err != nil || len(chunks) == 0 {
		return text[:toolOutputLimit]
	}
	return chunks[0] + "\n\n[content truncated]"
}
