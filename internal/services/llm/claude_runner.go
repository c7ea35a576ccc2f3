package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/models"
	"github.com/ternarybob/arbor"
)

// DefaultClaudeMaxTokens is used when claude.max_tokens is unset
const DefaultClaudeMaxTokens = 8192

// ClaudeRunner runs the tool loop against the Anthropic Messages API.
type ClaudeRunner struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
	maxTurns    int
	logger      arbor.ILogger
}

// NewClaudeRunner creates a runner for model. Extra request options (base URL,
// retries) are passed through to the SDK client.
func NewClaudeRunner(claudeConfig *common.ClaudeConfig, model string, maxTurns int, logger arbor.ILogger, opts ...option.RequestOption) (*ClaudeRunner, error) {
	if claudeConfig.APIKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or claude.api_key", ErrMissingAPIKey)
	}

	maxTokens := claudeConfig.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultClaudeMaxTokens
	}

	clientOpts := append([]option.RequestOption{option.WithAPIKey(claudeConfig.APIKey)}, opts...)

	return &ClaudeRunner{
		client:      anthropic.NewClient(clientOpts...),
		model:       model,
		maxTokens:   maxTokens,
		temperature: claudeConfig.Temperature,
		maxTurns:    maxTurnsOrDefault(maxTurns),
		logger:      logger,
	}, nil
}

// Provider returns the provider name
func (r *ClaudeRunner) Provider() string {
	return string(ProviderClaude)
}

// Model returns the model identifier
func (r *ClaudeRunner) Model() string {
	return r.model
}

// Run executes the tool loop until Claude stops without requesting tools
func (r *ClaudeRunner) Run(ctx context.Context, instructions, prompt string, tools []models.Tool) (string, error) {
	box := newToolbox(tools, r.logger)

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}
	toolDefs := claudeTools(tools)

	for turn := 1; turn <= r.maxTurns; turn++ {
		start := time.Now()
		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(r.model),
			MaxTokens: int64(r.maxTokens),
			Messages:  messages,
			Tools:     toolDefs,
		}
		if instructions != "" {
			params.System = []anthropic.TextBlockParam{
				{Text: instructions},
			}
		}
		if r.temperature > 0 {
			params.Temperature = anthropic.Float(float64(r.temperature))
		}

		resp, err := r.client.Messages.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("Claude API call failed: %w", err)
		}

		var text strings.Builder
		var results []anthropic.ContentBlockParamUnion
		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				text.WriteString(block.Text)
			case "tool_use":
				out := box.call(ctx, block.Name, string(block.Input))
				results = append(results, anthropic.NewToolResultBlock(block.ID, out, false))
			}
		}

		r.logger.Debug().
			Int("turn", turn).
			Int("tool_calls", len(results)).
			Str("stop_reason", string(resp.StopReason)).
			Dur("duration", time.Since(start)).
			Msg("Model turn completed")

		if len(results) == 0 {
			answer := strings.TrimSpace(text.String())
			if answer == "" {
				return "", ErrEmptyAnswer
			}
			return answer, nil
		}

		messages = append(messages, resp.ToParam(), anthropic.NewUserMessage(results...))
	}

	return "", fmt.Errorf("%w (%d turns)", ErrTurnBudgetExhausted, r.maxTurns)
}

func claudeTools(tools []models.Tool) []anthropic.ToolUnionParam {
	defs := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := t.JSONSchema()
		defs = append(defs, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: schema["properties"],
					Required:   t.RequiredNames(),
				},
			},
		})
	}
	return defs
}
