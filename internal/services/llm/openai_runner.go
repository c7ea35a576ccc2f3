package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/ternarybob/analyst/internal/models"
	"github.com/ternarybob/arbor"
)

// DefaultGroqBaseURL is Groq's OpenAI-compatible endpoint
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// OpenAIRunner runs the tool loop against an OpenAI-compatible chat
// completions endpoint (Groq by default).
type OpenAIRunner struct {
	client      *openai.Client
	provider    ProviderType
	model       string
	maxTurns    int
	temperature float32
	logger      arbor.ILogger
}

// NewOpenAIRunner creates a runner for model at baseURL
func NewOpenAIRunner(apiKey, baseURL, model string, maxTurns int, logger arbor.ILogger) (*OpenAIRunner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set GROQ_API_KEY or groq.api_key", ErrMissingAPIKey)
	}
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")

	return &OpenAIRunner{
		client:      openai.NewClientWithConfig(cfg),
		provider:    ProviderGroq,
		model:       model,
		maxTurns:    maxTurnsOrDefault(maxTurns),
		temperature: 0.2,
		logger:      logger,
	}, nil
}

// Provider returns the provider name
func (r *OpenAIRunner) Provider() string {
	return string(r.provider)
}

// Model returns the model identifier
func (r *OpenAIRunner) Model() string {
	return r.model
}

// Run executes the tool loop until the model answers without tool calls
func (r *OpenAIRunner) Run(ctx context.Context, instructions, prompt string, tools []models.Tool) (string, error) {
	box := newToolbox(tools, r.logger)

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: instructions},
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}
	toolDefs := openAITools(tools)

	for turn := 1; turn <= r.maxTurns; turn++ {
		start := time.Now()
		req := openai.ChatCompletionRequest{
			Model:       r.model,
			Messages:    messages,
			Temperature: r.temperature,
		}
		if len(toolDefs) > 0 {
			req.Tools = toolDefs
		}

		resp, err := r.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", fmt.Errorf("%s chat completion failed: %w", r.provider, err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("%s returned no choices", r.provider)
		}

		msg := resp.Choices[0].Message
		r.logger.Debug().
			Int("turn", turn).
			Int("tool_calls", len(msg.ToolCalls)).
			Str("finish_reason", string(resp.Choices[0].FinishReason)).
			Dur("duration", time.Since(start)).
			Msg("Model turn completed")

		if len(msg.ToolCalls) == 0 {
			answer := strings.TrimSpace(msg.Content)
			if answer == "" {
				return "", ErrEmptyAnswer
			}
			return answer, nil
		}

		// The assistant turn must precede its tool results
		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			out := box.call(ctx, call.Function.Name, call.Function.Arguments)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    out,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
		}
	}

	return "", fmt.Errorf("%w (%d turns)", ErrTurnBudgetExhausted, r.maxTurns)
}

func openAITools(tools []models.Tool) []openai.Tool {
	defs := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.JSONSchema(),
			},
		})
	}
	return defs
}
