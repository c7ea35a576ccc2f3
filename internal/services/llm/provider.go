package llm

import (
	"fmt"
	"strings"

	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderGroq uses Groq's OpenAI-compatible API
	ProviderGroq ProviderType = "groq"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
)

// DefaultModel is used when neither the request nor configuration names one
const DefaultModel = "llama-3.3-70b-versatile"

// ProviderFactory builds agent runners for model identifiers
type ProviderFactory struct {
	llmConfig    *common.LLMConfig
	groqConfig   *common.GroqConfig
	claudeConfig *common.ClaudeConfig
	logger       arbor.ILogger
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(config *common.Config, logger arbor.ILogger) *ProviderFactory {
	return &ProviderFactory{
		llmConfig:    &config.LLM,
		groqConfig:   &config.Groq,
		claudeConfig: &config.Claude,
		logger:       logger,
	}
}

// DetectProvider determines the provider type from a model string.
// Model strings can be:
// - "claude-sonnet-4-20250514" -> Claude
// - "claude/claude-sonnet-4-20250514" or "anthropic/..." -> Claude
// - "groq/llama-3.3-70b-versatile" -> Groq
// - anything else, including empty -> Groq
func DetectProvider(model string) ProviderType {
	model = strings.ToLower(strings.TrimSpace(model))

	switch {
	case strings.HasPrefix(model, "claude/"), strings.HasPrefix(model, "anthropic/"):
		return ProviderClaude
	case strings.HasPrefix(model, "groq/"):
		return ProviderGroq
	case strings.HasPrefix(model, "claude-"):
		return ProviderClaude
	default:
		return ProviderGroq
	}
}

// NormalizeModel removes the provider prefix from a model name if present
func NormalizeModel(model string) string {
	model = strings.TrimSpace(model)
	for _, prefix := range []string{"claude/", "anthropic/", "groq/"} {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// ResolveModel returns model, or the configured default when model is empty
func (f *ProviderFactory) ResolveModel(model string) string {
	if strings.TrimSpace(model) != "" {
		return strings.TrimSpace(model)
	}
	if f.llmConfig.DefaultModel != "" {
		return f.llmConfig.DefaultModel
	}
	return DefaultModel
}

// RunnerFor returns an agent runner for model; empty model selects the default
func (f *ProviderFactory) RunnerFor(model string) (interfaces.AgentRunner, error) {
	model = f.ResolveModel(model)
	provider := DetectProvider(model)
	name := NormalizeModel(model)
	if name == "" {
		return nil, fmt.Errorf("model name is empty")
	}

	f.logger.Debug().
		Str("provider", string(provider)).
		Str("model", name).
		Msg("Creating agent runner")

	if provider == ProviderClaude {
		runner, err := NewClaudeRunner(f.claudeConfig, name, f.llmConfig.MaxTurns, f.logger)
		if err != nil {
			return nil, err
		}
		return runner, nil
	}

	runner, err := NewOpenAIRunner(f.groqConfig.APIKey, f.groqConfig.BaseURL, name, f.llmConfig.MaxTurns, f.logger)
	if err != nil {
		return nil, err
	}
	return runner, nil
}
