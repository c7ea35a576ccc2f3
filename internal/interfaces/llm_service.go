package interfaces

import (
	"context"

	"github.com/ternarybob/analyst/internal/models"
)

// AgentRunner drives a tool-using conversation with a language model until
// the model produces a final answer.
type AgentRunner interface {
	// Run executes one agent run. The model may call any of tools zero or
	// more times; each call is answered with the tool's text output.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - instructions: System prompt
	//   - prompt: User message
	//   - tools: Tools offered to the model
	//
	// Returns:
	//   - string: Final assistant text
	//   - error: Provider failure, exhausted turn budget, or empty answer
	Run(ctx context.Context, instructions, prompt string, tools []models.Tool) (string, error)

	// Provider returns the provider name (e.g. "groq", "claude")
	Provider() string

	// Model returns the model identifier used for requests
	Model() string
}

// AgentFactory selects and builds an AgentRunner for a model identifier
type AgentFactory interface {
	// RunnerFor returns a runner for model; empty model selects the default
	RunnerFor(model string) (AgentRunner, error)
}
