package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/analyst/internal/models"
	"github.com/ternarybob/arbor"
)

// DefaultMaxTurns bounds model round trips when none is configured
const DefaultMaxTurns = 8

var (
	// ErrTurnBudgetExhausted is returned when the model keeps calling tools past the turn budget
	ErrTurnBudgetExhausted = errors.New("agent turn budget exhausted before a final answer")

	// ErrEmptyAnswer is returned when the model finishes without any text
	ErrEmptyAnswer = errors.New("agent returned an empty answer")

	// ErrMissingAPIKey is returned when the selected provider has no key configured
	ErrMissingAPIKey = errors.New("provider API key is not configured")
)

// toolbox dispatches model tool calls to registered tools
type toolbox struct {
	byName map[string]models.Tool
	logger arbor.ILogger
}

func newToolbox(tools []models.Tool, logger arbor.ILogger) *toolbox {
	byName := make(map[string]models.Tool, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}
	return &toolbox{byName: byName, logger: logger}
}

// call runs the named tool with JSON-encoded arguments. Unknown tools and
// malformed arguments are reported back to the model as text.
func (b *toolbox) call(ctx context.Context, name, rawArgs string) string {
	tool, ok := b.byName[name]
	if !ok || tool.Invoke == nil {
		b.logger.Warn().Str("tool", name).Msg("Model requested unknown tool")
		return fmt.Sprintf("Error: unknown tool %q. Available tools: %s", name, strings.Join(b.names(), ", "))
	}

	args := map[string]any{}
	if trimmed := strings.TrimSpace(rawArgs); trimmed != "" && trimmed != "null" {
		if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
			b.logger.Warn().Str("tool", name).Err(err).Msg("Model sent malformed tool arguments")
			return fmt.Sprintf("Error: invalid arguments for tool %q: %v", name, err)
		}
	}

	b.logger.Debug().Str("tool", name).Str("args", rawArgs).Msg("Invoking tool")
	out := tool.Invoke(ctx, args)
	b.logger.Debug().Str("tool", name).Int("output_length", len(out)).Msg("Tool completed")
	return out
}

func (b *toolbox) names() []string {
	names := make([]string, 0, len(b.byName))
	for name := range b.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func maxTurnsOrDefault(n int) int {
	if n <= 0 {
		return DefaultMaxTurns
	}
	return n
}
