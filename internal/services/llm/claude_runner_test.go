package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/models"
	"github.com/ternarybob/arbor"
)

func claudeMessage(stopReason string, content ...map[string]any) map[string]any {
	blocks := make([]any, 0, len(content))
	for _, c := range content {
		blocks = append(blocks, c)
	}
	return map[string]any{
		"id":            "msg_1",
		"type":          "message",
		"role":          "assistant",
		"model":         "claude-sonnet-4-20250514",
		"content":       blocks,
		"stop_reason":   stopReason,
		"stop_sequence": nil,
		"usage":         map[string]any{"input_tokens": 10, "output_tokens": 5},
	}
}

func TestClaudeRunner_ToolLoop(t *testing.T) {
	responses := []map[string]any{
		claudeMessage("tool_use",
			map[string]any{"type": "text", "text": "Looking up the price."},
			map[string]any{"type": "tool_use", "id": "toolu_1", "name": "get_stock_data", "input": map[string]any{"ticker": "MSFT"}},
		),
		claudeMessage("end_turn", map[string]any{"type": "text", "text": "## 1. Executive Summary"}),
	}

	var mu sync.Mutex
	var requests []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		mu.Lock()
		requests = append(requests, body)
		idx := len(requests) - 1
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(responses[idx])
	}))
	defer srv.Close()

	runner, err := NewClaudeRunner(
		&common.ClaudeConfig{APIKey: "test-key", MaxTokens: 1024},
		"claude-sonnet-4-20250514", 3, arbor.NewLogger(),
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0),
	)
	require.NoError(t, err)

	var calls []map[string]any
	answer, err := runner.Run(context.Background(), "You are an analyst.", "Write a memo for 'MSFT'", []models.Tool{echoTool(&calls)})
	require.NoError(t, err)

	assert.Equal(t, "## 1. Executive Summary", answer)
	require.Len(t, calls, 1)
	assert.Equal(t, "MSFT", calls[0]["ticker"])

	require.Len(t, requests, 2)
	first := requests[0]
	assert.Equal(t, "claude-sonnet-4-20250514", first["model"])
	system := first["system"].([]any)
	assert.Equal(t, "You are an analyst.", system[0].(map[string]any)["text"])
	tools := first["tools"].([]any)
	assert.Equal(t, "get_stock_data", tools[0].(map[string]any)["name"])

	// Second request: user prompt, assistant tool_use turn, user tool_result turn
	msgs := requests[1]["messages"].([]any)
	require.Len(t, msgs, 3)
	last := msgs[2].(map[string]any)
	assert.Equal(t, "user", last["role"])
	result := last["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "tool_result", result["type"])
	assert.Equal(t, "toolu_1", result["tool_use_id"])
}

func TestClaudeRunner_EmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(claudeMessage("end_turn"))
	}))
	defer srv.Close()

	runner, err := NewClaudeRunner(&common.ClaudeConfig{APIKey: "k"}, "claude-x", 2, arbor.NewLogger(),
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), "", "prompt", nil)
	assert.True(t, errors.Is(err, ErrEmptyAnswer))
}

func TestNewClaudeRunner_MissingKey(t *testing.T) {
	_, err := NewClaudeRunner(&common.ClaudeConfig{}, "claude-x", 2, arbor.NewLogger())
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
}
