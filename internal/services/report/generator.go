// Package report generates investment memos by running the agent once per request.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/interfaces"
	"github.com/ternarybob/analyst/internal/models"
	"github.com/ternarybob/arbor"
)

// ToolSource supplies the tools offered to each agent run
type ToolSource interface {
	Tools() []models.Tool
}

// Generator builds the prompt and runs one agent per memo
type Generator struct {
	agents  interfaces.AgentFactory
	tools   ToolSource
	timeout time.Duration
	logger  arbor.ILogger
}

// NewGenerator creates a memo generator. timeout <= 0 leaves only the caller's deadline.
func NewGenerator(agents interfaces.AgentFactory, tools ToolSource, timeout time.Duration, logger arbor.ILogger) *Generator {
	return &Generator{
		agents:  agents,
		tools:   tools,
		timeout: timeout,
		logger:  logger,
	}
}

// Generate returns the memo markdown for ticker. Every failure wraps common.ErrUpstream.
func (g *Generator) Generate(ctx context.Context, ticker, model string) (string, error) {
	runner, err := g.agents.RunnerFor(model)
	if err != nil {
		return "", fmt.Errorf("%w: failed to initialise agent: %v", common.ErrUpstream, err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	g.logger.Info().
		Str("ticker", ticker).
		Str("provider", runner.Provider()).
		Str("model", runner.Model()).
		Msg("Generating investment memo")

	markdown, err := runner.Run(ctx, Instructions(), Prompt(ticker), g.tools.Tools())
	if err != nil {
		g.logger.Error().
			Str("ticker", ticker).
			Str("model", runner.Model()).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("Memo generation failed")
		return "", fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}

	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return "", fmt.Errorf("%w: agent returned an empty memo", common.ErrUpstream)
	}

	g.logger.Info().
		Str("ticker", ticker).
		Str("model", runner.Model()).
		Int("markdown_length", len(markdown)).
		Dur("duration", time.Since(start)).
		Msg("Investment memo generated")

	return markdown, nil
}

// Prompt is the user message for one memo
func Prompt(ticker string) string {
	return fmt.Sprintf("Write a professional Investment Memo for '%s'. Follow the STRICT format in your instructions.", ticker)
}

var instructions = []string{
	"You are a Senior Wall Street Equity Research Analyst.",
	"You are writing a confidential, high-stakes Investment Memo.",
	"",
	"### CRITICAL INSTRUCTIONS:",
	"1. **NO CHITCHAT:** Do not start with 'Here is the report' or 'I have analyzed...'. Start directly with the first header.",
	"2. **USE TOOLS:** You MUST use 'get_stock_data' or 'web_search' to find the CURRENT stock price, P/E ratio, and recent news. Do not hallucinate numbers.",
	"3. **STRICT FORMAT:** Follow the markdown structure below EXACTLY.",
	"",
	"### REPORT FORMAT:",
	"## 1. Executive Summary",
	"- **Recommendation:** [BUY / SELL / HOLD]",
	"- **Current Price:** [Insert Real Price] | **Target Price:** [Insert Prediction]",
	"- **Thesis:** [Professional summary of why this trade makes sense]",
	"",
	"## 2. Company Overview",
	"[Concise description of the business model and primary revenue streams]",
	"",
	"## 3. Financial Analysis",
	"| Metric | Value | Comment |",
	"| :--- | :--- | :--- |",
	"| **Revenue Growth** | [Value] | [YoY trend] |",
	"| **Profit Margin** | [Value] | [Efficiency check] |",
	"| **P/E Ratio** | [Value] | [vs Industry Avg] |",
	"*(Narrative analysis of the company's financial health)*",
	"",
	"## 4. Key Catalysts",
	"- [Specific upcoming event/product launch]",
	"- [Macro factor helping the company]",
	"",
	"## 5. Investment Risks",
	"- [Risk 1]",
	"- [Risk 2]",
	"",
	"## 6. Conclusion",
	"[Final verdict: Position size suggestion and time horizon]",
	"",
	"### DATA RULES:",
	"1. **CURRENCY CHECK:** If the ticker is OTC (e.g. MAHMF), the price is USD. If the user implies a foreign market (e.g. Reliance), use the exchange-suffixed local ticker (e.g. RELIANCE.NS) to get local currency prices.",
	"2. **NO HALLUCINATIONS:** If financial data is missing, explicitly state 'Data Unavailable'.",
	"3. If 'get_stock_data' reports a Financial Data Error, use 'web_search' instead.",
}

// Instructions is the fixed system prompt for every memo
func Instructions() string {
	return strings.Join(instructions, "\n")
}
