package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

const sampleMemo = `## 1. Executive Summary
- **Recommendation:** BUY
- **Current Price:** 189.50 USD | **Target Price:** 215.00 USD
- **Thesis:** Services growth offsets hardware cyclicality.

## 2. Company Overview
Designs consumer hardware and sells high margin services.

## 3. Financial Analysis
| Metric | Value | Comment |
| :--- | :--- | :--- |
| **Revenue Growth** | 6% | Steady |
| **Profit Margin** | 25% | Best in class |
| **P/E Ratio** | 28.1 | Premium to sector |

## 6. Conclusion
Accumulate on weakness over a 12 month horizon.
`

func fixedClock() time.Time {
	return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestRender(t *testing.T) {
	logger := arbor.NewLogger()

	tests := []struct {
		name     string
		opts     []Option
		markdown string
	}{
		{name: "memo", markdown: sampleMemo},
		{name: "markdown mode", opts: []Option{WithMode(ModeMarkdown)}, markdown: sampleMemo},
		{name: "a4", opts: []Option{WithPageSize("A4")}, markdown: sampleMemo},
		{name: "empty", markdown: ""},
		{name: "no headers", markdown: "just a paragraph\nand another"},
		{name: "bold header", markdown: "## **1. Executive Summary**\n- **Recommendation:** BUY"},
		{name: "unmatched bold", markdown: "## Risks\n**unterminated bold\n***\n"},
		{name: "unicode", markdown: "## Überblick\nCafé – “quoted” € 5 • 日本語 🚀"},
		{name: "markdown mode unmatched bold", opts: []Option{WithMode(ModeMarkdown)}, markdown: "**open\n\n| a |\n|---|\n| b |"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(logger, append(tt.opts, WithClock(fixedClock))...)

			pdfBytes, err := service.Render("AAPL", tt.markdown)
			require.NoError(t, err)
			require.NotEmpty(t, pdfBytes)
			assert.Equal(t, "%PDF", string(pdfBytes[:4]))

			pages, err := PageCount(pdfBytes)
			require.NoError(t, err)
			assert.Equal(t, 1, pages)
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	service := NewService(arbor.NewLogger(), WithClock(fixedClock))

	first, err := service.Render("MSFT", sampleMemo)
	require.NoError(t, err)
	second, err := service.Render("MSFT", sampleMemo)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second))

	other, err := service.Render("MSFT", sampleMemo+"\nOne more line.")
	require.NoError(t, err)
	assert.False(t, bytes.Equal(first, other))
}

func TestRender_PageBreaks(t *testing.T) {
	service := NewService(arbor.NewLogger(), WithClock(fixedClock))

	long := strings.Repeat("## Section\n"+strings.Repeat("Body text that fills the page. ", 20)+"\n", 30)
	pdfBytes, err := service.Render("TSLA", long)
	require.NoError(t, err)

	pages, err := PageCount(pdfBytes)
	require.NoError(t, err)
	assert.Greater(t, pages, 1)
}

func TestRender_WideTable(t *testing.T) {
	service := NewService(arbor.NewLogger(), WithMode(ModeMarkdown), WithClock(fixedClock))

	var b strings.Builder
	b.WriteString("| A | B | C | D | E | F |\n|---|---|---|---|---|---|\n")
	for i := 0; i < 80; i++ {
		b.WriteString("| " + strings.Repeat("long cell content ", 6) + " | 2 | 3 | 4 | 5 | 6 |\n")
	}

	pdfBytes, err := service.Render("WIDE", b.String())
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdfBytes[:4]))
}
