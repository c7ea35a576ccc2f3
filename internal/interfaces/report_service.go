package interfaces

import "context"

// ReportGenerator produces an investment memo for a ticker
type ReportGenerator interface {
	// Generate runs the agent once and returns the memo markdown.
	// Failures wrap common.ErrUpstream.
	Generate(ctx context.Context, ticker, model string) (string, error)
}
