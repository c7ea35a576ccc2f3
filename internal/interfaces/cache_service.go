// Package interfaces provides service interfaces for dependency injection.
package interfaces

// ReportCache holds generated memos between analysis and PDF export.
// Implementations must be safe for concurrent use.
type ReportCache interface {
	// Store saves markdown under a newly issued id and returns the id.
	// The returned id is always retrievable immediately after the call.
	Store(markdown string) string

	// Retrieve returns the markdown stored under id.
	// Returns false for unknown or flushed ids.
	Retrieve(id string) (string, bool)

	// Clear drops every cached report
	Clear()

	// Len returns the number of cached reports
	Len() int
}
