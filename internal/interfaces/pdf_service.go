package interfaces

// PDFService renders memo markdown into a PDF document
type PDFService interface {
	// Render produces PDF bytes for the memo of ticker.
	// Malformed markdown never fails; errors wrap common.ErrRender.
	Render(ticker, markdown string) ([]byte, error)
}
