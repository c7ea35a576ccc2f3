package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/interfaces"
	"github.com/ternarybob/arbor"
)

const (
	ModeMemo     = "memo"
	ModeMarkdown = "markdown"

	DefaultPageSize = "Letter"

	pageMargin = 72.0
	fontFamily = "Helvetica"
)

// Service implements interfaces.PDFService
type Service struct {
	logger   arbor.ILogger
	mode     string
	pageSize string
	now      func() time.Time
}

// Compile-time assertion
var _ interfaces.PDFService = (*Service)(nil)

// Option configures a Service
type Option func(*Service)

// WithMode selects the markdown parser: ModeMemo (line based) or ModeMarkdown
func WithMode(mode string) Option {
	return func(s *Service) {
		if mode != "" {
			s.mode = strings.ToLower(mode)
		}
	}
}

// WithPageSize sets the page format, e.g. "Letter" or "A4"
func WithPageSize(size string) Option {
	return func(s *Service) {
		if size != "" {
			s.pageSize = size
		}
	}
}

// WithClock fixes the document creation date source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a new PDF service
func NewService(logger arbor.ILogger, opts ...Option) *Service {
	s := &Service{
		logger:   logger,
		mode:     ModeMemo,
		pageSize: DefaultPageSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render lays out the memo for ticker and returns the PDF bytes.
// Content never fails rendering; only backend errors wrap common.ErrRender.
func (s *Service) Render(ticker, markdown string) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("ticker", ticker).Str("panic", fmt.Sprintf("%v", r)).Msg("PDF backend panicked")
			out, err = nil, fmt.Errorf("%w: %v", common.ErrRender, r)
		}
	}()

	s.logger.Debug().
		Str("ticker", ticker).
		Str("mode", s.mode).
		Int("markdown_len", len(markdown)).
		Msg("Rendering memo PDF")

	var body []Block
	if s.mode == ModeMarkdown {
		body = ParseMarkdown(markdown)
	} else {
		body = ParseMemo(markdown)
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		SizeStr:        s.pageSize,
	})
	now := s.now()
	doc.SetCreationDate(now)
	doc.SetModificationDate(now)
	doc.SetCatalogSort(true)
	doc.SetTitle("Investment Memo: "+ticker, true)
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.AddPage()

	r := newRenderer(doc)
	for _, b := range documentBlocks(ticker, body) {
		r.block(b)
	}

	if doc.Err() {
		s.logger.Error().Str("ticker", ticker).Err(doc.Error()).Msg("Failed to generate PDF")
		return nil, fmt.Errorf("%w: %v", common.ErrRender, doc.Error())
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		s.logger.Error().Str("ticker", ticker).Err(err).Msg("Failed to generate PDF output")
		return nil, fmt.Errorf("%w: %v", common.ErrRender, err)
	}

	pages, err := PageCount(buf.Bytes())
	if err != nil {
		s.logger.Error().Str("ticker", ticker).Err(err).Msg("Generated PDF failed to parse")
		return nil, fmt.Errorf("%w: %v", common.ErrRender, err)
	}

	s.logger.Debug().
		Str("ticker", ticker).
		Int("pdf_size", buf.Len()).
		Int("pages", pages).
		Msg("PDF generated successfully")
	return buf.Bytes(), nil
}

type renderer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newRenderer(doc *fpdf.Fpdf) *renderer {
	return &renderer{
		pdf: doc,
		tr:  doc.UnicodeTranslatorFromDescriptor(""),
	}
}

func (r *renderer) block(b Block) {
	switch b.Kind {
	case BlockTitle:
		r.pdf.SetFont(fontFamily, "B", 24)
		r.pdf.SetTextColor(0, 0, 139)
		r.pdf.MultiCell(0, 29, r.tr(b.Text), "", "C", false)
		r.pdf.SetTextColor(0, 0, 0)
		r.pdf.Ln(20)
	case BlockLabel:
		r.pdf.SetFont(fontFamily, "", 10)
		r.pdf.MultiCell(0, 12, r.tr(b.Text), "", "L", false)
	case BlockSectionHeader:
		r.pdf.Ln(15)
		r.pdf.SetFont(fontFamily, "B", 14)
		r.pdf.MultiCell(0, 17, r.tr(b.Text), "", "L", false)
		r.pdf.Ln(10)
	case BlockParagraph:
		r.spans(b.Spans, 10, 12)
		r.pdf.Ln(12)
	case BlockBullet:
		left, top, right, _ := r.pdf.GetMargins()
		indent := 12 * float64(b.Level+1)
		r.pdf.SetLeftMargin(left + indent)
		r.pdf.SetX(left + indent - 10)
		r.pdf.SetFont(fontFamily, "", 10)
		r.pdf.Write(12, r.tr("• "))
		r.spans(b.Spans, 10, 12)
		r.pdf.Ln(12)
		r.pdf.SetMargins(left, top, right)
	case BlockTable:
		r.table(b.Rows)
	case BlockSpacer:
		r.pdf.Ln(b.Height)
	}
}

func (r *renderer) spans(spans []Span, size, lineHeight float64) {
	for _, s := range spans {
		style := ""
		if s.Bold {
			style = "B"
		}
		r.pdf.SetFont(fontFamily, style, size)
		r.pdf.Write(lineHeight, r.tr(s.Text))
	}
}

const (
	tableFontSize   = 9.0
	tableLineHeight = 11.0
	tableMaxLines   = 8
)

func (r *renderer) table(rows [][]string) {
	numCols := 0
	for _, row := range rows {
		if len(row) > numCols {
			numCols = len(row)
		}
	}
	if numCols == 0 {
		return
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, numCols)
		for j := range row {
			cells[i][j] = r.tr(spanText(SplitBold(row[j])))
		}
	}

	pageWidth, pageHeight := r.pdf.GetPageSize()
	left, _, right, bottom := r.pdf.GetMargins()
	colWidths := r.columnWidths(cells, numCols, pageWidth-left-right)

	for i, row := range cells {
		if i == 0 {
			r.pdf.SetFont(fontFamily, "B", tableFontSize)
		} else {
			r.pdf.SetFont(fontFamily, "", tableFontSize)
		}

		wrapped := make([][]string, numCols)
		maxLines := 1
		for j, cell := range row {
			wrapped[j] = r.wrap(cell, colWidths[j]-4)
			if n := len(wrapped[j]); n > maxLines {
				maxLines = n
			}
		}
		if maxLines > tableMaxLines {
			maxLines = tableMaxLines
		}

		rowHeight := float64(maxLines)*tableLineHeight + 4
		startY := r.pdf.GetY()
		if startY+rowHeight > pageHeight-bottom {
			r.pdf.AddPage()
			startY = r.pdf.GetY()
		}

		x := left
		for j := range row {
			if i == 0 {
				r.pdf.SetFillColor(230, 230, 230)
				r.pdf.Rect(x, startY, colWidths[j], rowHeight, "FD")
			} else {
				r.pdf.Rect(x, startY, colWidths[j], rowHeight, "D")
			}
			for k, line := range wrapped[j] {
				if k >= maxLines {
					break
				}
				r.pdf.SetXY(x+2, startY+2+float64(k)*tableLineHeight)
				r.pdf.CellFormat(colWidths[j]-4, tableLineHeight, line, "", 0, "L", false, 0, "")
			}
			x += colWidths[j]
		}
		r.pdf.SetXY(left, startY+rowHeight)
	}
	r.pdf.SetFillColor(255, 255, 255)
}

// columnWidths sizes columns by their widest cell, then scales to fit the page
func (r *renderer) columnWidths(rows [][]string, numCols int, pageWidth float64) []float64 {
	widths := make([]float64, numCols)
	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		r.pdf.SetFont(fontFamily, style, tableFontSize)
		for j, cell := range row {
			if w := r.pdf.GetStringWidth(cell) + 8; w > widths[j] {
				widths[j] = w
			}
		}
	}

	minWidth := 36.0
	maxWidth := pageWidth / 2
	if numCols > 2 {
		maxWidth = pageWidth / 3
	}
	total := 0.0
	for j := range widths {
		if widths[j] < minWidth {
			widths[j] = minWidth
		}
		if widths[j] > maxWidth {
			widths[j] = maxWidth
		}
		total += widths[j]
	}

	scale := pageWidth / total
	if scale < 1 || total < pageWidth*0.9 {
		for j := range widths {
			widths[j] *= scale
		}
	}
	return widths
}

// wrap breaks text into lines no wider than width using the current font
func (r *renderer) wrap(text string, width float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current == "" || r.pdf.GetStringWidth(candidate) <= width {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
