package pdf

import "strings"

// LineKind classifies one raw markdown line in memo mode
type LineKind int

const (
	LineBlank LineKind = iota
	LineHeader
	LineParagraph
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineHeader:
		return "header"
	default:
		return "paragraph"
	}
}

// Line is a classified memo line with its display text
type Line struct {
	Kind LineKind
	Text string
}

// ClassifyLine decides how one line of the memo is rendered.
// The header check runs on the raw line, so indented "##" is body text.
func ClassifyLine(line string) Line {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return Line{Kind: LineBlank}
	}
	if strings.HasPrefix(line, "##") {
		return Line{Kind: LineHeader, Text: strings.TrimSpace(strings.ReplaceAll(line, "#", ""))}
	}
	return Line{Kind: LineParagraph, Text: strings.TrimSpace(line)}
}

// Span is a run of text sharing one weight
type Span struct {
	Text string
	Bold bool
}

const boldMarker = "**"

// SplitBold pairs "**" markers left to right, shortest match first.
// A trailing unpaired marker stays in the text as typed.
func SplitBold(text string) []Span {
	var spans []Span
	appendSpan := func(s string, bold bool) {
		if s == "" {
			return
		}
		if n := len(spans); n > 0 && spans[n-1].Bold == bold {
			spans[n-1].Text += s
			return
		}
		spans = append(spans, Span{Text: s, Bold: bold})
	}

	rest := text
	for {
		open := strings.Index(rest, boldMarker)
		if open < 0 {
			break
		}
		end := strings.Index(rest[open+len(boldMarker):], boldMarker)
		if end < 0 {
			break
		}
		end += open + len(boldMarker)

		appendSpan(rest[:open], false)
		appendSpan(rest[open+len(boldMarker):end], true)
		rest = rest[end+len(boldMarker):]
	}
	appendSpan(rest, false)
	return spans
}

// BlockKind identifies a renderable element of the document
type BlockKind int

const (
	BlockTitle BlockKind = iota
	BlockLabel
	BlockSectionHeader
	BlockParagraph
	BlockBullet
	BlockTable
	BlockSpacer
)

// Block is one element of the rendered document
type Block struct {
	Kind   BlockKind
	Text   string     // title, label and section header text
	Spans  []Span     // paragraph and bullet content
	Rows   [][]string // table cells, header row first
	Height float64    // spacer height in points
	Level  int        // bullet nesting depth
}

const (
	paragraphSpacing = 6.0
	titleSpacing     = 12.0

	confidentialLabel = "CONFIDENTIAL REPORT"
)

// ParseMemo converts memo markdown into blocks line by line. Tables,
// links and code stay literal paragraph text. Headers are set in bold
// throughout, so paired "**" markers in them are dropped.
func ParseMemo(markdown string) []Block {
	var blocks []Block
	for _, raw := range strings.Split(markdown, "\n") {
		line := ClassifyLine(raw)
		switch line.Kind {
		case LineBlank:
			continue
		case LineHeader:
			blocks = append(blocks, Block{Kind: BlockSectionHeader, Text: spanText(SplitBold(line.Text))})
		default:
			blocks = append(blocks,
				Block{Kind: BlockParagraph, Spans: SplitBold(line.Text)},
				Block{Kind: BlockSpacer, Height: paragraphSpacing},
			)
		}
	}
	return blocks
}

// documentBlocks prefixes the parsed body with the fixed memo heading
func documentBlocks(ticker string, body []Block) []Block {
	blocks := make([]Block, 0, len(body)+3)
	blocks = append(blocks,
		Block{Kind: BlockTitle, Text: "Investment Memo: " + ticker},
		Block{Kind: BlockLabel, Text: confidentialLabel},
		Block{Kind: BlockSpacer, Height: titleSpacing},
	)
	return append(blocks, body...)
}
