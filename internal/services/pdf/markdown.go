package pdf

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ParseMarkdown converts memo markdown into blocks using a full CommonMark
// parser. Tables become Table blocks and list items become bullets.
func ParseMarkdown(markdown string) []Block {
	md := goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))
	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	p := &markdownParser{source: source}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		p.block(n, 0)
	}
	return p.blocks
}

type markdownParser struct {
	source []byte
	blocks []Block
}

func (p *markdownParser) block(n ast.Node, level int) {
	switch node := n.(type) {
	case *ast.Heading:
		p.blocks = append(p.blocks, Block{Kind: BlockSectionHeader, Text: strings.TrimSpace(spanText(p.spans(node)))})
	case *ast.Paragraph, *ast.TextBlock:
		spans := p.spans(node)
		if len(spans) == 0 {
			return
		}
		p.blocks = append(p.blocks,
			Block{Kind: BlockParagraph, Spans: spans},
			Block{Kind: BlockSpacer, Height: paragraphSpacing},
		)
	case *ast.List:
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			p.listItem(item, level)
		}
		p.blocks = append(p.blocks, Block{Kind: BlockSpacer, Height: paragraphSpacing})
	case *extast.Table:
		p.table(node)
	case *ast.FencedCodeBlock:
		p.code(node.Lines())
	case *ast.CodeBlock:
		p.code(node.Lines())
	case *ast.ThematicBreak:
		p.blocks = append(p.blocks, Block{Kind: BlockSpacer, Height: titleSpacing})
	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			p.block(c, level)
		}
	}
}

func (p *markdownParser) listItem(item ast.Node, level int) {
	var spans []Span
	var nested []ast.Node
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*ast.List); ok {
			nested = append(nested, c)
			continue
		}
		if len(spans) > 0 {
			spans = append(spans, Span{Text: " "})
		}
		spans = append(spans, p.spans(c)...)
	}
	p.blocks = append(p.blocks, Block{Kind: BlockBullet, Spans: spans, Level: level})
	for _, list := range nested {
		for sub := list.FirstChild(); sub != nil; sub = sub.NextSibling() {
			p.listItem(sub, level+1)
		}
	}
}

func (p *markdownParser) table(t *extast.Table) {
	var rows [][]string
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		switch r.(type) {
		case *extast.TableHeader, *extast.TableRow:
		default:
			continue
		}
		var row []string
		for cell := r.FirstChild(); cell != nil; cell = cell.NextSibling() {
			row = append(row, strings.TrimSpace(spanText(p.spans(cell))))
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return
	}
	p.blocks = append(p.blocks,
		Block{Kind: BlockTable, Rows: rows},
		Block{Kind: BlockSpacer, Height: paragraphSpacing},
	)
}

func (p *markdownParser) code(lines *text.Segments) {
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(p.source)), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		p.blocks = append(p.blocks, Block{Kind: BlockParagraph, Spans: []Span{{Text: line}}})
	}
	p.blocks = append(p.blocks, Block{Kind: BlockSpacer, Height: paragraphSpacing})
}

// spans flattens the inline children of n, tracking strong emphasis
func (p *markdownParser) spans(n ast.Node) []Span {
	var out []Span
	var walk func(n ast.Node, bold bool)
	add := func(s string, bold bool) {
		if s == "" {
			return
		}
		if k := len(out); k > 0 && out[k-1].Bold == bold {
			out[k-1].Text += s
			return
		}
		out = append(out, Span{Text: s, Bold: bold})
	}
	walk = func(n ast.Node, bold bool) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				add(string(node.Segment.Value(p.source)), bold)
				if node.SoftLineBreak() || node.HardLineBreak() {
					add(" ", bold)
				}
			case *ast.String:
				add(string(node.Value), bold)
			case *ast.CodeSpan:
				walk(node, bold)
			case *ast.AutoLink:
				add(string(node.URL(p.source)), bold)
			case *ast.Emphasis:
				walk(node, bold || node.Level == 2)
			case *ast.RawHTML, *ast.Image:
			default:
				walk(node, bold)
			}
		}
	}
	walk(n, false)
	return out
}

func spanText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
