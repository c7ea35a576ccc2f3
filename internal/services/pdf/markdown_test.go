package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkdown(t *testing.T) {
	memo := `## 3. Financial Analysis

| Metric | Value |
| :--- | :--- |
| **P/E Ratio** | 28.1 |

- **Recommendation:** BUY
- Thesis
  - nested point

Narrative with *italic* and ` + "`code`" + `.
`

	blocks := ParseMarkdown(memo)

	var kinds []BlockKind
	for _, b := range blocks {
		kinds = append(kinds, b.Kind)
	}
	assert.Equal(t, []BlockKind{
		BlockSectionHeader,
		BlockTable, BlockSpacer,
		BlockBullet, BlockBullet, BlockBullet, BlockSpacer,
		BlockParagraph, BlockSpacer,
	}, kinds)

	assert.Equal(t, "3. Financial Analysis", blocks[0].Text)

	require.Len(t, blocks[1].Rows, 2)
	assert.Equal(t, []string{"Metric", "Value"}, blocks[1].Rows[0])
	assert.Equal(t, []string{"P/E Ratio", "28.1"}, blocks[1].Rows[1])

	assert.Equal(t, []Span{{Text: "Recommendation:", Bold: true}, {Text: " BUY"}}, blocks[3].Spans)
	assert.Equal(t, 0, blocks[4].Level)
	assert.Equal(t, 1, blocks[5].Level)
	assert.Equal(t, "nested point", spanText(blocks[5].Spans))

	assert.Equal(t, "Narrative with italic and code.", spanText(blocks[7].Spans))
}

func TestParseMarkdown_Empty(t *testing.T) {
	assert.Empty(t, ParseMarkdown(""))
}
