package docx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scientify/docx/docxtest"
)

func TestParse_Paragraphs(t *testing.T) {
	doc, err := Parse(docxtest.Paragraphs("First paragraph", "Second & last"))
	require.NoError(t, err)

	assert.Equal(t, []string{"First paragraph", "Second & last"}, doc.Paragraphs())
}

func TestParse_StylesRunsAndTables(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Methods</w:t></w:r></w:p>` +
		`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r><w:r><w:rPr><w:i w:val="0"/></w:rPr><w:t xml:space="preserve"> plain</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/></w:numPr></w:pPr><w:r><w:t>item</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>a1</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>b1</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`

	doc, err := Parse(docxtest.Build(body))
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 4)

	heading := doc.Blocks[0].Paragraph
	require.NotNil(t, heading)
	assert.Equal(t, 2, HeadingLevel(heading.Style))

	runs := doc.Blocks[1].Paragraph.Runs
	require.Len(t, runs, 2)
	assert.True(t, runs[0].Bold)
	assert.False(t, runs[1].Italic)
	assert.Equal(t, " plain", runs[1].Text)

	assert.True(t, doc.Blocks[2].Paragraph.ListItem)

	table := doc.Blocks[3].Table
	require.NotNil(t, table)
	assert.Equal(t, [][]string{{"a1", "b1"}}, table.Rows)

	// Tabellenzellen zählen nicht als Absätze
	assert.Equal(t, []string{"Methods", "bold plain", "item"}, doc.Paragraphs())
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("not a zip"))
	assert.Error(t, err)
}

func TestHeadingLevel(t *testing.T) {
	cases := map[string]int{
		"Title":     1,
		"Subtitle":  2,
		"Heading1":  1,
		"heading 3": 3,
		"Normal":    0,
		"Heading9":  0,
	}
	for style, want := range cases {
		assert.Equal(t, want, HeadingLevel(style), style)
	}
}
