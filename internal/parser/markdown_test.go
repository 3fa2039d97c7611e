package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarkdownFrontmatter(t *testing.T) {
	content := "---\ntitle: lavoro\ndate: \"2025-03-01 10:00:00\"\n---\n\nDomanda: Di cosa ti occupi?\n\nRisposta: Programmo da 10 anni"

	doc, err := ParseMarkdown(content)
	require.NoError(t, err)
	assert.Equal(t, "lavoro", doc.Frontmatter.Title)
	assert.Equal(t, "2025-03-01 10:00:00", doc.Frontmatter.Date)
	assert.Equal(t, "lavoro", doc.Title)
	assert.True(t, strings.HasPrefix(doc.Content, "\nDomanda:"))
}

func TestParseMarkdownWithoutFrontmatter(t *testing.T) {
	doc, err := ParseMarkdown("# Viaggi\n\nIl Giappone nel 2019.")
	require.NoError(t, err)
	assert.Equal(t, "Viaggi", doc.Title)
	assert.Empty(t, doc.Frontmatter.Title)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Il Giappone nel 2019.", doc.Sections[0].Content)
}

func TestParseMarkdownInvalidYAML(t *testing.T) {
	doc, err := ParseMarkdown("---\ntitle: [unclosed\n---\n\ncorpo")
	require.NoError(t, err)
	assert.Empty(t, doc.Frontmatter.Title)
	assert.Equal(t, "\ncorpo", doc.Content)
}

func TestParseSectionsLineNumbers(t *testing.T) {
	content := "# Linee guida\n\n## Principi fondamentali\n1. a\n2. b\n\n## Da evitare\n- x\n"

	doc, err := ParseMarkdown(content)
	require.NoError(t, err)
	require.Len(t, doc.Sections, 3)

	tests := []struct {
		heading    string
		path       string
		start, end int
	}{
		{"Linee guida", "# Linee guida", 1, 1},
		{"Principi fondamentali", "# Linee guida > ## Principi fondamentali", 3, 5},
		{"Da evitare", "# Linee guida > ## Da evitare", 7, 8},
	}
	for i, tt := range tests {
		s := doc.Sections[i]
		if s.Heading != tt.heading || s.Path != tt.path || s.Start != tt.start || s.End != tt.end {
			t.Errorf("section %d = {%q %q %d %d}, want {%q %q %d %d}",
				i, s.Heading, s.Path, s.Start, s.End, tt.heading, tt.path, tt.start, tt.end)
		}
	}
}

func TestParseSectionsOffsetByFrontmatter(t *testing.T) {
	doc, err := ParseMarkdown("---\ntitle: x\n---\n## Uno\ntesto\n")
	require.NoError(t, err)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, 4, doc.Sections[0].Start)
	assert.Equal(t, 5, doc.Sections[0].End)
}

func TestFindSection(t *testing.T) {
	doc, err := ParseMarkdown("## Principi fondamentali\n1. a\n## Esempi di buone domande\n- b\n")
	require.NoError(t, err)

	s, ok := doc.FindSection(2, "esempi")
	require.True(t, ok)
	assert.Equal(t, "Esempi di buone domande", s.Heading)

	_, ok = doc.FindSection(2, "Da evitare")
	assert.False(t, ok)
}

func TestRenderFrontmatterRoundTrip(t *testing.T) {
	header, err := RenderFrontmatter(Frontmatter{Title: "tempo libero", Date: "2025-03-01 10:00:00"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(header, "---\n"))
	assert.True(t, strings.HasSuffix(header, "---\n\n"))

	doc, err := ParseMarkdown(header + "corpo")
	require.NoError(t, err)
	assert.Equal(t, "tempo libero", doc.Frontmatter.Title)
	assert.Equal(t, "2025-03-01 10:00:00", doc.Frontmatter.Date)
	assert.Equal(t, "\ncorpo", doc.Content)
}
