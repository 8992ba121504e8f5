package report

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSyntax(t *testing.T) {
	for _, s := range []string{"off", "hljs", "CHROMA"} {
		_, err := ParseSyntax(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseSyntax("pygments")
	assert.Error(t, err)
}

func TestPlainHighlighter(t *testing.T) {
	h := NewHighlighter(SyntaxOff, "github")
	got := h.Lines("a.c", []string{"if (a < b)", ""})
	require.Len(t, got, 2)
	assert.Equal(t, "if (a &lt; b)", string(got[0]))
	assert.Equal(t, "", string(got[1]))
	assert.Equal(t, "", h.CodeClass("a.c"))

	hljs := NewHighlighter(SyntaxHLJS, "github")
	assert.Equal(t, "hljs language-fortran", hljs.CodeClass("m.F90"))
	assert.Equal(t, "hljs", hljs.CodeClass("notes.unknown"))
}

func TestChromaHighlighter(t *testing.T) {
	h := NewHighlighter(SyntaxChroma, "github")
	lines := []string{
		"int main(void) {",
		"",
		"  return a < b; // done",
		"}",
	}

	got := h.Lines("src/main.c", lines)
	require.Len(t, got, len(lines))
	assert.Equal(t, "chroma", h.CodeClass("src/main.c"))

	assert.Contains(t, string(got[0]), "<span style=\"color:")
	assert.Contains(t, string(got[0]), "main")
	assert.Empty(t, strings.TrimSpace(string(got[1])))
	assert.Contains(t, string(got[2]), "&lt;")
	assert.NotContains(t, string(got[2]), "a < b")
	for _, line := range got {
		assert.NotContains(t, string(line), "\n")
	}
}

func TestChromaHighlighter_UnknownLanguage(t *testing.T) {
	h := NewHighlighter(SyntaxChroma, "no-such-theme")
	got := h.Lines("data.unknownext", []string{"<plain>", "text"})
	require.Len(t, got, 2)
	assert.Contains(t, string(got[0]), "&lt;plain&gt;")
	assert.Contains(t, string(got[1]), "text")
}

func TestChromaHighlighter_Empty(t *testing.T) {
	assert.Empty(t, NewHighlighter(SyntaxChroma, "github").Lines("a.c", nil))
}

var tagRegex = regexp.MustCompile(`<[^>]*>`)

func TestChromaHighlighter_CarriageReturnStaysOnItsRow(t *testing.T) {
	h := NewHighlighter(SyntaxChroma, "github")
	got := h.Lines("x.c", []string{"int a;\rint b;", "int c;", "int d;"})
	require.Len(t, got, 3)

	text := func(i int) string { return tagRegex.ReplaceAllString(string(got[i]), "") }
	assert.Contains(t, text(0), "int a;")
	assert.Contains(t, text(0), "int b;")
	assert.Equal(t, "int c;", text(1))
	assert.Equal(t, "int d;", text(2))
}
