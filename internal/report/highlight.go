package report

import (
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Syntax selects how detail pages highlight source code.
type Syntax string

const (
	// SyntaxOff renders plain escaped code.
	SyntaxOff Syntax = "off"
	// SyntaxHLJS leaves highlighting to highlight.js in the browser.
	SyntaxHLJS Syntax = "hljs"
	// SyntaxChroma highlights on the server with inline colours.
	SyntaxChroma Syntax = "chroma"
)

// ParseSyntax validates a highlighting mode.
func ParseSyntax(s string) (Syntax, error) {
	switch Syntax(strings.ToLower(s)) {
	case SyntaxOff:
		return SyntaxOff, nil
	case SyntaxHLJS:
		return SyntaxHLJS, nil
	case SyntaxChroma:
		return SyntaxChroma, nil
	}
	return "", fmt.Errorf("unknown syntax mode %q (want off, hljs or chroma)", s)
}

// Themes lists the supported highlighting themes.
var Themes = []string{"github", "github-dark"}

// Highlighter renders the code cells of one detail page.
type Highlighter interface {
	// Lines returns one HTML fragment per input line.
	Lines(source string, lines []string) []template.HTML
	// CodeClass is the class attribute of the <code> elements.
	CodeClass(source string) string
}

// NewHighlighter returns the Highlighter for mode.
func NewHighlighter(mode Syntax, theme string) Highlighter {
	switch mode {
	case SyntaxChroma:
		return &chromaHighlighter{style: styles.Get(theme)}
	case SyntaxHLJS:
		return plainHighlighter{hljs: true}
	default:
		return plainHighlighter{}
	}
}

type plainHighlighter struct {
	hljs bool
}

func (h plainHighlighter) Lines(_ string, lines []string) []template.HTML {
	out := make([]template.HTML, len(lines))
	for i, l := range lines {
		out[i] = template.HTML(html.EscapeString(l))
	}
	return out
}

func (h plainHighlighter) CodeClass(source string) string {
	if !h.hljs {
		return ""
	}
	if lang := GuessLanguage(source); lang != "" {
		return "hljs language-" + lang
	}
	return "hljs"
}

type chromaHighlighter struct {
	style *chroma.Style
}

func (h *chromaHighlighter) CodeClass(string) string {
	return "chroma"
}

// Lines tokenises the lines as one document so multi-line constructs keep
// their colour, then splits the tokens back into rows.
func (h *chromaHighlighter) Lines(source string, lines []string) []template.HTML {
	out := make([]template.HTML, len(lines))
	if len(lines) == 0 {
		return out
	}

	// EnsureLF is off so a bare \r inside a line does not start a new row.
	opts := &chroma.TokeniseOptions{State: "root"}
	it, err := chromaLexer(source).Tokenise(opts, strings.Join(lines, "\n")+"\n")
	if err != nil {
		return plainHighlighter{}.Lines(source, lines)
	}

	split := chroma.SplitTokensIntoLines(it.Tokens())
	for i := range out {
		if i < len(split) {
			out[i] = h.render(split[i])
		} else {
			out[i] = template.HTML(html.EscapeString(lines[i]))
		}
	}
	return out
}

func (h *chromaHighlighter) render(toks []chroma.Token) template.HTML {
	var b strings.Builder
	for _, tok := range toks {
		value := strings.TrimRight(tok.Value, "\n")
		if value == "" {
			continue
		}
		css := entryCSS(h.style.Get(tok.Type))
		if css == "" {
			b.WriteString(html.EscapeString(value))
			continue
		}
		fmt.Fprintf(&b, `<span style="%s">%s</span>`, css, html.EscapeString(value))
	}
	return template.HTML(b.String())
}

func entryCSS(e chroma.StyleEntry) string {
	var parts []string
	if e.Colour.IsSet() {
		parts = append(parts, "color:"+e.Colour.String())
	}
	if e.Bold == chroma.Yes {
		parts = append(parts, "font-weight:bold")
	}
	if e.Italic == chroma.Yes {
		parts = append(parts, "font-style:italic")
	}
	return strings.Join(parts, ";")
}

// chromaLexer picks a lexer by file name, then by guessed language, then
// plain text.
func chromaLexer(source string) chroma.Lexer {
	lexer := lexers.Match(source)
	if lexer == nil {
		if lang := GuessLanguage(source); lang != "" {
			lexer = lexers.Get(lang)
		}
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}
