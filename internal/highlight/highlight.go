// Package highlight renders paste content as HTML lines, optionally
// syntax highlighted by file extension.
//
// Highlighted spans use chroma's short CSS class names, so pages must wrap
// the lines in an element with class "chroma" and link the stylesheet from CSS.
package highlight

import (
	"bytes"
	"errors"
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// StyleName is the chroma style the stylesheet is generated from.
const StyleName = "onedark"

// ErrUnknownLanguage is returned when no lexer matches the extension.
var ErrUnknownLanguage = errors.New("highlight: unknown language")

var (
	cssOnce sync.Once
	css     []byte
)

// CSS returns the stylesheet for highlighted output. It is built once.
func CSS() []byte {
	cssOnce.Do(func() {
		var buf bytes.Buffer
		formatter := chromahtml.New(chromahtml.WithClasses(true))
		if err := formatter.WriteCSS(&buf, styles.Get(StyleName)); err != nil {
			// WriteCSS only fails on writer errors; a bytes.Buffer has none.
			panic(err)
		}
		css = buf.Bytes()
	})
	return css
}

// Lexer returns the lexer for ext, e.g. "go", "rs" or "py".
func Lexer(ext string) (chroma.Lexer, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return nil, ErrUnknownLanguage
	}

	lexer := lexers.Get(ext)
	if lexer == nil {
		lexer = lexers.Match("paste." + ext)
	}
	if lexer == nil {
		return nil, ErrUnknownLanguage
	}
	return chroma.Coalesce(lexer), nil
}

// Lines highlights source using the lexer for ext and returns one HTML
// fragment per source line.
func Lines(source, ext string) ([]template.HTML, error) {
	lexer, err := Lexer(ext)
	if err != nil {
		return nil, err
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil, err
	}

	var (
		lines []template.HTML
		cur   strings.Builder
	)
	for _, token := range iterator.Tokens() {
		for i, part := range strings.Split(token.Value, "\n") {
			if i > 0 {
				lines = append(lines, template.HTML(cur.String()))
				cur.Reset()
			}
			writeSpan(&cur, token.Type, part)
		}
	}
	lines = append(lines, template.HTML(cur.String()))

	// Lexers may append a final newline the source did not have.
	if !strings.HasSuffix(source, "\n") && len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// Plain escapes source and returns one HTML fragment per line.
func Plain(source string) []template.HTML {
	raw := strings.Split(source, "\n")
	lines := make([]template.HTML, len(raw))
	for i, line := range raw {
		lines[i] = template.HTML(html.EscapeString(line))
	}
	return lines
}

func writeSpan(b *strings.Builder, tokenType chroma.TokenType, text string) {
	if text == "" {
		return
	}

	class := chroma.StandardTypes[tokenType]
	if class == "" {
		b.WriteString(html.EscapeString(text))
		return
	}

	b.WriteString(`<span class="`)
	b.WriteString(class)
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(text))
	b.WriteString(`</span>`)
}
