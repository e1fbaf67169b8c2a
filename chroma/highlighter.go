package chroma

import (
	"errors"
	"strings"

	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/fwojciec/jdoc"
)

// Compile-time interface verification.
var _ jdoc.Highlighter = (*Highlighter)(nil)

// Default formatter and style names.
const (
	DefaultFormatter = "terminal256"
	DefaultStyle     = "monokai"
)

// Highlighter renders source with ANSI escapes through a chroma formatter.
type Highlighter struct {
	formatter chromalib.Formatter
	style     *chromalib.Style
}

// NewHighlighter creates a Highlighter for the named chroma formatter and
// style. Empty names select the defaults.
func NewHighlighter(formatter, style string) (*Highlighter, error) {
	if formatter == "" {
		formatter = DefaultFormatter
	}
	if style == "" {
		style = DefaultStyle
	}
	f, ok := formatters.Registry[formatter]
	if !ok {
		return nil, errors.New("chroma: unknown formatter " + formatter)
	}
	s, ok := styles.Registry[style]
	if !ok {
		return nil, errors.New("chroma: unknown style " + style)
	}
	return &Highlighter{formatter: f, style: s}, nil
}

// Highlight returns source highlighted for language. Unsupported languages
// and empty sources are returned unchanged.
func (h *Highlighter) Highlight(language, source string) (string, error) {
	if source == "" {
		return "", nil
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return source, nil
	}

	// Coalesce for better performance with consecutive tokens of the same type
	lexer = chromalib.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, iterator); err != nil {
		return "", err
	}
	return b.String(), nil
}
