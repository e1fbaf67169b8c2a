package mock

import "github.com/fwojciec/jdoc"

// Compile-time interface verification.
var (
	_ jdoc.Scanner     = (*Scanner)(nil)
	_ jdoc.Highlighter = (*Highlighter)(nil)

	_ jdoc.LanguageDetector = (*LanguageDetector)(nil)
)

// Scanner is a mock implementation of jdoc.Scanner.
type Scanner struct {
	ScanFn func(text string) (*jdoc.Structure, error)
}

func (s *Scanner) Scan(text string) (*jdoc.Structure, error) {
	return s.ScanFn(text)
}

// Highlighter is a mock implementation of jdoc.Highlighter.
type Highlighter struct {
	HighlightFn func(language, source string) (string, error)
}

func (h *Highlighter) Highlight(language, source string) (string, error) {
	return h.HighlightFn(language, source)
}

// LanguageDetector is a mock implementation of jdoc.LanguageDetector.
type LanguageDetector struct {
	DetectFromPathFn func(path string) string
}

func (d *LanguageDetector) DetectFromPath(path string) string {
	return d.DetectFromPathFn(path)
}
