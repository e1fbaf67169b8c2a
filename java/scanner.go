// Package java locates documentable declarations in Java source text
// without a full compiler front end.
package java

import "github.com/fwojciec/jdoc"

// Compile-time interface verification.
var _ jdoc.Scanner = (*Scanner)(nil)

// Scanner implements jdoc.Scanner with a literal- and comment-aware lexer
// and a recursive parser over type bodies. Method bodies and initializers
// are skipped by bracket matching, so local and anonymous classes, lambdas
// and local variables never become elements.
type Scanner struct{}

// NewScanner creates a new Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan returns the documentable elements of text in order of start offset.
func (s *Scanner) Scan(text string) (*jdoc.Structure, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, &jdoc.Error{Kind: jdoc.ErrUnparseableSource, Err: err}
	}
	p := newParser(text, toks)
	if err := p.parseBody(frame{parent: -1, topLevel: true}); err != nil {
		return nil, &jdoc.Error{Kind: jdoc.ErrUnparseableSource, Err: err}
	}
	return &jdoc.Structure{Package: p.pkg, Elements: p.spans}, nil
}
