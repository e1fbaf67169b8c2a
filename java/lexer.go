package java

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokIdent tokenKind = iota // identifiers and keywords
	tokNumber
	tokString // string literals and text blocks
	tokChar
	tokPunct // a single byte of punctuation or an operator character
)

// token is a code token. Comments never become tokens; a comment that
// documents the following code is recorded on that code's first token.
type token struct {
	kind        tokenKind
	start, end  int
	text        string
	leadComment bool
}

func (t token) is(punct byte) bool {
	return t.kind == tokPunct && t.text[0] == punct
}

func (t token) isIdent(name string) bool {
	return t.kind == tokIdent && t.text == name
}

// LexError reports text that cannot be tokenized.
type LexError struct {
	Offset int
	Line   int
	Msg    string
}

// Error implements the error interface.
func (e *LexError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// lex splits src into code tokens using a hand-written scanner. It
// understands line and block comments, string, char and text block literals
// with backslash escapes, so braces inside them never reach the parser.
func lex(src string) ([]token, error) {
	tokens := make([]token, 0, len(src)/4+1)
	documented := false
	i := 0
	if strings.HasPrefix(src, "\uFEFF") {
		i = len("\uFEFF")
	}

	fail := func(offset int, msg string) error {
		return &LexError{Offset: offset, Line: strings.Count(src[:offset], "\n") + 1, Msg: msg}
	}

	for i < len(src) {
		start := i
		c := src[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			i++

		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			// Line comment
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				i = len(src)
			} else {
				i += end
			}
			documented = startsLine(src, start)

		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			// Block comment; "/**" opens a doc comment unless it is "/**/"
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return nil, fail(start, "unterminated comment")
			}
			i += 2 + end + 2
			isDoc := strings.HasPrefix(src[start:], "/**") && i-start > 4
			documented = isDoc && startsLine(src, start)

		case c == '"' && strings.HasPrefix(src[i:], `"""`):
			// Text block
			i += 3
			closed := false
			for i < len(src) {
				if src[i] == '\\' && i+1 < len(src) {
					i += 2
					continue
				}
				if strings.HasPrefix(src[i:], `"""`) {
					i += 3
					closed = true
					break
				}
				i++
			}
			if !closed {
				return nil, fail(start, "unterminated text block")
			}
			tokens = append(tokens, token{kind: tokString, start: start, end: i, text: src[start:i], leadComment: documented})
			documented = false

		case c == '"' || c == '\'':
			// String or char literal (handles backslash escapes)
			end, ok := scanQuoted(src, i, c)
			if !ok {
				return nil, fail(start, "unterminated literal")
			}
			i = end
			kind := tokString
			if c == '\'' {
				kind = tokChar
			}
			tokens = append(tokens, token{kind: kind, start: start, end: i, text: src[start:i], leadComment: documented})
			documented = false

		case isIdentifierStart(c):
			i++
			for i < len(src) && isIdentifierChar(src[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, start: start, end: i, text: src[start:i], leadComment: documented})
			documented = false

		case isDigit(c):
			// Number: digits, letters, '_' and '.', plus a signed exponent
			i++
			for i < len(src) {
				d := src[i]
				if isIdentifierChar(d) || d == '.' {
					i++
					continue
				}
				if (d == '+' || d == '-') && strings.ContainsRune("eEpP", rune(src[i-1])) && !isHex(src[start:i]) {
					i++
					continue
				}
				break
			}
			tokens = append(tokens, token{kind: tokNumber, start: start, end: i, text: src[start:i], leadComment: documented})
			documented = false

		default:
			i++
			tokens = append(tokens, token{kind: tokPunct, start: start, end: i, text: src[start:i], leadComment: documented})
			documented = false
		}
	}
	return tokens, nil
}

// scanQuoted returns the offset just past the literal opened by quote at
// i. Literals may not span lines.
func scanQuoted(src string, i int, quote byte) (int, bool) {
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1, true
		case '\n':
			return i, false
		default:
			i++
		}
	}
	return i, false
}

// startsLine reports whether only blanks precede offset on its line.
func startsLine(src string, offset int) bool {
	lineStart := strings.LastIndexByte(src[:offset], '\n') + 1
	return strings.Trim(src[lineStart:offset], " \t\f\r") == ""
}

func isHex(number string) bool {
	return len(number) > 1 && number[0] == '0' && (number[1] == 'x' || number[1] == 'X')
}

// Bytes >= 0x80 are treated as identifier characters so that non-ASCII
// identifiers stay whole.
func isIdentifierStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$' || c >= 0x80
}

func isIdentifierChar(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
