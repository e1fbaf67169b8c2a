package java

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fwojciec/jdoc"
)

// ParseError reports source whose structure cannot be recovered reliably.
type ParseError struct {
	Offset int
	Line   int
	Msg    string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

var modifiers = map[string]bool{
	"public":       true,
	"protected":    true,
	"private":      true,
	"static":       true,
	"final":        true,
	"abstract":     true,
	"synchronized": true,
	"native":       true,
	"strictfp":     true,
	"transient":    true,
	"volatile":     true,
	"default":      true,
	"sealed":       true,
}

// frame is the type body being parsed.
type frame struct {
	parent      int // span index of the enclosing type, -1 at top level
	depth       int
	typeName    string
	topLevel    bool
	isEnum      bool
	isInterface bool
	isRecord    bool
}

// header collects what has been seen of a member declaration so far.
type header struct {
	typeKeyword string // "class", "interface", "enum", "record" or "@interface"
	name        string
	last        string // last identifier outside generics and annotations
	idents      int    // identifiers other than modifiers
	modifiers   map[string]bool
}

type parser struct {
	src        string
	toks       []token
	pos        int
	lineStarts []int
	pkg        string
	spans      []jdoc.ElementSpan
}

func newParser(src string, toks []token) *parser {
	lineStarts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	return &parser{src: src, toks: toks, lineStarts: lineStarts}
}

func (p *parser) errorf(offset int, format string, args ...any) error {
	return &ParseError{Offset: offset, Line: p.lineOf(offset), Msg: fmt.Sprintf(format, args...)}
}

// lineOf returns the 1-based line holding offset.
func (p *parser) lineOf(offset int) int {
	return sort.Search(len(p.lineStarts), func(i int) bool { return p.lineStarts[i] > offset })
}

func (p *parser) eof() bool {
	return p.pos >= len(p.toks)
}

func (p *parser) cur() token {
	return p.toks[p.pos]
}

func (p *parser) peek(k int) (token, bool) {
	if p.pos+k >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos+k], true
}

// parseBody parses members until the closing brace of f, which it consumes.
// At top level it parses until the end of input.
func (p *parser) parseBody(f frame) error {
	for {
		if p.eof() {
			if f.topLevel {
				return nil
			}
			return p.errorf(len(p.src), "unclosed body of %s", f.typeName)
		}
		t := p.cur()
		switch {
		case t.is('}'):
			if f.topLevel {
				return p.errorf(t.start, "unbalanced closing brace")
			}
			p.pos++
			return nil
		case t.is(';'):
			p.pos++
		default:
			if err := p.parseMember(f); err != nil {
				return err
			}
		}
	}
}

func (p *parser) parseMember(f frame) error {
	first := p.cur()
	start := first.start
	documented := first.leadComment
	if err := p.skipAnnotations(); err != nil {
		return err
	}
	if p.eof() {
		return p.errorf(len(p.src), "annotation without declaration")
	}
	if p.cur().leadComment {
		documented = true
	}

	if f.topLevel && (p.cur().isIdent("package") || p.cur().isIdent("import")) {
		return p.parseDirective()
	}

	h := header{modifiers: make(map[string]bool)}
	for {
		if p.eof() {
			if f.topLevel {
				return nil
			}
			return p.errorf(len(p.src), "unexpected end of file in declaration")
		}
		t := p.cur()

		if h.typeKeyword != "" {
			switch {
			case t.is('{'):
				return p.parseTypeDecl(f, h, start, documented)
			case t.is('('):
				// record components
				if err := p.skipBalanced('(', ')'); err != nil {
					return err
				}
			case t.is('<'):
				if err := p.skipBalanced('<', '>'); err != nil {
					return err
				}
			case t.is(';'), t.is('}'):
				return p.errorf(t.start, "%s %s has no body", h.typeKeyword, h.name)
			default:
				p.pos++
			}
			continue
		}

		switch {
		case t.is('@'):
			if next, ok := p.peek(1); ok && next.isIdent("interface") {
				p.pos += 2
				h.typeKeyword = "@interface"
				if err := p.readTypeName(&h); err != nil {
					return err
				}
				continue
			}
			if err := p.skipAnnotation(); err != nil {
				return err
			}
		case t.isIdent("class"), t.isIdent("interface"), t.isIdent("enum"):
			p.pos++
			h.typeKeyword = t.text
			if err := p.readTypeName(&h); err != nil {
				return err
			}
		case t.isIdent("record") && p.atRecordHeader():
			p.pos++
			h.typeKeyword = t.text
			if err := p.readTypeName(&h); err != nil {
				return err
			}
		case t.is('<'):
			if err := p.skipBalanced('<', '>'); err != nil {
				return err
			}
		case t.is('('):
			return p.parseMethod(f, h, start, documented)
		case t.is('='), t.is(';'), t.is(','):
			return p.parseField(f, h, start, documented)
		case t.is('{'):
			return p.parseBlockMember(f, h, start, documented)
		case t.is('}'):
			// Incomplete declaration; the enclosing body consumes the brace.
			return nil
		case t.kind == tokIdent:
			if modifiers[t.text] {
				h.modifiers[t.text] = true
			} else {
				h.idents++
				h.last = t.text
			}
			p.pos++
		default:
			p.pos++
		}
	}
}

// parseDirective skips a package or import declaration, recording the
// package name.
func (p *parser) parseDirective() error {
	isPackage := p.cur().isIdent("package")
	start := p.cur().start
	p.pos++
	var name strings.Builder
	for !p.eof() && !p.cur().is(';') {
		if isPackage {
			name.WriteString(p.cur().text)
		}
		p.pos++
	}
	if p.eof() {
		return p.errorf(start, "unterminated directive")
	}
	p.pos++
	if isPackage {
		p.pkg = name.String()
	}
	return nil
}

func (p *parser) parseTypeDecl(f frame, h header, start int, documented bool) error {
	kind := jdoc.KindClass
	switch h.typeKeyword {
	case "interface", "@interface":
		kind = jdoc.KindInterface
	case "enum":
		kind = jdoc.KindEnum
	}
	idx := p.addSpan(f, kind, h.name, start, documented)
	p.spans[idx].SignatureEnd = p.cur().start
	p.pos++

	child := frame{
		parent:      idx,
		depth:       f.depth + 1,
		typeName:    h.name,
		isEnum:      kind == jdoc.KindEnum,
		isInterface: kind == jdoc.KindInterface,
		isRecord:    h.typeKeyword == "record",
	}
	if child.isEnum {
		if err := p.skipEnumConstants(); err != nil {
			return err
		}
	}
	if err := p.parseBody(child); err != nil {
		return err
	}
	p.spans[idx].End = p.toks[p.pos-1].end
	return nil
}

func (p *parser) parseMethod(f frame, h header, start int, documented bool) error {
	if f.topLevel || h.last == "" {
		return p.skipStatement()
	}
	kind := jdoc.KindMethod
	if h.idents == 1 {
		// No return type before the name.
		kind = jdoc.KindConstructor
	}
	idx := p.addSpan(f, kind, h.last, start, documented)
	if err := p.skipBalanced('(', ')'); err != nil {
		return err
	}
	for {
		if p.eof() {
			return p.errorf(len(p.src), "unexpected end of file after %s %s", kind, h.last)
		}
		t := p.cur()
		switch {
		case t.is('{'):
			p.spans[idx].SignatureEnd = t.start
			if err := p.skipBalanced('{', '}'); err != nil {
				return err
			}
			p.spans[idx].End = p.toks[p.pos-1].end
			return nil
		case t.is(';'):
			p.spans[idx].SignatureEnd = t.start
			p.spans[idx].End = t.end
			p.pos++
			return nil
		case t.isIdent("default"):
			// annotation element default value
			p.spans[idx].SignatureEnd = t.start
			if err := p.skipToSemicolon(); err != nil {
				return err
			}
			p.spans[idx].End = p.toks[p.pos-1].end
			return nil
		case t.is('@'):
			if err := p.skipAnnotation(); err != nil {
				return err
			}
		case t.is('}'):
			return p.errorf(t.start, "%s %s has no body", kind, h.last)
		default:
			p.pos++
		}
	}
}

func (p *parser) parseField(f frame, h header, start int, documented bool) error {
	if f.topLevel || h.last == "" {
		return p.skipStatement()
	}
	kind := jdoc.KindField
	if (h.modifiers["static"] && h.modifiers["final"]) || f.isInterface {
		kind = jdoc.KindConstant
	}
	idx := p.addSpan(f, kind, h.last, start, documented)
	p.spans[idx].SignatureEnd = p.cur().start
	if err := p.skipToSemicolon(); err != nil {
		return err
	}
	p.spans[idx].End = p.toks[p.pos-1].end
	return nil
}

// parseBlockMember handles a '{' reached without a type keyword or a
// parameter list: initializer blocks, record compact constructors and
// unknown top-level blocks such as module declarations.
func (p *parser) parseBlockMember(f frame, h header, start int, documented bool) error {
	if f.isRecord && h.idents == 1 && h.last == f.typeName {
		idx := p.addSpan(f, jdoc.KindConstructor, h.last, start, documented)
		p.spans[idx].SignatureEnd = p.cur().start
		if err := p.skipBalanced('{', '}'); err != nil {
			return err
		}
		p.spans[idx].End = p.toks[p.pos-1].end
		return nil
	}
	return p.skipBalanced('{', '}')
}

func (p *parser) addSpan(f frame, kind jdoc.ElementKind, name string, start int, documented bool) int {
	p.spans = append(p.spans, jdoc.ElementSpan{
		Kind:               kind,
		Name:               name,
		Start:              start,
		End:                start,
		SignatureEnd:       start,
		Line:               p.lineOf(start),
		HasExistingComment: documented,
		Depth:              f.depth,
		Parent:             f.parent,
	})
	return len(p.spans) - 1
}

func (p *parser) readTypeName(h *header) error {
	if p.eof() || p.cur().kind != tokIdent {
		offset := len(p.src)
		if !p.eof() {
			offset = p.cur().start
		}
		return p.errorf(offset, "expected a name after %s", h.typeKeyword)
	}
	h.name = p.cur().text
	p.pos++
	return nil
}

// atRecordHeader reports whether the contextual keyword "record" at the
// current position starts a record declaration.
func (p *parser) atRecordHeader() bool {
	name, ok := p.peek(1)
	if !ok || name.kind != tokIdent {
		return false
	}
	next, ok := p.peek(2)
	return ok && (next.is('(') || next.is('<'))
}

func (p *parser) skipAnnotations() error {
	for !p.eof() && p.cur().is('@') {
		if next, ok := p.peek(1); ok && next.isIdent("interface") {
			return nil
		}
		if err := p.skipAnnotation(); err != nil {
			return err
		}
	}
	return nil
}

// skipAnnotation consumes '@' Name ('.' Name)* and an optional argument list.
func (p *parser) skipAnnotation() error {
	at := p.cur()
	p.pos++
	if p.eof() || p.cur().kind != tokIdent {
		return p.errorf(at.start, "malformed annotation")
	}
	p.pos++
	for !p.eof() && p.cur().is('.') {
		if next, ok := p.peek(1); !ok || next.kind != tokIdent {
			break
		}
		p.pos += 2
	}
	if !p.eof() && p.cur().is('(') {
		return p.skipBalanced('(', ')')
	}
	return nil
}

// skipEnumConstants consumes the constant list at the start of an enum
// body, up to and including the ';' that ends it. Constant bodies are
// skipped whole.
func (p *parser) skipEnumConstants() error {
	for !p.eof() {
		t := p.cur()
		switch {
		case t.is(';'):
			p.pos++
			return nil
		case t.is('}'):
			return nil
		case t.is('('):
			if err := p.skipBalanced('(', ')'); err != nil {
				return err
			}
		case t.is('{'):
			if err := p.skipBalanced('{', '}'); err != nil {
				return err
			}
		default:
			p.pos++
		}
	}
	return p.errorf(len(p.src), "unexpected end of file in enum constants")
}

// skipBalanced consumes from the current open token through its matching
// close token.
func (p *parser) skipBalanced(open, close byte) error {
	start := p.cur().start
	depth := 0
	for ; !p.eof(); p.pos++ {
		t := p.cur()
		switch {
		case t.is(open):
			depth++
		case t.is(close):
			depth--
			if depth == 0 {
				p.pos++
				return nil
			}
		}
	}
	return p.errorf(start, "unbalanced %q", open)
}

// skipToSemicolon consumes through the next ';' outside nested brackets.
// A '}' closing the enclosing body stops it without being consumed.
func (p *parser) skipToSemicolon() error {
	start := p.cur().start
	depth := 0
	for ; !p.eof(); p.pos++ {
		t := p.cur()
		switch {
		case t.is('('), t.is('['), t.is('{'):
			depth++
		case t.is(')'), t.is(']'), t.is('}'):
			if depth == 0 {
				if t.is('}') {
					return nil
				}
				return p.errorf(t.start, "unbalanced %q", t.text)
			}
			depth--
		case t.is(';') && depth == 0:
			p.pos++
			return nil
		}
	}
	return p.errorf(start, "declaration not terminated")
}

// skipStatement consumes an unrecognized construct: through the next ';'
// or through a block, whichever closes first at the outer level.
func (p *parser) skipStatement() error {
	start := p.cur().start
	depth := 0
	for ; !p.eof(); p.pos++ {
		t := p.cur()
		switch {
		case t.is('('), t.is('['), t.is('{'):
			depth++
		case t.is(')'), t.is(']'), t.is('}'):
			if depth == 0 {
				if t.is('}') {
					return nil
				}
				return p.errorf(t.start, "unbalanced %q", t.text)
			}
			depth--
			if depth == 0 && t.is('}') {
				p.pos++
				return nil
			}
		case t.is(';') && depth == 0:
			p.pos++
			return nil
		}
	}
	if depth > 0 {
		return p.errorf(start, "unbalanced brackets")
	}
	return nil
}
