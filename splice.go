package jdoc

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Splice errors.
var (
	ErrInlineDeclaration = errors.New("declaration shares its line with other code")
	ErrBodyTerminator    = errors.New("comment body contains */")
	ErrEmptyBody         = errors.New("comment body is empty")
)

const byteOrderMark = "\uFEFF"

// Edit inserts Text at Offset of the original text.
type Edit struct {
	Offset int
	Text   string
}

// InsertionPoint returns where a comment for span goes: the start of the
// line holding span.Start (after a leading byte order mark), the leading
// whitespace of that line and its line terminator. ok is false when other
// code precedes the declaration on its line.
func InsertionPoint(text string, span ElementSpan) (offset int, indent, eol string, ok bool) {
	if span.Start < 0 || span.Start > len(text) {
		return 0, "", "", false
	}
	offset = strings.LastIndexByte(text[:span.Start], '\n') + 1
	if offset == 0 && strings.HasPrefix(text[:span.Start], byteOrderMark) {
		offset = len(byteOrderMark)
	}
	indent = text[offset:span.Start]
	if strings.Trim(indent, " \t") != "" {
		return offset, "", "", false
	}
	eol = "\n"
	if i := strings.IndexByte(text[span.Start:], '\n'); i > 0 {
		if text[span.Start+i-1] == '\r' {
			eol = "\r\n"
		}
	} else if i < 0 && strings.Contains(text, "\r\n") {
		eol = "\r\n"
	}
	return offset, indent, eol, true
}

// Splice renders body as a comment in the given format and returns the edit
// that places it above span. The comment copies the indentation and line
// terminator of the declaration's line.
func Splice(text string, span ElementSpan, format CommentFormat, body string) (Edit, error) {
	offset, indent, eol, ok := InsertionPoint(text, span)
	if !ok {
		return Edit{}, ErrInlineDeclaration
	}
	body = strings.ReplaceAll(body, "\r\n", "\n")
	if strings.TrimSpace(body) == "" {
		return Edit{}, ErrEmptyBody
	}
	if format == FormatJavaDoc && strings.Contains(body, "*/") {
		return Edit{}, ErrBodyTerminator
	}

	var sb strings.Builder
	lines := strings.Split(body, "\n")
	switch format {
	case FormatLineComment:
		for _, line := range lines {
			sb.WriteString(indent)
			sb.WriteString("//")
			if line != "" {
				sb.WriteString(" ")
				sb.WriteString(line)
			}
			sb.WriteString(eol)
		}
	default:
		sb.WriteString(indent + "/**" + eol)
		for _, line := range lines {
			sb.WriteString(indent)
			sb.WriteString(" *")
			if line != "" {
				sb.WriteString(" ")
				sb.WriteString(line)
			}
			sb.WriteString(eol)
		}
		sb.WriteString(indent + " */" + eol)
	}
	return Edit{Offset: offset, Text: sb.String()}, nil
}

// EditPlan is a set of insertions sorted by descending offset.
type EditPlan []Edit

// NewEditPlan sorts edits for application. Edits sharing an offset end up
// in the text in the order they were given.
func NewEditPlan(edits ...Edit) EditPlan {
	plan := make(EditPlan, len(edits))
	copy(plan, edits)
	slices.Reverse(plan)
	slices.SortStableFunc(plan, func(a, b Edit) int {
		return b.Offset - a.Offset
	})
	return plan
}

// Apply inserts every edit into text, highest offset first, so each offset
// still refers to the original text when it is applied.
func (p EditPlan) Apply(text string) (string, error) {
	buf := []byte(text)
	prev := len(text)
	for i, e := range p {
		if e.Offset < 0 || e.Offset > len(text) {
			return "", fmt.Errorf("edit %d: offset %d outside text of length %d", i, e.Offset, len(text))
		}
		if e.Offset > prev {
			return "", fmt.Errorf("edit %d: offset %d after previous offset %d", i, e.Offset, prev)
		}
		prev = e.Offset
		buf = slices.Insert(buf, e.Offset, []byte(e.Text)...)
	}
	return string(buf), nil
}

// Len returns the total number of inserted bytes.
func (p EditPlan) Len() int {
	n := 0
	for _, e := range p {
		n += len(e.Text)
	}
	return n
}

// InsertedLines recovers the insertions that turn original into final,
// matching whole lines. ok is false when final is not original with lines
// inserted.
func InsertedLines(original, final string) (edits []Edit, ok bool) {
	orig := strings.SplitAfter(original, "\n")
	var i, offset int
	var pending strings.Builder
	flush := func() {
		if pending.Len() > 0 {
			edits = append(edits, Edit{Offset: offset, Text: pending.String()})
			pending.Reset()
		}
	}
	for _, line := range strings.SplitAfter(final, "\n") {
		if line == "" {
			continue
		}
		if i < len(orig) && line == orig[i] {
			flush()
			offset += len(line)
			i++
			continue
		}
		pending.WriteString(line)
	}
	flush()
	for ; i < len(orig); i++ {
		if orig[i] != "" {
			return nil, false
		}
	}
	return edits, true
}
