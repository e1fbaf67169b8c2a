package generation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/jdoc"
)

// Validation errors for generated comment text.
var (
	ErrEmptyComment      = errors.New("comment is empty")
	ErrCommentTooLong    = errors.New("comment exceeds length budget")
	ErrCommentTerminator = errors.New("comment contains */")
	ErrUnicodeEscape     = errors.New(`comment contains a \u escape`)
)

// Normalize strips delimiters and formatting a model may wrap around a
// comment body: Markdown code fences, an enclosing /** */ or /* */, leading
// " * " gutters and "//" prefixes. Blank lines at either end are dropped and
// runs of blank lines collapse to one.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.TrimSpace(strings.Join(kept, "\n"))

	wrapped := false
	switch {
	case strings.HasPrefix(text, "/**"):
		text = text[3:]
		wrapped = true
	case strings.HasPrefix(text, "/*"):
		text = text[2:]
		wrapped = true
	}
	if strings.HasSuffix(text, "*/") {
		text = text[:len(text)-2]
		wrapped = true
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	switch {
	case wrapped || allPrefixed(lines, "*"):
		for i, line := range lines {
			if line == "*" {
				lines[i] = ""
			} else if strings.HasPrefix(line, "* ") {
				lines[i] = line[2:]
			} else if strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "*/") {
				lines[i] = line[1:]
			}
		}
	case allPrefixed(lines, "//"):
		for i, line := range lines {
			lines[i] = strings.TrimPrefix(strings.TrimPrefix(line, "//"), " ")
		}
	}

	var out []string
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// allPrefixed reports whether every non-empty line starts with prefix and at
// least one line is non-empty.
func allPrefixed(lines []string, prefix string) bool {
	seen := false
	for _, line := range lines {
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, prefix) {
			return false
		}
		seen = true
	}
	return seen
}

// Validate checks a normalized body against the format and length budget.
func Validate(body string, format jdoc.CommentFormat, maxLength int) error {
	switch {
	case strings.TrimSpace(body) == "":
		return ErrEmptyComment
	case maxLength > 0 && len(body) > maxLength:
		return fmt.Errorf("%w: %d > %d bytes", ErrCommentTooLong, len(body), maxLength)
	case format == jdoc.FormatJavaDoc && strings.Contains(body, "*/"):
		return ErrCommentTerminator
	case strings.Contains(body, `\u`):
		return ErrUnicodeEscape
	}
	return nil
}
