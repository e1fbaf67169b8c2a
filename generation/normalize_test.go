package generation_test

import (
	"testing"

	"github.com/fwojciec/jdoc"
	"github.com/fwojciec/jdoc/generation"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain text", "  Returns the size.  \n", "Returns the size."},
		{"javadoc block", "/**\n * Returns the size.\n *\n * @return size\n */", "Returns the size.\n\n@return size"},
		{"single line javadoc", "/** Returns the size. */", "Returns the size."},
		{"code fence", "```java\nReturns the size.\n```", "Returns the size."},
		{"line comments", "// Retry limit.\n// Applies per file.", "Retry limit.\nApplies per file."},
		{"crlf", "Line one.\r\n\r\n\r\nLine two.\r\n", "Line one.\n\nLine two."},
		{"bare gutters", "* First.\n* Second.", "First.\nSecond."},
		{"markdown bullet kept", "Modes:\n* fast", "Modes:\n* fast"},
		{"empty fence", "```\n```", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, generation.Normalize(tt.raw))
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, generation.Validate("Returns the size.", jdoc.FormatJavaDoc, 100))
	assert.ErrorIs(t, generation.Validate("", jdoc.FormatJavaDoc, 100), generation.ErrEmptyComment)
	assert.ErrorIs(t, generation.Validate("abcdef", jdoc.FormatJavaDoc, 5), generation.ErrCommentTooLong)
	assert.ErrorIs(t, generation.Validate("a */ b", jdoc.FormatJavaDoc, 100), generation.ErrCommentTerminator)
	assert.NoError(t, generation.Validate("a */ b", jdoc.FormatLineComment, 100))
	assert.ErrorIs(t, generation.Validate(`uses \u002a`, jdoc.FormatLineComment, 100), generation.ErrUnicodeEscape)
}
