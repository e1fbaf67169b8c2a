package chroma_test

import (
	"testing"

	"github.com/fwojciec/jdoc"
	"github.com/fwojciec/jdoc/chroma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighlighter_Highlight(t *testing.T) {
	t.Parallel()

	t.Run("adds ANSI escapes to Java source", func(t *testing.T) {
		t.Parallel()

		h, err := chroma.NewHighlighter("", "")
		require.NoError(t, err)

		out, err := h.Highlight(jdoc.LanguageJava, "/** Adds. */\npublic int add(int a) { return a; }\n")

		require.NoError(t, err)
		assert.Contains(t, out, "\x1b[")
		assert.Contains(t, out, "add")
	})

	t.Run("noop formatter keeps text intact", func(t *testing.T) {
		t.Parallel()

		h, err := chroma.NewHighlighter("noop", "")
		require.NoError(t, err)

		src := "class A {}\n"
		out, err := h.Highlight(jdoc.LanguageJava, src)

		require.NoError(t, err)
		assert.Equal(t, src, out)
	})

	t.Run("unknown language is returned unchanged", func(t *testing.T) {
		t.Parallel()

		h, err := chroma.NewHighlighter("", "")
		require.NoError(t, err)

		out, err := h.Highlight("NoSuchLanguage", "x := 1")

		require.NoError(t, err)
		assert.Equal(t, "x := 1", out)
	})

	t.Run("empty source", func(t *testing.T) {
		t.Parallel()

		h, err := chroma.NewHighlighter("", "")
		require.NoError(t, err)

		out, err := h.Highlight(jdoc.LanguageJava, "")

		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestNewHighlighter_UnknownNames(t *testing.T) {
	t.Parallel()

	_, err := chroma.NewHighlighter("nope", "")
	require.Error(t, err)

	_, err = chroma.NewHighlighter("", "nope")
	require.Error(t, err)
}
