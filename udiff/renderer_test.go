package udiff_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/jdoc"
	"github.com/fwojciec/jdoc/udiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// removedLines returns the hunk lines of patch that delete content.
func removedLines(patch string) []string {
	var out []string
	for _, line := range strings.Split(patch, "\n") {
		if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "--- ") {
			out = append(out, line)
		}
	}
	return out
}

// applyPatch applies a single-file patch to original with go-gitdiff.
func applyPatch(t *testing.T, patch, original string) string {
	t.Helper()
	files, _, err := gitdiff.Parse(strings.NewReader(patch))
	require.NoError(t, err)
	require.Len(t, files, 1)
	var out bytes.Buffer
	require.NoError(t, gitdiff.Apply(&out, strings.NewReader(original), files[0]))
	return out.String()
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	t.Run("renders insertion hunks with relative paths", func(t *testing.T) {
		t.Parallel()

		root := filepath.FromSlash("/work/project")
		outcomes := []*jdoc.FileOutcome{{
			Path:         filepath.Join(root, "src", "A.java"),
			OriginalText: "class A {\n    int x;\n}\n",
			FinalText:    "class A {\n    /** The x. */\n    int x;\n}\n",
		}}

		patch := udiff.NewRenderer(root).Render(outcomes)

		assert.Contains(t, patch, "diff --git a/src/A.java b/src/A.java\n")
		assert.Contains(t, patch, "--- a/src/A.java\n")
		assert.Contains(t, patch, "+++ b/src/A.java\n")
		assert.Contains(t, patch, "+    /** The x. */\n")
		assert.Empty(t, removedLines(patch))
	})

	t.Run("adjacent comments stay insertion only", func(t *testing.T) {
		t.Parallel()

		original := "class A {\n    int x;\n\n    void m() {}\n}\n"
		final := "/**\n * A.\n */\nclass A {\n    // The x.\n    int x;\n\n    /**\n     */\n    void m() {}\n}\n"
		outcomes := []*jdoc.FileOutcome{{Path: "A.java", OriginalText: original, FinalText: final}}

		patch := udiff.NewRenderer("").Render(outcomes)

		assert.Empty(t, removedLines(patch))
		assert.Contains(t, patch, " class A {\n")
		assert.Equal(t, final, applyPatch(t, patch, original))
	})

	t.Run("uses the edits carried by the outcome", func(t *testing.T) {
		t.Parallel()

		original := "class A {\n    int x;\n}\n"
		classEdit, err := jdoc.Splice(original, jdoc.ElementSpan{Start: 0}, jdoc.FormatJavaDoc, "An A.")
		require.NoError(t, err)
		fieldEdit, err := jdoc.Splice(original, jdoc.ElementSpan{Start: strings.Index(original, "int x")}, jdoc.FormatLineComment, "The x.")
		require.NoError(t, err)
		edits := []jdoc.Edit{classEdit, fieldEdit}
		final, err := jdoc.NewEditPlan(edits...).Apply(original)
		require.NoError(t, err)

		patch := udiff.NewRenderer("").Render([]*jdoc.FileOutcome{{
			Path:         "A.java",
			OriginalText: original,
			FinalText:    final,
			Edits:        edits,
		}})

		assert.Empty(t, removedLines(patch))
		assert.Equal(t, final, applyPatch(t, patch, original))
	})

	t.Run("keeps CRLF line endings", func(t *testing.T) {
		t.Parallel()

		original := "class A {\r\n    int x;\r\n}\r\n"
		final := "class A {\r\n    // The x.\r\n    int x;\r\n}\r\n"

		patch := udiff.NewRenderer("").Render([]*jdoc.FileOutcome{{Path: "A.java", OriginalText: original, FinalText: final}})

		assert.Empty(t, removedLines(patch))
		assert.Contains(t, patch, "+    // The x.\r\n")
	})

	t.Run("falls back to a text diff for other changes", func(t *testing.T) {
		t.Parallel()

		original := "class A {\n    int x;\n}\n"
		final := "class A {\n}\n"

		patch := udiff.NewRenderer("").Render([]*jdoc.FileOutcome{{Path: "A.java", OriginalText: original, FinalText: final}})

		assert.Contains(t, removedLines(patch), "-    int x;")
	})

	t.Run("omits unchanged files", func(t *testing.T) {
		t.Parallel()

		outcomes := []*jdoc.FileOutcome{
			{Path: "A.java", OriginalText: "class A {}\n", FinalText: "class A {}\n"},
			nil,
		}

		assert.Empty(t, udiff.NewRenderer("").Render(outcomes))
	})

	t.Run("keeps outcome order", func(t *testing.T) {
		t.Parallel()

		outcomes := []*jdoc.FileOutcome{
			{Path: "B.java", OriginalText: "class B {}\n", FinalText: "/** B. */\nclass B {}\n"},
			{Path: "A.java", OriginalText: "class A {}\n", FinalText: "/** A. */\nclass A {}\n"},
		}

		patch := udiff.NewRenderer("").Render(outcomes)

		b := strings.Index(patch, "b/B.java")
		a := strings.Index(patch, "b/A.java")
		assert.True(t, b >= 0 && a > b, "B should precede A")
	})
}
