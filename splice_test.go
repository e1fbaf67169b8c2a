package jdoc_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/fwojciec/jdoc"
	"github.com/fwojciec/jdoc/java"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spanAt(text, needle string) jdoc.ElementSpan {
	start := strings.Index(text, needle)
	return jdoc.ElementSpan{Start: start, End: start + len(needle), SignatureEnd: start, Parent: -1}
}

func TestInsertionPoint(t *testing.T) {
	t.Parallel()

	t.Run("returns line start and indentation", func(t *testing.T) {
		t.Parallel()

		text := "class A {\n\t  int x;\n}\n"
		offset, indent, eol, ok := jdoc.InsertionPoint(text, spanAt(text, "int x;"))

		require.True(t, ok)
		assert.Equal(t, strings.Index(text, "\t  int"), offset)
		assert.Equal(t, "\t  ", indent)
		assert.Equal(t, "\n", eol)
	})

	t.Run("preserves CRLF line endings", func(t *testing.T) {
		t.Parallel()

		text := "class A {\r\n    int x;\r\n}\r\n"
		_, _, eol, ok := jdoc.InsertionPoint(text, spanAt(text, "int x;"))

		require.True(t, ok)
		assert.Equal(t, "\r\n", eol)
	})

	t.Run("rejects declarations preceded by code on their line", func(t *testing.T) {
		t.Parallel()

		text := "class A { int x; }\n"
		_, _, _, ok := jdoc.InsertionPoint(text, spanAt(text, "int x;"))

		assert.False(t, ok)
	})
}

func TestSplice(t *testing.T) {
	t.Parallel()

	t.Run("renders javadoc with copied indentation", func(t *testing.T) {
		t.Parallel()

		text := "class A {\n    void run() {}\n}\n"
		edit, err := jdoc.Splice(text, spanAt(text, "void run()"), jdoc.FormatJavaDoc, "Runs the task.\n\n@throws IllegalStateException if stopped")

		require.NoError(t, err)
		assert.Equal(t, strings.Index(text, "    void"), edit.Offset)
		assert.Equal(t, "    /**\n"+
			"     * Runs the task.\n"+
			"     *\n"+
			"     * @throws IllegalStateException if stopped\n"+
			"     */\n", edit.Text)
	})

	t.Run("renders line comments", func(t *testing.T) {
		t.Parallel()

		text := "class A {\r\n\tint x;\r\n}\r\n"
		edit, err := jdoc.Splice(text, spanAt(text, "int x;"), jdoc.FormatLineComment, "Number of retries.")

		require.NoError(t, err)
		assert.Equal(t, "\t// Number of retries.\r\n", edit.Text)
	})

	t.Run("rejects comment terminator in javadoc body", func(t *testing.T) {
		t.Parallel()

		text := "class A {}\n"
		_, err := jdoc.Splice(text, spanAt(text, "class A"), jdoc.FormatJavaDoc, "Ends early */ oops")

		assert.ErrorIs(t, err, jdoc.ErrBodyTerminator)
	})

	t.Run("rejects empty body", func(t *testing.T) {
		t.Parallel()

		text := "class A {}\n"
		_, err := jdoc.Splice(text, spanAt(text, "class A"), jdoc.FormatJavaDoc, " \n ")

		assert.ErrorIs(t, err, jdoc.ErrEmptyBody)
	})

	t.Run("rejects inline declarations", func(t *testing.T) {
		t.Parallel()

		text := "class A { int x; }\n"
		_, err := jdoc.Splice(text, spanAt(text, "int x;"), jdoc.FormatLineComment, "x")

		assert.ErrorIs(t, err, jdoc.ErrInlineDeclaration)
	})
}

func TestEditPlan_Apply(t *testing.T) {
	t.Parallel()

	t.Run("sorts descending and applies against original offsets", func(t *testing.T) {
		t.Parallel()

		plan := jdoc.NewEditPlan(
			jdoc.Edit{Offset: 0, Text: "A"},
			jdoc.Edit{Offset: 6, Text: "C"},
			jdoc.Edit{Offset: 3, Text: "B"},
		)

		assert.Equal(t, []int{6, 3, 0}, []int{plan[0].Offset, plan[1].Offset, plan[2].Offset})
		got, err := plan.Apply("abcdef")
		require.NoError(t, err)
		assert.Equal(t, "AabcBdefC", got)
		assert.Equal(t, 3, plan.Len())
	})

	t.Run("keeps given order for equal offsets", func(t *testing.T) {
		t.Parallel()

		plan := jdoc.NewEditPlan(
			jdoc.Edit{Offset: 1, Text: "1"},
			jdoc.Edit{Offset: 1, Text: "2"},
		)

		got, err := plan.Apply("ab")
		require.NoError(t, err)
		assert.Equal(t, "a12b", got)
	})

	t.Run("rejects out of range offsets", func(t *testing.T) {
		t.Parallel()

		_, err := jdoc.NewEditPlan(jdoc.Edit{Offset: 10, Text: "x"}).Apply("short")

		assert.Error(t, err)
	})

	t.Run("rejects unsorted plans", func(t *testing.T) {
		t.Parallel()

		plan := jdoc.EditPlan{{Offset: 1, Text: "x"}, {Offset: 2, Text: "y"}}
		_, err := plan.Apply("abc")

		assert.Error(t, err)
	})

	t.Run("empty plan returns text unchanged", func(t *testing.T) {
		t.Parallel()

		got, err := jdoc.NewEditPlan().Apply("class A {}")

		require.NoError(t, err)
		assert.Equal(t, "class A {}", got)
	})
}

const orderSource = `package shop;

public class Order {
    public static final int LIMIT = 5;
    private int count;

    public Order(int count) {
        this.count = count;
    }

    @Override
    public String toString() {
        String s = "{ } class Foo";
        return s;
    }

    static class Line {
        int qty;
    }
}
`

// planFor documents every element of src the way the pipeline does.
func planFor(t *testing.T, src string) (jdoc.EditPlan, *jdoc.Structure) {
	t.Helper()
	structure, err := java.NewScanner().Scan(src)
	require.NoError(t, err)
	var edits []jdoc.Edit
	for _, span := range structure.Elements {
		if span.HasExistingComment {
			continue
		}
		edit, err := jdoc.Splice(src, span, jdoc.FormatFor(span.Kind), "Documents "+span.Name+".")
		require.NoError(t, err)
		edits = append(edits, edit)
	}
	return jdoc.NewEditPlan(edits...), structure
}

// strip removes the inserted ranges of plan from final.
func strip(final string, plan jdoc.EditPlan) string {
	edits := append(jdoc.EditPlan(nil), plan...)
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].Offset < edits[j].Offset })
	var sb strings.Builder
	shift := 0
	pos := 0
	for _, e := range edits {
		at := e.Offset + shift
		sb.WriteString(final[pos:at])
		pos = at + len(e.Text)
		shift += len(e.Text)
	}
	sb.WriteString(final[pos:])
	return sb.String()
}

func TestSplice_NonDestructive(t *testing.T) {
	t.Parallel()

	plan, _ := planFor(t, orderSource)
	final, err := plan.Apply(orderSource)
	require.NoError(t, err)

	assert.Len(t, final, len(orderSource)+plan.Len())
	assert.Equal(t, orderSource, strip(final, plan))
}

func TestSplice_OffsetStability(t *testing.T) {
	t.Parallel()

	plan, structure := planFor(t, orderSource)
	final, err := plan.Apply(orderSource)
	require.NoError(t, err)

	// Every declaration is immediately preceded by its own comment.
	for _, span := range structure.Elements {
		decl := orderSource[span.Start:span.End]
		if nl := strings.IndexByte(decl, '\n'); nl >= 0 {
			decl = decl[:nl]
		}
		idx := strings.Index(final, decl)
		require.GreaterOrEqual(t, idx, 0, span.Name)
		before := strings.TrimRight(final[:idx], " \t")
		assert.True(t,
			strings.HasSuffix(before, "Documents "+span.Name+".\n     */\n") ||
				strings.HasSuffix(before, "/**\n * Documents "+span.Name+".\n */\n") ||
				strings.HasSuffix(before, "// Documents "+span.Name+".\n"),
			"element %s not preceded by its comment", span.Name)
	}
}

func TestSplice_Idempotent(t *testing.T) {
	t.Parallel()

	plan, structure := planFor(t, orderSource)
	final, err := plan.Apply(orderSource)
	require.NoError(t, err)

	rescanned, err := java.NewScanner().Scan(final)
	require.NoError(t, err)
	require.Len(t, rescanned.Elements, len(structure.Elements))
	for _, span := range rescanned.Elements {
		assert.True(t, span.HasExistingComment, span.Name)
	}

	again, _ := planFor(t, final)
	assert.Empty(t, again)
}

func TestSplice_ByteOrderMark(t *testing.T) {
	t.Parallel()

	text := "\uFEFFpublic class A {\n}\n"
	span := spanAt(text, "public class A")

	edit, err := jdoc.Splice(text, span, jdoc.FormatJavaDoc, "An A.")

	require.NoError(t, err)
	assert.Equal(t, len("\uFEFF"), edit.Offset)
	final, err := jdoc.NewEditPlan(edit).Apply(text)
	require.NoError(t, err)
	assert.Equal(t, "\uFEFF/**\n * An A.\n */\npublic class A {\n}\n", final)
}

func TestInsertedLines(t *testing.T) {
	t.Parallel()

	t.Run("recovers adjacent insertions", func(t *testing.T) {
		t.Parallel()

		original := "class A {\n    int x;\n\n    void m() {}\n}\n"
		final := "/**\n * A.\n */\nclass A {\n    // The x.\n    int x;\n\n    /**\n     * Does m.\n     */\n    void m() {}\n}\n"

		edits, ok := jdoc.InsertedLines(original, final)

		require.True(t, ok)
		assert.Equal(t, []jdoc.Edit{
			{Offset: 0, Text: "/**\n * A.\n */\n"},
			{Offset: len("class A {\n"), Text: "    // The x.\n"},
			{Offset: len("class A {\n    int x;\n\n"), Text: "    /**\n     * Does m.\n     */\n"},
		}, edits)
		got, err := jdoc.NewEditPlan(edits...).Apply(original)
		require.NoError(t, err)
		assert.Equal(t, final, got)
	})

	t.Run("rejects removed lines", func(t *testing.T) {
		t.Parallel()

		_, ok := jdoc.InsertedLines("class A {\n    int x;\n}\n", "class A {\n}\n")

		assert.False(t, ok)
	})

	t.Run("rejects changed lines", func(t *testing.T) {
		t.Parallel()

		_, ok := jdoc.InsertedLines("class A {\n}\n", "final class A {\n}\n")

		assert.False(t, ok)
	})

	t.Run("no change yields no edits", func(t *testing.T) {
		t.Parallel()

		edits, ok := jdoc.InsertedLines("class A {}\n", "class A {}\n")

		assert.True(t, ok)
		assert.Empty(t, edits)
	})
}
