package gitdiff_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/jdoc/gitdiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_EmptyInput(t *testing.T) {
	t.Parallel()

	files, err := gitdiff.Parse(strings.NewReader(""))

	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestParse_CountsInsertions(t *testing.T) {
	t.Parallel()

	input := `diff --git a/src/A.java b/src/A.java
--- a/src/A.java
+++ b/src/A.java
@@ -1,4 +1,8 @@
+/**
+ * A.
+ */
 class A {
+    /** The x. */
     int x;
     int y;
 }
`

	files, err := gitdiff.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "src/A.java", files[0].Path)
	assert.Equal(t, 2, files[0].Insertions)
	assert.NoError(t, files[0].Err)
}

func TestParse_RejectsNonInsertions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		want  error
	}{
		{
			name: "removed line",
			input: `diff --git a/A.java b/A.java
--- a/A.java
+++ b/A.java
@@ -1,2 +1,2 @@
-class A {
+final class A {
 }
`,
			want: gitdiff.ErrRemovesLines,
		},
		{
			name: "new file",
			input: `diff --git a/B.java b/B.java
new file mode 100644
--- /dev/null
+++ b/B.java
@@ -0,0 +1 @@
+class B {}
`,
			want: gitdiff.ErrNotModification,
		},
		{
			name: "deleted file",
			input: `diff --git a/C.java b/C.java
deleted file mode 100644
--- a/C.java
+++ /dev/null
@@ -1 +0,0 @@
-class C {}
`,
			want: gitdiff.ErrNotModification,
		},
		{
			name: "path outside the root",
			input: `diff --git a/../outside.txt b/../outside.txt
--- a/../outside.txt
+++ b/../outside.txt
@@ -1,2 +1,3 @@
 a
+INJECTED
 b
`,
			want: gitdiff.ErrOutsideRoot,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			files, err := gitdiff.Parse(strings.NewReader(tc.input))

			require.NoError(t, err)
			require.Len(t, files, 1)
			assert.ErrorIs(t, files[0].Err, tc.want)
		})
	}
}
