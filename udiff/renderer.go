// Package udiff renders dry-run proposals as a unified patch using
// aymanbagabas/go-udiff.
package udiff

import (
	"path/filepath"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/fwojciec/jdoc"
)

// Compile-time interface verification.
var _ jdoc.PatchRenderer = (*Renderer)(nil)

// Renderer writes one git-style file section per changed outcome. Paths
// are written relative to Root so the patch applies from the project root.
type Renderer struct {
	Root string
}

// NewRenderer creates a Renderer for files under root.
func NewRenderer(root string) *Renderer {
	return &Renderer{Root: root}
}

// Render returns the patch for outcomes. Unchanged files are omitted; an
// empty string means there is nothing to apply.
func (r *Renderer) Render(outcomes []*jdoc.FileOutcome) string {
	var b strings.Builder
	for _, o := range outcomes {
		if o == nil || !o.Changed() {
			continue
		}
		name := r.relative(o.Path)
		body := unified("a/"+name, "b/"+name, o)
		if body == "" {
			continue
		}
		b.WriteString("diff --git a/" + name + " b/" + name + "\n")
		b.WriteString(body)
	}
	return b.String()
}

// unified renders the outcome's insertions as hunks that only add lines.
// Outcomes that are not pure line insertions fall back to a text diff.
func unified(from, to string, o *jdoc.FileOutcome) string {
	edits := o.Edits
	if len(edits) == 0 {
		var ok bool
		if edits, ok = jdoc.InsertedLines(o.OriginalText, o.FinalText); !ok {
			return udiff.Unified(from, to, o.OriginalText, o.FinalText)
		}
	}
	converted := make([]udiff.Edit, 0, len(edits))
	for _, e := range edits {
		converted = append(converted, udiff.Edit{Start: e.Offset, End: e.Offset, New: e.Text})
	}
	body, err := udiff.ToUnified(from, to, o.OriginalText, converted, udiff.DefaultContextLines)
	if err != nil {
		return udiff.Unified(from, to, o.OriginalText, o.FinalText)
	}
	return body
}

func (r *Renderer) relative(path string) string {
	if r.Root != "" {
		if rel, err := filepath.Rel(r.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}
