package gitdiff

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/jdoc"
)

// Compile-time interface verification.
var _ jdoc.PatchApplier = (*Applier)(nil)

// Applier applies insertion-only patches to files under Root. Each file is
// backed up before it is replaced; a file whose patch does not apply
// cleanly is left untouched.
type Applier struct {
	Root   string
	Backup jdoc.BackupStore // nil disables backups
	Writer jdoc.FileWriter
}

// NewApplier creates an Applier for files under root.
func NewApplier(root string, backup jdoc.BackupStore, writer jdoc.FileWriter) *Applier {
	return &Applier{Root: root, Backup: backup, Writer: writer}
}

// Apply applies every file section of patch. Per-file failures are
// reported in the outcome; the error is non-nil only when the patch cannot
// be read or ctx is canceled.
func (a *Applier) Apply(ctx context.Context, patch io.Reader) (*jdoc.RunOutcome, error) {
	files, err := Parse(patch)
	if err != nil {
		return nil, err
	}

	run := &jdoc.RunOutcome{}
	for _, fp := range files {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		run.Add(a.applyFile(ctx, fp))
	}
	return run, nil
}

func (a *Applier) applyFile(ctx context.Context, fp FilePatch) *jdoc.FileOutcome {
	path := filepath.Join(a.Root, filepath.FromSlash(fp.Path))
	o := &jdoc.FileOutcome{Path: path, State: jdoc.StateApplying}
	fail := func(kind jdoc.ErrorKind, err error) *jdoc.FileOutcome {
		o.State = jdoc.StateFailed
		o.ErrKind = kind
		o.Err = &jdoc.Error{Kind: kind, Path: path, Err: err}
		return o
	}

	if fp.Err != nil {
		return fail(jdoc.ErrPatchRejected, fp.Err)
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return fail(jdoc.ErrReadFailed, err)
	}
	o.OriginalText = string(original)

	var buf bytes.Buffer
	if err := gitdiff.Apply(&buf, bytes.NewReader(original), fp.File); err != nil {
		return fail(jdoc.ErrPatchRejected, err)
	}
	o.FinalText = buf.String()

	if a.Backup != nil {
		if err := a.Backup.Backup(ctx, path, o.OriginalText); err != nil {
			return fail(jdoc.ErrBackupFailed, err)
		}
	}
	if err := a.Writer.WriteFile(ctx, path, o.FinalText); err != nil {
		return fail(jdoc.ErrWriteFailed, err)
	}

	o.State = jdoc.StateDone
	o.Written = true
	o.Applied = fp.Insertions
	return o
}
