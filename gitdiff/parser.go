// Package gitdiff applies reviewed jdoc patches using bluekeyes/go-gitdiff.
package gitdiff

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// Patch rejection reasons.
var (
	ErrNotModification = errors.New("patch must modify an existing file")
	ErrBinaryPatch     = errors.New("binary patches are not supported")
	ErrRemovesLines    = errors.New("patch removes lines; only insertions are accepted")
	ErrOutsideRoot     = errors.New("patch path leaves the project")
)

// FilePatch is one file section of a patch.
type FilePatch struct {
	Path string
	File *gitdiff.File

	// Insertions counts runs of consecutive added lines, one per comment.
	Insertions int

	// Err is set when the section is not a pure insertion patch.
	Err error
}

// Parse reads a patch and checks that each file section only inserts
// lines into an existing text file.
func Parse(r io.Reader) ([]FilePatch, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}

	out := make([]FilePatch, 0, len(files))
	for _, f := range files {
		fp := FilePatch{Path: f.NewName, File: f}
		if fp.Path == "" {
			fp.Path = f.OldName
		}
		if fp.Err = checkPaths(f); fp.Err == nil {
			fp.Insertions, fp.Err = check(f)
		}
		out = append(out, fp)
	}
	return out, nil
}

// checkPaths rejects absolute paths and paths that climb out of the root.
func checkPaths(f *gitdiff.File) error {
	for _, name := range []string{f.OldName, f.NewName} {
		if name != "" && !filepath.IsLocal(filepath.FromSlash(name)) {
			return fmt.Errorf("%w: %s", ErrOutsideRoot, name)
		}
	}
	return nil
}

func check(f *gitdiff.File) (int, error) {
	switch {
	case f.IsNew, f.IsDelete, f.IsRename, f.IsCopy:
		return 0, ErrNotModification
	case f.IsBinary:
		return 0, ErrBinaryPatch
	}

	insertions := 0
	for _, frag := range f.TextFragments {
		inRun := false
		for _, l := range frag.Lines {
			switch l.Op {
			case gitdiff.OpDelete:
				return 0, ErrRemovesLines
			case gitdiff.OpAdd:
				if !inRun {
					insertions++
				}
				inRun = true
			default:
				inRun = false
			}
		}
	}
	return insertions, nil
}
