package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/jdoc"
)

// Compile-time interface verification.
var _ jdoc.BackupStore = (*BackupStore)(nil)

// BackupStore copies originals into Dir, mirroring their path relative to
// Root. An existing backup is never overwritten, so the oldest original
// survives repeated runs.
type BackupStore struct {
	Root string
	Dir  string
}

// NewBackupStore creates a BackupStore for files under root.
func NewBackupStore(root, dir string) *BackupStore {
	return &BackupStore{Root: root, Dir: dir}
}

// Backup durably stores original for path.
func (s *BackupStore) Backup(ctx context.Context, path, original string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest := s.PathFor(path)
	if _, err := os.Stat(dest); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return writeAtomic(dest, []byte(original), 0o644)
}

// PathFor returns where the backup of path is stored.
func (s *BackupStore) PathFor(path string) string {
	rel, err := filepath.Rel(s.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		// Outside the root: mirror the cleaned path instead.
		rel = strings.TrimLeft(filepath.ToSlash(filepath.Clean(path)), "/")
		rel = strings.ReplaceAll(rel, ":", "")
		rel = filepath.FromSlash(rel)
	}
	return filepath.Join(s.Dir, rel)
}
