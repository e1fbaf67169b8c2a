// Package fs implements jdoc's file system adapters: the source walker,
// atomic writes, backups and the on-disk response cache.
package fs

import (
	"os"
	"path/filepath"
)

// DefaultBackupDir is the directory, relative to the project root, that
// receives original copies of rewritten files.
const DefaultBackupDir = "backup_before_comments"

// DefaultCacheDir returns the default cache directory for jdoc.
// Uses XDG_CACHE_HOME if set, otherwise falls back to ~/.cache/jdoc,
// or system temp directory if home is unavailable.
func DefaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "jdoc")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "jdoc")
	}
	return filepath.Join(home, ".cache", "jdoc")
}
