package mock

import (
	"context"

	"github.com/fwojciec/jdoc"
)

// Compile-time interface verification.
var (
	_ jdoc.BackupStore  = (*BackupStore)(nil)
	_ jdoc.FileWriter   = (*FileWriter)(nil)
	_ jdoc.FailureStore = (*FailureStore)(nil)
)

// BackupStore is a mock implementation of jdoc.BackupStore.
type BackupStore struct {
	BackupFn func(ctx context.Context, path, original string) error
}

func (s *BackupStore) Backup(ctx context.Context, path, original string) error {
	return s.BackupFn(ctx, path, original)
}

// FileWriter is a mock implementation of jdoc.FileWriter.
type FileWriter struct {
	WriteFileFn func(ctx context.Context, path, text string) error
}

func (w *FileWriter) WriteFile(ctx context.Context, path, text string) error {
	return w.WriteFileFn(ctx, path, text)
}

// FailureStore is a mock implementation of jdoc.FailureStore.
type FailureStore struct {
	SaveFn func(path string, failures []jdoc.Failure) error
	LoadFn func(path string) ([]jdoc.Failure, error)
}

func (s *FailureStore) Save(path string, failures []jdoc.Failure) error {
	return s.SaveFn(path, failures)
}

func (s *FailureStore) Load(path string) ([]jdoc.Failure, error) {
	return s.LoadFn(path)
}
