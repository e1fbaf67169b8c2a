package mock

import (
	"context"

	"github.com/fwojciec/jdoc"
)

// Compile-time interface verification.
var (
	_ jdoc.ChangeLister = (*ChangeLister)(nil)
	_ jdoc.Clipboard    = (*Clipboard)(nil)
)

// ChangeLister is a mock implementation of jdoc.ChangeLister.
type ChangeLister struct {
	ChangedFilesFn func(ctx context.Context, root, ref string) ([]string, error)
}

func (c *ChangeLister) ChangedFiles(ctx context.Context, root, ref string) ([]string, error) {
	return c.ChangedFilesFn(ctx, root, ref)
}

// Clipboard is a mock implementation of jdoc.Clipboard.
type Clipboard struct {
	CopyFn func(content string) error
}

func (c *Clipboard) Copy(content string) error {
	return c.CopyFn(content)
}
