// Package clipboard copies text to the system clipboard.
package clipboard

import (
	"github.com/atotto/clipboard"
	"github.com/fwojciec/jdoc"
)

// Ensure System implements the Clipboard interface.
var _ jdoc.Clipboard = (*System)(nil)

// System implements jdoc.Clipboard using the platform clipboard utility
// (pbcopy, xclip, xsel, wl-copy or the Windows API).
type System struct{}

// NewSystem returns a new System clipboard.
func NewSystem() *System {
	return &System{}
}

// Available reports whether a clipboard utility was found.
func (s *System) Available() bool {
	return !clipboard.Unsupported
}

// Copy writes content to the system clipboard.
func (s *System) Copy(content string) error {
	return clipboard.WriteAll(content)
}
