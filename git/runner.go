// Package git lists changed files via the git command.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fwojciec/jdoc"
)

// Compile-time interface verification.
var _ jdoc.ChangeLister = (*Runner)(nil)

// Runner executes git commands via shell.
type Runner struct{}

// NewRunner creates a new git runner.
func NewRunner() *Runner {
	return &Runner{}
}

// ChangedFiles returns the absolute paths of files under root that differ
// from ref, including untracked files that are not ignored. Deleted files
// are omitted.
func (r *Runner) ChangedFiles(ctx context.Context, root, ref string) ([]string, error) {
	if strings.HasPrefix(ref, "-") {
		return nil, fmt.Errorf("invalid ref %q", ref)
	}
	changed, err := r.run(ctx, root, "diff", "--name-only", "--relative", "--diff-filter=d", ref, "--")
	if err != nil {
		return nil, err
	}
	untracked, err := r.run(ctx, root, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var paths []string
	for _, line := range append(lines(changed), lines(untracked)...) {
		path := filepath.Join(root, filepath.FromSlash(line))
		if seen[path] {
			continue
		}
		seen[path] = true
		paths = append(paths, path)
	}
	return paths, nil
}

func (r *Runner) run(ctx context.Context, dir string, args ...string) (string, error) {
	args = append([]string{"-C", dir}, args...)
	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s failed: %s", args[2], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s failed: %w", args[2], err)
	}
	return string(output), nil
}

func lines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
