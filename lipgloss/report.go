package lipgloss

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/jdoc"
)

// Reporter renders run outcomes for a terminal.
type Reporter struct {
	renderer    *lipgloss.Renderer
	styles      jdoc.Styles
	highlighter jdoc.Highlighter
	root        string
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithRenderer sets the lipgloss renderer. Tests use an ASCII renderer.
func WithRenderer(r *lipgloss.Renderer) ReporterOption {
	return func(rep *Reporter) {
		rep.renderer = r
	}
}

// WithHighlighter highlights proposed comments instead of coloring them
// with the theme's Comment style.
func WithHighlighter(h jdoc.Highlighter) ReporterOption {
	return func(rep *Reporter) {
		rep.highlighter = h
	}
}

// WithRoot shortens file paths to be relative to root.
func WithRoot(root string) ReporterOption {
	return func(rep *Reporter) {
		rep.root = root
	}
}

// NewReporter creates a Reporter using theme's styles.
func NewReporter(theme jdoc.Theme, opts ...ReporterOption) *Reporter {
	r := &Reporter{styles: theme.Styles()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reporter) style(c jdoc.ColorPair) lipgloss.Style {
	var s lipgloss.Style
	if r.renderer != nil {
		s = r.renderer.NewStyle()
	} else {
		s = lipgloss.NewStyle()
	}
	if c.Foreground != "" {
		s = s.Foreground(lipgloss.Color(c.Foreground))
	}
	if c.Background != "" {
		s = s.Background(lipgloss.Color(c.Background))
	}
	return s
}

func (r *Reporter) relative(path string) string {
	if r.root == "" {
		return path
	}
	if rel, err := filepath.Rel(r.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

// Render writes the proposals (dry run only), the failures and the summary.
func (r *Reporter) Render(w io.Writer, run *jdoc.RunOutcome, dryRun bool) error {
	var b strings.Builder
	if dryRun {
		b.WriteString(r.Proposals(run))
	}
	b.WriteString(r.Failures(run))
	b.WriteString(r.Summary(run, dryRun))
	_, err := io.WriteString(w, b.String())
	return err
}

// Proposals renders each generated comment as it would be inserted, under
// a header naming its file.
func (r *Reporter) Proposals(run *jdoc.RunOutcome) string {
	header := r.style(r.styles.FileHeader).Bold(true)
	muted := r.style(r.styles.Muted)
	comment := r.style(r.styles.Comment)

	var b strings.Builder
	for _, o := range run.Files {
		proposals := o.Proposals()
		if len(proposals) == 0 {
			continue
		}
		b.WriteString(header.Render(" "+r.relative(o.Path)+" "))
		b.WriteString("\n")
		for _, p := range proposals {
			fmt.Fprintf(&b, "%s\n", muted.Render(fmt.Sprintf("  line %d  %s %s", p.Target.Line, p.Target.Kind, p.Target.Name)))
			edit, err := jdoc.Splice(o.OriginalText, p.Target, jdoc.FormatFor(p.Target.Kind), p.Text)
			if err != nil {
				continue
			}
			text := strings.TrimRight(edit.Text, "\r\n")
			if r.highlighter != nil {
				if hl, err := r.highlighter.Highlight(jdoc.LanguageJava, text); err == nil {
					b.WriteString(hl)
					b.WriteString("\n")
					continue
				}
			}
			for _, line := range strings.Split(text, "\n") {
				b.WriteString(comment.Render(strings.TrimRight(line, "\r")))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Failures lists every failed file and element.
func (r *Reporter) Failures(run *jdoc.RunOutcome) string {
	if len(run.Failures) == 0 {
		return ""
	}
	failed := r.style(r.styles.Failed)
	muted := r.style(r.styles.Muted)

	var b strings.Builder
	b.WriteString(failed.Bold(true).Render("Failures"))
	b.WriteString("\n")
	for _, f := range run.Failures {
		target := r.relative(f.Path)
		if f.Element != "" {
			target += " " + f.Kind + " " + f.Element
		}
		line := "  " + failed.Render(string(f.ErrKind)) + "  " + target
		if f.Message != "" {
			line += muted.Render("  " + f.Message)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// Summary renders the aggregate counters.
func (r *Reporter) Summary(run *jdoc.RunOutcome, dryRun bool) string {
	summary := r.style(r.styles.Summary).Bold(true)
	generated := r.style(r.styles.Generated)
	skipped := r.style(r.styles.Skipped)
	failed := r.style(r.styles.Failed)

	verb := "written"
	if dryRun {
		verb = "would change"
	}
	changed := run.FilesWritten
	if dryRun {
		changed = 0
		for _, o := range run.Files {
			if o.Changed() {
				changed++
			}
		}
	}

	failedFiles := run.FilesFailed + run.FilesUnparseable + run.FilesCanceled

	var b strings.Builder
	b.WriteString(summary.Render("Summary"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  files     %d processed, %d %s, %s\n",
		run.FilesProcessed, changed, verb,
		failed.Render(fmt.Sprintf("%d failed", failedFiles)))
	if run.FilesUnparseable > 0 || run.FilesCanceled > 0 {
		fmt.Fprintf(&b, "            %d unparseable, %d canceled\n", run.FilesUnparseable, run.FilesCanceled)
	}
	fmt.Fprintf(&b, "  elements  %s, %s, %s\n",
		generated.Render(fmt.Sprintf("%d documented", run.ElementsDocumented)),
		skipped.Render(fmt.Sprintf("%d skipped", run.ElementsSkipped)),
		failed.Render(fmt.Sprintf("%d failed", run.ElementsFailed)))
	return b.String()
}
