// Package bubbletea shows live pipeline progress using the Bubble Tea framework.
package bubbletea

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/jdoc"
)

// maxRecent is the number of finished files listed under the bar.
const maxRecent = 5

// EventMsg delivers a pipeline event to the model.
type EventMsg jdoc.Event

// DoneMsg tells the model the run has finished.
type DoneMsg struct{}

// Model is the Bubble Tea model for run progress.
type Model struct {
	total    int
	finished int
	failed   int

	generated, skipped, elemFailed int

	active []string
	recent []string

	root     string
	styles   jdoc.Styles
	renderer *lipgloss.Renderer
	keys     KeyMap
	bar      progress.Model
	spinner  spinner.Model

	onCancel  func()
	canceling bool
	done      bool
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithRenderer sets the lipgloss renderer used for styling.
func WithRenderer(r *lipgloss.Renderer) ModelOption {
	return func(m *Model) {
		m.renderer = r
	}
}

// WithStyles sets the color styles.
func WithStyles(s jdoc.Styles) ModelOption {
	return func(m *Model) {
		m.styles = s
	}
}

// WithRoot shortens displayed paths to be relative to root.
func WithRoot(root string) ModelOption {
	return func(m *Model) {
		m.root = root
	}
}

// WithCancel sets the function called when the user asks to stop.
func WithCancel(cancel func()) ModelOption {
	return func(m *Model) {
		m.onCancel = cancel
	}
}

// NewModel creates a Model for a run over total files. A total of zero
// shows counts without a bar.
func NewModel(total int, opts ...ModelOption) Model {
	m := Model{
		total:   total,
		keys:    DefaultKeyMap(),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.canceling && key.Matches(msg, m.keys.Quit) {
			m.done = true
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Cancel) && !m.canceling {
			m.canceling = true
			if m.onCancel != nil {
				m.onCancel()
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		width := msg.Width - 20
		if width > 60 {
			width = 60
		}
		if width > 10 {
			m.bar.Width = width
		}
		return m, nil
	case EventMsg:
		m.handleEvent(jdoc.Event(msg))
		return m, nil
	case DoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleEvent(ev jdoc.Event) {
	path := m.relative(ev.Path)
	if !ev.IsFileEvent() {
		switch ev.Status {
		case jdoc.StatusGenerated:
			m.generated++
		case jdoc.StatusSkipped:
			m.skipped++
		case jdoc.StatusFailed:
			m.elemFailed++
		}
		return
	}

	if !ev.State.Terminal() {
		if !slices.Contains(m.active, path) {
			m.active = append(m.active, path)
		}
		return
	}

	if i := slices.Index(m.active, path); i >= 0 {
		m.active = slices.Delete(m.active, i, i+1)
	}
	m.finished++
	line := string(ev.State) + "  " + path
	if ev.State != jdoc.StateDone {
		m.failed++
		if ev.ErrKind != "" {
			line += " (" + string(ev.ErrKind) + ")"
		}
	}
	m.recent = append(m.recent, line)
	if len(m.recent) > maxRecent {
		m.recent = m.recent[len(m.recent)-maxRecent:]
	}
}

// View implements tea.Model.
func (m Model) View() string {
	muted := m.style(m.styles.Muted)
	failed := m.style(m.styles.Failed)

	var b strings.Builder
	if m.total > 0 {
		b.WriteString(m.bar.ViewAs(float64(m.finished) / float64(m.total)))
		fmt.Fprintf(&b, "  %d/%d files\n", m.finished, m.total)
	} else {
		fmt.Fprintf(&b, "%d files\n", m.finished)
	}
	fmt.Fprintf(&b, "%s, %s, %s\n",
		m.style(m.styles.Generated).Render(fmt.Sprintf("%d documented", m.generated)),
		m.style(m.styles.Skipped).Render(fmt.Sprintf("%d skipped", m.skipped)),
		failed.Render(fmt.Sprintf("%d failed", m.elemFailed)))

	for _, line := range m.recent {
		if strings.HasPrefix(line, string(jdoc.StateDone)) {
			b.WriteString(muted.Render(line))
		} else {
			b.WriteString(failed.Render(line))
		}
		b.WriteString("\n")
	}
	if !m.done {
		for _, path := range m.active {
			b.WriteString(m.spinner.View() + " " + path + "\n")
		}
	}

	switch {
	case m.canceling && !m.done:
		b.WriteString(failed.Render("canceling: finishing files already planned (ctrl+c to quit now)"))
		b.WriteString("\n")
	case !m.done:
		b.WriteString(muted.Render("q to cancel"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) style(c jdoc.ColorPair) lipgloss.Style {
	var s lipgloss.Style
	if m.renderer != nil {
		s = m.renderer.NewStyle()
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

func (m Model) relative(path string) string {
	if m.root == "" {
		return path
	}
	if rel, err := filepath.Rel(m.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}
