package bubbletea

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/jdoc"
)

// Progress runs the progress view alongside a pipeline run. OnEvent is safe
// to use as pipeline.Pipeline.OnEvent.
type Progress struct {
	program *tea.Program
	done    chan struct{}
	err     error
}

// NewProgress creates a Progress over total files reading keys from in and
// writing to out. A nil in disables key handling. cancel is called when the
// user asks to stop.
func NewProgress(total int, in io.Reader, out io.Writer, cancel func(), opts ...ModelOption) *Progress {
	opts = append(opts, WithCancel(cancel))
	m := NewModel(total, opts...)
	return &Progress{
		program: tea.NewProgram(m,
			tea.WithInput(in),
			tea.WithOutput(out),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}
}

// Start runs the view in the background.
func (p *Progress) Start() {
	go func() {
		defer close(p.done)
		_, p.err = p.program.Run()
	}()
}

// OnEvent forwards a pipeline event to the view.
func (p *Progress) OnEvent(ev jdoc.Event) {
	p.program.Send(EventMsg(ev))
}

// Finish stops the view and waits for it to restore the terminal.
func (p *Progress) Finish() error {
	p.program.Send(DoneMsg{})
	<-p.done
	if errors.Is(p.err, tea.ErrProgramKilled) {
		return nil
	}
	return p.err
}
