package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/jdoc"
	"github.com/fwojciec/jdoc/pipeline"
)

// ErrRunFailed is returned when a run finished with failed files or
// elements. The report has already been written.
var ErrRunFailed = errors.New("some files or elements failed")

// Reporter renders a run outcome.
type Reporter interface {
	Render(w io.Writer, run *jdoc.RunOutcome, dryRun bool) error
}

// App encapsulates the annotate command for testing.
type App struct {
	Files    jdoc.FileSource
	Pipeline *pipeline.Pipeline
	Options  pipeline.Options

	// Patch receives the unified patch of a dry run when set. Clipboard,
	// when set, receives a copy.
	Patch     io.Writer
	Clipboard jdoc.Clipboard
	Renderer  jdoc.PatchRenderer

	// FailuresPath, when set, receives the run's failures as JSONL.
	FailuresPath string
	Failures     jdoc.FailureStore

	Reporter Reporter
	Stdout   io.Writer

	// OnProcessed runs after processing and before any output, e.g. to
	// close the progress view.
	OnProcessed func()
}

// Run processes every file and reports the outcome. A canceled run still
// reports what it finished.
func (a *App) Run(ctx context.Context) (*jdoc.RunOutcome, error) {
	run, runErr := a.Pipeline.Process(ctx, a.Files.Files(ctx), a.Options)
	if a.OnProcessed != nil {
		a.OnProcessed()
	}
	if run == nil {
		return nil, runErr
	}

	if a.Options.DryRun && a.Renderer != nil && (a.Patch != nil || a.Clipboard != nil) {
		patch := a.Renderer.Render(run.Files)
		if a.Patch != nil {
			if _, err := io.WriteString(a.Patch, patch); err != nil {
				return run, fmt.Errorf("write patch: %w", err)
			}
		}
		if a.Clipboard != nil && patch != "" {
			if err := a.Clipboard.Copy(patch); err != nil {
				return run, fmt.Errorf("copy patch: %w", err)
			}
		}
	}
	if a.FailuresPath != "" && a.Failures != nil {
		if err := a.Failures.Save(a.FailuresPath, run.Failures); err != nil {
			return run, fmt.Errorf("save failures: %w", err)
		}
	}
	if a.Reporter != nil {
		if err := a.Reporter.Render(a.stdout(), run, a.Options.DryRun); err != nil {
			return run, err
		}
	}

	if runErr != nil {
		return run, runErr
	}
	if len(run.Failures) > 0 {
		return run, ErrRunFailed
	}
	return run, nil
}

func (a *App) stdout() io.Writer {
	if a.Stdout == nil {
		return os.Stdout
	}
	return a.Stdout
}

// ApplyApp encapsulates the apply command for testing.
type ApplyApp struct {
	Applier  jdoc.PatchApplier
	Patch    io.Reader
	Reporter Reporter
	Stdout   io.Writer
}

// Run applies the patch and reports the outcome.
func (a *ApplyApp) Run(ctx context.Context) (*jdoc.RunOutcome, error) {
	run, err := a.Applier.Apply(ctx, a.Patch)
	if run == nil {
		return nil, err
	}
	if a.Reporter != nil {
		w := a.Stdout
		if w == nil {
			w = os.Stdout
		}
		if rerr := a.Reporter.Render(w, run, false); rerr != nil {
			return run, rerr
		}
	}
	if err != nil {
		return run, err
	}
	if len(run.Failures) > 0 {
		return run, ErrRunFailed
	}
	return run, nil
}
