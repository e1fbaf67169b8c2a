// Package pipeline drives Java files through scanning, comment generation
// and splicing, and applies the results.
package pipeline

import (
	"context"
	"errors"
	"io"
	"iter"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fwojciec/jdoc"
	"golang.org/x/sync/errgroup"
)

// Skip reasons reported in CommentResult.Reason.
const (
	ReasonDocumented = "already documented"
	ReasonInline     = "declaration shares its line with other code"
	ReasonAccessor   = "accessor"
)

// Options configures a run.
type Options struct {
	// DryRun computes proposals without backing up or writing files.
	DryRun bool
	// MaxConcurrency is the number of files processed at once. Values < 1
	// mean 1.
	MaxConcurrency int
	// MaxTokensPerRequest is the output budget passed with each request.
	MaxTokensPerRequest int
	// SkipAccessors skips get*, set* and is* methods.
	SkipAccessors bool
}

// Pipeline processes files from scanning to writing. A nil Backup disables
// backups. OnEvent, when set, receives progress events one at a time.
type Pipeline struct {
	Scanner   jdoc.Scanner
	Prompts   jdoc.PromptBuilder
	Generator jdoc.CommentGenerator
	Backup    jdoc.BackupStore
	Writer    jdoc.FileWriter
	Logger    *log.Logger
	OnEvent   func(jdoc.Event)

	mu sync.Mutex
}

// Process runs every file yielded by files and returns the aggregate
// outcome. Per-file and per-element failures are recorded in the outcome;
// the returned error is non-nil only when ctx was canceled, in which case
// the outcome covers the files that were started.
func (p *Pipeline) Process(ctx context.Context, files iter.Seq2[jdoc.SourceFile, error], opts Options) (*jdoc.RunOutcome, error) {
	workers := opts.MaxConcurrency
	if workers < 1 {
		workers = 1
	}

	type indexed struct {
		seq     int
		outcome *jdoc.FileOutcome
	}
	var (
		mu       sync.Mutex
		outcomes []indexed
	)
	record := func(seq int, o *jdoc.FileOutcome) {
		mu.Lock()
		outcomes = append(outcomes, indexed{seq: seq, outcome: o})
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(workers)

	seq := 0
	for file, err := range files {
		if ctx.Err() != nil {
			break
		}
		i := seq
		seq++
		if err != nil {
			o := &jdoc.FileOutcome{
				Path:    file.Path,
				State:   jdoc.StateFailed,
				ErrKind: jdoc.ErrReadFailed,
				Err:     err,
			}
			p.logger().Error("read failed", "path", file.Path, "err", err)
			p.emit(jdoc.Event{Path: file.Path, State: o.State, ErrKind: o.ErrKind})
			record(i, o)
			continue
		}
		g.Go(func() error {
			// Files still queued when the run is canceled stay untouched.
			if ctx.Err() != nil {
				return nil
			}
			record(i, p.processFile(ctx, file, opts))
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(outcomes, func(a, b int) bool { return outcomes[a].seq < outcomes[b].seq })
	run := &jdoc.RunOutcome{}
	for _, o := range outcomes {
		run.Add(o.outcome)
	}
	return run, ctx.Err()
}

// pending is an element waiting for generation.
type pending struct {
	index int // into FileOutcome.Results
	req   jdoc.CommentRequest
}

func (p *Pipeline) processFile(ctx context.Context, file jdoc.SourceFile, opts Options) *jdoc.FileOutcome {
	out := &jdoc.FileOutcome{
		Path:         file.Path,
		OriginalText: file.Text,
		FinalText:    file.Text,
		DryRun:       opts.DryRun,
	}
	logger := p.logger().With("path", file.Path)

	p.transition(out, jdoc.StateScanning)
	structure, err := p.Scanner.Scan(file.Text)
	if err == nil {
		if errs := jdoc.ValidateSpans(len(file.Text), structure.Elements); len(errs) > 0 {
			err = &jdoc.Error{Kind: jdoc.ErrUnparseableSource, Err: errs[0]}
		}
	}
	if err != nil {
		logger.Warn("unparseable source", "err", err)
		return p.fail(out, jdoc.StateUnparseable, jdoc.ErrUnparseableSource, err)
	}

	p.transition(out, jdoc.StatePlanning)
	var work []pending
	for i, span := range structure.Elements {
		result := jdoc.CommentResult{Target: span, Status: jdoc.StatusSkipped}
		switch {
		case span.HasExistingComment:
			result.Reason = ReasonDocumented
		case opts.SkipAccessors && IsAccessor(span):
			result.Reason = ReasonAccessor
		default:
			if _, _, _, ok := jdoc.InsertionPoint(file.Text, span); !ok {
				result.Reason = ReasonInline
				break
			}
			req, err := p.Prompts.Build(file.Text, structure, i, jdoc.RequestContext{Path: file.Path})
			if err != nil {
				result.Status = jdoc.StatusFailed
				result.ErrKind = jdoc.ErrGenerationFailed
				result.Err = err
				break
			}
			if opts.MaxTokensPerRequest > 0 {
				req.MaxTokens = opts.MaxTokensPerRequest
			}
			work = append(work, pending{index: len(out.Results), req: req})
			out.Results = append(out.Results, result)
			continue
		}
		out.Results = append(out.Results, result)
		p.emitResult(out.Path, result)
	}

	p.transition(out, jdoc.StateGenerating)
	var edits []jdoc.Edit
	for n, w := range work {
		if ctx.Err() != nil {
			p.cancelRemaining(out, work[n:])
			return p.fail(out, jdoc.StateCanceled, jdoc.ErrCanceled, ctx.Err())
		}
		result := &out.Results[w.index]
		text, err := p.Generator.Generate(ctx, w.req)
		if err != nil && jdoc.ErrorKindOf(err) == jdoc.ErrCanceled {
			p.cancelRemaining(out, work[n:])
			return p.fail(out, jdoc.StateCanceled, jdoc.ErrCanceled, err)
		}
		if err == nil {
			var edit jdoc.Edit
			if edit, err = jdoc.Splice(file.Text, result.Target, w.req.Format, text); err == nil {
				result.Status = jdoc.StatusGenerated
				result.Text = text
				edits = append(edits, edit)
			} else {
				err = &jdoc.Error{Kind: jdoc.ErrGenerationInvalidFormat, Err: err}
			}
		}
		if err != nil {
			result.Status = jdoc.StatusFailed
			result.ErrKind = jdoc.ErrorKindOf(err)
			result.Err = err
			logger.Warn("generation failed", "element", result.Target.Name, "kind", result.ErrKind, "err", err)
		}
		p.emitResult(out.Path, *result)
	}
	p.count(out)

	if len(work) > 0 && len(edits) == 0 {
		return p.fail(out, jdoc.StateFailed, jdoc.ErrGenerationFailed, errors.New("every generation request failed"))
	}

	plan := jdoc.NewEditPlan(edits...)
	final, err := plan.Apply(file.Text)
	if err != nil {
		return p.fail(out, jdoc.StateFailed, jdoc.ErrWriteFailed, err)
	}
	out.FinalText = final
	out.Edits = edits

	if opts.DryRun || len(edits) == 0 {
		p.transition(out, jdoc.StateDone)
		return out
	}

	// Writing a completed plan is not interrupted by cancellation.
	applyCtx := context.WithoutCancel(ctx)
	p.transition(out, jdoc.StateApplying)
	if p.Backup != nil {
		if err := p.Backup.Backup(applyCtx, file.Path, file.Text); err != nil {
			logger.Error("backup failed", "err", err)
			out.FinalText, out.Edits = file.Text, nil
			return p.fail(out, jdoc.StateFailed, jdoc.ErrBackupFailed, err)
		}
	}
	if err := p.Writer.WriteFile(applyCtx, file.Path, final); err != nil {
		logger.Error("write failed", "err", err)
		out.FinalText, out.Edits = file.Text, nil
		return p.fail(out, jdoc.StateFailed, jdoc.ErrWriteFailed, err)
	}
	out.Written = true
	logger.Info("documented", "elements", out.Applied)
	p.transition(out, jdoc.StateDone)
	return out
}

// cancelRemaining marks the elements that never received a response.
func (p *Pipeline) cancelRemaining(out *jdoc.FileOutcome, rest []pending) {
	for _, w := range rest {
		r := &out.Results[w.index]
		r.Status = jdoc.StatusSkipped
		r.Reason = string(jdoc.ErrCanceled)
	}
	out.FinalText, out.Edits = out.OriginalText, nil
}

// count derives the element counters from the results.
func (p *Pipeline) count(out *jdoc.FileOutcome) {
	out.Applied, out.Skipped, out.Failed = 0, 0, 0
	for _, r := range out.Results {
		switch r.Status {
		case jdoc.StatusGenerated:
			out.Applied++
		case jdoc.StatusSkipped:
			out.Skipped++
		case jdoc.StatusFailed:
			out.Failed++
		}
	}
}

func (p *Pipeline) fail(out *jdoc.FileOutcome, state jdoc.FileState, kind jdoc.ErrorKind, err error) *jdoc.FileOutcome {
	out.ErrKind = kind
	out.Err = err
	// Comments of a file that is not written do not count as documented.
	p.count(out)
	out.Applied = 0
	p.transition(out, state)
	return out
}

func (p *Pipeline) transition(out *jdoc.FileOutcome, state jdoc.FileState) {
	out.State = state
	p.emit(jdoc.Event{Path: out.Path, State: state, ErrKind: out.ErrKind})
}

func (p *Pipeline) emitResult(path string, r jdoc.CommentResult) {
	p.emit(jdoc.Event{
		Path:        path,
		ElementName: r.Target.Name,
		ElementKind: r.Target.Kind,
		Status:      r.Status,
		Reason:      r.Reason,
		ErrKind:     r.ErrKind,
	})
}

func (p *Pipeline) emit(e jdoc.Event) {
	if p.OnEvent == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.OnEvent(e)
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger == nil {
		return log.New(io.Discard)
	}
	return p.Logger
}

// IsAccessor reports whether span is a conventional getter or setter.
func IsAccessor(span jdoc.ElementSpan) bool {
	if span.Kind != jdoc.KindMethod {
		return false
	}
	for _, prefix := range []string{"get", "set", "is"} {
		rest, ok := strings.CutPrefix(span.Name, prefix)
		if ok && rest != "" && rest[0] >= 'A' && rest[0] <= 'Z' {
			return true
		}
	}
	return false
}
