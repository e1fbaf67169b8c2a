// Package jdoc provides domain types for annotating Java sources with
// generated documentation comments.
package jdoc

import (
	"context"
	"io"
	"iter"
)

// ElementKind identifies the kind of a structural element in a Java file.
type ElementKind int

// Element kinds.
const (
	KindClass ElementKind = iota
	KindInterface
	KindEnum
	KindMethod
	KindConstructor
	KindField
	KindConstant
)

// String returns the lowercase name of the kind.
func (k ElementKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindField:
		return "field"
	case KindConstant:
		return "constant"
	default:
		return "unknown"
	}
}

// IsType reports whether the kind declares a type.
func (k ElementKind) IsType() bool {
	return k == KindClass || k == KindInterface || k == KindEnum
}

// ElementSpan locates one declaration in a source text. Offsets are byte
// offsets into the exact text that was scanned.
type ElementSpan struct {
	Kind               ElementKind
	Name               string
	Start              int  // First token of the declaration, annotations included
	End                int  // Just past the closing '}' or ';'
	SignatureEnd       int  // Offset of the body '{', terminating ';' or initializer '='
	Line               int  // 1-based line holding Start
	HasExistingComment bool // A doc or line comment already precedes the declaration
	Depth              int  // 0 for top-level types
	Parent             int  // Index of the enclosing element, -1 for top-level types
}

// Structure is the result of scanning one source file.
type Structure struct {
	Package  string
	Elements []ElementSpan
}

// Scanner locates documentable elements in Java source text.
type Scanner interface {
	// Scan returns the elements in order of their start offset. It returns an
	// error of kind ErrUnparseableSource when the text cannot be scanned
	// reliably; no partial result is returned in that case.
	Scan(text string) (*Structure, error)
}

// CommentFormat is the comment syntax used for an element.
type CommentFormat int

// Comment formats.
const (
	FormatJavaDoc CommentFormat = iota
	FormatLineComment
)

// String returns the name of the format.
func (f CommentFormat) String() string {
	if f == FormatLineComment {
		return "line"
	}
	return "javadoc"
}

// FormatFor returns the comment format used for the given kind.
func FormatFor(kind ElementKind) CommentFormat {
	if kind == KindField || kind == KindConstant {
		return FormatLineComment
	}
	return FormatJavaDoc
}

// RequestContext carries the surroundings of a documented element.
type RequestContext struct {
	Path          string
	Package       string
	EnclosingType string
}

// CommentRequest is everything needed to generate a comment for one element.
type CommentRequest struct {
	Target    ElementSpan
	Snippet   string
	Context   RequestContext
	Format    CommentFormat
	MaxTokens int
}

// PromptBuilder turns a scanned element into a CommentRequest.
type PromptBuilder interface {
	Build(text string, structure *Structure, index int, ctx RequestContext) (CommentRequest, error)
}

// Status is the outcome of a single element.
type Status int

// Element statuses.
const (
	StatusGenerated Status = iota
	StatusSkipped
	StatusFailed
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusGenerated:
		return "generated"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CommentResult is the outcome for one element.
type CommentResult struct {
	Target  ElementSpan
	Text    string // Comment body, set when Generated
	Status  Status
	Reason  string    // Why the element was skipped
	ErrKind ErrorKind // Set when Failed
	Err     error
}

// SourceFile is a file handed to the pipeline.
type SourceFile struct {
	Path string
	Text string
}

// FileState is a state of the per-file pipeline.
type FileState string

// File states.
const (
	StateScanning    FileState = "scanning"
	StateUnparseable FileState = "unparseable"
	StatePlanning    FileState = "planning"
	StateGenerating  FileState = "generating"
	StateApplying    FileState = "applying"
	StateDone        FileState = "done"
	StateFailed      FileState = "failed"
	StateCanceled    FileState = "canceled"
)

// Terminal reports whether no further transitions follow the state.
func (s FileState) Terminal() bool {
	switch s {
	case StateUnparseable, StateDone, StateFailed, StateCanceled:
		return true
	}
	return false
}

// FileOutcome is the result of processing one file.
type FileOutcome struct {
	Path         string
	OriginalText string
	FinalText    string // Equals OriginalText unless edits were planned
	State        FileState
	DryRun       bool
	Written      bool
	Applied      int
	Skipped      int
	Failed       int
	Results      []CommentResult
	Edits        []Edit    // Insertions that turn OriginalText into FinalText
	ErrKind      ErrorKind // File-level failure kind
	Err          error
}

// Changed reports whether the final text differs from the original.
func (o *FileOutcome) Changed() bool {
	return o.FinalText != o.OriginalText
}

// Proposals returns the generated results in source order.
func (o *FileOutcome) Proposals() []CommentResult {
	var out []CommentResult
	for _, r := range o.Results {
		if r.Status == StatusGenerated {
			out = append(out, r)
		}
	}
	return out
}

// Failure describes one failed file or element.
type Failure struct {
	Path    string    `json:"path"`
	Element string    `json:"element,omitempty"`
	Kind    string    `json:"kind,omitempty"`
	ErrKind ErrorKind `json:"error_kind"`
	Message string    `json:"message,omitempty"`
}

// RunOutcome aggregates the outcomes of a pipeline run.
type RunOutcome struct {
	FilesProcessed     int
	FilesWritten       int
	FilesUnparseable   int
	FilesFailed        int
	FilesCanceled      int
	ElementsDocumented int
	ElementsSkipped    int
	ElementsFailed     int
	Files              []*FileOutcome
	Failures           []Failure
}

// Add folds a file outcome into the aggregate.
func (r *RunOutcome) Add(o *FileOutcome) {
	r.FilesProcessed++
	r.Files = append(r.Files, o)
	r.ElementsDocumented += o.Applied
	r.ElementsSkipped += o.Skipped
	r.ElementsFailed += o.Failed
	if o.Written {
		r.FilesWritten++
	}
	for _, res := range o.Results {
		if res.Status != StatusFailed {
			continue
		}
		f := Failure{
			Path:    o.Path,
			Element: res.Target.Name,
			Kind:    res.Target.Kind.String(),
			ErrKind: res.ErrKind,
		}
		if res.Err != nil {
			f.Message = res.Err.Error()
		}
		r.Failures = append(r.Failures, f)
	}
	switch o.State {
	case StateUnparseable:
		r.FilesUnparseable++
	case StateFailed:
		r.FilesFailed++
	case StateCanceled:
		r.FilesCanceled++
	default:
		return
	}
	f := Failure{Path: o.Path, ErrKind: o.ErrKind}
	if o.Err != nil {
		f.Message = o.Err.Error()
	}
	r.Failures = append(r.Failures, f)
}

// FailedPaths returns the distinct paths named by the failures, in order.
func (r *RunOutcome) FailedPaths() []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range r.Failures {
		if seen[f.Path] {
			continue
		}
		seen[f.Path] = true
		out = append(out, f.Path)
	}
	return out
}

// Event reports progress of a pipeline run. Element events carry an
// ElementName; file events carry only a State.
type Event struct {
	Path        string
	ElementName string
	ElementKind ElementKind
	Status      Status
	State       FileState
	Reason      string
	ErrKind     ErrorKind
}

// IsFileEvent reports whether the event describes a file state change.
func (e Event) IsFileEvent() bool {
	return e.ElementName == ""
}

// FileSource yields the files of a run.
type FileSource interface {
	Files(ctx context.Context) iter.Seq2[SourceFile, error]
}

// BackupStore durably stores the original text of a file before it is
// rewritten.
type BackupStore interface {
	Backup(ctx context.Context, path, original string) error
}

// FileWriter replaces the content of a file.
type FileWriter interface {
	WriteFile(ctx context.Context, path, text string) error
}

// FailureStore persists run failures so a later run can target them.
type FailureStore interface {
	Save(path string, failures []Failure) error
	Load(path string) ([]Failure, error)
}

// PatchRenderer renders file outcomes as a patch.
type PatchRenderer interface {
	Render(outcomes []*FileOutcome) string
}

// PatchApplier applies a reviewed patch to the files it names.
type PatchApplier interface {
	Apply(ctx context.Context, patch io.Reader) (*RunOutcome, error)
}

// ChangeLister lists files that changed relative to a revision.
type ChangeLister interface {
	// ChangedFiles returns absolute paths under root that differ from ref.
	ChangedFiles(ctx context.Context, root, ref string) ([]string, error)
}

// Clipboard provides clipboard operations.
type Clipboard interface {
	Copy(content string) error
}
