package main

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/fwojciec/jdoc"
	"github.com/fwojciec/jdoc/bubbletea"
	"github.com/fwojciec/jdoc/chroma"
	"github.com/fwojciec/jdoc/clipboard"
	"github.com/fwojciec/jdoc/config"
	"github.com/fwojciec/jdoc/fs"
	"github.com/fwojciec/jdoc/gemini"
	"github.com/fwojciec/jdoc/generation"
	"github.com/fwojciec/jdoc/git"
	"github.com/fwojciec/jdoc/gitdiff"
	"github.com/fwojciec/jdoc/java"
	"github.com/fwojciec/jdoc/jsonl"
	jdoclipgloss "github.com/fwojciec/jdoc/lipgloss"
	"github.com/fwojciec/jdoc/lru"
	"github.com/fwojciec/jdoc/ollama"
	"github.com/fwojciec/jdoc/pipeline"
	"github.com/fwojciec/jdoc/udiff"
	"github.com/spf13/cobra"
)

// Deps are the process resources and factories the commands use. Tests
// replace them.
type Deps struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive enables the progress view and highlighted proposals.
	Interactive bool

	// NewTextGenerator builds the provider for cfg.
	NewTextGenerator func(ctx context.Context, cfg *config.Config) (jdoc.TextGenerator, io.Closer, error)

	Changes   jdoc.ChangeLister
	Clipboard jdoc.Clipboard
}

// DefaultDeps wires the commands to the real terminal and providers.
func DefaultDeps() Deps {
	return Deps{
		Stdin:            os.Stdin,
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		Interactive:      isTerminal(os.Stderr) && isTerminal(os.Stdout),
		NewTextGenerator: newTextGenerator,
		Changes:          git.NewRunner(),
		Clipboard:        clipboard.NewSystem(),
	}
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

func newTextGenerator(ctx context.Context, cfg *config.Config) (jdoc.TextGenerator, io.Closer, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		client, err := ollama.NewClient()
		if err != nil {
			return nil, nil, err
		}
		return ollama.NewGenerator(client, cfg.Model), nopCloser{}, nil
	default:
		client, err := gemini.NewClient(ctx, cfg.APIKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		gen := gemini.NewGenerator(client, cfg.Model)
		gen.SetThinkingLevel(cfg.Thinking)
		return gen, client, nil
	}
}

// NewRootCommand builds the jdoc command tree.
func NewRootCommand(deps Deps) *cobra.Command {
	var (
		configFile   string
		patchPath    string
		copyPatch    bool
		failures     string
		onlyFailed   string
		changedSince string
		events       string
	)

	cmd := &cobra.Command{
		Use:   "jdoc [flags] <project>",
		Short: "Add generated Javadoc comments to Java sources",
		Long: `jdoc scans the Java files of a project, asks a language model to describe
each undocumented class, method and field, and inserts the comments above
the declarations. Nothing else in the file changes.

Use --dry-run to preview the comments (optionally as a patch with --patch)
and "jdoc apply" to apply a reviewed patch.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, root, configFile)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runAnnotate(cmd.Context(), deps, cfg, root, runFlags{
				patch:        patchPath,
				copyPatch:    copyPatch,
				failures:     failures,
				onlyFailed:   onlyFailed,
				changedSince: changedSince,
				events:       events,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "configuration file (default <project>/"+config.FileName+")")
	flags.String("provider", config.ProviderGemini, "model provider: gemini or ollama")
	flags.String("model", "", "model name (provider default when empty)")
	flags.String("language", "English", "language the comments are written in")
	flags.String("thinking", "", "Gemini thinking level: minimal, low, medium or high")
	flags.Int("concurrency", 4, "files processed at once")
	flags.Int("max-in-flight", 4, "provider requests in flight at once")
	flags.Int("max-tokens", generation.DefaultMaxTokens, "output token budget per request")
	flags.Int("max-attempts", generation.DefaultMaxAttempts, "attempts per request before giving up")
	flags.Duration("request-timeout", generation.DefaultRequestTimeout, "timeout of a single provider request")
	flags.Bool("dry-run", false, "show proposed comments without writing files")
	flags.Bool("no-backup", false, "do not back up files before rewriting them")
	flags.String("backup-dir", fs.DefaultBackupDir, "backup directory, relative to the project")
	flags.Bool("skip-accessors", false, "skip getters and setters")
	flags.StringSlice("exclude", nil, "additional gitignore-style exclusion patterns")
	flags.Bool("no-cache", false, "do not reuse cached comments")
	flags.String("cache-dir", "", "response cache directory (default $XDG_CACHE_HOME/jdoc)")
	flags.String("theme", "dark", "report theme: dark or light")
	flags.Bool("no-progress", false, "do not show the progress view")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-file", "", "write logs to a rotating file instead of stderr")
	flags.StringVar(&patchPath, "patch", "", "with --dry-run, write a unified patch to this file (- for stdout)")
	flags.BoolVar(&copyPatch, "copy-patch", false, "with --dry-run, copy the patch to the clipboard")
	flags.StringVar(&failures, "failures", "", "write failures to this JSONL file")
	flags.StringVar(&onlyFailed, "only-failed", "", "only process files listed in this failures file")
	flags.StringVar(&changedSince, "changed-since", "", "only process files changed since this git ref")
	flags.StringVar(&events, "events", "", "append progress events to this JSONL file")

	cmd.AddCommand(newApplyCommand(deps))
	return cmd
}

// loadConfig merges configuration sources and folds in the negated flags.
func loadConfig(cmd *cobra.Command, root, file string) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{Root: root, File: file, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if v, _ := flags.GetBool("no-backup"); v {
		cfg.Backup = false
	}
	if v, _ := flags.GetBool("no-cache"); v {
		cfg.Cache = false
	}
	if v, _ := flags.GetBool("no-progress"); v {
		cfg.Progress = false
	}
	return cfg, nil
}

type runFlags struct {
	patch        string
	copyPatch    bool
	failures     string
	onlyFailed   string
	changedSince string
	events       string
}

func runAnnotate(ctx context.Context, deps Deps, cfg *config.Config, root string, rf runFlags) error {
	logger, logCloser, err := newLogger(cfg.LogLevel, cfg.LogFile, deps.Stderr)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	text, closer, err := deps.NewTextGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	generator, err := buildGenerator(text, cfg, logger)
	if err != nil {
		return err
	}

	store := jsonl.NewStore()
	walker := fs.NewWalker(root, chroma.NewDetector())
	walker.Excludes = append(walker.Excludes, cfg.Exclude...)
	backupDir := resolve(root, cfg.BackupDir)
	if rel, err := filepath.Rel(root, backupDir); err == nil && filepath.IsLocal(rel) {
		walker.Excludes = append(walker.Excludes, filepath.ToSlash(rel)+"/")
	}
	walker.Only, err = selectFiles(ctx, deps, store, root, rf)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	files := collect(walker.Files(ctx))
	logger.Info("starting run", "root", root, "files", len(files), "dry_run", cfg.DryRun, "provider", cfg.Provider)

	p := &pipeline.Pipeline{
		Scanner:   java.NewScanner(),
		Prompts:   &jdoc.DefaultPromptBuilder{MaxSnippetBytes: jdoc.DefaultMaxSnippetBytes},
		Generator: generator,
		Writer:    fs.NewWriter(),
		Logger:    logger,
	}
	if cfg.Backup {
		p.Backup = fs.NewBackupStore(root, backupDir)
	}

	var handlers []func(jdoc.Event)
	if rf.events != "" {
		eventLog, err := jsonl.OpenEventLog(rf.events)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		defer eventLog.Close()
		handlers = append(handlers, eventLog.Record)
	}

	theme := jdoclipgloss.ThemeByName(cfg.Theme)
	var progress *bubbletea.Progress
	if cfg.Progress && deps.Interactive {
		progress = bubbletea.NewProgress(len(files), deps.Stdin, deps.Stderr, cancel,
			bubbletea.WithRenderer(lipgloss.NewRenderer(deps.Stderr)),
			bubbletea.WithStyles(theme.Styles()),
			bubbletea.WithRoot(root),
		)
		handlers = append(handlers, progress.OnEvent)
		progress.Start()
	}
	if len(handlers) > 0 {
		p.OnEvent = func(ev jdoc.Event) {
			for _, h := range handlers {
				h(ev)
			}
		}
	}

	reporterOpts := []jdoclipgloss.ReporterOption{
		jdoclipgloss.WithRoot(root),
		jdoclipgloss.WithRenderer(lipgloss.NewRenderer(deps.Stdout)),
	}
	if deps.Interactive {
		if hl, err := chroma.NewHighlighter("", ""); err == nil {
			reporterOpts = append(reporterOpts, jdoclipgloss.WithHighlighter(hl))
		}
	}

	app := &App{
		Files:    sliceSource(files),
		Pipeline: p,
		Options: pipeline.Options{
			DryRun:              cfg.DryRun,
			MaxConcurrency:      cfg.Concurrency,
			MaxTokensPerRequest: cfg.MaxTokens,
			SkipAccessors:       cfg.SkipAccessors,
		},
		Renderer:     udiff.NewRenderer(root),
		FailuresPath: rf.failures,
		Failures:     store,
		Reporter:     jdoclipgloss.NewReporter(theme, reporterOpts...),
		Stdout:       deps.Stdout,
	}
	if progress != nil {
		app.OnProcessed = func() {
			if err := progress.Finish(); err != nil {
				logger.Warn("progress view failed", "err", err)
			}
		}
	}
	if cfg.DryRun && rf.patch != "" {
		out, closePatch, err := openOutput(rf.patch, deps.Stdout)
		if err != nil {
			return err
		}
		defer closePatch()
		app.Patch = out
	}
	if cfg.DryRun && rf.copyPatch {
		if deps.Clipboard == nil {
			return fmt.Errorf("no clipboard available")
		}
		app.Clipboard = deps.Clipboard
	}

	run, err := app.Run(ctx)
	if run != nil {
		logger.Info("run finished",
			"files", run.FilesProcessed,
			"written", run.FilesWritten,
			"documented", run.ElementsDocumented,
			"failed", run.ElementsFailed)
		for _, path := range run.FailedPaths() {
			logger.Debug("file has failures", "path", path)
		}
	}
	return err
}

// selectFiles returns the paths a run is restricted to, or nil for all
// files. Both filters together select their intersection.
func selectFiles(ctx context.Context, deps Deps, store jdoc.FailureStore, root string, rf runFlags) (map[string]bool, error) {
	var only map[string]bool
	if rf.onlyFailed != "" {
		previous, err := store.Load(rf.onlyFailed)
		if err != nil {
			return nil, fmt.Errorf("load failures: %w", err)
		}
		only = make(map[string]bool, len(previous))
		for _, f := range previous {
			only[f.Path] = true
		}
	}
	if rf.changedSince == "" {
		return only, nil
	}
	if deps.Changes == nil {
		return nil, fmt.Errorf("--changed-since needs git")
	}
	paths, err := deps.Changes.ChangedFiles(ctx, root, rf.changedSince)
	if err != nil {
		return nil, err
	}
	changed := make(map[string]bool, len(paths))
	for _, p := range paths {
		if only == nil || only[p] {
			changed[p] = true
		}
	}
	return changed, nil
}

func buildGenerator(text jdoc.TextGenerator, cfg *config.Config, logger *log.Logger) (jdoc.CommentGenerator, error) {
	var gen jdoc.CommentGenerator = generation.NewClient(text,
		generation.WithMaxAttempts(cfg.MaxAttempts),
		generation.WithBackoff(cfg.BaseDelay, cfg.MaxDelay),
		generation.WithTimeout(cfg.RequestTimeout),
		generation.WithMaxTokens(cfg.MaxTokens),
		generation.WithLanguage(cfg.Language),
		generation.WithCeiling(generation.NewCeiling(cfg.MaxInFlight)),
		generation.WithLogger(logger),
	)
	if !cfg.Cache {
		return gen, nil
	}
	dir := cfg.CacheDir
	if dir == "" {
		dir = fs.DefaultCacheDir()
	}
	gen = fs.NewGenerator(gen, dir, cacheNamespace(cfg))
	memory, err := lru.NewGenerator(gen, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return memory, nil
}

func cacheNamespace(cfg *config.Config) string {
	model := cfg.Model
	if model == "" {
		switch cfg.Provider {
		case config.ProviderOllama:
			model = ollama.DefaultModel
		default:
			model = gemini.DefaultModel
		}
	}
	return cfg.Provider + "/" + model + "/" + cfg.Language
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// openOutput opens path for writing; "-" means w.
func openOutput(path string, w io.Writer) (io.Writer, func(), error) {
	if path == "-" {
		return w, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

type sourceItem struct {
	file jdoc.SourceFile
	err  error
}

// collect reads the walk up front so the progress view knows the total.
func collect(seq iter.Seq2[jdoc.SourceFile, error]) []sourceItem {
	var items []sourceItem
	for file, err := range seq {
		items = append(items, sourceItem{file: file, err: err})
	}
	return items
}

type sliceSource []sourceItem

func (s sliceSource) Files(ctx context.Context) iter.Seq2[jdoc.SourceFile, error] {
	return func(yield func(jdoc.SourceFile, error) bool) {
		for _, it := range s {
			if ctx.Err() != nil || !yield(it.file, it.err) {
				return
			}
		}
	}
}

func newApplyCommand(deps Deps) *cobra.Command {
	var (
		root       string
		configFile string
	)
	cmd := &cobra.Command{
		Use:   "apply [flags] <patch>",
		Short: "Apply a reviewed dry-run patch",
		Long: `apply inserts the comments of a patch written by "jdoc --dry-run --patch".
Only insertions are accepted; files that changed since the patch was made
are left untouched and reported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			absRoot, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, absRoot, configFile)
			if err != nil {
				return err
			}
			logger, logCloser, err := newLogger(cfg.LogLevel, cfg.LogFile, deps.Stderr)
			if err != nil {
				return err
			}
			defer logCloser.Close()

			var patch io.Reader = deps.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				patch = f
			}

			var backup jdoc.BackupStore
			if cfg.Backup {
				backup = fs.NewBackupStore(absRoot, resolve(absRoot, cfg.BackupDir))
			}
			app := &ApplyApp{
				Applier: gitdiff.NewApplier(absRoot, backup, fs.NewWriter()),
				Patch:   patch,
				Reporter: jdoclipgloss.NewReporter(jdoclipgloss.ThemeByName(cfg.Theme),
					jdoclipgloss.WithRoot(absRoot),
					jdoclipgloss.WithRenderer(lipgloss.NewRenderer(deps.Stdout)),
				),
				Stdout: deps.Stdout,
			}
			run, err := app.Run(cmd.Context())
			if run != nil {
				logger.Info("patch applied", "files", run.FilesProcessed, "written", run.FilesWritten)
			}
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&root, "root", ".", "project directory the patch paths are relative to")
	flags.StringVar(&configFile, "config", "", "configuration file (default <root>/"+config.FileName+")")
	flags.Bool("no-backup", false, "do not back up files before rewriting them")
	flags.String("backup-dir", fs.DefaultBackupDir, "backup directory, relative to the project")
	flags.String("theme", "dark", "report theme: dark or light")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-file", "", "write logs to a rotating file instead of stderr")
	return cmd
}
