package fs

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"unicode/utf8"

	"github.com/fwojciec/jdoc"
	ignore "github.com/sabhiram/go-gitignore"
)

// Compile-time interface verification.
var _ jdoc.FileSource = (*Walker)(nil)

// DefaultIgnores are excluded in every project.
var DefaultIgnores = []string{
	".git/",
	".idea/",
	".gradle/",
	".svn/",
	"target/",
	"build/",
	"out/",
	"bin/",
	"node_modules/",
}

// IgnoreFile is the project-level exclusion file read next to .gitignore.
const IgnoreFile = ".jdocignore"

// Walker yields the source files of a project in lexical order.
type Walker struct {
	Root     string
	Excludes []string
	Detector jdoc.LanguageDetector

	// Language is the detector name a file must match. Defaults to Java.
	Language string

	// Only restricts the walk to the given paths when non-nil.
	Only map[string]bool
}

// NewWalker creates a Walker for root.
func NewWalker(root string, detector jdoc.LanguageDetector) *Walker {
	return &Walker{Root: root, Detector: detector}
}

// Files walks Root and yields each matching file. Unreadable or non-UTF-8
// files are yielded with an error; the walk continues past them.
func (w *Walker) Files(ctx context.Context) iter.Seq2[jdoc.SourceFile, error] {
	return func(yield func(jdoc.SourceFile, error) bool) {
		matcher := w.matcher()
		language := w.Language
		if language == "" {
			language = jdoc.LanguageJava
		}

		err := filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				if path == w.Root {
					return err
				}
				if !yield(jdoc.SourceFile{Path: path}, err) {
					return fs.SkipAll
				}
				return nil
			}
			rel, relErr := filepath.Rel(w.Root, path)
			if relErr != nil || rel == "." {
				return nil
			}
			rel = filepath.ToSlash(rel)
			if d.IsDir() {
				if matcher.MatchesPath(rel + "/") {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || matcher.MatchesPath(rel) {
				return nil
			}
			if w.Only != nil && !w.Only[path] {
				return nil
			}
			if w.Detector != nil && w.Detector.DetectFromPath(path) != language {
				return nil
			}

			data, readErr := os.ReadFile(path)
			if readErr == nil && !utf8.Valid(data) {
				readErr = fmt.Errorf("file is not valid UTF-8")
			}
			if readErr != nil {
				if !yield(jdoc.SourceFile{Path: path}, readErr) {
					return fs.SkipAll
				}
				return nil
			}
			if !yield(jdoc.SourceFile{Path: path, Text: string(data)}, nil) {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			yield(jdoc.SourceFile{Path: w.Root}, err)
		}
	}
}

func (w *Walker) matcher() *ignore.GitIgnore {
	rules := slices.Clone(DefaultIgnores)
	rules = append(rules, DefaultBackupDir+"/")
	for _, name := range []string{".gitignore", IgnoreFile} {
		if lines, err := readIgnoreFile(filepath.Join(w.Root, name)); err == nil {
			rules = append(rules, lines...)
		}
	}
	rules = append(rules, w.Excludes...)
	return ignore.CompileIgnoreLines(rules...)
}

func readIgnoreFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
