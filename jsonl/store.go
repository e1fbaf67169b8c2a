// Package jsonl persists run failures and progress events as JSON Lines.
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/jdoc"
)

// Compile-time interface verification.
var _ jdoc.FailureStore = (*Store)(nil)

// maxLineSize is the maximum size for a single JSONL line (1MB).
const maxLineSize = 1024 * 1024

// Store persists and retrieves Failure records as JSONL.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Load reads failures from a JSONL file. Returns empty slice if file doesn't exist.
func (s *Store) Load(path string) ([]jdoc.Failure, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var failures []jdoc.Failure
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var fl jdoc.Failure
		if err := json.Unmarshal([]byte(line), &fl); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		failures = append(failures, fl)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return failures, nil
}

// Save writes failures to a JSONL file, creating parent directories if needed.
// An empty list truncates the file.
func (s *Store) Save(path string, failures []jdoc.Failure) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, fl := range failures {
		if err := enc.Encode(fl); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
