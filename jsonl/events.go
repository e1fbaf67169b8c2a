package jsonl

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fwojciec/jdoc"
)

// EventLog appends progress events to a JSONL file, one object per line.
type EventLog struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
	err error

	now func() time.Time
}

type eventRecord struct {
	Time    time.Time `json:"time"`
	Path    string    `json:"path"`
	Element string    `json:"element,omitempty"`
	Kind    string    `json:"kind,omitempty"`
	State   string    `json:"state,omitempty"`
	Status  string    `json:"status,omitempty"`
	Reason  string    `json:"reason,omitempty"`
	Error   string    `json:"error_kind,omitempty"`
}

// OpenEventLog opens path for appending, creating parent directories if needed.
func OpenEventLog(path string) (*EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &EventLog{f: f, enc: json.NewEncoder(f), now: time.Now}, nil
}

// Record appends ev. It is safe for concurrent use and suits
// pipeline.Pipeline.OnEvent directly; the first write error is kept and
// returned by Close.
func (l *EventLog) Record(ev jdoc.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return
	}

	rec := eventRecord{
		Time:    l.now().UTC(),
		Path:    ev.Path,
		Element: ev.ElementName,
		State:   string(ev.State),
		Reason:  ev.Reason,
		Error:   string(ev.ErrKind),
	}
	if !ev.IsFileEvent() {
		rec.Kind = ev.ElementKind.String()
		rec.Status = ev.Status.String()
	}
	l.err = l.enc.Encode(rec)
}

// Close closes the file and reports the first write error.
func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	closeErr := l.f.Close()
	if l.err != nil {
		return l.err
	}
	return closeErr
}
