// Package eventlog provides the append-only event stream and the sqlite
// decision history. The text log is the primary sink: one human-readable
// line per event. Failing to create it at startup is fatal; failing to
// append later is surfaced as a warning and processing continues.
package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// Log is the append-only text event sink.
// Line format: [<timestamp>] <EVENT> | key=value | ...
type Log struct {
	path string

	mu sync.Mutex
	f  *os.File

	now func() time.Time
}

// Open creates the log directory if needed and opens the event log for
// appending. A directory that cannot be created is a startup-fatal error.
func Open(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(dir, "events.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	return &Log{path: path, f: f, now: time.Now}, nil
}

// Event appends one event line. kv is interpreted as key, value pairs.
func (l *Log) Event(code string, kv ...any) error {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(l.now().Format(timeLayout))
	b.WriteString("] ")
	b.WriteString(code)

	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " | %v=%v", kv[i], kv[i+1])
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.f.WriteString(b.String()); err != nil {
		return fmt.Errorf("append event log: %w", err)
	}
	return nil
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
