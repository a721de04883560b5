package eventlog

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestOpen_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	l, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer l.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Log directory was not created: %v", err)
	}
}

func TestOpen_UncreatableDirFails(t *testing.T) {
	// A file where the directory should go.
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(filepath.Join(blocker, "logs")); err == nil {
		t.Error("Expected error when log directory cannot be created")
	}
}

func TestEvent_LineFormat(t *testing.T) {
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer l.Close()

	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	if err := l.Event("ACTION=stress_notify_skipped", "cooldown_remaining", "12s"); err != nil {
		t.Fatalf("Event failed: %v", err)
	}

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}

	want := "[2026-03-14 09:26:53] ACTION=stress_notify_skipped | cooldown_remaining=12s\n"
	if string(data) != want {
		t.Errorf("Line: got %q, want %q", string(data), want)
	}
}

func TestEvent_AppendsNewlineTerminatedLines(t *testing.T) {
	l, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer l.Close()

	l.Event("STATE=NORMAL", "reason", "emotion=neutral conf=70.0")
	l.Event("ACTION=none", "state", "normal")

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), string(data))
	}

	stamp := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] `)
	for _, line := range lines {
		if !stamp.MatchString(line) {
			t.Errorf("Line missing timestamp prefix: %q", line)
		}
	}
}
