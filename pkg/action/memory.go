package action

import (
	"sync"
	"time"

	"github.com/vigil-agent/go-vigil/pkg/decision"
	"go.uber.org/atomic"
)

// Memory is the scheduler's cross-window state. It is constructed once
// at process start, owned by the caller, and lives for the whole run;
// nothing in it survives a restart.
type Memory struct {
	mu sync.Mutex

	prevState    decision.State // "" until the first decision
	lastStressAt time.Time
	drowsyStreak int

	// Focus session. focusOpen gates focusStart/focusID: they are only
	// meaningful while a session is open, and a session is only open
	// while prevState is engaged.
	focusOpen  bool
	focusStart time.Time
	focusID    string

	// breakActive prevents more than one break countdown at a time.
	// Atomic because the countdown goroutine clears it outside the
	// scheduler's critical section.
	breakActive atomic.Bool
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Snapshot is a read-only view of the memory for the status server.
type Snapshot struct {
	PreviousState decision.State `json:"previous_state"`
	DrowsyStreak  int            `json:"drowsy_streak"`
	FocusOpen     bool           `json:"focus_open"`
	FocusElapsed  time.Duration  `json:"focus_elapsed"`
	BreakActive   bool           `json:"break_active"`
}

// Snapshot captures the current memory state at now.
func (m *Memory) Snapshot(now time.Time) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		PreviousState: m.prevState,
		DrowsyStreak:  m.drowsyStreak,
		FocusOpen:     m.focusOpen,
		BreakActive:   m.breakActive.Load(),
	}
	if m.focusOpen {
		s.FocusElapsed = now.Sub(m.focusStart)
	}
	return s
}
