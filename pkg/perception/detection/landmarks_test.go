package detection

import (
	"testing"
	"time"
)

func newTracker() sustainTracker {
	return sustainTracker{
		openThresh:     0.08,
		sustainMinimum: 1600 * time.Millisecond,
	}
}

func TestSustainTracker_ClosedMouth(t *testing.T) {
	tr := newTracker()
	now := time.Now()

	s := tr.Update(now, 0.03)
	if s.Sustained {
		t.Error("Closed mouth should not be sustained")
	}
	if s.Duration != 0 {
		t.Errorf("Duration: got %v, want 0", s.Duration)
	}
	if s.Ratio != 0.03 {
		t.Errorf("Ratio: got %v, want 0.03", s.Ratio)
	}
}

func TestSustainTracker_OpenBelowMinimum(t *testing.T) {
	tr := newTracker()
	start := time.Now()

	tr.Update(start, 0.12)
	s := tr.Update(start.Add(1*time.Second), 0.12)

	if s.Sustained {
		t.Error("1s open should not be sustained yet")
	}
	if s.Duration != 1*time.Second {
		t.Errorf("Duration: got %v, want 1s", s.Duration)
	}
}

func TestSustainTracker_SustainedYawn(t *testing.T) {
	tr := newTracker()
	start := time.Now()

	tr.Update(start, 0.12)
	s := tr.Update(start.Add(2*time.Second), 0.15)

	if !s.Sustained {
		t.Error("2s open should be sustained")
	}
	if s.Duration != 2*time.Second {
		t.Errorf("Duration: got %v, want 2s", s.Duration)
	}
}

func TestSustainTracker_CloseResetsTimer(t *testing.T) {
	tr := newTracker()
	start := time.Now()

	tr.Update(start, 0.12)
	tr.Update(start.Add(1*time.Second), 0.03) // mouth closes
	s := tr.Update(start.Add(2*time.Second), 0.12)

	// Timer restarted: only open since the 2s mark
	if s.Sustained {
		t.Error("Reopened mouth should not inherit previous open time")
	}
	if s.Duration != 0 {
		t.Errorf("Duration after reopen: got %v, want 0", s.Duration)
	}
}

func TestSustainTracker_Clear(t *testing.T) {
	tr := newTracker()
	start := time.Now()

	tr.Update(start, 0.12)
	tr.Clear()
	s := tr.Update(start.Add(3*time.Second), 0.12)

	if s.Sustained {
		t.Error("Clear should forget the open stretch")
	}
}

func TestSustainTracker_ThresholdBoundary(t *testing.T) {
	tr := newTracker()
	now := time.Now()

	// Exactly at threshold counts as closed
	s := tr.Update(now, 0.08)
	if s.Duration != 0 {
		t.Errorf("At-threshold ratio should not open: got duration %v", s.Duration)
	}
}
