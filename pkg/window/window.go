// Package window implements the tumbling observation window: it folds
// noisy per-frame signals into per-window maxima, admits background
// emotion samples guarded by a window sequence number, and produces one
// immutable Summary per closed window.
package window

import (
	"sync"
	"time"

	"github.com/vigil-agent/go-vigil/pkg/perception"
)

// Config holds window timing parameters.
type Config struct {
	Duration       time.Duration // Tumbling window length
	SampleInterval time.Duration // Minimum gap between emotion sample attempts
	SampleTimeout  time.Duration // Hard bound on one classification attempt
}

// DefaultConfig returns the production window timing.
func DefaultConfig() Config {
	return Config{
		Duration:       30 * time.Second,
		SampleInterval: 8 * time.Second,
		SampleTimeout:  30 * time.Second,
	}
}

// Summary is the immutable result of one closed window.
type Summary struct {
	Seq uint64 // Window identity the summary came from

	// Emotion aggregate. HasEmotion is false when no usable sample
	// arrived in the window.
	HasEmotion        bool
	DominantEmotion   string
	EmotionConfidence float64
	SampleCount       int

	// Yawn aggregate, running maxima over the window.
	Yawned          bool
	MaxYawnDuration time.Duration
	MaxRatio        float64
}

// Snapshot is a read-only view of the live window for the status server.
type Snapshot struct {
	Seq         uint64        `json:"seq"`
	Open        bool          `json:"open"`
	Elapsed     time.Duration `json:"elapsed"`
	Remaining   time.Duration `json:"remaining"`
	SampleCount int           `json:"sample_count"`
	Yawned      bool          `json:"yawned"`
	MaxRatio    float64       `json:"max_ratio"`
}

// Aggregator owns the single live window state. Exactly one window is
// live at a time; its sequence strictly increases on every reset, and
// background results carrying a stale sequence are dropped on delivery.
type Aggregator struct {
	cfg Config

	mu        sync.Mutex
	seq       uint64
	open      bool
	startTime time.Time

	yawned          bool
	maxYawnDuration time.Duration
	maxRatio        float64
	samples         []perception.EmotionSample
}

// NewAggregator creates an aggregator with no window open.
func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// OnFrame folds one frame's signals. Absence resets the window
// immediately; presence opens a window if none is open and folds the
// yawn signal into the running maxima.
func (a *Aggregator) OnFrame(now time.Time, present bool, yawn perception.YawnSample) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !present {
		a.resetLocked(false, now)
		return
	}

	if !a.open {
		a.seq++
		a.open = true
		a.startTime = now
	}

	a.yawned = a.yawned || yawn.Sustained
	if yawn.Duration > a.maxYawnDuration {
		a.maxYawnDuration = yawn.Duration
	}
	if yawn.Ratio > a.maxRatio {
		a.maxRatio = yawn.Ratio
	}
}

// WindowComplete reports whether the live window has run its duration.
func (a *Aggregator) WindowComplete(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.open && now.Sub(a.startTime) >= a.cfg.Duration
}

// CloseAndReset summarizes the live window and immediately opens the
// next one (the subject is still present, no re-detection needed).
func (a *Aggregator) CloseAndReset(now time.Time) Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Summary{
		Seq:             a.seq,
		Yawned:          a.yawned,
		MaxYawnDuration: a.maxYawnDuration,
		MaxRatio:        a.maxRatio,
		SampleCount:     len(a.samples),
	}
	if label, conf, ok := dominantEmotion(a.samples); ok {
		s.HasEmotion = true
		s.DominantEmotion = label
		s.EmotionConfidence = conf
	}

	a.resetLocked(true, now)
	return s
}

// ResetOnPresenceLoss discards the in-flight window. Guards against
// stale sustained-yawn state from a different subject or lighting event.
func (a *Aggregator) ResetOnPresenceLoss() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked(false, time.Time{})
}

// Seq returns the current window sequence.
func (a *Aggregator) Seq() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seq
}

// Open reports whether a window is currently open.
func (a *Aggregator) Open() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.open
}

// Snapshot returns the live window view at now.
func (a *Aggregator) Snapshot(now time.Time) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{
		Seq:         a.seq,
		Open:        a.open,
		SampleCount: len(a.samples),
		Yawned:      a.yawned,
		MaxRatio:    a.maxRatio,
	}
	if a.open {
		snap.Elapsed = now.Sub(a.startTime)
		if snap.Elapsed < a.cfg.Duration {
			snap.Remaining = a.cfg.Duration - snap.Elapsed
		}
	}
	return snap
}

// deliver appends a background classification result, unless the window
// it was captured for has since been reset. Stale results are dropped
// silently: an expected race, not an error.
func (a *Aggregator) deliver(seq uint64, sample perception.EmotionSample) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if seq != a.seq {
		return false
	}

	a.samples = append(a.samples, sample)
	return true
}

// resetLocked clears accumulated state and bumps the sequence so any
// in-flight background result is invalidated. reopen keeps the window
// running from now (used when a window closes with the subject present).
func (a *Aggregator) resetLocked(reopen bool, now time.Time) {
	a.seq++
	a.open = reopen
	if reopen {
		a.startTime = now
	} else {
		a.startTime = time.Time{}
	}
	a.yawned = false
	a.maxYawnDuration = 0
	a.maxRatio = 0
	a.samples = nil
}

// dominantEmotion picks the most frequently sampled label; ties break
// by the highest observed confidence for that label, then by first
// appearance in the window, so the result is deterministic. The
// reported confidence is the label's peak, not its mean.
func dominantEmotion(samples []perception.EmotionSample) (string, float64, bool) {
	if len(samples) == 0 {
		return "", 0, false
	}

	counts := make(map[string]int)
	peak := make(map[string]float64)
	var order []string

	for _, s := range samples {
		if s.Label == "" {
			continue
		}
		if counts[s.Label] == 0 {
			order = append(order, s.Label)
		}
		counts[s.Label]++
		if s.Confidence > peak[s.Label] {
			peak[s.Label] = s.Confidence
		}
	}

	if len(order) == 0 {
		return "", 0, false
	}

	winner := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[winner] ||
			(counts[label] == counts[winner] && peak[label] > peak[winner]) {
			winner = label
		}
	}

	return winner, peak[winner], true
}
