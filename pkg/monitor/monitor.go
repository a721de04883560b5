// Package monitor runs the frame-processing loop: capture, presence
// detection, yawn folding, background emotion sampling, and the
// per-window decision/action handoff. No error on this path terminates
// the loop; signals degrade, processing continues.
package monitor

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/vigil-agent/go-vigil/internal/log"
	"github.com/vigil-agent/go-vigil/pkg/action"
	"github.com/vigil-agent/go-vigil/pkg/camera"
	"github.com/vigil-agent/go-vigil/pkg/decision"
	"github.com/vigil-agent/go-vigil/pkg/perception"
	"github.com/vigil-agent/go-vigil/pkg/status"
	"github.com/vigil-agent/go-vigil/pkg/window"
)

// Config holds loop timing.
type Config struct {
	FrameInterval time.Duration // Cadence of the capture loop
}

// DefaultConfig returns the production frame cadence.
func DefaultConfig() Config {
	return Config{FrameInterval: 200 * time.Millisecond}
}

// CropFunc cuts a face region out of a JPEG frame.
// detection.CropJPEG in production; nil passes the whole frame through.
type CropFunc func(frame []byte, region image.Rectangle) ([]byte, error)

// Monitor owns the frame loop and the window-close handoff.
type Monitor struct {
	cfg       Config
	runID     string
	source    camera.Source
	faces     perception.FaceDetector
	yawns     perception.YawnMeter
	agg       *window.Aggregator
	sampler   *window.Sampler
	scheduler *action.Scheduler
	memory    *action.Memory
	crop      CropFunc

	mu           sync.RWMutex
	facePresent  bool
	lastDecision decision.Decision
}

// New wires the loop's collaborators together.
func New(cfg Config, runID string, source camera.Source,
	faces perception.FaceDetector, yawns perception.YawnMeter,
	agg *window.Aggregator, sampler *window.Sampler,
	scheduler *action.Scheduler, memory *action.Memory, crop CropFunc) *Monitor {
	return &Monitor{
		cfg:       cfg,
		runID:     runID,
		source:    source,
		faces:     faces,
		yawns:     yawns,
		agg:       agg,
		sampler:   sampler,
		scheduler: scheduler,
		memory:    memory,
		crop:      crop,
	}
}

// Run drives the frame loop until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.FrameInterval)
	defer ticker.Stop()

	log.Info("monitor started",
		"run", m.runID, "frame_interval", m.cfg.FrameInterval)

	for {
		select {
		case <-ctx.Done():
			log.Info("monitor stopped", "run", m.runID)
			return ctx.Err()
		case <-ticker.C:
			m.processFrame(ctx, time.Now())
		}
	}
}

// State returns the live snapshot for the status server.
func (m *Monitor) State() status.State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	return status.State{
		RunID:        m.runID,
		FacePresent:  m.facePresent,
		Window:       m.agg.Snapshot(now),
		Memory:       m.memory.Snapshot(now),
		LastDecision: m.lastDecision,
	}
}

// processFrame handles one tick of the loop.
func (m *Monitor) processFrame(ctx context.Context, now time.Time) {
	frame, err := m.source.CaptureJPEG()
	if err != nil {
		log.Warn("frame capture failed", "error", err)
		return
	}

	// Any detector error degrades to "absent".
	pres, err := m.faces.Detect(frame)
	if err != nil {
		pres = perception.Presence{}
	}

	if !pres.Found {
		m.agg.OnFrame(now, false, perception.YawnSample{})
		// Forget sustain timing so a returning (possibly different)
		// subject never inherits a half-finished yawn.
		m.yawns.Reset()
		m.setPresent(false)
		return
	}
	m.setPresent(true)

	yawn := m.yawns.Measure(frame)
	m.agg.OnFrame(now, true, yawn)

	face := frame
	if m.crop != nil {
		if cropped, err := m.crop(frame, pres.Region); err == nil {
			face = cropped
		} else {
			log.Debug("face crop failed", "error", err)
		}
	}
	m.sampler.MaybeSample(ctx, now, face)

	if m.agg.WindowComplete(now) {
		summary := m.agg.CloseAndReset(now)
		d := decision.Decide(summary)

		log.Info("window decision",
			"seq", summary.Seq, "state", d.State, "reason", d.Reason,
			"samples", summary.SampleCount)

		m.scheduler.Handle(summary.Seq, d)

		m.mu.Lock()
		m.lastDecision = d
		m.mu.Unlock()
	}
}

func (m *Monitor) setPresent(present bool) {
	m.mu.Lock()
	m.facePresent = present
	m.mu.Unlock()
}
