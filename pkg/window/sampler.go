package window

import (
	"context"
	"sync"
	"time"

	"github.com/vigil-agent/go-vigil/internal/log"
	"github.com/vigil-agent/go-vigil/pkg/perception"
	"go.uber.org/atomic"
)

// Sampler issues at most one in-flight background classification per
// window. The frame path never blocks on it: results come back through
// Aggregator.deliver, where the captured sequence is checked so a result
// for a superseded window is discarded instead of written back.
type Sampler struct {
	agg        *Aggregator
	classifier perception.EmotionClassifier
	interval   time.Duration
	timeout    time.Duration

	busy atomic.Bool

	// The interval gate is scoped to one window: a new sequence samples
	// immediately, whatever the previous window's last attempt was.
	mu          sync.Mutex
	lastSeq     uint64
	lastAttempt time.Time
}

// NewSampler wires a classifier to an aggregator.
func NewSampler(cfg Config, agg *Aggregator, classifier perception.EmotionClassifier) *Sampler {
	return &Sampler{
		agg:        agg,
		classifier: classifier,
		interval:   cfg.SampleInterval,
		timeout:    cfg.SampleTimeout,
	}
}

// MaybeSample fires a background classification for the given face crop
// if the sample interval has elapsed and no attempt is in flight.
// Fire-and-forget: it returns immediately either way.
func (s *Sampler) MaybeSample(ctx context.Context, now time.Time, face []byte) {
	seq := s.agg.Seq()

	s.mu.Lock()
	if seq == s.lastSeq && !s.lastAttempt.IsZero() && now.Sub(s.lastAttempt) < s.interval {
		s.mu.Unlock()
		return
	}

	// Single-flight: issuance is serialized by this flag, so the
	// sequence check at delivery never races another sampler write.
	if !s.busy.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return
	}
	s.lastSeq = seq
	s.lastAttempt = now
	s.mu.Unlock()

	crop := make([]byte, len(face))
	copy(crop, face)

	go s.run(ctx, seq, crop)
}

// Busy reports whether a classification attempt is outstanding.
func (s *Sampler) Busy() bool {
	return s.busy.Load()
}

// run performs one bounded classification attempt off the frame path.
func (s *Sampler) run(ctx context.Context, seq uint64, crop []byte) {
	defer s.busy.Store(false)

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sample, err := s.classifier.Classify(cctx, crop)
	if err != nil {
		// Timeouts and classifier failures are non-fatal: the window
		// simply keeps whatever samples it already has.
		log.Debug("emotion sample failed", "seq", seq, "error", err)
		return
	}

	if sample.Label == "" {
		return
	}

	if s.agg.deliver(seq, sample) {
		log.Debug("emotion sample",
			"seq", seq, "label", sample.Label, "confidence", sample.Confidence)
	} else {
		log.Debug("emotion sample stale, dropped", "seq", seq)
	}
}
