package window

import (
	"testing"
	"time"

	"github.com/vigil-agent/go-vigil/pkg/perception"
)

func testConfig() Config {
	return Config{
		Duration:       30 * time.Second,
		SampleInterval: 8 * time.Second,
		SampleTimeout:  30 * time.Second,
	}
}

func TestAggregator_OpensOnPresence(t *testing.T) {
	a := NewAggregator(testConfig())
	now := time.Now()

	if a.Open() {
		t.Fatal("No window should be open before the first frame")
	}

	a.OnFrame(now, true, perception.YawnSample{})
	if !a.Open() {
		t.Fatal("Window should open on first present frame")
	}

	if a.WindowComplete(now.Add(29 * time.Second)) {
		t.Error("Window should not be complete before duration")
	}
	if !a.WindowComplete(now.Add(30 * time.Second)) {
		t.Error("Window should be complete at duration")
	}
}

func TestAggregator_FoldsYawnMaxima(t *testing.T) {
	a := NewAggregator(testConfig())
	now := time.Now()

	a.OnFrame(now, true, perception.YawnSample{Duration: 500 * time.Millisecond, Ratio: 0.05})
	a.OnFrame(now.Add(time.Second), true, perception.YawnSample{Sustained: true, Duration: 2 * time.Second, Ratio: 0.12})
	a.OnFrame(now.Add(2*time.Second), true, perception.YawnSample{Duration: time.Second, Ratio: 0.09})

	s := a.CloseAndReset(now.Add(30 * time.Second))

	if !s.Yawned {
		t.Error("Yawned should latch once any frame was sustained")
	}
	if s.MaxYawnDuration != 2*time.Second {
		t.Errorf("MaxYawnDuration: got %v, want 2s", s.MaxYawnDuration)
	}
	if s.MaxRatio != 0.12 {
		t.Errorf("MaxRatio: got %v, want 0.12", s.MaxRatio)
	}
}

func TestAggregator_CloseReopensWindow(t *testing.T) {
	a := NewAggregator(testConfig())
	now := time.Now()

	a.OnFrame(now, true, perception.YawnSample{})
	firstSeq := a.Seq()

	s := a.CloseAndReset(now.Add(30 * time.Second))
	if s.Seq != firstSeq {
		t.Errorf("Summary seq: got %d, want %d", s.Seq, firstSeq)
	}

	// Subject is still present: the next window starts immediately
	// with a strictly greater sequence.
	if !a.Open() {
		t.Error("Window should reopen after close")
	}
	if a.Seq() <= firstSeq {
		t.Errorf("Sequence should increase on close: got %d, had %d", a.Seq(), firstSeq)
	}
	if a.WindowComplete(now.Add(35 * time.Second)) {
		t.Error("Reopened window should not be complete after 5s")
	}
}

func TestAggregator_PresenceLossDiscardsWindow(t *testing.T) {
	a := NewAggregator(testConfig())
	now := time.Now()

	a.OnFrame(now, true, perception.YawnSample{Sustained: true, Duration: 2 * time.Second, Ratio: 0.2})
	a.deliver(a.Seq(), perception.EmotionSample{Label: perception.EmotionSad, Confidence: 90})
	seq := a.Seq()

	a.OnFrame(now.Add(time.Second), false, perception.YawnSample{})

	if a.Open() {
		t.Error("Window should be closed after presence loss")
	}
	if a.Seq() <= seq {
		t.Errorf("Sequence should increase on presence loss: got %d, had %d", a.Seq(), seq)
	}

	// Next window starts with all maxima at zero.
	a.OnFrame(now.Add(2*time.Second), true, perception.YawnSample{})
	s := a.CloseAndReset(now.Add(40 * time.Second))

	if s.Yawned || s.MaxYawnDuration != 0 || s.MaxRatio != 0 {
		t.Errorf("Accumulated yawn state leaked across presence loss: %+v", s)
	}
	if s.HasEmotion || s.SampleCount != 0 {
		t.Errorf("Emotion samples leaked across presence loss: %+v", s)
	}
}

func TestAggregator_StaleDeliveryDropped(t *testing.T) {
	a := NewAggregator(testConfig())
	now := time.Now()

	a.OnFrame(now, true, perception.YawnSample{})
	staleSeq := a.Seq()

	a.ResetOnPresenceLoss()
	a.OnFrame(now.Add(time.Second), true, perception.YawnSample{})

	if ok := a.deliver(staleSeq, perception.EmotionSample{Label: perception.EmotionHappy, Confidence: 99}); ok {
		t.Error("Delivery with a superseded sequence must be dropped")
	}

	s := a.CloseAndReset(now.Add(40 * time.Second))
	if s.SampleCount != 0 {
		t.Errorf("Stale sample was appended: count %d", s.SampleCount)
	}
}

func TestAggregator_CurrentDeliveryAppended(t *testing.T) {
	a := NewAggregator(testConfig())
	now := time.Now()

	a.OnFrame(now, true, perception.YawnSample{})

	if ok := a.deliver(a.Seq(), perception.EmotionSample{Label: perception.EmotionHappy, Confidence: 80}); !ok {
		t.Fatal("Delivery for the live window should be accepted")
	}

	s := a.CloseAndReset(now.Add(30 * time.Second))
	if !s.HasEmotion || s.DominantEmotion != perception.EmotionHappy {
		t.Errorf("Summary emotion: got %+v, want happy", s)
	}
	if s.SampleCount != 1 {
		t.Errorf("SampleCount: got %d, want 1", s.SampleCount)
	}
}

func TestDominantEmotion_CountBeatsConfidence(t *testing.T) {
	samples := []perception.EmotionSample{
		{Label: perception.EmotionHappy, Confidence: 70},
		{Label: perception.EmotionHappy, Confidence: 65},
		{Label: perception.EmotionSad, Confidence: 90},
	}

	label, conf, ok := dominantEmotion(samples)
	if !ok {
		t.Fatal("Expected a dominant emotion")
	}
	if label != perception.EmotionHappy {
		t.Errorf("Winner: got %s, want happy (count 2 beats sad's single high-confidence sample)", label)
	}
	if conf != 70 {
		t.Errorf("Confidence: got %v, want 70 (peak for happy)", conf)
	}
}

func TestDominantEmotion_TieBrokenByPeakConfidence(t *testing.T) {
	samples := []perception.EmotionSample{
		{Label: perception.EmotionAngry, Confidence: 62},
		{Label: perception.EmotionNeutral, Confidence: 88},
	}

	label, conf, ok := dominantEmotion(samples)
	if !ok {
		t.Fatal("Expected a dominant emotion")
	}
	if label != perception.EmotionNeutral {
		t.Errorf("Winner: got %s, want neutral (tie on count, higher peak)", label)
	}
	if conf != 88 {
		t.Errorf("Confidence: got %v, want 88", conf)
	}
}

func TestDominantEmotion_FullTieTakesFirstSeen(t *testing.T) {
	samples := []perception.EmotionSample{
		{Label: perception.EmotionSad, Confidence: 75},
		{Label: perception.EmotionAngry, Confidence: 75},
	}

	// Equal count and equal peak: the earlier label wins, every time.
	for i := 0; i < 20; i++ {
		label, _, ok := dominantEmotion(samples)
		if !ok {
			t.Fatal("Expected a dominant emotion")
		}
		if label != perception.EmotionSad {
			t.Fatalf("Winner: got %s, want sad (first seen on a full tie)", label)
		}
	}
}

func TestDominantEmotion_NoSamples(t *testing.T) {
	if _, _, ok := dominantEmotion(nil); ok {
		t.Error("No samples should yield no dominant emotion")
	}

	// Samples with empty labels are unusable too.
	if _, _, ok := dominantEmotion([]perception.EmotionSample{{Confidence: 99}}); ok {
		t.Error("Unlabeled samples should yield no dominant emotion")
	}
}

func TestSnapshot(t *testing.T) {
	a := NewAggregator(testConfig())
	now := time.Now()

	snap := a.Snapshot(now)
	if snap.Open {
		t.Error("Snapshot should show no open window initially")
	}

	a.OnFrame(now, true, perception.YawnSample{Ratio: 0.05})
	snap = a.Snapshot(now.Add(10 * time.Second))

	if !snap.Open {
		t.Error("Snapshot should show the open window")
	}
	if snap.Elapsed != 10*time.Second {
		t.Errorf("Elapsed: got %v, want 10s", snap.Elapsed)
	}
	if snap.Remaining != 20*time.Second {
		t.Errorf("Remaining: got %v, want 20s", snap.Remaining)
	}
}
