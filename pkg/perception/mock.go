package perception

import (
	"context"
	"sync"
	"time"
)

// MockDetector implements FaceDetector for testing.
// All methods can be customized via function fields.
type MockDetector struct {
	// DetectFunc is called when Detect is invoked.
	// If nil, returns the zero Presence (no face).
	DetectFunc func(frame []byte) (Presence, error)

	mu    sync.Mutex
	calls int
}

// Detect calls DetectFunc and records the call.
func (m *MockDetector) Detect(frame []byte) (Presence, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.DetectFunc != nil {
		return m.DetectFunc(frame)
	}
	return Presence{}, nil
}

// Calls returns how many times Detect was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockDetector) Close() error { return nil }

// MockYawnMeter implements YawnMeter for testing.
type MockYawnMeter struct {
	// MeasureFunc is called when Measure is invoked.
	// If nil, returns the zero YawnSample.
	MeasureFunc func(frame []byte) YawnSample

	mu     sync.Mutex
	resets int
}

func (m *MockYawnMeter) Measure(frame []byte) YawnSample {
	if m.MeasureFunc != nil {
		return m.MeasureFunc(frame)
	}
	return YawnSample{}
}

func (m *MockYawnMeter) Reset() {
	m.mu.Lock()
	m.resets++
	m.mu.Unlock()
}

// Resets returns how many times Reset was invoked.
func (m *MockYawnMeter) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

func (m *MockYawnMeter) Close() error { return nil }

// MockClassifier implements EmotionClassifier for testing.
type MockClassifier struct {
	// ClassifyFunc is called when Classify is invoked.
	// If nil, returns a neutral sample.
	ClassifyFunc func(ctx context.Context, face []byte) (EmotionSample, error)

	// Delay is slept (ctx-aware) before ClassifyFunc runs, to simulate
	// a slow model.
	Delay time.Duration

	mu    sync.Mutex
	calls int
}

func (m *MockClassifier) Classify(ctx context.Context, face []byte) (EmotionSample, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return EmotionSample{}, ctx.Err()
		}
	}

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, face)
	}
	return EmotionSample{Label: EmotionNeutral, Confidence: 50}, nil
}

// Calls returns how many times Classify was invoked.
func (m *MockClassifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockClassifier) Close() error { return nil }
