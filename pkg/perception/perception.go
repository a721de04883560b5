// Package perception defines the per-frame signal types and adapter
// contracts the monitoring loop consumes. Adapters are treated as black
// boxes: they either produce a typed sample or degrade to "no signal",
// never an exception that reaches the frame loop.
package perception

import (
	"context"
	"image"
	"time"
)

// Emotion labels produced by the classifier (FER-style seven classes).
const (
	EmotionAngry    = "angry"
	EmotionDisgust  = "disgust"
	EmotionFear     = "fear"
	EmotionHappy    = "happy"
	EmotionSad      = "sad"
	EmotionSurprise = "surprise"
	EmotionNeutral  = "neutral"
)

// Presence is the per-frame face presence signal.
// The zero value means "no face".
type Presence struct {
	Found      bool
	Region     image.Rectangle // face bounding box in frame pixels
	Confidence float64         // detector confidence (0-1)
}

// YawnSample is the per-frame mouth state signal.
// The zero value is the "no data" degradation: ratio 0, not sustained.
type YawnSample struct {
	Sustained bool          // mouth held open past the sustain threshold
	Duration  time.Duration // how long the mouth has been open
	Ratio     float64       // raw mouth aspect ratio
}

// EmotionSample is one classification result.
type EmotionSample struct {
	Label      string
	Confidence float64 // percent, 0-100
}

// FaceDetector finds the primary face in a frame.
// Adapter errors are absorbed: any failure returns the zero Presence.
type FaceDetector interface {
	Detect(frame []byte) (Presence, error)
	Close() error
}

// YawnMeter measures the mouth aspect ratio and sustained-open state.
// It keeps sustain timing across frames; Reset clears that memory
// (required when the face is lost so a new subject starts clean).
type YawnMeter interface {
	Measure(frame []byte) YawnSample
	Reset()
	Close() error
}

// EmotionClassifier runs the expensive emotion classification on a face
// crop. It is invoked off the frame path and must honor ctx cancellation.
type EmotionClassifier interface {
	Classify(ctx context.Context, face []byte) (EmotionSample, error)
	Close() error
}

// CropFace cuts the presence region out of frame bounds, clamped to the
// image. Returns ok=false when the clamped region is empty.
func CropFace(bounds image.Rectangle, region image.Rectangle) (image.Rectangle, bool) {
	r := region.Intersect(bounds)
	if r.Empty() {
		return image.Rectangle{}, false
	}
	return r, true
}
