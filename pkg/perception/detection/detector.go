// Package detection provides gocv-backed perception adapters: YuNet face
// presence, ONNX landmark mouth measurement, and ONNX emotion classification.
package detection

import (
	"image"
	"path/filepath"
)

// Detection represents a detected face
type Detection struct {
	X, Y       float64 // Top-left position (0-1 normalized)
	W, H       float64 // Width and height (0-1 normalized)
	Confidence float64 // Detection confidence (0-1)
}

// Center returns the center point of the detection
func (d Detection) Center() (x, y float64) {
	return d.X + d.W/2, d.Y + d.H/2
}

// Area returns the area of the bounding box
func (d Detection) Area() float64 {
	return d.W * d.H
}

// Rect converts the normalized detection to frame pixels.
func (d Detection) Rect(frameW, frameH int) image.Rectangle {
	x0 := int(d.X * float64(frameW))
	y0 := int(d.Y * float64(frameH))
	x1 := int((d.X + d.W) * float64(frameW))
	y1 := int((d.Y + d.H) * float64(frameH))
	return image.Rect(x0, y0, x1, y1)
}

// Config holds adapter configuration
type Config struct {
	ModelDir         string  // Directory holding the ONNX models
	ConfidenceThresh float64 // Minimum face confidence (default 0.6)
	InputWidth       int     // Face model input width
	InputHeight      int     // Face model input height

	// Yawn measurement
	MouthOpenThresh float64 // MAR above this counts as mouth open
	SustainSeconds  float64 // Open this long counts as a yawn
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		ModelDir:         "models",
		ConfidenceThresh: 0.6,
		InputWidth:       320,
		InputHeight:      320,
		MouthOpenThresh:  0.08,
		SustainSeconds:   1.6,
	}
}

// FaceModelPath returns the YuNet model location.
func (c Config) FaceModelPath() string {
	return filepath.Join(c.ModelDir, "face_detection_yunet.onnx")
}

// LandmarkModelPath returns the facial landmark model location.
func (c Config) LandmarkModelPath() string {
	return filepath.Join(c.ModelDir, "face_landmarks_pfld.onnx")
}

// EmotionModelPath returns the emotion classifier model location.
func (c Config) EmotionModelPath() string {
	return filepath.Join(c.ModelDir, "emotion_ferplus.onnx")
}

// SelectBest picks the best face from multiple detections.
// Priority: confidence * 0.7 + area * 0.3, so a confident near face wins
// over a marginal large one.
func SelectBest(dets []Detection) *Detection {
	if len(dets) == 0 {
		return nil
	}

	if len(dets) == 1 {
		return &dets[0]
	}

	// Find max area for normalization
	maxArea := 0.0
	for _, d := range dets {
		if d.Area() > maxArea {
			maxArea = d.Area()
		}
	}

	// Score each detection
	bestScore := -1.0
	var best *Detection

	for i := range dets {
		score := dets[i].Confidence*0.7 + (dets[i].Area()/maxArea)*0.3
		if score > bestScore {
			bestScore = score
			best = &dets[i]
		}
	}

	return best
}
