package detection

import (
	"fmt"
	"image"
	"math"
	"os"
	"sync"
	"time"

	"github.com/vigil-agent/go-vigil/pkg/perception"
	"gocv.io/x/gocv"
)

// PFLD 106-point landmark indices for the mouth.
const (
	lmMouthLeftCorner  = 84  // outer left corner
	lmMouthRightCorner = 90  // outer right corner
	lmUpperLipInner    = 98  // inner upper lip midpoint
	lmLowerLipInner    = 102 // inner lower lip midpoint

	landmarkCount = 106
	landmarkInput = 112 // model input is 112x112
)

// LandmarkMeter measures the mouth aspect ratio from facial landmarks
// and tracks sustained-open timing across frames. It implements
// perception.YawnMeter. Any per-frame failure degrades to the zero
// YawnSample and clears the sustain timer.
type LandmarkMeter struct {
	net      gocv.Net
	detector *YuNetDetector
	config   Config
	mu       sync.Mutex

	sustain sustainTracker
}

// NewLandmarkMeter creates a yawn meter backed by a PFLD landmark model.
// The face detector is shared with the caller and not closed here.
func NewLandmarkMeter(cfg Config, detector *YuNetDetector) (*LandmarkMeter, error) {
	modelPath := cfg.LandmarkModelPath()
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load landmark model from %s", modelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &LandmarkMeter{
		net:      net,
		detector: detector,
		config:   cfg,
		sustain: sustainTracker{
			openThresh:     cfg.MouthOpenThresh,
			sustainMinimum: time.Duration(cfg.SustainSeconds * float64(time.Second)),
		},
	}, nil
}

// Measure computes the mouth aspect ratio for the primary face in frame.
func (m *LandmarkMeter) Measure(frame []byte) perception.YawnSample {
	m.mu.Lock()
	defer m.mu.Unlock()

	ratio, ok := m.mouthRatio(frame)
	if !ok {
		m.sustain.Clear()
		return perception.YawnSample{}
	}

	return m.sustain.Update(time.Now(), ratio)
}

// Reset clears the sustain memory. Called when the face is lost so a new
// subject never inherits a half-finished yawn.
func (m *LandmarkMeter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sustain.Clear()
}

// Close releases the landmark network.
func (m *LandmarkMeter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.net.Close()
}

// mouthRatio runs detection + landmark inference and returns the MAR.
func (m *LandmarkMeter) mouthRatio(frame []byte) (float64, bool) {
	pres, err := m.detector.Detect(frame)
	if err != nil || !pres.Found {
		return 0, false
	}

	img, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil || img.Empty() {
		return 0, false
	}
	defer img.Close()

	crop, ok := perception.CropFace(image.Rect(0, 0, img.Cols(), img.Rows()), pres.Region)
	if !ok {
		return 0, false
	}

	face := img.Region(crop)
	defer face.Close()

	blob := gocv.BlobFromImage(face, 1.0/255.0,
		image.Pt(landmarkInput, landmarkInput),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	m.net.SetInput(blob, "")
	output := m.net.Forward("")
	defer output.Close()

	// Output is 212 floats: normalized (x, y) pairs for 106 points.
	if output.Total() < landmarkCount*2 {
		return 0, false
	}

	flat := output.Reshape(1, 1)
	defer flat.Close()

	point := func(idx int) (float64, float64) {
		x := float64(flat.GetFloatAt(0, idx*2))
		y := float64(flat.GetFloatAt(0, idx*2+1))
		return x, y
	}

	ux, uy := point(lmUpperLipInner)
	lx, ly := point(lmLowerLipInner)
	lcx, lcy := point(lmMouthLeftCorner)
	rcx, rcy := point(lmMouthRightCorner)

	vertical := math.Hypot(ux-lx, uy-ly)
	horizontal := math.Hypot(lcx-rcx, lcy-rcy)
	if horizontal < 1e-6 {
		return 0, false
	}

	return vertical / horizontal, true
}

// sustainTracker turns a per-frame mouth ratio into the sustained-open
// yawn signal. Open time below sustainMinimum is reported but not yet a
// yawn; closing the mouth clears the timer.
type sustainTracker struct {
	openThresh     float64
	sustainMinimum time.Duration

	open      bool
	openSince time.Time
}

// Update folds one ratio reading taken at now.
func (s *sustainTracker) Update(now time.Time, ratio float64) perception.YawnSample {
	if ratio <= s.openThresh {
		s.Clear()
		return perception.YawnSample{Ratio: ratio}
	}

	if !s.open {
		s.open = true
		s.openSince = now
	}

	held := now.Sub(s.openSince)
	return perception.YawnSample{
		Sustained: held >= s.sustainMinimum,
		Duration:  held,
		Ratio:     ratio,
	}
}

// Clear forgets any in-progress open stretch.
func (s *sustainTracker) Clear() {
	s.open = false
	s.openSince = time.Time{}
}
