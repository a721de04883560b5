package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/vigil-agent/go-vigil/internal/log"
	"github.com/vigil-agent/go-vigil/pkg/perception"
	"gocv.io/x/gocv"
)

// YuNetDetector uses OpenCV's FaceDetectorYN for face detection
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	config   Config
	mu       sync.Mutex // Protects inference
}

// NewYuNet creates a new YuNet face detector using GoCV's built-in FaceDetectorYN
func NewYuNet(cfg Config) (*YuNetDetector, error) {
	modelPath := cfg.FaceModelPath()
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}

	// Create FaceDetectorYN with initial size (will be updated per-image)
	detector := gocv.NewFaceDetectorYNWithParams(
		modelPath,
		"", // No config file needed for ONNX
		image.Pt(cfg.InputWidth, cfg.InputHeight), // Initial input size
		float32(cfg.ConfidenceThresh),             // Score threshold
		0.3,                                       // NMS threshold
		5000,                                      // Top K
		int(gocv.NetBackendDefault),               // Backend
		int(gocv.NetTargetCPU),                    // Target
	)

	return &YuNetDetector{
		detector: detector,
		config:   cfg,
	}, nil
}

// DetectAll finds every face in the JPEG frame.
// Returns the detections and the decoded frame size.
func (d *YuNetDetector) DetectAll(jpeg []byte) ([]Detection, image.Point, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, image.Point{}, fmt.Errorf("empty image")
	}

	size := image.Pt(img.Cols(), img.Rows())
	imgW := float64(size.X)
	imgH := float64(size.Y)

	// Update detector input size to match image
	d.detector.SetInputSize(size)

	faces := gocv.NewMat()
	defer faces.Close()

	d.detector.Detect(img, &faces)

	// YuNet output format (15 columns):
	// 0-3: x, y, w, h (bounding box in pixels)
	// 4-13: 5 facial landmarks (x,y pairs)
	// 14: face score
	var detections []Detection
	for r := 0; r < faces.Rows(); r++ {
		x := float64(faces.GetFloatAt(r, 0))
		y := float64(faces.GetFloatAt(r, 1))
		w := float64(faces.GetFloatAt(r, 2))
		h := float64(faces.GetFloatAt(r, 3))
		score := float64(faces.GetFloatAt(r, 14))

		// Normalize to 0-1 range
		detections = append(detections, Detection{
			X:          x / imgW,
			Y:          y / imgH,
			W:          w / imgW,
			H:          h / imgH,
			Confidence: score,
		})
	}

	return detections, size, nil
}

// Detect implements perception.FaceDetector: the best face in the frame,
// or the zero Presence when none is found. Adapter errors degrade to
// "absent" rather than propagating into the frame loop.
func (d *YuNetDetector) Detect(jpeg []byte) (perception.Presence, error) {
	dets, size, err := d.DetectAll(jpeg)
	if err != nil {
		log.Debug("face detect failed", "error", err)
		return perception.Presence{}, err
	}

	best := SelectBest(dets)
	if best == nil {
		return perception.Presence{}, nil
	}

	return perception.Presence{
		Found:      true,
		Region:     best.Rect(size.X, size.Y),
		Confidence: best.Confidence,
	}, nil
}

// Close releases the detector resources
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	return nil
}
