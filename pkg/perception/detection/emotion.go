package detection

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"github.com/vigil-agent/go-vigil/pkg/perception"
	"gocv.io/x/gocv"
)

// ferLabels is the FER+ output order.
var ferLabels = []string{
	perception.EmotionNeutral,
	perception.EmotionHappy,
	perception.EmotionSurprise,
	perception.EmotionSad,
	perception.EmotionAngry,
	perception.EmotionDisgust,
	perception.EmotionFear,
	"contempt",
}

const emotionInput = 64 // model input is 64x64 grayscale

// EmotionNet classifies facial emotion with a FER+ ONNX model.
// It implements perception.EmotionClassifier.
type EmotionNet struct {
	net    gocv.Net
	config Config
	mu     sync.Mutex // Protects inference
}

// NewEmotionNet loads the emotion classifier.
func NewEmotionNet(cfg Config) (*EmotionNet, error) {
	modelPath := cfg.EmotionModelPath()
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load emotion model from %s", modelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &EmotionNet{net: net, config: cfg}, nil
}

// Classify runs the model on a JPEG face crop. The forward pass itself is
// not interruptible, so ctx is checked before starting and after finishing;
// a caller-side timeout still bounds the overall attempt.
func (e *EmotionNet) Classify(ctx context.Context, face []byte) (perception.EmotionSample, error) {
	if err := ctx.Err(); err != nil {
		return perception.EmotionSample{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	img, err := gocv.IMDecode(face, gocv.IMReadGrayScale)
	if err != nil {
		return perception.EmotionSample{}, fmt.Errorf("decode face: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return perception.EmotionSample{}, fmt.Errorf("empty face crop")
	}

	blob := gocv.BlobFromImage(img, 1.0,
		image.Pt(emotionInput, emotionInput),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	e.net.SetInput(blob, "")
	output := e.net.Forward("")
	defer output.Close()

	flat := output.Reshape(1, 1)
	defer flat.Close()

	n := flat.Cols()
	if n > len(ferLabels) {
		n = len(ferLabels)
	}
	if n == 0 {
		return perception.EmotionSample{}, fmt.Errorf("empty model output")
	}

	// Softmax over the raw scores, winner reported as a percentage.
	scores := make([]float64, n)
	maxScore := math.Inf(-1)
	for i := 0; i < n; i++ {
		scores[i] = float64(flat.GetFloatAt(0, i))
		if scores[i] > maxScore {
			maxScore = scores[i]
		}
	}

	sum := 0.0
	best := 0
	for i := range scores {
		scores[i] = math.Exp(scores[i] - maxScore)
		sum += scores[i]
		if scores[i] > scores[best] {
			best = i
		}
	}

	if err := ctx.Err(); err != nil {
		return perception.EmotionSample{}, err
	}

	return perception.EmotionSample{
		Label:      ferLabels[best],
		Confidence: scores[best] / sum * 100,
	}, nil
}

// Close releases the network.
func (e *EmotionNet) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.net.Close()
}
