package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Source is the interface for capturing frames.
type Source interface {
	// CaptureJPEG grabs the next frame as JPEG bytes.
	CaptureJPEG() ([]byte, error)

	// Close releases the capture device.
	Close() error
}

// Webcam captures JPEG frames from a local video device via gocv.
type Webcam struct {
	cap    *gocv.VideoCapture
	config Config
	mu     sync.Mutex // Protects capture
}

// Open opens the configured capture device. An unopenable device is a
// startup-fatal condition for the caller.
func Open(cfg Config) (*Webcam, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera config invalid: %v", errs)
	}

	cap, err := gocv.OpenVideoCapture(cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", cfg.DeviceID, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("camera %d not available", cfg.DeviceID)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	cap.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	return &Webcam{cap: cap, config: cfg}, nil
}

// CaptureJPEG grabs one frame and encodes it.
func (w *Webcam) CaptureJPEG() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	img := gocv.NewMat()
	defer img.Close()

	if ok := w.cap.Read(&img); !ok || img.Empty() {
		return nil, fmt.Errorf("camera %d: frame not received", w.config.DeviceID)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img,
		[]int{gocv.IMWriteJpegQuality, w.config.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// Copy out: the underlying buffer is reused by gocv.
	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}

// Config returns the active capture configuration.
func (w *Webcam) Config() Config {
	return w.config
}

// Close releases the device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cap.Close()
}
