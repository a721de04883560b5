// Package vigil wires the capture, perception, windowing and action
// components into the runnable monitoring agent.
package vigil

import (
	"fmt"
	"path/filepath"

	"github.com/vigil-agent/go-vigil/internal/config"
	"github.com/vigil-agent/go-vigil/pkg/camera"
)

// Config holds all configuration for the vigil agent.
// Flag parsing is done in cmd/vigil/main.go; this struct is data only.
type Config struct {
	// Debug enables verbose debug logging.
	Debug bool

	// CameraID is the capture device index.
	CameraID int

	// HD switches capture from 640x480 to 720p.
	HD bool

	// LogDir is the directory for run-scoped event logs.
	LogDir string

	// ModelDir is the directory holding the ONNX model files.
	ModelDir string

	// StatusPort is the local status API port. Empty disables the server.
	StatusPort string

	// HistoryPath is the sqlite decision history. Empty disables history.
	HistoryPath string

	// Quiet suppresses desktop notifications (events are still logged).
	Quiet bool
}

// DefaultConfig returns sensible defaults for the agent.
func DefaultConfig() Config {
	return Config{
		CameraID:    config.DefaultCameraID,
		LogDir:      config.DefaultLogDir,
		ModelDir:    "models",
		StatusPort:  config.DefaultStatusPort,
		HistoryPath: filepath.Join(config.DefaultLogDir, "history.db"),
	}
}

// LoadEnvConfig applies environment variable overrides.
// Call this after flag parsing; a set VIGIL_* variable wins.
func (c *Config) LoadEnvConfig() {
	c.LogDir = config.LogDir(c.LogDir)
	c.CameraID = config.CameraID(c.CameraID)
	c.StatusPort = config.StatusPort(c.StatusPort)
	c.ModelDir = config.ModelDir(c.ModelDir)
}

// Validate checks the configuration for fatal mistakes.
func (c Config) Validate() error {
	if c.CameraID < 0 {
		return fmt.Errorf("camera id must be >= 0, got %d", c.CameraID)
	}
	if c.LogDir == "" {
		return fmt.Errorf("log directory must not be empty")
	}
	if c.ModelDir == "" {
		return fmt.Errorf("model directory must not be empty")
	}
	return nil
}

// cameraConfig maps the agent config onto the capture settings.
func (c Config) cameraConfig() camera.Config {
	cam := camera.DefaultConfig()
	if c.HD {
		cam = camera.HDConfig()
	}
	cam.DeviceID = c.CameraID
	return cam
}
