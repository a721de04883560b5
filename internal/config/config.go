// Package config provides configuration helpers for go-vigil commands.
package config

import (
	"os"
	"strconv"
)

// Default agent configuration.
const (
	DefaultLogDir     = "logs"
	DefaultCameraID   = 0
	DefaultStatusPort = "8090"
)

// LogDir returns the event log directory from VIGIL_LOG_DIR.
// Falls back to the provided default if not set.
func LogDir(defaultDir string) string {
	if dir := os.Getenv("VIGIL_LOG_DIR"); dir != "" {
		return dir
	}
	return defaultDir
}

// CameraID returns the capture device index from VIGIL_CAMERA.
// Falls back to the provided default if not set or unparseable.
func CameraID(defaultID int) int {
	if v := os.Getenv("VIGIL_CAMERA"); v != "" {
		if id, err := strconv.Atoi(v); err == nil && id >= 0 {
			return id
		}
	}
	return defaultID
}

// StatusPort returns the status server port from VIGIL_STATUS_PORT.
// Falls back to the provided default if not set.
func StatusPort(defaultPort string) string {
	if port := os.Getenv("VIGIL_STATUS_PORT"); port != "" {
		return port
	}
	return defaultPort
}

// ModelDir returns the directory holding ONNX models from VIGIL_MODEL_DIR.
// Falls back to the provided default if not set.
func ModelDir(defaultDir string) string {
	if dir := os.Getenv("VIGIL_MODEL_DIR"); dir != "" {
		return dir
	}
	return defaultDir
}
