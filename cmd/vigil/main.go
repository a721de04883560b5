// Vigil - webcam mood monitoring agent
// Watches the local camera, aggregates mood over 30-second windows and
// nudges the user with desktop notifications.
package main

import (
	"context"
	"flag"
	stdlog "log"
	"os/signal"
	"syscall"

	"github.com/vigil-agent/go-vigil/internal/log"
	"github.com/vigil-agent/go-vigil/pkg/vigil"
)

func main() {
	cfg := parseFlags()

	if cfg.Debug {
		log.Init("debug")
	} else {
		log.Init("info")
	}

	app, err := vigil.New(cfg)
	if err != nil {
		stdlog.Fatalf("configuration error: %v", err)
	}

	if err := app.Init(); err != nil {
		stdlog.Fatalf("initialization failed: %v", err)
	}
	defer app.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		stdlog.Fatalf("runtime error: %v", err)
	}
}

// parseFlags parses command line flags and returns configuration.
func parseFlags() vigil.Config {
	cfg := vigil.DefaultConfig()

	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	cameraID := flag.Int("camera", cfg.CameraID, "Capture device index (overrides VIGIL_CAMERA)")
	hd := flag.Bool("hd", false, "Capture at 720p instead of 640x480")
	logDir := flag.String("log-dir", cfg.LogDir, "Event log directory (overrides VIGIL_LOG_DIR)")
	modelDir := flag.String("model-dir", cfg.ModelDir, "ONNX model directory (overrides VIGIL_MODEL_DIR)")
	statusPort := flag.String("status-port", cfg.StatusPort, "Status API port, empty to disable")
	historyPath := flag.String("history", cfg.HistoryPath, "Decision history sqlite path, empty to disable")
	quiet := flag.Bool("quiet", false, "Suppress desktop notifications")

	flag.Parse()

	cfg.Debug, cfg.HD, cfg.Quiet = *debug, *hd, *quiet
	cfg.CameraID = *cameraID
	cfg.LogDir = *logDir
	cfg.ModelDir = *modelDir
	cfg.StatusPort = *statusPort
	cfg.HistoryPath = *historyPath
	return cfg
}
