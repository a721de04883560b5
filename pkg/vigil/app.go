package vigil

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/vigil-agent/go-vigil/internal/log"
	"github.com/vigil-agent/go-vigil/pkg/action"
	"github.com/vigil-agent/go-vigil/pkg/camera"
	"github.com/vigil-agent/go-vigil/pkg/eventlog"
	"github.com/vigil-agent/go-vigil/pkg/monitor"
	"github.com/vigil-agent/go-vigil/pkg/notify"
	"github.com/vigil-agent/go-vigil/pkg/perception/detection"
	"github.com/vigil-agent/go-vigil/pkg/status"
	"github.com/vigil-agent/go-vigil/pkg/window"
)

// App owns every component of the monitoring agent and their lifecycle.
type App struct {
	config Config
	runID  string

	// Capture and perception
	cam      *camera.Webcam
	faces    *detection.YuNetDetector
	yawns    *detection.LandmarkMeter
	emotions *detection.EmotionNet

	// Windowing and decisions
	agg     *window.Aggregator
	sampler *window.Sampler

	// Actions and recording
	memory    *action.Memory
	scheduler *action.Scheduler
	events    *eventlog.Log
	history   *eventlog.History
	notifier  notify.Notifier

	// Surfaces
	statusSrv *status.Server
	monitor   *monitor.Monitor
}

// New creates the agent with the given configuration.
func New(cfg Config) (*App, error) {
	cfg.LoadEnvConfig()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &App{
		config: cfg,
		runID:  uuid.New().String()[:8],
	}, nil
}

// RunID identifies this agent process in logs and history rows.
func (a *App) RunID() string {
	return a.runID
}

// Init opens the camera, loads the models and wires the pipeline.
// Call this after New() and before Run().
func (a *App) Init() error {
	// Event log first: if we cannot record what we do, we do nothing.
	events, err := eventlog.Open(a.config.LogDir)
	if err != nil {
		return fmt.Errorf("event log: %w", err)
	}
	a.events = events
	log.WithRun(a.runID).Info("event log opened", "path", events.Path())

	if a.config.HistoryPath != "" {
		history, err := eventlog.OpenHistory(a.config.HistoryPath, a.runID)
		if err != nil {
			// History is an enrichment; run without it.
			log.Warn("history unavailable", "path", a.config.HistoryPath, "error", err)
		} else {
			a.history = history
		}
	}

	detCfg := detection.DefaultConfig()
	detCfg.ModelDir = a.config.ModelDir

	a.faces, err = detection.NewYuNet(detCfg)
	if err != nil {
		return fmt.Errorf("face detector: %w", err)
	}
	a.yawns, err = detection.NewLandmarkMeter(detCfg, a.faces)
	if err != nil {
		return fmt.Errorf("landmark meter: %w", err)
	}
	a.emotions, err = detection.NewEmotionNet(detCfg)
	if err != nil {
		return fmt.Errorf("emotion net: %w", err)
	}

	a.cam, err = camera.Open(a.config.cameraConfig())
	if err != nil {
		return fmt.Errorf("camera %d: %w", a.config.CameraID, err)
	}

	wcfg := window.DefaultConfig()
	a.agg = window.NewAggregator(wcfg)
	a.sampler = window.NewSampler(wcfg, a.agg, a.emotions)

	a.notifier = a.buildNotifier()
	a.memory = action.NewMemory()

	if a.config.StatusPort != "" {
		a.statusSrv = status.NewServer(a.config.StatusPort)
	}

	sink := monitor.Tee{Log: a.events, Status: a.statusSrv}
	a.scheduler = action.New(action.DefaultConfig(), a.memory, a.notifier, sink, a.history)

	a.monitor = monitor.New(monitor.DefaultConfig(), a.runID, a.cam,
		a.faces, a.yawns, a.agg, a.sampler, a.scheduler, a.memory,
		func(frame []byte, region image.Rectangle) ([]byte, error) {
			return detection.CropJPEG(frame, region)
		})

	if a.statusSrv != nil {
		a.statusSrv.StateFunc = a.monitor.State
		a.statusSrv.History = a.history
	}

	return nil
}

// Run starts the capture loop and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.statusSrv != nil {
		a.statusSrv.StartAsync()
	}

	a.logEvent("AGENT_STARTED", "run", a.runID, "camera", a.config.CameraID)

	err := a.monitor.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Shutdown releases every component. Safe after a partial Init.
func (a *App) Shutdown() {
	if a.events != nil {
		a.logEvent("AGENT_STOPPED", "run", a.runID)
	}

	if a.statusSrv != nil {
		if err := a.statusSrv.Shutdown(); err != nil {
			log.Warn("status server shutdown", "error", err)
		}
	}
	if a.cam != nil {
		a.cam.Close()
	}
	if a.emotions != nil {
		a.emotions.Close()
	}
	if a.yawns != nil {
		a.yawns.Close()
	}
	if a.faces != nil {
		a.faces.Close()
	}
	if a.history != nil {
		a.history.Close()
	}
	if a.events != nil {
		a.events.Close()
	}
}

func (a *App) buildNotifier() notify.Notifier {
	if a.config.Quiet {
		return notify.Silent{}
	}
	return notify.NewDesktop()
}

func (a *App) logEvent(code string, kv ...any) {
	if err := a.events.Event(code, kv...); err != nil {
		log.Warn("event log append failed", "error", err)
	}
}
