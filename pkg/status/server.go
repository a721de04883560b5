// Package status exposes the agent's live state over a small JSON API:
// health, current window snapshot, scheduler memory, and a websocket
// event stream. No rendering happens here.
package status

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/vigil-agent/go-vigil/internal/log"
	"github.com/vigil-agent/go-vigil/pkg/action"
	"github.com/vigil-agent/go-vigil/pkg/decision"
	"github.com/vigil-agent/go-vigil/pkg/eventlog"
	"github.com/vigil-agent/go-vigil/pkg/hub"
	"github.com/vigil-agent/go-vigil/pkg/window"
)

// State is the agent snapshot served to clients.
type State struct {
	RunID        string            `json:"run_id"`
	FacePresent  bool              `json:"face_present"`
	Window       window.Snapshot   `json:"window"`
	Memory       action.Snapshot   `json:"memory"`
	LastDecision decision.Decision `json:"last_decision"`
}

// Event is one entry in the recent-events ring buffer.
type Event struct {
	Time    string `json:"time"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server is the status API server.
type Server struct {
	app  *fiber.App
	port string

	// StateFunc produces the current snapshot on demand.
	StateFunc func() State

	// History serves past decisions and sessions. Optional.
	History *eventlog.History

	// Recent events (last 500)
	events   []Event
	eventsMu sync.RWMutex

	eventHub *hub.Hub
}

// NewServer creates a status server on the given port.
func NewServer(port string) *Server {
	s := &Server{
		port:     port,
		events:   make([]Event, 0, 500),
		eventHub: hub.New("events"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Vigil Status",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/events", s.handleEvents)
	api.Get("/history", s.handleHistory)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go s.eventHub.Run()
	go func() {
		log.Info("status server listening", "port", s.port)
		if err := s.app.Listen(":" + s.port); err != nil {
			log.Warn("status server stopped", "error", err)
		}
	}()
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// AddEvent records an event and broadcasts it to stream clients.
func (s *Server) AddEvent(code, message string) {
	entry := Event{
		Time:    time.Now().Format("15:04:05"),
		Code:    code,
		Message: message,
	}

	s.eventsMu.Lock()
	s.events = append(s.events, entry)
	if len(s.events) > 500 {
		s.events = s.events[1:]
	}
	s.eventsMu.Unlock()

	s.eventHub.BroadcastJSON(entry)
}

func (s *Server) handleState(c *fiber.Ctx) error {
	if s.StateFunc == nil {
		return fiber.ErrServiceUnavailable
	}
	return c.JSON(s.StateFunc())
}

func (s *Server) handleEvents(c *fiber.Ctx) error {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	return c.JSON(s.events)
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	if s.History == nil {
		return fiber.ErrNotFound
	}

	decisions, err := s.History.RecentDecisions(c.QueryInt("limit", 50))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	sessions, err := s.History.Sessions()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"decisions": decisions,
		"sessions":  sessions,
	})
}

func (s *Server) handleEventsWS(conn *websocket.Conn) {
	client := hub.NewClient(s.eventHub, conn)
	client.Run()
}
