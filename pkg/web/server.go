// Package web provides the real-time dashboard and capture API for posehud
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/poselab/go-posehud/internal/log"
	"github.com/poselab/go-posehud/pkg/camera"
	"github.com/poselab/go-posehud/pkg/hub"
	"github.com/poselab/go-posehud/pkg/session"
)

// Server is the dashboard and capture API server.
type Server struct {
	app  *fiber.App
	port string

	session *session.Session
	cameras *camera.Manager
}

// NewServer wires routes for the given session.
func NewServer(port string, sess *session.Session, cameras *camera.Manager, staticDir string) *Server {
	s := &Server{
		port:    port,
		session: sess,
		cameras: cameras,
	}

	app := fiber.New(fiber.Config{
		AppName:               "posehud",
		DisableStartupMessage: true,
		BodyLimit:             1 << 20,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static dashboard assets
	if staticDir != "" {
		app.Static("/", staticDir)
	}

	// API routes
	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/camera", s.handleGetCamera)
	api.Post("/camera", s.handleUpdateCamera)
	api.Post("/capture", s.handleCapture)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/preview", websocket.New(s.handlePreviewWS))

	s.app = app
	return s
}

// Start starts the web server. Blocks until shutdown.
func (s *Server) Start() error {
	log.Info("dashboard listening", "addr", "http://localhost:"+s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleStateWS streams pose-state snapshots to a dashboard client.
func (s *Server) handleStateWS(c *websocket.Conn) {
	client := hub.NewClient(s.session.StateHub, c)
	client.Run()
}

// handlePreviewWS streams binary preview frames.
func (s *Server) handlePreviewWS(c *websocket.Conn) {
	client := hub.NewClient(s.session.PreviewHub, c)
	client.Run()
}
