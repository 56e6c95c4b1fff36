package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/groundworkhq/groundwork/pkg/storage"
	"github.com/groundworkhq/groundwork/pkg/turn"
)

// Server is the API server for session management and chat streaming.
type Server struct {
	config     Config
	store      storage.Store
	controller *turn.Controller
	logger     *zap.Logger
	app        *fiber.App
}

// NewServer creates a new API server.
// The store is injected to allow sharing with other components.
func NewServer(config Config, store storage.Store, controller *turn.Controller, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:     config,
		store:      store,
		controller: controller,
		logger:     logger,
		app:        app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/v1/sessions", s.handleCreateSession)
	app.Get("/v1/sessions", s.handleListSessions)
	app.Get("/v1/sessions/:id", s.handleGetSession)
	app.Delete("/v1/sessions/:id", s.handleDeleteSession)
	app.Post("/v1/chat/stream", s.handleChatStream)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
