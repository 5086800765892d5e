package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Server is the HTTP server for the embedding service
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new embedding service server.
// The embedder is injected through the config; it must already be loaded
// when the server starts accepting inference traffic.
func NewServer(config Config, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		logger: logger,
		app:    app,
	}

	app.Use(s.requestID)

	app.Get("/", s.handleRoot)
	app.Get("/health", s.handleHealth)
	app.Get("/model/info", s.handleModelInfo)
	app.Post("/embeddings", s.handleEmbeddings)

	return s
}

// Run starts the embedding service on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting embedding service",
		"listen", s.config.ListenAddr,
		"model", s.config.ModelName,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the embedding service, draining in-flight
// requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// requestID tags every request with a UUID for log correlation.
func (s *Server) requestID(c *fiber.Ctx) error {
	id := uuid.NewString()
	c.Locals("request_id", id)

	s.logger.Debug("request received",
		"request_id", id,
		"method", c.Method(),
		"path", c.Path(),
	)

	return c.Next()
}
