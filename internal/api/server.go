// Package api exposes the read-only operational HTTP surface: health,
// request history and scheduler state.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/requestarr/requestarr/internal/history"
	"github.com/requestarr/requestarr/internal/logger"
	"github.com/requestarr/requestarr/internal/scheduler"
)

// PendingCounter reports the number of live confirmation prompts.
type PendingCounter interface {
	PendingCount() int
}

// Collaborators reports whether the external services are configured.
type Collaborators struct {
	Telegram  bool `json:"telegram"`
	Overseerr bool `json:"overseerr"`
	OpenAI    bool `json:"openai"`
}

// Server handles HTTP requests for the Requestarr API.
type Server struct {
	echo          *echo.Echo
	logger        zerolog.Logger
	version       string
	startedAt     time.Time
	collaborators Collaborators
	history       *history.Service
	pending       PendingCounter
	scheduler     *scheduler.Scheduler
	logs          *logger.Capture
}

// NewServer creates a new API server instance.
func NewServer(version string, collaborators Collaborators, historyService *history.Service, pending PendingCounter, sched *scheduler.Scheduler, logs *logger.Capture, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:          e,
		logger:        log.With().Str("component", "api").Logger(),
		version:       version,
		startedAt:     time.Now(),
		collaborators: collaborators,
		history:       historyService,
		pending:       pending,
		scheduler:     sched,
		logs:          logs,
	}

	e.Use(middleware.Recover())
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	v1 := s.echo.Group("/api/v1")
	v1.GET("/health", s.handleHealth)
	v1.GET("/history", s.handleHistory)
	v1.GET("/pending", s.handlePending)
	v1.GET("/tasks", s.handleTasks)
	v1.GET("/logs", s.handleLogs)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start begins serving on the given address. Blocks until shutdown.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("API server starting")
	return s.echo.Start(address)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
