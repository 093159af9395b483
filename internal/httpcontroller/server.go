// Package httpcontroller hosts the translation HTTP API.
package httpcontroller

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/lawglot/lawglot-go/internal/conf"
	"github.com/lawglot/lawglot-go/internal/errors"
	"github.com/lawglot/lawglot-go/internal/logging"
	"github.com/lawglot/lawglot-go/internal/observability"
	"github.com/lawglot/lawglot-go/internal/resolver"
)

// Resolver is the slice of the resolution service the server needs.
type Resolver interface {
	Resolve(ctx context.Context, req *resolver.Request) (*resolver.Response, error)
}

// Server encapsulates the Echo server and its dependencies.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings
	Resolver Resolver
	Metrics  *observability.Metrics

	webLogger      *slog.Logger
	webLoggerClose func() error
}

// New initializes the HTTP server with its routes and middleware.
func New(settings *conf.Settings, res Resolver, metrics *observability.Metrics) *Server {
	s := &Server{
		Echo:     echo.New(),
		Settings: settings,
		Resolver: res,
		Metrics:  metrics,
	}
	s.Echo.HideBanner = true
	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()

	s.initLogger()
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.CORS())
	s.initRoutes()
	return s
}

// initLogger sets up the web request logger.
func (s *Server) initLogger() {
	var err error
	levelVar := new(slog.LevelVar)
	if s.Settings.Debug {
		levelVar.Set(slog.LevelDebug)
	}
	s.webLogger, s.webLoggerClose, err = logging.NewFileLogger("logs/web.log", "web", levelVar)
	if err != nil {
		log.Printf("Failed to initialize web file logger: %v. Using default logger.", err)
		s.webLogger = slog.Default().With("service", "web")
		s.webLoggerClose = func() error { return nil }
	}

	s.Echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			s.webLogger.Info("request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"ip", c.RealIP(),
				"elapsed", time.Since(start))
			return err
		}
	})
}

// initRoutes registers all API routes.
func (s *Server) initRoutes() {
	v1 := s.Echo.Group("/api/v1")
	v1.POST("/translate", s.handleTranslate)
	v1.GET("/health", s.handleHealth)

	if s.Metrics != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}
}

// Start begins listening and serving HTTP requests. It blocks until the
// server stops.
func (s *Server) Start() error {
	port := s.Settings.WebServer.Port
	if port == "" {
		port = "8080"
	}
	s.webLogger.Info("http server starting", "port", port)
	return s.Echo.Start(":" + port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	if s.webLoggerClose != nil {
		if closeErr := s.webLoggerClose(); closeErr != nil {
			log.Printf("Error closing web logger: %v", closeErr)
		}
	}
	return err
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// handleTranslate resolves colloquial text into legal vocabulary.
func (s *Server) handleTranslate(c echo.Context) error {
	var req resolver.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	resp, err := s.Resolver.Resolve(c.Request().Context(), &req)
	if err != nil {
		if errors.IsValidation(err) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		s.webLogger.Error("resolution failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "resolution failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// handleHealth reports service liveness.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
