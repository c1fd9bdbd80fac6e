package api

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/basekick-labs/gridtab/internal/logger"
	"github.com/basekick-labs/gridtab/internal/metrics"
)

// Server represents the HTTP API server
type Server struct {
	app        *fiber.App
	metrics    *metrics.Metrics
	timeseries *metrics.TimeSeriesCollector
	logger     zerolog.Logger
	config     *ServerConfig
	startTime  time.Time
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	BodyLimit    int64
	TLSEnabled   bool
	TLSCertFile  string
	TLSKeyFile   string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    256 * 1024 * 1024,
	}
}

// NewServer creates a new HTTP server with Fiber
func NewServer(config *ServerConfig, m *metrics.Metrics, logger zerolog.Logger) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}

	app := fiber.New(fiber.Config{
		AppName:               "gridtab",
		ReadTimeout:           config.ReadTimeout,
		WriteTimeout:          config.WriteTimeout,
		IdleTimeout:           config.IdleTimeout,
		BodyLimit:             int(config.BodyLimit),
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(logger),
		// Bodies are decompressed by the archive layer, never by fiber
		DisablePreParseMultipartForm: true,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Content-Encoding",
	}))

	app.Use(securityHeaders())
	app.Use(requestLogger(m, logger))

	return &Server{
		app:       app,
		metrics:   m,
		logger:    logger.With().Str("component", "api-server").Logger(),
		config:    config,
		startTime: time.Now(),
	}
}

// SetTimeSeries enables the sampled metrics history endpoint.
func (s *Server) SetTimeSeries(c *metrics.TimeSeriesCollector) {
	s.timeseries = c
}

// RegisterRoutes registers the operational routes
func (s *Server) RegisterRoutes() {
	s.app.Get("/health", s.healthHandler)
	s.app.Get("/ready", s.readyHandler)

	// Prometheus exposition format
	s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))

	s.app.Get("/api/v1/metrics", s.apiMetricsHandler)
	s.app.Get("/api/v1/metrics/history", s.historyHandler)
	s.app.Get("/api/v1/logs", s.logsHandler)
}

func (s *Server) healthHandler(c *fiber.Ctx) error {
	uptime := time.Since(s.startTime)
	return c.JSON(fiber.Map{
		"status":     "ok",
		"time":       time.Now().UTC().Format(time.RFC3339),
		"uptime":     uptime.String(),
		"uptime_sec": uptime.Seconds(),
	})
}

// readyHandler is the readiness probe. The engine has no external
// dependencies, so a responding server is ready.
func (s *Server) readyHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     "ready",
		"time":       time.Now().UTC().Format(time.RFC3339),
		"uptime_sec": time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) apiMetricsHandler(c *fiber.Ctx) error {
	snapshot := s.metrics.Snapshot()
	snapshot["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	snapshot["go_version"] = runtime.Version()
	return c.JSON(snapshot)
}

func (s *Server) historyHandler(c *fiber.Ctx) error {
	if s.timeseries == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "metrics history is disabled",
		})
	}

	minutes := boundedInt(c.Query("duration_minutes"), 30, 1, 1440)
	points := s.timeseries.Recent(minutes)

	return c.JSON(fiber.Map{
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"duration_minutes": minutes,
		"points_count":     len(points),
		"data":             points,
	})
}

// logsHandler returns recent application logs
func (s *Server) logsHandler(c *fiber.Ctx) error {
	limit := boundedInt(c.Query("limit"), 100, 1, 1000)
	level := c.Query("level")
	sinceMinutes := boundedInt(c.Query("since_minutes"), 60, 1, 1440)

	entries := logger.GetBuffer().GetRecent(limit, level, sinceMinutes)

	return c.JSON(fiber.Map{
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"count":         len(entries),
		"limit":         limit,
		"level_filter":  level,
		"since_minutes": sinceMinutes,
		"logs":          entries,
	})
}

// boundedInt parses raw, falling back to def when it is missing or outside
// [lo, hi].
func boundedInt(raw string, def, lo, hi int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return def
	}
	return v
}

// Start starts listening in the background. Listener failures are reported
// on the returned channel.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	s.logger.Info().
		Str("addr", addr).
		Bool("tls", s.config.TLSEnabled).
		Msg("Starting gridtab HTTP server")

	go func() {
		var err error
		if s.config.TLSEnabled {
			err = s.app.ListenTLS(addr, s.config.TLSCertFile, s.config.TLSKeyFile)
		} else {
			err = s.app.Listen(addr)
		}
		if err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server gracefully...")

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("Server stopped")
	return nil
}

// App returns the underlying Fiber app (for registering handler routes)
func (s *Server) App() *fiber.App {
	return s.app
}

// customErrorHandler handles Fiber errors
func customErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error().
			Err(err).
			Int("status", code).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("Request error")

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

// securityHeaders adds security headers to all responses
func securityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		// API-only service
		c.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		return c.Next()
	}
}

// requestLogger records request metrics and logs failed requests only
func requestLogger(m *metrics.Metrics, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()
		m.ObserveHTTP(c.Method(), status, duration)

		if status >= 400 {
			logEvent := logger.Warn()
			if status >= 500 {
				logEvent = logger.Error()
			}

			logEvent.
				Str("method", c.Method()).
				Str("path", c.Path()).
				Int("status", status).
				Dur("duration_ms", duration).
				Str("ip", c.IP()).
				Msg("HTTP request error")
		}

		return err
	}
}
