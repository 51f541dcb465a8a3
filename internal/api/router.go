package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-analyzer/internal/metrics"
)

// ServerConfig tunes the fiber app.
type ServerConfig struct {
	BodyLimitMB  int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp wires the routes and middleware. gatherer backs GET /metrics.
func NewApp(h *Handler, cfg ServerConfig, m *metrics.Metrics, gatherer prometheus.Gatherer) *fiber.App {
	if cfg.BodyLimitMB <= 0 {
		cfg.BodyLimitMB = 32
	}

	app := fiber.New(fiber.Config{
		AppName:               "statement-analyzer",
		BodyLimit:             cfg.BodyLimitMB << 20,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(h.logger),
	})

	app.Use(fiberrecover.New(fiberrecover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			h.logger.Error().
				Interface("error", e).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("panic recovered")
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	app.Use(requestMetrics(m))
	app.Use(requestLogger(h.logger))

	app.Get("/api/health", h.Health)
	app.Post("/api/analyze", h.Analyze)
	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return app
}

func errorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		}
		return writeError(c, code, msg)
	}
}

// requestMetrics records count and latency per route pattern to keep label
// cardinality bounded.
func requestMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		m.ObserveHTTP(c.Method(), c.Route().Path, status, time.Since(start).Seconds())
		return err
	}
}

func requestLogger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		logger.Debug().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("elapsed", time.Since(start)).
			Msg("request served")
		return err
	}
}
