package http

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Addr          string
	AllowOrigins  string
	ExposeMetrics bool
	// Gatherer backs /metrics; nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	Log      *slog.Logger
	// ErrorHandler overrides fiber's default error rendering.
	ErrorHandler fiber.ErrorHandler
}

type Server struct {
	app  *fiber.App
	addr string
}

func New(opts Options) *Server {
	cfg := fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
	}
	if opts.ErrorHandler != nil {
		cfg.ErrorHandler = opts.ErrorHandler
	}
	app := fiber.New(cfg)

	app.Use(recover.New())
	if opts.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowOrigins,
			AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		}))
	}
	if opts.Log != nil {
		app.Use(requestLogger(opts.Log))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
		return c.SendString("OK")
	})

	if opts.ExposeMetrics {
		g := opts.Gatherer
		if g == nil {
			g = prometheus.DefaultGatherer
		}
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	}

	return &Server{app: app, addr: opts.Addr}
}

// App exposes the router so feature handlers can be mounted.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Start() error {
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func requestLogger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		var fe *fiber.Error
		if err != nil {
			status = fiber.StatusInternalServerError
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		attrs := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if status >= fiber.StatusInternalServerError {
			log.Error("http request", append(attrs, "err", err)...)
		} else {
			log.Debug("http request", attrs...)
		}
		return err
	}
}
