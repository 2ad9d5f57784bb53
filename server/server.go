// Package server exposes a scene store over HTTP.
package server

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/phanxgames/twin/store"
)

// Config tunes the HTTP app.
type Config struct {
	AppName      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// RequestLog enables the per-request access log.
	RequestLog bool
}

// DefaultConfig returns the settings used by cmd/sceneserver.
func DefaultConfig() Config {
	return Config{
		AppName:      "Twin Scene Server",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		RequestLog:   true,
	}
}

// New builds the fiber app serving scenes from st.
func New(st store.Store, cfg Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		AppName:      cfg.AppName,
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	if cfg.RequestLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}

	// ============================================================
	// Routes
	// ============================================================

	h := &handlers{store: st}
	app.Get("/health", h.health)
	app.Get("/scenes", h.list)
	app.Post("/scenes", h.create)
	app.Get("/scenes/:id", h.get)
	app.Put("/scenes/:id", h.put)
	app.Delete("/scenes/:id", h.delete)
	app.Get("/scenes/:id/summary", h.summary)

	return app
}
