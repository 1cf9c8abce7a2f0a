// Package handlers holds HTTP handlers without a domain package of their own.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// PingHandler answers health probes.
type PingHandler struct {
	logger *slog.Logger
}

// NewPingHandler creates a PingHandler.
func NewPingHandler(log *slog.Logger) *PingHandler {
	return &PingHandler{logger: log.With(slog.String("handler", "ping"))}
}

// Register registers the health routes.
func (h *PingHandler) Register(e *echo.Echo) {
	e.GET("/ping", h.Ping)
	e.GET("/", h.Root)
	e.HEAD("/health", h.PingHead)
}

// Ping responds with a small status document.
func (h *PingHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Root responds with a plain OK for platform liveness checks.
func (h *PingHandler) Root(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// PingHead responds to HEAD health probes.
func (h *PingHandler) PingHead(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}
