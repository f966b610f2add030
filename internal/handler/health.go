package handler // declare the package name; contains HTTP handlers

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/mazenolama/Aljabr-Task/internal/session"
)

// HealthHandler reports whether the UI server can reach its session
// storage.  The scheduling service is not probed: the UI stays up and
// shows errors when the service is down.
type HealthHandler struct {
    Storage session.Storage
}

func NewHealthHandler(st session.Storage) *HealthHandler { return &HealthHandler{Storage: st} }

// Health: GET /healthz
func (h *HealthHandler) Health(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
    defer cancel()
    if err := h.Storage.Ping(ctx); err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "error": "session storage unreachable"})
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
