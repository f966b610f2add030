// Package app assembles the servers: logging, session storage and the
// echo instances with their middleware and routes.
package app

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mazenolama/Aljabr-Task/internal/handler"
	"github.com/mazenolama/Aljabr-Task/internal/middleware"
	"github.com/mazenolama/Aljabr-Task/internal/router"
	"github.com/mazenolama/Aljabr-Task/internal/sandbox"
	"github.com/mazenolama/Aljabr-Task/internal/service"
	"github.com/mazenolama/Aljabr-Task/internal/session"
	"github.com/mazenolama/Aljabr-Task/internal/web"
)

// UI bundles what the browser-facing server needs.
type UI struct {
	Logger     *zap.Logger
	Sessions   *session.Store
	Slots      *service.SlotService
	Cookie     middleware.SessionConfig
	MessageTTL time.Duration
	RateLimit  echo.MiddlewareFunc // nil disables limiting
}

// NewUIServer builds the echo instance serving the HTML pages.
func NewUIServer(ui UI) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	pages := handler.NewPages(ui.Logger, ui.MessageTTL, ui.Cookie.Secure)
	e.Renderer = web.MustRenderer()
	e.HTTPErrorHandler = pages.HTTPErrorHandler

	limit := ui.RateLimit
	if limit == nil {
		limit = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	e.Use(echomw.Recover())
	e.Use(middleware.Session(ui.Sessions, ui.Cookie))
	e.Use(middleware.RequestLogger(pages.Logger))

	router.RegisterRoutes(e, handler.NewHealthHandler(ui.Sessions.Storage()))
	router.RegisterAuth(e, handler.NewAuthHandler(pages, ui.Sessions), limit)
	router.RegisterPublic(e, handler.NewPublicHandler(pages, ui.Slots), limit)
	router.RegisterDashboard(e, handler.NewDashboardHandler(pages, ui.Slots), limit)
	return e
}

// NewSandboxServer builds the echo instance of the local scheduling API.
func NewSandboxServer(h *sandbox.APIHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(h.Logger))
	router.RegisterSandbox(e, h)
	return e
}
