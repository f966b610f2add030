package router // package router defines how HTTP routes are registered on the servers

import (
	"net/http"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/mazenolama/Aljabr-Task/internal/handler"
	"github.com/mazenolama/Aljabr-Task/internal/middleware"
)

// RegisterRoutes registers the routes that need no session: the health
// check and the root redirect.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
	e.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusFound, "/slots") })
}

// RegisterAuth registers login and logout.  POST /login goes through the
// rate limiter.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	e.GET("/login", a.ShowLogin)
	e.POST("/login", a.Login, limit)
	e.POST("/logout", a.Logout)
}

// RegisterPublic registers the availability page, open to guests, and the
// booking action.  Booking checks the session itself so a guest gets a
// message instead of a login wall.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, limit echo.MiddlewareFunc) {
	e.GET("/slots", p.Available)
	e.POST("/slots/:id/book", p.Book, limit)
}

// RegisterDashboard registers the logged-in pages.  /dashboard is open to
// every user; /manage and the slot management actions are admin pages.
func RegisterDashboard(e *echo.Echo, d *handler.DashboardHandler, limit echo.MiddlewareFunc) {
	login := middleware.RequireLogin(d.AuthRequired)
	admin := middleware.RequireAdmin(d.Forbidden)

	e.GET("/dashboard", d.Dashboard, login)

	g := e.Group("/manage", login, admin)
	g.GET("", d.Dashboard)
	g.GET("/slots/new", d.NewSlot)
	g.POST("/slots", d.CreateSlot, limit)
	g.GET("/slots/:id/edit", d.EditSlot)
	g.POST("/slots/:id", d.UpdateSlot, limit)
	g.GET("/slots/:id/delete", d.ConfirmDelete)
	g.POST("/slots/:id/delete", d.DeleteSlot, limit)
	g.POST("/slots/:id/status", d.UpdateStatus, limit)
}
