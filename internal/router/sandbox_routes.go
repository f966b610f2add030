package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mazenolama/Aljabr-Task/internal/middleware"
	"github.com/mazenolama/Aljabr-Task/internal/sandbox"
)

// RegisterSandbox registers the scheduling API under /api.  Clients use
// both "/Slots" and "/slots" (and "/Auth" next to "/auth"), so every
// endpoint answers under either casing.  Middleware is attached per
// route: guests may list slots, any user may book, and only admins may
// create, update or delete.
func RegisterSandbox(e *echo.Echo, h *sandbox.APIHandler) {
	api := e.Group("/api")
	optional := middleware.OptionalJWT(h.Secret)
	user := middleware.JWTAuth(h.Secret)
	admin := middleware.RequireRole("admin")

	for _, p := range []string{"/Auth/login", "/auth/login"} {
		api.POST(p, h.Login)
	}
	for _, base := range []string{"/Slots", "/slots"} {
		api.GET(base, h.ListSlots, optional)
		api.POST(base, h.CreateSlot, user, admin)
		api.PUT(base+"/:id", h.UpdateSlot, user, admin)
		api.DELETE(base+"/:id", h.DeleteSlot, user, admin)
		api.PUT(base+"/:id/book", h.BookSlot, user)
	}
	for _, p := range []string{"/user", "/users"} {
		api.GET(p, h.ListUsers, user)
	}
}
