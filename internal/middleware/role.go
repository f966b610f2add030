package middleware // middleware provides shared request processing for handlers

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
)

// RequireRole returns a middleware function that enforces that the
// authenticated caller has one of the specified roles.  It assumes JWTAuth
// has stored the role claim under "role".  Roles compare case-insensitively.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[strings.ToLower(r)] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !allowed[strings.ToLower(CurrentRole(c))] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "Forbidden"})
            }
            return next(c)
        }
    }
}

// PageGate renders a page in place of the guarded handler.
type PageGate func(c echo.Context) error

// RequireLogin lets logged-in sessions through and answers everyone else
// with deny, typically the "Authentication Required" page.
func RequireLogin(deny PageGate) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !SessionFrom(c).Authenticated() {
                return deny(c)
            }
            return next(c)
        }
    }
}

// RequireAdmin hides admin pages from non-admin sessions.  The role comes
// from the login response and only decides what the UI offers; the
// scheduling service enforces its own policy on every call.
func RequireAdmin(deny PageGate) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !SessionFrom(c).IsAdmin() {
                return deny(c)
            }
            return next(c)
        }
    }
}
