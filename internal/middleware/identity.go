package middleware

// identity.go holds the context keys shared by the middleware in this
// package and the helpers that read them back.  The JWT middleware of the
// sandbox API and the session middleware of the UI both store the caller
// under "user_id" so the rate limiter keys requests the same way in
// either server.

import (
    "github.com/labstack/echo/v4"

    "github.com/mazenolama/Aljabr-Task/internal/session"
)

const (
    ctxUserID  = "user_id"
    ctxRole    = "role"
    ctxSession = "session"
    ctxCookie  = "session_cookie"
)

// CurrentUserID returns the authenticated caller's id, or "anon".
func CurrentUserID(c echo.Context) string {
    if v := c.Get(ctxUserID); v != nil {
        if s, ok := v.(string); ok && s != "" {
            return s
        }
    }
    return "anon"
}

// CurrentRole returns the caller's role claim, or "".
func CurrentRole(c echo.Context) string {
    s, _ := c.Get(ctxRole).(string)
    return s
}

// SessionFrom returns the session restored by the Session middleware.
// Outside that middleware it is the logged-out state.
func SessionFrom(c echo.Context) session.Session {
    if s, ok := c.Get(ctxSession).(session.Session); ok {
        return s
    }
    return session.Session{}
}

// SetSession replaces the request's session, e.g. right after login.
func SetSession(c echo.Context, s session.Session) {
    c.Set(ctxSession, s)
    if s.Authenticated() {
        c.Set(ctxUserID, s.UserID().String())
        c.Set(ctxRole, string(s.User.Role))
        return
    }
    c.Set(ctxUserID, nil)
    c.Set(ctxRole, nil)
}
