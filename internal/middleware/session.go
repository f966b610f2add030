package middleware

import (
    "net/http"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/mazenolama/Aljabr-Task/internal/session"
)

// SessionConfig names the browser cookie that carries the session scope.
type SessionConfig struct {
    CookieName string
    Secure     bool
    MaxAge     time.Duration
}

// Session restores the browser's session on every request.  A browser
// without a well-formed session id cookie gets a fresh random one; the id
// only selects the storage scope, the records themselves stay on the
// server.
func Session(store *session.Store, cfg SessionConfig) echo.MiddlewareFunc {
    if cfg.CookieName == "" {
        cfg.CookieName = "sid"
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            c.Set(ctxCookie, cfg)
            scope := ""
            if ck, err := c.Cookie(cfg.CookieName); err == nil {
                if _, perr := uuid.Parse(ck.Value); perr == nil {
                    scope = ck.Value
                }
            }
            if scope == "" {
                scope = uuid.NewString()
                setScopeCookie(c, cfg, scope)
            }

            SetSession(c, store.Restore(c.Request().Context(), scope))
            return next(c)
        }
    }
}

// MoveScope points the browser's session cookie at scope.  Login and
// logout move to a fresh id so an id the browser held before, possibly
// planted by someone else, never carries into the next session.
func MoveScope(c echo.Context, scope string) {
    cfg, _ := c.Get(ctxCookie).(SessionConfig)
    if cfg.CookieName == "" {
        cfg.CookieName = "sid"
    }
    setScopeCookie(c, cfg, scope)
}

func setScopeCookie(c echo.Context, cfg SessionConfig, scope string) {
    ck := &http.Cookie{
        Name:     cfg.CookieName,
        Value:    scope,
        Path:     "/",
        HttpOnly: true,
        Secure:   cfg.Secure,
        SameSite: http.SameSiteLaxMode,
    }
    if cfg.MaxAge > 0 {
        ck.MaxAge = int(cfg.MaxAge / time.Second)
    }
    c.SetCookie(ck)
}
