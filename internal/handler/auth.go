package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/mazenolama/Aljabr-Task/internal/middleware"
    "github.com/mazenolama/Aljabr-Task/internal/session"
    "github.com/mazenolama/Aljabr-Task/internal/view"
)

// AuthHandler serves login and logout.
type AuthHandler struct {
    Pages
    Sessions *session.Store
}

func NewAuthHandler(p Pages, sessions *session.Store) *AuthHandler {
    return &AuthHandler{Pages: p, Sessions: sessions}
}

// LoginData is the login form state.
type LoginData struct {
    Email string
    Error string
}

// ShowLogin: GET /login
func (h *AuthHandler) ShowLogin(c echo.Context) error {
    if middleware.SessionFrom(c).Authenticated() {
        return c.Redirect(http.StatusSeeOther, "/dashboard")
    }
    return h.render(c, http.StatusOK, "login", "Login", "login", LoginData{})
}

// Login: POST /login.  A rejected login re-renders the form with the
// service's message; nothing is persisted.
func (h *AuthHandler) Login(c echo.Context) error {
    email := strings.TrimSpace(c.FormValue("email"))
    password := c.FormValue("password")
    cur := middleware.SessionFrom(c)
    ctx := c.Request().Context()

    // The records go under a fresh id; the pre-login id is dropped.
    next := uuid.NewString()
    sess, err := h.Sessions.Login(ctx, next, email, password)
    if err != nil {
        msg := "Login failed"
        var ae *session.AuthError
        if errors.As(err, &ae) {
            msg = ae.Message
        } else {
            h.Logger.Error("login failed", zap.Error(err))
        }
        return h.render(c, http.StatusUnauthorized, "login", "Login", "login", LoginData{Email: email, Error: msg})
    }

    if _, err := h.Sessions.Logout(ctx, cur.Scope); err != nil {
        h.Logger.Warn("clear pre-login session failed", zap.Error(err))
    }
    middleware.MoveScope(c, next)
    middleware.SetSession(c, sess)
    return h.redirect(c, "/dashboard", view.Success("Welcome, "+sess.DisplayName()))
}

// Logout: POST /logout
func (h *AuthHandler) Logout(c echo.Context) error {
    cur := middleware.SessionFrom(c)
    if _, err := h.Sessions.Logout(c.Request().Context(), cur.Scope); err != nil {
        h.Logger.Warn("logout failed", zap.Error(err))
    }
    next := uuid.NewString()
    middleware.MoveScope(c, next)
    middleware.SetSession(c, session.Session{Scope: next})
    return c.Redirect(http.StatusSeeOther, "/slots")
}
