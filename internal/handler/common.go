package handler // handler defines the HTTP handlers of the slot booking UI

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/mazenolama/Aljabr-Task/internal/middleware"
    "github.com/mazenolama/Aljabr-Task/internal/view"
    "github.com/mazenolama/Aljabr-Task/internal/web"
)

// flashCookie carries one action message across the redirect that follows
// every mutation.
const flashCookie = "flash"

// Pages holds what every page-rendering handler needs.
type Pages struct {
    Logger     *zap.Logger
    MessageTTL time.Duration // how long an action message lives
    Secure     bool          // mark cookies Secure (production)
}

// NewPages fills defaults.
func NewPages(logger *zap.Logger, messageTTL time.Duration, secure bool) Pages {
    if logger == nil {
        logger = zap.NewNop()
    }
    if messageTTL <= 0 {
        messageTTL = 3 * time.Second
    }
    return Pages{Logger: logger, MessageTTL: messageTTL, Secure: secure}
}

// page wraps data with the session and layout fields.
func (p Pages) page(c echo.Context, title, active string, data any) web.Page {
    return web.Page{
        Title:      title,
        Active:     active,
        Session:    middleware.SessionFrom(c),
        MessageTTL: p.MessageTTL.Milliseconds(),
        Data:       data,
    }
}

// render writes a full page.
func (p Pages) render(c echo.Context, status int, name, title, active string, data any) error {
    return c.Render(status, name, p.page(c, title, active, data))
}

// setFlash stores msg for the next page view.  The cookie expires with the
// message so a stale notice never resurfaces.
func (p Pages) setFlash(c echo.Context, msg *view.Message) {
    if msg == nil {
        return
    }
    c.SetCookie(&http.Cookie{
        Name:     flashCookie,
        Value:    msg.Encode(),
        Path:     "/",
        MaxAge:   int((p.MessageTTL + time.Second - 1) / time.Second),
        HttpOnly: true,
        Secure:   p.Secure,
        SameSite: http.SameSiteLaxMode,
    })
}

// takeFlash reads and clears the pending message.
func (p Pages) takeFlash(c echo.Context) *view.Message {
    ck, err := c.Cookie(flashCookie)
    if err != nil || ck.Value == "" {
        return nil
    }
    c.SetCookie(&http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: p.Secure})
    return view.DecodeMessage(ck.Value)
}

// redirect answers a form post with 303 so the browser refetches the page.
func (p Pages) redirect(c echo.Context, to string, msg *view.Message) error {
    p.setFlash(c, msg)
    return c.Redirect(http.StatusSeeOther, to)
}

// AuthRequired renders the login prompt for guarded pages.
func (p Pages) AuthRequired(c echo.Context) error {
    return p.render(c, http.StatusUnauthorized, "auth_required", "Authentication Required", "", nil)
}

// Forbidden renders the admin-only notice.
func (p Pages) Forbidden(c echo.Context) error {
    return p.render(c, http.StatusForbidden, "forbidden", "Access Denied", "", nil)
}

// ErrorData is the payload of the error page.
type ErrorData struct {
    Status  int
    Message string
}

// HTTPErrorHandler renders unhandled errors (unknown routes, rate limit,
// panics recovered by echo) as an HTML page.
func (p Pages) HTTPErrorHandler(err error, c echo.Context) {
    if c.Response().Committed {
        return
    }
    status := http.StatusInternalServerError
    msg := "Something went wrong. Please try again."
    if he, ok := err.(*echo.HTTPError); ok {
        status = he.Code
        if s, ok := he.Message.(string); ok && status < 500 {
            msg = s
        }
    }
    if status >= 500 {
        p.Logger.Error("unhandled error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
    }
    if status == http.StatusNotFound {
        msg = "Page not found"
    }
    if rerr := p.render(c, status, "error", http.StatusText(status), "", ErrorData{Status: status, Message: msg}); rerr != nil {
        _ = c.String(status, msg)
    }
}

// returnTo reads the form's return_to field.  Only local paths are
// accepted; anything else falls back.
func returnTo(c echo.Context, fallback string) string {
    to := strings.TrimSpace(c.FormValue("return_to"))
    if to == "" || !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") || strings.Contains(to, "\\") {
        return fallback
    }
    return to
}
