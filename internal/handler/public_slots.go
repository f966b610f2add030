package handler

import (
    "context"
    "errors"
    "net/http"
    "net/url"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/mazenolama/Aljabr-Task/internal/lifecycle"
    "github.com/mazenolama/Aljabr-Task/internal/middleware"
    "github.com/mazenolama/Aljabr-Task/internal/model"
    "github.com/mazenolama/Aljabr-Task/internal/service"
    "github.com/mazenolama/Aljabr-Task/internal/view"
)

// PublicHandler serves the availability page, open to guests, and the
// booking action behind it.
type PublicHandler struct {
    Pages
    Slots *service.SlotService
}

func NewPublicHandler(p Pages, slots *service.SlotService) *PublicHandler {
    return &PublicHandler{Pages: p, Slots: slots}
}

// AvailableData is the availability page state.
type AvailableData struct {
    Date  string
    Today string
    List  view.Snapshot
}

// Available: GET /slots?date=YYYY-MM-DD
func (h *PublicHandler) Available(c echo.Context) error {
    date := strings.TrimSpace(c.QueryParam("date"))
    list := view.NewListView(func(ctx context.Context, f model.FilterCriteria) ([]model.Slot, error) {
        return h.Slots.ListAvailable(ctx, f.Date)
    }, h.Logger)
    _ = list.SetFilter(c.Request().Context(), model.FilterCriteria{Date: date})

    back := "/slots"
    if date != "" {
        back += "?date=" + url.QueryEscape(date)
    }
    snap := list.Snapshot(view.Viewer{CanBook: true, ReturnTo: back}, h.takeFlash(c))
    if snap.Banner != "" {
        snap.Banner = "Failed to load available slots. Please try again."
    }
    return h.render(c, http.StatusOK, "slots", "Available Slots", "slots", AvailableData{
        Date:  date,
        Today: h.Slots.Now().Format(model.DateLayout),
        List:  snap,
    })
}

// Book: POST /slots/:id/book.  Guests are told to log in; otherwise the
// outcome is flashed and the originating list refetched.
func (h *PublicHandler) Book(c echo.Context) error {
    back := returnTo(c, "/slots")
    sess := middleware.SessionFrom(c)
    if !sess.Authenticated() {
        return h.redirect(c, back, view.Warning("Please login to book a slot"))
    }
    id := model.ID(c.Param("id"))
    if _, err := h.Slots.Book(c.Request().Context(), sess, id); err != nil {
        return h.redirect(c, back, view.Failure(bookFailure(err), id))
    }
    return h.redirect(c, back, view.Success("Slot booked successfully!"))
}

func bookFailure(err error) string {
    var ce *lifecycle.ConflictError
    if errors.As(err, &ce) && ce.Err == nil {
        if ce.Status == model.StatusBooked {
            return "Slot is already booked"
        }
        return "Slot is not available for booking"
    }
    if msg := err.Error(); msg != "" {
        return msg
    }
    return "Failed to book slot"
}
