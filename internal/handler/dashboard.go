package handler

import (
    "errors"
    "net/http"
    "net/url"
    "strings"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/mazenolama/Aljabr-Task/internal/lifecycle"
    "github.com/mazenolama/Aljabr-Task/internal/middleware"
    "github.com/mazenolama/Aljabr-Task/internal/model"
    "github.com/mazenolama/Aljabr-Task/internal/service"
    "github.com/mazenolama/Aljabr-Task/internal/view"
)

// DashboardHandler serves the authenticated slot list and, for admins,
// the slot management actions.
type DashboardHandler struct {
    Pages
    Slots *service.SlotService
}

func NewDashboardHandler(p Pages, slots *service.SlotService) *DashboardHandler {
    return &DashboardHandler{Pages: p, Slots: slots}
}

// DashboardData is the dashboard page state.
type DashboardData struct {
    Heading   string
    Path      string
    List      view.Snapshot
    Statuses  []model.SlotStatus
    Users     []model.User
    CanCreate bool
}

// filterFromQuery reads the filter criteria.  Values go to the service
// verbatim; an unknown status is dropped rather than sent.
func filterFromQuery(c echo.Context) model.FilterCriteria {
    var f model.FilterCriteria
    if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
        return model.FilterCriteria{}
    }
    f.Date = strings.TrimSpace(f.Date)
    f.UserID = strings.TrimSpace(f.UserID)
    if st, ok := model.ParseStatus(string(f.Status)); ok {
        f.Status = st
    } else {
        f.Status = ""
    }
    return f
}

// Dashboard: GET /dashboard and GET /manage
func (h *DashboardHandler) Dashboard(c echo.Context) error {
    sess := middleware.SessionFrom(c)
    ctx := c.Request().Context()
    path := c.Path()
    f := filterFromQuery(c)

    list := view.NewListView(h.Slots.Fetcher(sess), h.Logger)
    _ = list.SetFilter(ctx, f)

    here := path
    if q := f.Query().Encode(); q != "" {
        here += "?" + q
    }
    snap := list.Snapshot(view.Viewer{CanBook: true, IsAdmin: sess.IsAdmin(), ReturnTo: here}, h.takeFlash(c))

    users, err := h.Slots.Users(ctx, sess)
    if err != nil {
        h.Logger.Warn("user list failed", zap.Error(err))
        users = nil
    }

    heading, active := "Dashboard", "dashboard"
    if path == "/manage" {
        heading, active = "Manage Slots", "manage"
    }
    return h.render(c, http.StatusOK, "dashboard", heading, active, DashboardData{
        Heading:   heading,
        Path:      path,
        List:      snap,
        Statuses:  model.Statuses,
        Users:     users,
        CanCreate: sess.IsAdmin(),
    })
}

// FormData is the create/edit page state.
type FormData struct {
    Form   view.SlotForm
    Action string
    Cancel string
}

// NewSlot: GET /manage/slots/new
func (h *DashboardHandler) NewSlot(c echo.Context) error {
    form := view.NewSlotForm(h.Slots.Now())
    return h.renderForm(c, http.StatusOK, form)
}

// CreateSlot: POST /manage/slots
func (h *DashboardHandler) CreateSlot(c echo.Context) error {
    form := formFromPost(c, "")
    if _, err := h.Slots.Create(c.Request().Context(), middleware.SessionFrom(c), &form); err != nil {
        return h.formFailed(c, form, err)
    }
    return h.redirect(c, "/manage", view.Success("Slot created successfully"))
}

// EditSlot: GET /manage/slots/:id/edit
func (h *DashboardHandler) EditSlot(c echo.Context) error {
    sl, err := h.Slots.Lookup(c.Request().Context(), middleware.SessionFrom(c), model.ID(c.Param("id")))
    if err != nil {
        return h.redirect(c, "/manage", view.Failure(lookupFailure(err), ""))
    }
    return h.renderForm(c, http.StatusOK, view.EditSlotForm(sl))
}

// UpdateSlot: POST /manage/slots/:id
func (h *DashboardHandler) UpdateSlot(c echo.Context) error {
    id := model.ID(c.Param("id"))
    form := formFromPost(c, id)
    if _, err := h.Slots.Update(c.Request().Context(), middleware.SessionFrom(c), id, &form); err != nil {
        return h.formFailed(c, form, err)
    }
    return h.redirect(c, "/manage", view.Success("Slot updated successfully"))
}

// DeleteData is the delete confirmation page state.
type DeleteData struct {
    Card view.Card
}

// ConfirmDelete: GET /manage/slots/:id/delete
func (h *DashboardHandler) ConfirmDelete(c echo.Context) error {
    sess := middleware.SessionFrom(c)
    sl, err := h.Slots.Lookup(c.Request().Context(), sess, model.ID(c.Param("id")))
    if err != nil {
        return h.redirect(c, "/manage", view.Failure(lookupFailure(err), ""))
    }
    if err := lifecycle.CheckDelete(sl); err != nil {
        return h.redirect(c, "/manage", view.Failure(mutationFailure(err), sl.ID))
    }
    card := view.CardFor(sl, view.Viewer{IsAdmin: true}, nil)
    return h.render(c, http.StatusOK, "slot_delete", "Delete Slot", "manage", DeleteData{Card: card})
}

// DeleteSlot: POST /manage/slots/:id/delete
func (h *DashboardHandler) DeleteSlot(c echo.Context) error {
    id := model.ID(c.Param("id"))
    if err := h.Slots.Delete(c.Request().Context(), middleware.SessionFrom(c), id); err != nil {
        return h.redirect(c, "/manage", view.Failure(mutationFailure(err), id))
    }
    return h.redirect(c, "/manage", view.Success("Slot deleted successfully"))
}

// UpdateStatus: POST /manage/slots/:id/status
func (h *DashboardHandler) UpdateStatus(c echo.Context) error {
    id := model.ID(c.Param("id"))
    back := returnTo(c, "/manage")
    status, ok := model.ParseStatus(c.FormValue("status"))
    if !ok || status == "" {
        return h.redirect(c, back, view.Failure("Unknown status", id))
    }
    if _, err := h.Slots.ChangeStatus(c.Request().Context(), middleware.SessionFrom(c), id, status); err != nil {
        return h.redirect(c, back, view.Failure(mutationFailure(err), id))
    }
    return h.redirect(c, back, view.Success("Slot "+string(status)+" successfully"))
}

func (h *DashboardHandler) renderForm(c echo.Context, status int, form view.SlotForm) error {
    data := FormData{Form: form, Action: "/manage/slots", Cancel: "/manage"}
    if form.Editing() {
        data.Action = "/manage/slots/" + url.PathEscape(form.SlotID.String())
    }
    return h.render(c, status, "slot_form", form.Title(), "manage", data)
}

// formFailed re-renders the form with the error inline.
func (h *DashboardHandler) formFailed(c echo.Context, form view.SlotForm, err error) error {
    if form.Error == "" {
        form.Error = mutationFailure(err)
    }
    status := http.StatusBadGateway
    switch {
    case lifecycle.IsValidation(err):
        status = http.StatusUnprocessableEntity
    case lifecycle.IsConflict(err):
        status = http.StatusConflict
    }
    return h.renderForm(c, status, form)
}

func formFromPost(c echo.Context, id model.ID) view.SlotForm {
    return view.SlotForm{
        SlotID:    id,
        Date:      strings.TrimSpace(c.FormValue("date")),
        StartTime: strings.TrimSpace(c.FormValue("startTime")),
        EndTime:   strings.TrimSpace(c.FormValue("endTime")),
    }
}

func lookupFailure(err error) string {
    if errors.Is(err, lifecycle.ErrNotFound) {
        return "Slot not found"
    }
    return err.Error()
}

// mutationFailure turns a failed action into the text shown next to its
// control.
func mutationFailure(err error) string {
    var ce *lifecycle.ConflictError
    if errors.As(err, &ce) && ce.Err == nil {
        switch ce.Action {
        case "delete":
            return "Cannot delete a booked slot. Cancel it first."
        case "cancel":
            return "Only booked slots can be cancelled"
        case "reopen":
            return "A slot cannot be made available again"
        case "book":
            return bookFailure(err)
        }
    }
    return err.Error()
}
