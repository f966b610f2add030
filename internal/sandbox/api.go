package sandbox

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mazenolama/Aljabr-Task/internal/lifecycle"
	"github.com/mazenolama/Aljabr-Task/internal/middleware"
	"github.com/mazenolama/Aljabr-Task/internal/model"
	"github.com/mazenolama/Aljabr-Task/internal/utils"
)

// APIHandler serves the scheduling API endpoints on top of a Store.
type APIHandler struct {
	Store    *Store
	Secret   string
	TokenTTL time.Duration
	Validate *validator.Validate
	Logger   *zap.Logger
}

func NewAPIHandler(store *Store, secret string, ttl time.Duration, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{Store: store, Secret: secret, TokenTTL: ttl, Validate: validator.New(), Logger: logger}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResp struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login: POST /Auth/login
func (h *APIHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email and password are required"})
	}
	u, err := h.Store.Authenticate(req.Email, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password"})
	}
	tok, err := utils.NewAccessToken(h.Secret, u.ID.String(), string(u.Role), h.TokenTTL)
	if err != nil {
		h.Logger.Error("sign token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token issue failed"})
	}
	return c.JSON(http.StatusOK, loginResp{Token: tok.Token, User: u})
}

// ListSlots: GET /Slots?date=&status=&userId=
// Guests get the public availability listing.
func (h *APIHandler) ListSlots(c echo.Context) error {
	q := Query{Date: strings.TrimSpace(c.QueryParam("date"))}
	if middleware.CurrentUserID(c) == "anon" {
		q.Public = true
		return c.JSON(http.StatusOK, h.Store.List(q))
	}
	status, ok := model.ParseStatus(c.QueryParam("status"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid status filter"})
	}
	q.Status = status
	q.UserID = model.ID(strings.TrimSpace(c.QueryParam("userId")))
	return c.JSON(http.StatusOK, h.Store.List(q))
}

// CreateSlot: POST /slots (admin)
func (h *APIHandler) CreateSlot(c echo.Context) error {
	var req model.CreateSlotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date, startTime and endTime are required"})
	}
	w, err := lifecycle.WindowFromTimestamps(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return h.fail(c, err)
	}
	sl, err := h.Store.Create(w, model.ID(middleware.CurrentUserID(c)))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, sl)
}

// UpdateSlot: PUT /slots/:id (admin)
func (h *APIHandler) UpdateSlot(c echo.Context) error {
	var req model.UpdateSlotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Empty() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	sl, err := h.Store.Update(model.ID(c.Param("id")), req, model.ID(middleware.CurrentUserID(c)))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sl)
}

// DeleteSlot: DELETE /slots/:id (admin)
func (h *APIHandler) DeleteSlot(c echo.Context) error {
	if err := h.Store.Delete(model.ID(c.Param("id"))); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// BookSlot: PUT /Slots/:id/book (any user)
func (h *APIHandler) BookSlot(c echo.Context) error {
	sl, err := h.Store.Book(model.ID(c.Param("id")), model.ID(middleware.CurrentUserID(c)))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sl)
}

// ListUsers: GET /user
func (h *APIHandler) ListUsers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.Users())
}

// fail maps store and lifecycle errors onto status codes.
func (h *APIHandler) fail(c echo.Context, err error) error {
	var (
		ve *lifecycle.ValidationError
		ce *lifecycle.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message})
	case errors.As(err, &ce):
		return c.JSON(http.StatusConflict, echo.Map{"error": conflictMessage(ce)})
	case errors.Is(err, lifecycle.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Slot not found"})
	}
	h.Logger.Error("sandbox request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func conflictMessage(ce *lifecycle.ConflictError) string {
	switch {
	case ce.Status == "deleted":
		return "Slot has been deleted"
	case ce.Action == "book" && ce.Status == model.StatusBooked:
		return "Slot is already booked"
	case ce.Action == "book":
		return "Slot is not available for booking"
	case ce.Action == "delete":
		return "Cannot delete a booked slot. Cancel it first."
	case ce.Action == "cancel":
		return "Only booked slots can be cancelled"
	case ce.Action == "reopen":
		return "A slot cannot be made available again"
	}
	return ce.Error()
}
