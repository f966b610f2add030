package sandbox_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mazenolama/Aljabr-Task/internal/model"
	"github.com/mazenolama/Aljabr-Task/internal/router"
	"github.com/mazenolama/Aljabr-Task/internal/sandbox"
)

type fixture struct {
	e     *echo.Echo
	store *sandbox.Store
	admin string
	user  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := sandbox.NewStore(bcrypt.MinCost)
	_, err := sandbox.Seed(store,
		sandbox.Account{Name: "Admin", Email: "admin@example.com", Password: "admin123", Role: model.RoleAdmin},
		sandbox.Account{Name: "Sara", Email: "sara@example.com", Password: "user123", Role: model.RoleUser},
	)
	require.NoError(t, err)

	e := echo.New()
	router.RegisterSandbox(e, sandbox.NewAPIHandler(store, "test-secret", time.Hour, nil))
	f := &fixture{e: e, store: store}
	f.admin = f.login(t, "admin@example.com", "admin123")
	f.user = f.login(t, "sara@example.com", "user123")
	return f
}

func (f *fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := f.do(http.MethodPost, "/api/Auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (f *fixture) create(t *testing.T, date, start, end string) model.Slot {
	t.Helper()
	body := `{"date":"` + date + `","startTime":"` + date + `T` + start + `:00+03:00","endTime":"` + date + `T` + end + `:00+03:00","status":"available","isAvailable":true}`
	rec := f.do(http.MethodPost, "/api/slots", f.admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sl model.Slot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sl))
	return sl
}

func decodeSlots(t *testing.T, rec *httptest.ResponseRecorder) []model.Slot {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out []model.Slot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestLogin_Rejects(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/auth/login", "", `{"email":"admin@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid email or password"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/auth/login", "", `{"email":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t)
	sl := f.create(t, "2025-03-01", "09:00", "10:00")
	assert.Equal(t, model.StatusAvailable, sl.Status)

	rec := f.do(http.MethodPut, "/api/Slots/"+sl.ID.String()+"/book", f.user, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPut, "/api/Slots/"+sl.ID.String()+"/book", f.user, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Slot is already booked"}`, rec.Body.String())

	rec = f.do(http.MethodDelete, "/api/slots/"+sl.ID.String(), f.admin, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodPut, "/api/slots/"+sl.ID.String(), f.admin, `{"status":"cancelled"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodDelete, "/api/slots/"+sl.ID.String(), f.admin, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Empty(t, decodeSlots(t, f.do(http.MethodGet, "/api/Slots", f.admin, "")))
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/slots", f.admin,
		`{"date":"2025-03-01","startTime":"2025-03-01T10:00:00+03:00","endTime":"2025-03-01T09:00:00+03:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"End time must be after start time"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/slots", f.user,
		`{"date":"2025-03-01","startTime":"2025-03-01T09:00:00+03:00","endTime":"2025-03-01T10:00:00+03:00"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPost, "/api/slots", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListing_PublicAndFilters(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, "2025-03-01", "09:00", "10:00")
	b := f.create(t, "2025-03-01", "11:00", "12:00")
	f.create(t, "2025-03-02", "09:00", "10:00")
	require.Equal(t, http.StatusOK, f.do(http.MethodPut, "/api/slots/"+b.ID.String()+"/book", f.user, "").Code)

	public := decodeSlots(t, f.do(http.MethodGet, "/api/Slots?date=2025-03-01", "", ""))
	require.Len(t, public, 1)
	assert.Equal(t, a.ID, public[0].ID)
	assert.Equal(t, "Admin", public[0].CreatedByUser.Name)

	booked := decodeSlots(t, f.do(http.MethodGet, "/api/Slots?status=booked", f.admin, ""))
	require.Len(t, booked, 1)
	assert.Equal(t, b.ID, booked[0].ID)

	all := decodeSlots(t, f.do(http.MethodGet, "/api/Slots?date=2025-03-01", f.admin, ""))
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID, "ordered by start time")

	rec := f.do(http.MethodGet, "/api/Slots?status=lost", f.admin, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdate_MovesDate(t *testing.T) {
	f := newFixture(t)
	sl := f.create(t, "2025-03-01", "09:00", "10:00")

	rec := f.do(http.MethodPut, "/api/slots/"+sl.ID.String(), f.admin, `{"date":"2025-03-05"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got model.Slot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "2025-03-05", got.Date)
	assert.Equal(t, "2025-03-05T09:00:00+03:00", got.StartTime)
	assert.Equal(t, model.StatusAvailable, got.Status)

	rec = f.do(http.MethodPut, "/api/slots/missing", f.admin, `{"date":"2025-03-05"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPut, "/api/slots/"+sl.ID.String(), f.admin, `{"status":"available"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUsers(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/user", f.user, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var users []model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "Admin", users[0].Name)
	assert.NotContains(t, rec.Body.String(), "admin123")

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/user", "", "").Code)
}
