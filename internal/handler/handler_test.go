package handler_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mazenolama/Aljabr-Task/internal/apiclient"
	"github.com/mazenolama/Aljabr-Task/internal/app"
	"github.com/mazenolama/Aljabr-Task/internal/lifecycle"
	"github.com/mazenolama/Aljabr-Task/internal/middleware"
	"github.com/mazenolama/Aljabr-Task/internal/model"
	"github.com/mazenolama/Aljabr-Task/internal/router"
	"github.com/mazenolama/Aljabr-Task/internal/sandbox"
	"github.com/mazenolama/Aljabr-Task/internal/service"
	"github.com/mazenolama/Aljabr-Task/internal/session"
)

const day = "2030-01-15"

var riyadh = time.FixedZone("+03", 3*60*60)

type env struct {
	ui    *httptest.Server
	store *sandbox.Store
	admin model.User
	sara  model.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := sandbox.NewStore(bcrypt.MinCost)
	users, err := sandbox.Seed(store,
		sandbox.Account{Name: "Admin", Email: "admin@example.com", Password: "admin123", Role: model.RoleAdmin},
		sandbox.Account{Name: "Sara", Email: "sara@example.com", Password: "user123", Role: model.RoleUser},
	)
	require.NoError(t, err)

	api := echo.New()
	router.RegisterSandbox(api, sandbox.NewAPIHandler(store, "test-secret", time.Hour, nil))
	remote := httptest.NewServer(api)
	t.Cleanup(remote.Close)

	client := apiclient.New(remote.URL+"/api", nil, nil)
	e := app.NewUIServer(app.UI{
		Sessions:   session.NewStore(session.NewMemoryStorage(), client, time.Hour, nil),
		Slots:      service.NewSlotService(client, service.NopPublisher{}, riyadh, nil),
		Cookie:     middleware.SessionConfig{CookieName: "sid"},
		MessageTTL: 3 * time.Second,
	})
	ui := httptest.NewServer(e)
	t.Cleanup(ui.Close)
	return &env{ui: ui, store: store, admin: users[0], sara: users[1]}
}

func (e *env) slot(t *testing.T, start, end string) model.Slot {
	t.Helper()
	w, err := lifecycle.ParseWindow(day, start, end, riyadh)
	require.NoError(t, err)
	sl, err := e.store.Create(w, e.admin.ID)
	require.NoError(t, err)
	return sl
}

// browser keeps cookies across requests and follows redirects like a
// real one.
type browser struct {
	t    *testing.T
	base string
	c    *http.Client
}

func (e *env) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: e.ui.URL, c: &http.Client{Jar: jar}}
}

func (b *browser) get(path string) (int, string) {
	b.t.Helper()
	res, err := b.c.Get(b.base + path)
	require.NoError(b.t, err)
	return read(b.t, res)
}

func (b *browser) post(path string, form url.Values) (int, string) {
	b.t.Helper()
	res, err := b.c.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	return read(b.t, res)
}

func (b *browser) login(email, password string) (int, string) {
	return b.post("/login", url.Values{"email": {email}, "password": {password}})
}

func read(t *testing.T, res *http.Response) (int, string) {
	t.Helper()
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

func TestHealthz(t *testing.T) {
	env := newEnv(t)
	code, body := env.browser(t).get("/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"ok"`)
}

func TestLogin_RejectedShowsServiceMessage(t *testing.T) {
	env := newEnv(t)
	code, body := env.browser(t).login("sara@example.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, body, "Invalid email or password")
	assert.Contains(t, body, `value="sara@example.com"`)
}

func TestLoginLogout(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)

	code, body := b.login("sara@example.com", "user123")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Welcome, Sara")
	assert.Contains(t, body, "Logout")
	assert.NotContains(t, body, "Manage Slots")

	code, body = b.post("/logout", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Available Slots")

	code, body = b.get("/dashboard")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, body, "Authentication Required")
}

func TestAvailable_GuestSeesSlotsButCannotBook(t *testing.T) {
	env := newEnv(t)
	sl := env.slot(t, "09:00", "10:00")
	b := env.browser(t)

	code, body := b.get("/slots?date=" + day)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "1 available slot found")
	assert.Contains(t, body, "slot-"+sl.ID.String())

	code, body = b.post("/slots/"+sl.ID.String()+"/book", url.Values{"return_to": {"/slots?date=" + day}})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Please login to book a slot")

	assert.Len(t, env.store.List(sandbox.Query{Status: model.StatusAvailable}), 1)
}

func TestAvailable_EmptyDate(t *testing.T) {
	env := newEnv(t)
	code, body := env.browser(t).get("/slots?date=2031-02-01")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "No Available Slots")
}

func TestBook_Flow(t *testing.T) {
	env := newEnv(t)
	sl := env.slot(t, "09:00", "10:00")
	b := env.browser(t)
	_, _ = b.login("sara@example.com", "user123")

	back := url.Values{"return_to": {"/slots?date=" + day}}
	code, body := b.post("/slots/"+sl.ID.String()+"/book", back)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Slot booked successfully!")
	assert.Contains(t, body, "No Available Slots")

	booked := env.store.List(sandbox.Query{Status: model.StatusBooked})
	require.Len(t, booked, 1)
	assert.Equal(t, env.sara.ID, booked[0].BookedBy)

	// A second attempt is refused and reported on the page.
	_, body = b.post("/slots/"+sl.ID.String()+"/book", back)
	assert.Contains(t, body, "msg-error")
}

func TestDashboard_StatsAndFilters(t *testing.T) {
	env := newEnv(t)
	env.slot(t, "09:00", "10:00")
	sl := env.slot(t, "11:00", "12:00")
	_, err := env.store.Book(sl.ID, env.sara.ID)
	require.NoError(t, err)

	b := env.browser(t)
	_, _ = b.login("admin@example.com", "admin123")

	code, body := b.get("/dashboard?date=" + day)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "<strong>2</strong>")
	assert.Contains(t, body, "Sara")

	code, body = b.get("/manage?status=booked")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Manage Slots")
	assert.Contains(t, body, "slot-"+sl.ID.String())
	assert.Equal(t, 1, strings.Count(body, `class="card" id="slot-`))
}

func TestManage_ForbiddenForUsers(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	_, _ = b.login("sara@example.com", "user123")

	code, body := b.get("/manage")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Contains(t, body, "Access Denied")

	code, _ = b.post("/manage/slots", url.Values{"date": {day}, "startTime": {"09:00"}, "endTime": {"10:00"}})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Empty(t, env.store.List(sandbox.Query{}))
}

func TestCreateSlot(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	_, _ = b.login("admin@example.com", "admin123")

	code, body := b.get("/manage/slots/new")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `value="09:00"`)
	assert.Contains(t, body, `value="10:00"`)

	code, body = b.post("/manage/slots", url.Values{"date": {day}, "startTime": {"10:00"}, "endTime": {"09:00"}})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body, "End time must be after start time")
	assert.Empty(t, env.store.List(sandbox.Query{}))

	code, body = b.post("/manage/slots", url.Values{"date": {day}, "startTime": {"09:00"}, "endTime": {"10:30"}})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Slot created successfully")
	slots := env.store.List(sandbox.Query{})
	require.Len(t, slots, 1)
	assert.Equal(t, model.StatusAvailable, slots[0].Status)
}

func TestEditSlot(t *testing.T) {
	env := newEnv(t)
	sl := env.slot(t, "09:00", "10:00")
	b := env.browser(t)
	_, _ = b.login("admin@example.com", "admin123")

	code, body := b.get("/manage/slots/" + sl.ID.String() + "/edit")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `value="`+day+`"`)

	code, body = b.post("/manage/slots/"+sl.ID.String(), url.Values{"date": {day}, "startTime": {"13:00"}, "endTime": {"14:00"}})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Slot updated successfully")
	assert.Contains(t, body, "13:00")

	code, body = b.get("/manage/slots/missing/edit")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Slot not found")
}

func TestDelete_BookedSlotIsRefused(t *testing.T) {
	env := newEnv(t)
	sl := env.slot(t, "09:00", "10:00")
	_, err := env.store.Book(sl.ID, env.sara.ID)
	require.NoError(t, err)

	b := env.browser(t)
	_, _ = b.login("admin@example.com", "admin123")

	code, body := b.get("/manage/slots/" + sl.ID.String() + "/delete")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Cannot delete a booked slot. Cancel it first.")
	assert.Len(t, env.store.List(sandbox.Query{}), 1)
}

func TestCancelThenDelete(t *testing.T) {
	env := newEnv(t)
	sl := env.slot(t, "09:00", "10:00")
	_, err := env.store.Book(sl.ID, env.sara.ID)
	require.NoError(t, err)

	b := env.browser(t)
	_, _ = b.login("admin@example.com", "admin123")

	code, body := b.post("/manage/slots/"+sl.ID.String()+"/status", url.Values{"status": {"cancelled"}})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Slot cancelled successfully")

	code, body = b.get("/manage/slots/" + sl.ID.String() + "/delete")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Are you sure you want to delete this slot?")

	code, body = b.post("/manage/slots/"+sl.ID.String()+"/delete", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Slot deleted successfully")
	assert.Empty(t, env.store.List(sandbox.Query{}))
}

func TestUnknownRouteRendersErrorPage(t *testing.T) {
	env := newEnv(t)
	code, body := env.browser(t).get("/nope")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, body, "Page not found")
}

func (b *browser) sid() string {
	u, _ := url.Parse(b.base + "/")
	for _, ck := range b.c.Jar.Cookies(u) {
		if ck.Name == "sid" {
			return ck.Value
		}
	}
	return ""
}

func (b *browser) setSID(v string) {
	u, _ := url.Parse(b.base + "/")
	b.c.Jar.SetCookies(u, []*http.Cookie{{Name: "sid", Value: v, Path: "/"}})
}

func TestLogin_IssuesFreshSessionID(t *testing.T) {
	env := newEnv(t)
	const planted = "11111111-2222-4333-8444-555555555555"

	victim := env.browser(t)
	victim.setSID(planted)
	code, _ := victim.login("admin@example.com", "admin123")
	require.Equal(t, http.StatusOK, code)
	assert.NotEqual(t, planted, victim.sid())

	code, _ = victim.get("/manage")
	assert.Equal(t, http.StatusOK, code)

	other := env.browser(t)
	other.setSID(planted)
	code, body := other.get("/manage")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, body, "Authentication Required")
}

func TestLogout_IssuesFreshSessionID(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	_, _ = b.login("admin@example.com", "admin123")
	loggedIn := b.sid()
	require.NotEmpty(t, loggedIn)

	_, _ = b.post("/logout", nil)
	assert.NotEqual(t, loggedIn, b.sid())

	replay := env.browser(t)
	replay.setSID(loggedIn)
	code, _ := replay.get("/dashboard")
	assert.Equal(t, http.StatusUnauthorized, code)
}
