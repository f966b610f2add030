package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mazenolama/Aljabr-Task/internal/apiclient"
	"github.com/mazenolama/Aljabr-Task/internal/lifecycle"
	"github.com/mazenolama/Aljabr-Task/internal/model"
	"github.com/mazenolama/Aljabr-Task/internal/queue"
	"github.com/mazenolama/Aljabr-Task/internal/router"
	"github.com/mazenolama/Aljabr-Task/internal/sandbox"
	"github.com/mazenolama/Aljabr-Task/internal/service"
	"github.com/mazenolama/Aljabr-Task/internal/session"
	"github.com/mazenolama/Aljabr-Task/internal/view"
)

type recorder struct {
	mu     sync.Mutex
	events []queue.SlotActivityEvent
}

func (r *recorder) Publish(_ context.Context, ev queue.SlotActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Action
	}
	return out
}

var riyadh = time.FixedZone("+03", 3*60*60)

func newSandbox(t *testing.T) (*apiclient.Client, session.Session, session.Session) {
	t.Helper()
	store := sandbox.NewStore(bcrypt.MinCost)
	_, err := sandbox.Seed(store,
		sandbox.Account{Name: "Admin", Email: "admin@example.com", Password: "admin123", Role: model.RoleAdmin},
		sandbox.Account{Name: "Sara", Email: "sara@example.com", Password: "user123", Role: model.RoleUser},
	)
	require.NoError(t, err)
	e := echo.New()
	router.RegisterSandbox(e, sandbox.NewAPIHandler(store, "test-secret", time.Hour, nil))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	api := apiclient.New(srv.URL+"/api", nil, nil)
	login := func(email, pw string) session.Session {
		res, err := api.Login(context.Background(), email, pw)
		require.NoError(t, err)
		u := res.User
		return session.Session{Scope: email, User: &u, Token: res.Token}
	}
	return api, login("admin@example.com", "admin123"), login("sara@example.com", "user123")
}

func TestSlotService_Lifecycle(t *testing.T) {
	api, admin, user := newSandbox(t)
	events := &recorder{}
	svc := service.NewSlotService(api, events, riyadh, nil)
	ctx := context.Background()

	form := view.SlotForm{Date: "2025-03-01", StartTime: "09:00", EndTime: "10:00"}
	sl, err := svc.Create(ctx, admin, &form)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, sl.Status)
	assert.Equal(t, "2025-03-01T09:00:00+03:00", sl.StartTime)
	assert.Equal(t, admin.UserID(), sl.CreatedBy)

	booked, err := svc.Book(ctx, user, sl.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooked, booked.Status)
	assert.Equal(t, user.UserID(), booked.BookedBy)

	err = svc.Delete(ctx, admin, sl.ID)
	require.Error(t, err)
	assert.True(t, lifecycle.IsConflict(err))

	cancelled, err := svc.Cancel(ctx, admin, sl.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	require.NoError(t, svc.Delete(ctx, admin, sl.ID))
	left, err := svc.List(ctx, admin, model.FilterCriteria{})
	require.NoError(t, err)
	assert.Empty(t, left)

	assert.Equal(t, []string{queue.ActionCreated, queue.ActionBooked, queue.ActionCancelled, queue.ActionDeleted}, events.actions())
}

func TestSlotService_UpdateKeepsStatus(t *testing.T) {
	api, admin, user := newSandbox(t)
	svc := service.NewSlotService(api, nil, riyadh, nil)
	ctx := context.Background()

	sl, err := svc.Create(ctx, admin, &view.SlotForm{Date: "2025-03-01", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	_, err = svc.Book(ctx, user, sl.ID)
	require.NoError(t, err)

	form := view.SlotForm{SlotID: sl.ID, Date: "2025-03-02", StartTime: "13:00", EndTime: "14:30"}
	upd, err := svc.Update(ctx, admin, sl.ID, &form)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02", upd.Date)
	assert.Equal(t, "14:30", upd.EndClock())
	assert.Equal(t, model.StatusBooked, upd.Status)
	assert.NotEmpty(t, upd.ModifiedOn)
}

func TestSlotService_BookRejectedIsConflict(t *testing.T) {
	api, admin, user := newSandbox(t)
	svc := service.NewSlotService(api, nil, riyadh, nil)
	ctx := context.Background()

	sl, err := svc.Create(ctx, admin, &view.SlotForm{Date: "2025-03-01", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	_, err = svc.Book(ctx, user, sl.ID)
	require.NoError(t, err)

	_, err = svc.Book(ctx, user, sl.ID)
	var ce *lifecycle.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, model.StatusBooked, ce.Status)

	// Unknown to the listing: the service decides and its refusal is a conflict too.
	_, err = svc.Book(ctx, user, "missing")
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Slot not found", err.Error())
	assert.Equal(t, http.StatusNotFound, apiclient.StatusOf(err))
}

func TestSlotService_ValidationStaysLocal(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := service.NewSlotService(apiclient.New(srv.URL, nil, nil), nil, riyadh, nil)
	admin := session.Session{Token: "t", User: &model.User{ID: "a", Role: model.RoleAdmin}}

	form := view.SlotForm{Date: "2025-03-01", StartTime: "10:00", EndTime: "09:00"}
	_, err := svc.Create(context.Background(), admin, &form)
	require.Error(t, err)
	assert.True(t, lifecycle.IsValidation(err))
	assert.Equal(t, "End time must be after start time", form.Error)

	_, err = svc.ChangeStatus(context.Background(), admin, "s", "archived")
	assert.True(t, lifecycle.IsValidation(err))
	assert.Zero(t, hits.Load())
}
