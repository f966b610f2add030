// Package service carries out slot operations for a logged-in browser
// session: it validates input, applies the lifecycle rules to the last
// known state of the slot, calls the scheduling service and announces
// accepted mutations.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mazenolama/Aljabr-Task/internal/apiclient"
	"github.com/mazenolama/Aljabr-Task/internal/lifecycle"
	"github.com/mazenolama/Aljabr-Task/internal/model"
	"github.com/mazenolama/Aljabr-Task/internal/queue"
	"github.com/mazenolama/Aljabr-Task/internal/session"
	"github.com/mazenolama/Aljabr-Task/internal/view"
)

type SlotService struct {
	api      *apiclient.Client
	events   ActivityPublisher
	loc      *time.Location
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

func NewSlotService(api *apiclient.Client, events ActivityPublisher, loc *time.Location, logger *zap.Logger) *SlotService {
	if events == nil {
		events = NopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotService{
		api:      api,
		events:   events,
		loc:      loc,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Location is the zone slot times are entered in.
func (s *SlotService) Location() *time.Location { return s.loc }

// Now returns the current time in the slot zone.
func (s *SlotService) Now() time.Time { return s.now().In(s.loc) }

// List returns the authenticated listing for f.
func (s *SlotService) List(ctx context.Context, sess session.Session, f model.FilterCriteria) ([]model.Slot, error) {
	return s.api.WithToken(sess.Token).ListSlots(ctx, f)
}

// Fetcher binds List to sess for a view.ListView.
func (s *SlotService) Fetcher(sess session.Session) view.Fetcher {
	return func(ctx context.Context, f model.FilterCriteria) ([]model.Slot, error) {
		return s.List(ctx, sess, f)
	}
}

// ListAvailable returns the public listing for date.
func (s *SlotService) ListAvailable(ctx context.Context, date string) ([]model.Slot, error) {
	return s.api.ListAvailableSlots(ctx, date)
}

// Users returns the users offered by the dashboard's user filter.
func (s *SlotService) Users(ctx context.Context, sess session.Session) ([]model.User, error) {
	return s.api.WithToken(sess.Token).ListUsers(ctx)
}

// Lookup finds a slot by id in the full listing.  The scheduling service
// has no single-slot endpoint.
func (s *SlotService) Lookup(ctx context.Context, sess session.Session, id model.ID) (model.Slot, error) {
	slots, err := s.List(ctx, sess, model.FilterCriteria{})
	if err != nil {
		return model.Slot{}, err
	}
	for _, sl := range slots {
		if sl.ID == id {
			return sl, nil
		}
	}
	return model.Slot{}, lifecycle.ErrNotFound
}

// current returns the last known state of id for a local precheck.
// ok is false when it could not be determined; the service then decides
// alone.
func (s *SlotService) current(ctx context.Context, sess session.Session, id model.ID) (model.Slot, bool) {
	sl, err := s.Lookup(ctx, sess, id)
	if err != nil {
		s.logger.Debug("slot precheck skipped", zap.String("slot_id", id.String()), zap.Error(err))
		return model.Slot{}, false
	}
	return sl, true
}

// Create validates form and creates an available slot owned by the
// session user.  Validation failures never reach the network.
func (s *SlotService) Create(ctx context.Context, sess session.Session, form *view.SlotForm) (model.Slot, error) {
	w, err := form.Validate(s.validate, s.loc)
	if err != nil {
		return model.Slot{}, err
	}
	created, err := s.api.WithToken(sess.Token).CreateSlot(ctx, view.CreatePayload(w, sess.UserID()))
	if err != nil {
		s.logFailure("create", "", err)
		return model.Slot{}, err
	}
	s.publish(ctx, sess, queue.ActionCreated, created)
	return created, nil
}

// Update validates form and replaces the slot's date and times.
func (s *SlotService) Update(ctx context.Context, sess session.Session, id model.ID, form *view.SlotForm) (model.Slot, error) {
	w, err := form.Validate(s.validate, s.loc)
	if err != nil {
		return model.Slot{}, err
	}
	if sl, ok := s.current(ctx, sess, id); ok {
		if err := lifecycle.Edit(&sl, w, s.now()); err != nil {
			form.Error = err.Error()
			return model.Slot{}, err
		}
	}
	updated, err := s.api.WithToken(sess.Token).UpdateSlot(ctx, id, view.UpdatePayload(w, s.now()))
	if err != nil {
		s.logFailure("update", id, err)
		return model.Slot{}, err
	}
	if updated.ID == "" {
		updated = model.Slot{ID: id, Date: w.Date, StartTime: w.Start.Format(time.RFC3339), EndTime: w.End.Format(time.RFC3339)}
	}
	s.publish(ctx, sess, queue.ActionUpdated, updated)
	return updated, nil
}

// Book books id for the session user.  Any rejection by the service is
// a conflict: the booking did not happen.
func (s *SlotService) Book(ctx context.Context, sess session.Session, id model.ID) (model.Slot, error) {
	if sl, ok := s.current(ctx, sess, id); ok {
		if err := lifecycle.Book(&sl, sess.UserID(), s.now()); err != nil {
			return model.Slot{}, err
		}
	}
	booked, err := s.api.WithToken(sess.Token).BookSlot(ctx, id)
	if err != nil {
		s.logFailure("book", id, err)
		return model.Slot{}, &lifecycle.ConflictError{SlotID: id, Action: "book", Err: err}
	}
	if booked.ID == "" {
		booked = model.Slot{ID: id, Status: model.StatusBooked}
	}
	s.publish(ctx, sess, queue.ActionBooked, booked)
	return booked, nil
}

// Cancel moves a booked slot to cancelled.
func (s *SlotService) Cancel(ctx context.Context, sess session.Session, id model.ID) (model.Slot, error) {
	return s.ChangeStatus(ctx, sess, id, model.StatusCancelled)
}

// ChangeStatus applies an administrative status change through a partial
// update.
func (s *SlotService) ChangeStatus(ctx context.Context, sess session.Session, id model.ID, to model.SlotStatus) (model.Slot, error) {
	if !to.Valid() {
		return model.Slot{}, &lifecycle.ValidationError{Field: "status", Message: "Unknown status " + string(to)}
	}
	if sl, ok := s.current(ctx, sess, id); ok {
		if err := lifecycle.Transition(&sl, to, sess.UserID(), s.now()); err != nil {
			return model.Slot{}, err
		}
	}
	updated, err := s.api.WithToken(sess.Token).UpdateSlot(ctx, id, model.StatusUpdate(to, s.now()))
	if err != nil {
		s.logFailure("status", id, err)
		if apiclient.StatusOf(err) == 409 {
			return model.Slot{}, &lifecycle.ConflictError{SlotID: id, Action: "change status of", Err: err}
		}
		return model.Slot{}, err
	}
	if updated.ID == "" {
		updated = model.Slot{ID: id, Status: to}
	}
	action := queue.ActionUpdated
	if to == model.StatusCancelled {
		action = queue.ActionCancelled
	} else if to == model.StatusBooked {
		action = queue.ActionBooked
	}
	s.publish(ctx, sess, action, updated)
	return updated, nil
}

// Delete removes a slot unless it is booked.
func (s *SlotService) Delete(ctx context.Context, sess session.Session, id model.ID) error {
	sl, known := s.current(ctx, sess, id)
	if known {
		if err := lifecycle.CheckDelete(sl); err != nil {
			return err
		}
	}
	if err := s.api.WithToken(sess.Token).DeleteSlot(ctx, id); err != nil {
		s.logFailure("delete", id, err)
		if apiclient.StatusOf(err) == 409 {
			return &lifecycle.ConflictError{SlotID: id, Action: "delete", Err: err}
		}
		return err
	}
	if !known {
		sl = model.Slot{ID: id}
	}
	s.publish(ctx, sess, queue.ActionDeleted, sl)
	return nil
}

func (s *SlotService) publish(ctx context.Context, sess session.Session, action string, sl model.Slot) {
	ev := queue.SlotActivityEvent{
		Action:     action,
		SlotID:     sl.ID.String(),
		Date:       sl.Day(),
		StartTime:  sl.StartTime,
		EndTime:    sl.EndTime,
		Status:     string(sl.Status),
		ActorID:    sess.UserID().String(),
		ActorName:  sess.DisplayName(),
		OccurredAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("slot activity not published", zap.String("action", action), zap.String("slot_id", ev.SlotID), zap.Error(err))
	}
}

func (s *SlotService) logFailure(action string, id model.ID, err error) {
	fields := []zap.Field{zap.String("action", action), zap.Error(err)}
	if id != "" {
		fields = append(fields, zap.String("slot_id", id.String()))
	}
	var re *apiclient.RequestError
	if errors.As(err, &re) {
		fields = append(fields, zap.Int("status", re.Status))
	}
	s.logger.Info("slot mutation rejected", fields...)
}
