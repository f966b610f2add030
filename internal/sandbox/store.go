// Package sandbox is an in-memory implementation of the remote scheduling
// API.  It serves local development and the end-to-end tests of the UI;
// the lifecycle rules it enforces are the same ones the UI prechecks.
package sandbox

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mazenolama/Aljabr-Task/internal/lifecycle"
	"github.com/mazenolama/Aljabr-Task/internal/model"
	"github.com/mazenolama/Aljabr-Task/internal/utils"
)

var (
	ErrBadCredentials = errors.New("invalid email or password")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Query filters a listing.  Public listings only ever contain available
// slots and honour Date alone.
type Query struct {
	Date   string
	Status model.SlotStatus
	UserID model.ID
	Public bool
}

type account struct {
	user model.User
	hash string
}

// Store holds users and slots behind one mutex, so concurrent bookings of
// the same slot are serialized and exactly one wins.
type Store struct {
	mu      sync.Mutex
	slots   map[model.ID]*model.Slot
	users   map[model.ID]*account
	byEmail map[string]model.ID
	cost    int
	now     func() time.Time
}

// NewStore returns an empty store hashing passwords with bcrypt cost.
func NewStore(cost int) *Store {
	return &Store{
		slots:   make(map[model.ID]*model.Slot),
		users:   make(map[model.ID]*account),
		byEmail: make(map[string]model.ID),
		cost:    cost,
		now:     time.Now,
	}
}

// AddUser registers an account.
func (s *Store) AddUser(name, email, password string, role model.Role) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, s.cost)
	if err != nil {
		return model.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byEmail[email]; dup {
		return model.User{}, ErrDuplicateEmail
	}
	ts := s.now().UTC().Format(time.RFC3339)
	u := model.User{ID: model.ID(uuid.NewString()), Name: name, Email: email, Role: role, CreatedOn: ts, ModifiedOn: ts}
	s.users[u.ID] = &account{user: u, hash: hash}
	s.byEmail[email] = u.ID
	return u, nil
}

// Authenticate checks an email/password pair.
func (s *Store) Authenticate(email, password string) (model.User, error) {
	s.mu.Lock()
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	var acc account
	if ok {
		acc = *s.users[id]
	}
	s.mu.Unlock()

	// bcrypt runs outside the lock.
	if !ok || !utils.VerifyPassword(acc.hash, password) {
		return model.User{}, ErrBadCredentials
	}
	return acc.user, nil
}

// User returns the account with id.
func (s *Store) User(id model.ID) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.users[id]
	if !ok {
		return model.User{}, false
	}
	return acc.user, true
}

// Users lists every account by name.
func (s *Store) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.users))
	for _, acc := range s.users {
		out = append(out, acc.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// List returns the slots matching q ordered by start time.
func (s *Store) List(q Query) []model.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Slot, 0, len(s.slots))
	for _, sl := range s.slots {
		if !matches(*sl, q) {
			continue
		}
		cp := *sl
		if acc, ok := s.users[cp.CreatedBy]; ok {
			cp.CreatedByUser = &model.UserRef{ID: acc.user.ID, Name: acc.user.Name}
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return startOf(out[i]).Before(startOf(out[j]))
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func matches(sl model.Slot, q Query) bool {
	if sl.Deleted {
		return false
	}
	if q.Date != "" && sl.Day() != q.Date {
		return false
	}
	if q.Public {
		return sl.Status == model.StatusAvailable
	}
	if q.Status != "" && sl.Status != q.Status {
		return false
	}
	if q.UserID != "" && sl.CreatedBy != q.UserID && sl.BookedBy != q.UserID {
		return false
	}
	return true
}

func startOf(sl model.Slot) time.Time {
	t, _ := model.ParseTimestamp(sl.StartTime)
	return t
}

// Create stores a new available slot for w.
func (s *Store) Create(w lifecycle.Window, creator model.ID) (model.Slot, error) {
	sl, err := lifecycle.NewSlot(w, creator, s.now())
	if err != nil {
		return model.Slot{}, err
	}
	sl.ID = model.ID(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[sl.ID] = &sl
	return sl, nil
}

// Update applies a partial update.  Time fields go through
// lifecycle.Edit, a status through lifecycle.Transition.  Either both
// apply or neither does.
func (s *Store) Update(id model.ID, req model.UpdateSlotRequest, actor model.ID) (model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.slots[id]
	if !ok {
		return model.Slot{}, lifecycle.ErrNotFound
	}
	next := *cur
	now := s.now()

	if req.Date != nil || req.StartTime != nil || req.EndTime != nil {
		w, err := mergeWindow(next, req)
		if err != nil {
			return model.Slot{}, err
		}
		if err := lifecycle.Edit(&next, w, now); err != nil {
			return model.Slot{}, err
		}
	}
	if req.Status != nil {
		if err := lifecycle.Transition(&next, *req.Status, actor, now); err != nil {
			return model.Slot{}, err
		}
	}
	*cur = next
	return next, nil
}

// mergeWindow combines the slot's current window with the fields of req.
// A date alone moves both times to that date keeping their clock.
func mergeWindow(sl model.Slot, req model.UpdateSlotRequest) (lifecycle.Window, error) {
	start, end := sl.StartTime, sl.EndTime
	if req.StartTime != nil {
		start = *req.StartTime
	}
	if req.EndTime != nil {
		end = *req.EndTime
	}
	w, err := lifecycle.WindowFromTimestamps(sl.Day(), start, end)
	if err != nil {
		return lifecycle.Window{}, err
	}
	if req.Date == nil {
		return w, nil
	}
	day, err := time.Parse(model.DateLayout, *req.Date)
	if err != nil {
		return lifecycle.Window{}, &lifecycle.ValidationError{Field: "date", Message: "Date must be in YYYY-MM-DD format"}
	}
	w.Date = *req.Date
	if req.StartTime == nil {
		w.Start = onDay(day, w.Start)
	}
	if req.EndTime == nil {
		w.End = onDay(day, w.End)
	}
	return w, w.Validate()
}

func onDay(day, t time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, t.Location())
}

// Book books an available slot for user.
func (s *Store) Book(id, user model.ID) (model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.slots[id]
	if !ok {
		return model.Slot{}, lifecycle.ErrNotFound
	}
	if err := lifecycle.Book(cur, user, s.now()); err != nil {
		return model.Slot{}, err
	}
	return *cur, nil
}

// Delete removes a slot that is not booked.
func (s *Store) Delete(id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.slots[id]
	if !ok {
		return lifecycle.ErrNotFound
	}
	if err := lifecycle.Delete(cur, s.now()); err != nil {
		return err
	}
	delete(s.slots, id)
	return nil
}
