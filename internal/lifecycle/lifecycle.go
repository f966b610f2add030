package lifecycle

import (
	"strings"
	"time"

	"github.com/mazenolama/Aljabr-Task/internal/model"
)

// Window is a validated date plus start/end instants.
type Window struct {
	Date  string
	Start time.Time
	End   time.Time
}

// ParseWindow reads a date (YYYY-MM-DD) and two clock times (HH:MM) in
// loc and enforces start < end.
func ParseWindow(date, start, end string, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	date = strings.TrimSpace(date)
	day, err := time.ParseInLocation(model.DateLayout, date, loc)
	if err != nil {
		return Window{}, &ValidationError{Field: "date", Message: "Date must be in YYYY-MM-DD format"}
	}
	s, err := parseClock(day, start)
	if err != nil {
		return Window{}, &ValidationError{Field: "startTime", Message: "Start time must be in HH:MM format"}
	}
	e, err := parseClock(day, end)
	if err != nil {
		return Window{}, &ValidationError{Field: "endTime", Message: "End time must be in HH:MM format"}
	}
	w := Window{Date: date, Start: s, End: e}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// WindowFromTimestamps builds a window from full timestamps, as received
// in create and update payloads.
func WindowFromTimestamps(date, start, end string) (Window, error) {
	s, ok := model.ParseTimestamp(start)
	if !ok {
		return Window{}, &ValidationError{Field: "startTime", Message: "Start time is not a valid timestamp"}
	}
	e, ok := model.ParseTimestamp(end)
	if !ok {
		return Window{}, &ValidationError{Field: "endTime", Message: "End time is not a valid timestamp"}
	}
	if date == "" {
		date = s.Format(model.DateLayout)
	}
	w := Window{Date: date, Start: s, End: e}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate enforces start < end.
func (w Window) Validate() error {
	if !w.Start.Before(w.End) {
		return &ValidationError{Field: "endTime", Message: MsgEndBeforeStart}
	}
	return nil
}

func parseClock(day time.Time, clock string) (time.Time, error) {
	clock = strings.TrimSpace(clock)
	layout := model.ClockLayout
	if len(clock) == len("15:04:05") {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, day.Location()), nil
}

// NewSlot returns a slot in the available state for w.
func NewSlot(w Window, creatorID model.ID, now time.Time) (model.Slot, error) {
	if err := w.Validate(); err != nil {
		return model.Slot{}, err
	}
	ts := now.UTC().Format(time.RFC3339)
	return model.Slot{
		Date:        w.Date,
		StartTime:   w.Start.Format(time.RFC3339),
		EndTime:     w.End.Format(time.RFC3339),
		Status:      model.StatusAvailable,
		CreatedBy:   creatorID,
		IsAvailable: true,
		CreatedOn:   ts,
		ModifiedOn:  ts,
	}, nil
}

// Book moves an available slot to booked.  On error the slot is left
// untouched.
func Book(s *model.Slot, userID model.ID, now time.Time) error {
	if s.Deleted || s.Status != model.StatusAvailable {
		return conflict(s, "book")
	}
	s.Status = model.StatusBooked
	s.IsAvailable = false
	s.BookedBy = userID
	s.ModifiedOn = now.UTC().Format(time.RFC3339)
	return nil
}

// Cancel moves a booked slot to cancelled.
func Cancel(s *model.Slot, now time.Time) error {
	if s.Deleted || s.Status != model.StatusBooked {
		return conflict(s, "cancel")
	}
	s.Status = model.StatusCancelled
	s.IsAvailable = false
	s.ModifiedOn = now.UTC().Format(time.RFC3339)
	return nil
}

// Edit replaces the slot's date and times.  It is allowed in every
// non-deleted state and never changes the status.
func Edit(s *model.Slot, w Window, now time.Time) error {
	if s.Deleted {
		return conflict(s, "edit")
	}
	if err := w.Validate(); err != nil {
		return err
	}
	s.Date = w.Date
	s.StartTime = w.Start.Format(time.RFC3339)
	s.EndTime = w.End.Format(time.RFC3339)
	s.ModifiedOn = now.UTC().Format(time.RFC3339)
	return nil
}

// CheckDelete rejects deletion of a booked slot; it must be cancelled
// first.
func CheckDelete(s model.Slot) error {
	if s.Deleted || s.Status == model.StatusBooked {
		return conflict(&s, "delete")
	}
	return nil
}

// Delete marks the slot as deleted after CheckDelete passes.
func Delete(s *model.Slot, now time.Time) error {
	if err := CheckDelete(*s); err != nil {
		return err
	}
	s.Deleted = true
	s.IsAvailable = false
	s.ModifiedOn = now.UTC().Format(time.RFC3339)
	return nil
}

// Transition applies the status change requested by an administrative
// status action.  Only available→booked and booked→cancelled exist;
// setting the current status again is a conflict too.
func Transition(s *model.Slot, to model.SlotStatus, actor model.ID, now time.Time) error {
	switch to {
	case model.StatusBooked:
		return Book(s, actor, now)
	case model.StatusCancelled:
		return Cancel(s, now)
	case model.StatusAvailable:
		return conflict(s, "reopen")
	}
	return &ValidationError{Field: "status", Message: "Unknown status " + string(to)}
}

// Actions lists what the current status allows.
type Actions struct {
	Book   bool
	Cancel bool
	Edit   bool
	Delete bool
}

// Allowed returns the actions the slot's status permits.
func Allowed(s model.Slot) Actions {
	if s.Deleted {
		return Actions{}
	}
	return Actions{
		Book:   s.Status == model.StatusAvailable,
		Cancel: s.Status == model.StatusBooked,
		Edit:   true,
		Delete: s.Status != model.StatusBooked,
	}
}

func conflict(s *model.Slot, action string) *ConflictError {
	status := s.Status
	if s.Deleted {
		status = "deleted"
	}
	return &ConflictError{SlotID: s.ID, Action: action, Status: status}
}
