package view

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mazenolama/Aljabr-Task/internal/lifecycle"
	"github.com/mazenolama/Aljabr-Task/internal/model"
)

// SlotForm is the create/edit form.  Editing is decided by SlotID.
type SlotForm struct {
	SlotID    model.ID `form:"-"`
	Date      string   `form:"date" validate:"required,datetime=2006-01-02"`
	StartTime string   `form:"startTime" validate:"required,datetime=15:04"`
	EndTime   string   `form:"endTime" validate:"required,datetime=15:04"`
	Error     string   `form:"-"`
}

// NewSlotForm returns the create form with today's date and 09:00-10:00.
func NewSlotForm(now time.Time) SlotForm {
	return SlotForm{Date: now.Format(model.DateLayout), StartTime: "09:00", EndTime: "10:00"}
}

// EditSlotForm prefills the form from an existing slot.
func EditSlotForm(s model.Slot) SlotForm {
	return SlotForm{SlotID: s.ID, Date: s.Day(), StartTime: s.StartClock(), EndTime: s.EndClock()}
}

// Editing reports whether the form updates an existing slot.
func (f SlotForm) Editing() bool { return f.SlotID != "" }

// Title is the form heading.
func (f SlotForm) Title() string {
	if f.Editing() {
		return "Edit Slot"
	}
	return "Create New Slot"
}

// SubmitLabel is the submit button text.
func (f SlotForm) SubmitLabel() string {
	if f.Editing() {
		return "Update"
	}
	return "Create"
}

var fieldMessages = map[string]string{
	"Date":      "Date is required (YYYY-MM-DD)",
	"StartTime": "Start time is required (HH:MM)",
	"EndTime":   "End time is required (HH:MM)",
}

// Validate checks field formats and start < end in loc.  On failure the
// error text is stored on the form for inline display and a
// *lifecycle.ValidationError is returned; nothing is sent anywhere.
func (f *SlotForm) Validate(v *validator.Validate, loc *time.Location) (lifecycle.Window, error) {
	f.Error = ""
	if err := v.Struct(f); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			msg := fieldMessages[ves[0].Field()]
			f.Error = msg
			return lifecycle.Window{}, &lifecycle.ValidationError{Field: ves[0].Field(), Message: msg}
		}
		f.Error = "Invalid form input"
		return lifecycle.Window{}, &lifecycle.ValidationError{Message: f.Error}
	}
	w, err := lifecycle.ParseWindow(f.Date, f.StartTime, f.EndTime, loc)
	if err != nil {
		f.Error = err.Error()
		return lifecycle.Window{}, err
	}
	return w, nil
}

// CreatePayload builds the POST /slots body for a validated window.
func CreatePayload(w lifecycle.Window, creatorID model.ID) model.CreateSlotRequest {
	return model.CreateSlotRequest{
		Date:        w.Date,
		StartTime:   w.Start.Format(time.RFC3339),
		EndTime:     w.End.Format(time.RFC3339),
		Status:      model.StatusAvailable,
		CreatedBy:   creatorID,
		IsAvailable: true,
	}
}

// UpdatePayload builds the PUT /slots/{id} body for a validated window.
func UpdatePayload(w lifecycle.Window, now time.Time) model.UpdateSlotRequest {
	date := w.Date
	start := w.Start.Format(time.RFC3339)
	end := w.End.Format(time.RFC3339)
	mod := now.UTC().Format(time.RFC3339)
	return model.UpdateSlotRequest{Date: &date, StartTime: &start, EndTime: &end, ModifiedOn: &mod}
}
