package model

import (
	"strings"
	"time"
)

// SlotStatus is the lifecycle state of a slot as reported by the
// scheduling service.
type SlotStatus string

const (
	StatusAvailable SlotStatus = "available" // initial state after creation
	StatusBooked    SlotStatus = "booked"    // reserved by a user
	StatusCancelled SlotStatus = "cancelled" // cancelled by an administrator (terminal)
)

// Statuses lists every known status in display order.
var Statuses = []SlotStatus{StatusAvailable, StatusBooked, StatusCancelled}

// Valid reports whether s is one of the known statuses.
func (s SlotStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusBooked, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus normalizes a raw status string.  The empty string is
// accepted and means "no status".
func ParseStatus(raw string) (SlotStatus, bool) {
	s := SlotStatus(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" || s.Valid() {
		return s, true
	}
	return "", false
}

// Slot is a bookable time interval on a given date.  One canonical
// camelCase JSON schema is used for every exchange with the scheduling
// service; StartTime and EndTime carry full timestamps with a zone
// offset ("2025-03-01T09:00:00+03:00").
//
// Fields:
//  ID            – opaque identifier assigned by the service.
//  Date          – calendar date (YYYY-MM-DD).
//  StartTime     – start timestamp.
//  EndTime       – end timestamp, strictly after StartTime.
//  Status        – lifecycle state.
//  CreatedBy     – id of the administrator who created the slot.
//  BookedBy      – id of the user holding the booking, if any.
//  IsAvailable   – service-side availability flag.
//  Deleted       – soft-delete marker; deleted slots accept no mutation.
//  CreatedOn     – creation timestamp.
//  ModifiedOn    – last modification timestamp.
//  CreatedByUser – optional embedded creator display data.
type Slot struct {
	ID            ID         `json:"id"`
	Date          string     `json:"date"`
	StartTime     string     `json:"startTime"`
	EndTime       string     `json:"endTime"`
	Status        SlotStatus `json:"status"`
	CreatedBy     ID         `json:"createdBy,omitempty"`
	BookedBy      ID         `json:"bookedBy,omitempty"`
	IsAvailable   bool       `json:"isAvailable"`
	Deleted       bool       `json:"deleted,omitempty"`
	CreatedOn     string     `json:"createdOn,omitempty"`
	ModifiedOn    string     `json:"modifiedOn,omitempty"`
	CreatedByUser *UserRef   `json:"createdByUser,omitempty"`
}

// UserRef is the creator's display data embedded in a slot listing.
type UserRef struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name"`
}

// Day returns the slot's calendar date, falling back to the date part
// of StartTime when the service omits the date field.
func (s Slot) Day() string {
	if d := strings.TrimSpace(s.Date); len(d) >= 10 {
		return d[:10]
	}
	if t, ok := ParseTimestamp(s.StartTime); ok {
		return t.Format(DateLayout)
	}
	return s.Date
}

// StartClock returns the start time as HH:MM.
func (s Slot) StartClock() string { return ClockOf(s.StartTime) }

// EndClock returns the end time as HH:MM.
func (s Slot) EndClock() string { return ClockOf(s.EndTime) }

// CreateSlotRequest is the body of POST /slots.
type CreateSlotRequest struct {
	Date        string     `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string     `json:"startTime" validate:"required"`
	EndTime     string     `json:"endTime" validate:"required"`
	Status      SlotStatus `json:"status"`
	CreatedBy   ID         `json:"createdBy,omitempty"`
	IsAvailable bool       `json:"isAvailable"`
}

// UpdateSlotRequest is the body of PUT /slots/{id}.  Only non-nil fields
// are sent, which makes every update partial.
type UpdateSlotRequest struct {
	Date       *string     `json:"date,omitempty"`
	StartTime  *string     `json:"startTime,omitempty"`
	EndTime    *string     `json:"endTime,omitempty"`
	Status     *SlotStatus `json:"status,omitempty"`
	ModifiedOn *string     `json:"modifiedOn,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u UpdateSlotRequest) Empty() bool {
	return u.Date == nil && u.StartTime == nil && u.EndTime == nil && u.Status == nil
}

// StatusUpdate builds a partial update that only changes the status.
func StatusUpdate(status SlotStatus, now time.Time) UpdateSlotRequest {
	mod := now.UTC().Format(time.RFC3339)
	return UpdateSlotRequest{Status: &status, ModifiedOn: &mod}
}
