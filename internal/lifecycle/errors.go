// Package lifecycle defines the legal status transitions of a slot and
// the fields each transition mutates.  It has no I/O: the scheduling
// service remains the authority, and callers use these rules to reject
// impossible actions before a network call and to classify failures.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/mazenolama/Aljabr-Task/internal/model"
)

// MsgEndBeforeStart is shown when a slot's end is not after its start.
const MsgEndBeforeStart = "End time must be after start time"

// ValidationError reports input rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports an action that the slot's current status does
// not allow.  When the scheduling service rejected the action, Err holds
// its error and its message is the one shown to the user.
type ConflictError struct {
	SlotID model.ID
	Action string
	Status model.SlotStatus
	Err    error
}

func (e *ConflictError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Status == "" {
		return fmt.Sprintf("cannot %s slot %s", e.Action, e.SlotID)
	}
	return fmt.Sprintf("cannot %s slot %s: slot is %s", e.Action, e.SlotID, e.Status)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// ErrNotFound is returned when a slot id does not resolve.
var ErrNotFound = errors.New("slot not found")

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
