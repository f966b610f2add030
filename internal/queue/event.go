// Package queue defines the slot activity messages exchanged over the
// message broker and the background consumer that records them.
package queue

// ActivityQueue is the durable queue every slot activity event is
// routed to.
const ActivityQueue = "slot.activity"

// Slot actions carried by SlotActivityEvent.Action.
const (
    ActionCreated   = "created"
    ActionUpdated   = "updated"
    ActionBooked    = "booked"
    ActionCancelled = "cancelled"
    ActionDeleted   = "deleted"
)

// SlotActivityEvent is published after the scheduling service accepted a
// mutation.  It carries enough of the slot for a consumer to log or
// notify without calling the service back.
type SlotActivityEvent struct {
    Action     string `json:"action"`
    SlotID     string `json:"slot_id"`
    Date       string `json:"date,omitempty"`
    StartTime  string `json:"start_time,omitempty"`
    EndTime    string `json:"end_time,omitempty"`
    Status     string `json:"status,omitempty"`
    ActorID    string `json:"actor_id,omitempty"`
    ActorName  string `json:"actor_name,omitempty"`
    OccurredAt string `json:"occurred_at"`
}
