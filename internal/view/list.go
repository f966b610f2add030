// Package view holds presentation state for the slot pages: the list
// with its filter criteria, the create/edit form and transient messages.
// It renders nothing itself; templates read the snapshots built here.
package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mazenolama/Aljabr-Task/internal/lifecycle"
	"github.com/mazenolama/Aljabr-Task/internal/model"
)

// Fetcher loads the slots matching a filter from the scheduling service.
type Fetcher func(ctx context.Context, f model.FilterCriteria) ([]model.Slot, error)

// ListState is the three-way render state of a list.  StateLoading only
// shows up for a caller that snapshots while its first fetch is still in
// flight; the page handlers fetch before they render, so templates see
// empty or populated and treat anything but populated as empty.
type ListState string

const (
	StateLoading   ListState = "loading"
	StateEmpty     ListState = "empty"
	StatePopulated ListState = "populated"
)

// ListView holds the current filter and the last applied result.  Every
// fetch gets a sequence number; a result is applied only if no newer
// fetch has been applied before it, so out-of-order completions never
// overwrite fresher data.
type ListView struct {
	mu      sync.Mutex
	fetch   Fetcher
	logger  *zap.Logger
	filter  model.FilterCriteria
	slots   []model.Slot
	banner  string
	issued  uint64
	applied uint64
	loaded  bool
}

// NewListView returns a view that loads through fetch.
func NewListView(fetch Fetcher, logger *zap.Logger) *ListView {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListView{fetch: fetch, logger: logger}
}

// Filter returns the current criteria.
func (v *ListView) Filter() model.FilterCriteria {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// SetFilter replaces the criteria and refetches.
func (v *ListView) SetFilter(ctx context.Context, f model.FilterCriteria) error {
	v.mu.Lock()
	v.filter = f
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// Refresh refetches with the current criteria.  A failed fetch keeps the
// previous slots and sets the banner; the error is returned for logging.
func (v *ListView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.issued++
	seq := v.issued
	f := v.filter
	v.mu.Unlock()

	slots, err := v.fetch(ctx, f)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq <= v.applied {
		v.logger.Debug("discarding stale slot listing", zap.Uint64("seq", seq), zap.Uint64("applied", v.applied))
		return nil
	}
	v.applied = seq
	if err != nil {
		v.banner = "Failed to load slots. Please try again."
		v.logger.Warn("slot listing failed", zap.Uint64("seq", seq), zap.Error(err))
		return err
	}
	v.banner = ""
	v.slots = slots
	v.loaded = true
	return nil
}

// Viewer describes who is looking at the list, which decides the
// affordances rendered on each card.
type Viewer struct {
	CanBook  bool // show the Book button on available slots
	IsAdmin  bool // show edit/cancel/delete
	ReturnTo string
}

// Card is one rendered slot with its permitted actions.
type Card struct {
	Slot      model.Slot
	Date      string
	TimeRange string
	Creator   string
	CanBook   bool
	CanEdit   bool
	CanCancel bool
	CanDelete bool
	Message   *Message
	ReturnTo  string
}

// Stats counts the listed slots per status.
type Stats struct {
	Total     int
	Available int
	Booked    int
	Cancelled int
}

// Snapshot is what a template renders.
type Snapshot struct {
	Filter  model.FilterCriteria
	State   ListState
	Cards   []Card
	Stats   Stats
	Banner  string
	Viewer  Viewer
	Pending bool
	// Message is a notice for the whole page: one without a slot, or
	// one whose slot is no longer listed.
	Message *Message
}

// Snapshot builds the render state for viewer.  msg, when it targets a
// slot in the list, is attached to that card.
func (v *ListView) Snapshot(viewer Viewer, msg *Message) Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	snap := Snapshot{
		Filter:  v.filter,
		Banner:  v.banner,
		Viewer:  viewer,
		Pending: v.applied < v.issued,
	}
	switch {
	case !v.loaded && len(v.slots) == 0 && v.banner == "":
		snap.State = StateLoading
	case len(v.slots) == 0:
		snap.State = StateEmpty
	default:
		snap.State = StatePopulated
	}

	snap.Cards = make([]Card, 0, len(v.slots))
	for _, s := range v.slots {
		snap.Stats.Total++
		switch s.Status {
		case model.StatusAvailable:
			snap.Stats.Available++
		case model.StatusBooked:
			snap.Stats.Booked++
		case model.StatusCancelled:
			snap.Stats.Cancelled++
		}
		snap.Cards = append(snap.Cards, CardFor(s, viewer, msg))
	}
	if msg != nil {
		snap.Message = msg
		for _, c := range snap.Cards {
			if c.Message != nil {
				snap.Message = nil
				break
			}
		}
	}
	return snap
}

// CardFor renders one slot for viewer.  msg is attached when it targets
// the slot.
func CardFor(s model.Slot, viewer Viewer, msg *Message) Card {
	allowed := lifecycle.Allowed(s)
	c := Card{
		Slot:      s,
		Date:      model.FormatDisplayDate(s.Day()),
		TimeRange: s.StartClock() + " - " + s.EndClock(),
		CanBook:   viewer.CanBook && allowed.Book,
		CanEdit:   viewer.IsAdmin && allowed.Edit,
		CanCancel: viewer.IsAdmin && allowed.Cancel,
		CanDelete: viewer.IsAdmin && allowed.Delete,
		ReturnTo:  viewer.ReturnTo,
	}
	if s.CreatedByUser != nil {
		c.Creator = s.CreatedByUser.Name
	}
	if msg != nil && msg.SlotID != "" && msg.SlotID == s.ID {
		c.Message = msg
	}
	return c
}
