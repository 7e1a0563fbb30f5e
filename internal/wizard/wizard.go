// Package wizard implements the seat-selection workflow a staff
// member walks through to seat or reserve a party.  A session is
// ephemeral floor state: it accumulates seat picks for exactly one
// occupant and is destroyed on cancel or on a successful command.
// Nothing in here talks to the network; submission itself is the
// caller's job, the wizard only validates and tracks state.
package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tableside/floor-manager/internal/model"
)

// State is the lifecycle position of a wizard session.
type State string

const (
	StateIdle            State = "idle"             // no session in progress
	StatePickingOccupant State = "picking_occupant" // picker open, no occupant chosen yet
	StateActive          State = "active"           // occupant context set, accumulating seats
)

// Action is a submission kind.  Reserve is only valid for
// reservation occupants; waitlist parties can only be seated
// immediately.
type Action string

const (
	ActionSeatNow Action = "seat_now"
	ActionReserve Action = "reserve"
)

// Default time-window policy for created allocations.  The flat
// duration is a placeholder: it is not derived from party size or
// table type.
const (
	serviceStartHour = 18
	defaultDuration  = 60 * time.Minute
)

// Sentinel errors reported to the user before any network call.
var (
	ErrNotIdle         = errors.New("a seating session is already in progress")
	ErrNoSession       = errors.New("no seating session in progress")
	ErrNoOccupant      = errors.New("pick a party before submitting")
	ErrOccupantSet     = errors.New("session already has a party")
	ErrSeatUnavailable = errors.New("that seat is not free for this date")
	ErrReserveWaitlist = errors.New("waitlist parties cannot be pre-reserved")
	ErrSubmitInFlight  = errors.New("a submission is already in flight")
)

// SelectionLimitError rejects adding a seat once the selection has
// reached the party size.
type SelectionLimitError struct {
	PartySize uint32
}

func (e *SelectionLimitError) Error() string {
	return fmt.Sprintf("all %d seats for this party are already selected", e.PartySize)
}

// SeatCountError rejects a submission whose selection does not match
// the party size exactly.
type SeatCountError struct {
	Required uint32
	Selected int
}

func (e *SeatCountError) Error() string {
	return fmt.Sprintf("exactly %d seat(s) must be selected for this party, %d selected", e.Required, e.Selected)
}

// event identifies a requested transition in the legality table.
type event string

const (
	evOpenPicker     event = "open_picker"
	evChooseOccupant event = "choose_occupant"
	evStartWithSeat  event = "start_with_seat"
	evToggleSeat     event = "toggle_seat"
	evSubmit         event = "submit"
	evCancel         event = "cancel"
)

// transition is a single allowed edge of the wizard state machine.
type transition struct {
	from State
	ev   event
	to   State
}

var transitions = []transition{
	{from: StateIdle, ev: evOpenPicker, to: StatePickingOccupant},
	{from: StatePickingOccupant, ev: evChooseOccupant, to: StateActive},
	// Direct entry: clicking a free seat seeds the selection first and
	// opens the picker afterwards, so choose_occupant is also legal in
	// the active state while the occupant is still unset.
	{from: StateIdle, ev: evStartWithSeat, to: StateActive},
	{from: StateActive, ev: evChooseOccupant, to: StateActive},
	{from: StateActive, ev: evToggleSeat, to: StateActive},
	{from: StateActive, ev: evSubmit, to: StateIdle},
	{from: StateIdle, ev: evCancel, to: StateIdle},
	{from: StatePickingOccupant, ev: evCancel, to: StateIdle},
	{from: StateActive, ev: evCancel, to: StateIdle},
}

// nextState returns the target state for a state+event pair and
// whether the edge exists at all.
func nextState(from State, ev event) (State, bool) {
	for _, tr := range transitions {
		if tr.from == from && tr.ev == ev {
			return tr.to, true
		}
	}
	return from, false
}

// Session is the ephemeral seat-selection state for one staff member.
// At most one session is active per staff subject; the store enforces
// that by keying on the subject.
type Session struct {
	State          State              `json:"state"`
	FloorDate      string             `json:"floor_date"` // YYYY-MM-DD in the restaurant's zone
	OccupantType   model.OccupantType `json:"occupant_type,omitempty"`
	OccupantID     uint64             `json:"occupant_id,omitempty"`
	DisplayName    string             `json:"display_name,omitempty"`
	PartySize      uint32             `json:"party_size,omitempty"`
	SeedSeatID     uint64             `json:"seed_seat_id,omitempty"` // seat that started a direct-entry session
	PickerOpen     bool               `json:"picker_open,omitempty"`  // direct entry leaves the picker open until a party is chosen
	Selected       []uint64           `json:"selected"`               // ordered set of seat ids
	InFlight       bool               `json:"in_flight"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
	Zoom           float64            `json:"zoom"`
}

// NewSession returns an idle session for the given floor date.
func NewSession(floorDate string) *Session {
	return &Session{State: StateIdle, FloorDate: floorDate, Selected: []uint64{}, Zoom: 1.0}
}

// hasOccupant reports whether the session has a party bound to it.
func (s *Session) hasOccupant() bool { return s.OccupantType != "" }

// OpenPicker starts a session by opening the occupant picker.
func (s *Session) OpenPicker() error {
	to, ok := nextState(s.State, evOpenPicker)
	if !ok {
		return ErrNotIdle
	}
	s.State = to
	s.PickerOpen = true
	return nil
}

// ChooseOccupant binds a party to the session.  From the picker this
// activates the session with an empty selection; in a direct-entry
// session it fills in the occupant fields while keeping the seeded
// seat.  Party size and display name defaults come from the occupant
// helpers (1 and "Guest" respectively).
func (s *Session) ChooseOccupant(o model.Occupant) error {
	to, ok := nextState(s.State, evChooseOccupant)
	if !ok {
		return ErrNoSession
	}
	if s.State == StateActive && s.hasOccupant() {
		return ErrOccupantSet
	}
	s.OccupantType = o.Type
	s.OccupantID = o.ID()
	s.DisplayName = o.DisplayName()
	s.PartySize = o.PartySize()
	s.PickerOpen = false
	if s.Selected == nil {
		s.Selected = []uint64{}
	}
	s.State = to
	return nil
}

// StartWithSeat starts a session directly from a free-seat click.
// The clicked seat becomes the first selection and the picker opens
// so the occupant can be chosen after the fact.
func (s *Session) StartWithSeat(seatID uint64) error {
	to, ok := nextState(s.State, evStartWithSeat)
	if !ok {
		return ErrNotIdle
	}
	s.State = to
	s.SeedSeatID = seatID
	s.Selected = []uint64{seatID}
	s.PickerOpen = true
	return nil
}

// ToggleSeat adds or removes a seat from the selection.  Removing an
// already-selected seat is always allowed.  Adding is rejected when
// the seat is not free for the floor date (the seed seat is exempt,
// it started the session) or when the selection already matches the
// party size.  The free predicate comes from the occupancy index for
// the active date.
func (s *Session) ToggleSeat(seatID uint64, free func(uint64) bool) error {
	if _, ok := nextState(s.State, evToggleSeat); !ok {
		return ErrNoSession
	}
	for i, id := range s.Selected {
		if id == seatID {
			s.Selected = append(s.Selected[:i], s.Selected[i+1:]...)
			return nil
		}
	}
	if seatID != s.SeedSeatID && !free(seatID) {
		return ErrSeatUnavailable
	}
	if s.hasOccupant() && len(s.Selected) >= int(s.PartySize) {
		return &SelectionLimitError{PartySize: s.PartySize}
	}
	s.Selected = append(s.Selected, seatID)
	return nil
}

// ValidateSubmit checks everything that can be checked locally before
// a seat-now or reserve command is sent: an occupant must be bound,
// the selection must match the party size exactly, reserve is only
// available to reservations, and no other submission may be in
// flight.  It never mutates the session.
func (s *Session) ValidateSubmit(action Action) error {
	if _, ok := nextState(s.State, evSubmit); !ok {
		return ErrNoSession
	}
	if !s.hasOccupant() {
		return ErrNoOccupant
	}
	if s.InFlight {
		return ErrSubmitInFlight
	}
	if action == ActionReserve && s.OccupantType != model.OccupantReservation {
		return ErrReserveWaitlist
	}
	if len(s.Selected) != int(s.PartySize) {
		return &SeatCountError{Required: s.PartySize, Selected: len(s.Selected)}
	}
	return nil
}

// BeginSubmit marks the session in flight and stamps it with a fresh
// idempotency key for the outgoing command.  A second submit while
// one is outstanding fails ValidateSubmit.
func (s *Session) BeginSubmit() string {
	s.InFlight = true
	s.IdempotencyKey = uuid.NewString()
	return s.IdempotencyKey
}

// EndSubmit records the outcome of the in-flight command.  Success
// destroys the session (back to idle, selection discarded); failure
// keeps the full session so the staff member can retry or cancel.
func (s *Session) EndSubmit(success bool) {
	s.InFlight = false
	s.IdempotencyKey = ""
	if success {
		s.reset()
	}
}

// Cancel discards the session without contacting the upstream API.
func (s *Session) Cancel() {
	s.reset()
}

func (s *Session) reset() {
	s.State = StateIdle
	s.OccupantType = ""
	s.OccupantID = 0
	s.DisplayName = ""
	s.PartySize = 0
	s.SeedSeatID = 0
	s.PickerOpen = false
	s.Selected = []uint64{}
	s.InFlight = false
	s.IdempotencyKey = ""
}

// Window computes the allocation time window for a submission.  When
// the floor date is today in the restaurant's time zone (compared as
// plain date strings to sidestep timezone-boundary mismatches) the
// window starts now; otherwise it starts at the fixed service hour on
// the floor date.  The end is a flat hour later.
func Window(floorDate string, loc *time.Location, now time.Time) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.UTC
	}
	if floorDate == now.In(loc).Format("2006-01-02") {
		start = now.In(loc)
	} else {
		day, perr := time.ParseInLocation("2006-01-02", floorDate, loc)
		if perr != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid floor date %q: %w", floorDate, perr)
		}
		start = day.Add(serviceStartHour * time.Hour)
	}
	return start, start.Add(defaultDuration), nil
}
