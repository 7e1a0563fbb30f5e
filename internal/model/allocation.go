package model

import "time"

// SeatAllocation binds one seat to one occupant for a time interval.
// Allocations are created by the seat-now and reserve commands and
// released (ReleasedAt set) by finish, no-show and cancel.  The
// upstream API owns the records; the floor service reads a date-scoped
// list of them to derive per-seat occupancy.
//
// Fields:
//  ID             – primary key identifier.
//  SeatID         – seat being allocated.
//  OccupantType   – reservation or waitlist.
//  OccupantID     – identifier of the occupant.
//  GuestName      – denormalized contact name for display.
//  PartySize      – denormalized party size for display.
//  OccupantStatus – denormalized occupant status ("reserved", "seated", ...).
//  StartTime      – start of the allocation window.
//  EndTime        – end of the allocation window.
//  ReleasedAt     – release timestamp; nil while the allocation is active.
type SeatAllocation struct {
	ID             uint64       `json:"id"`
	SeatID         uint64       `json:"seat_id"`
	OccupantType   OccupantType `json:"occupant_type"`
	OccupantID     uint64       `json:"occupant_id"`
	GuestName      string       `json:"guest_name"`
	PartySize      uint32       `json:"party_size"`
	OccupantStatus string       `json:"occupant_status"`
	StartTime      time.Time    `json:"start_time"`
	EndTime        time.Time    `json:"end_time"`
	ReleasedAt     *time.Time   `json:"released_at,omitempty"`
}

// Active reports whether the allocation still holds its seat.
func (a SeatAllocation) Active() bool { return a.ReleasedAt == nil }

// SeatStatus is the canonical per-seat status vocabulary used for
// rendering and dialog branching.  Upstream records use both
// "seated" and "occupied" for the same state; both collapse into
// SeatOccupied here.
type SeatStatus string

const (
	SeatFree     SeatStatus = "free"     // no active allocation for the date
	SeatReserved SeatStatus = "reserved" // active allocation, party not yet arrived
	SeatOccupied SeatStatus = "occupied" // active allocation, party at the table
)

// StatusFromOccupant maps a denormalized occupant status onto the
// canonical seat status.  Anything that is not explicitly "reserved"
// on an active allocation counts as occupied.
func StatusFromOccupant(occupantStatus string) SeatStatus {
	if occupantStatus == ReservationReserved {
		return SeatReserved
	}
	return SeatOccupied
}
