package model

import (
	"strings"
	"time"
)

// OccupantType discriminates the two kinds of parties that can be
// assigned to seats.  The upstream API transports it as a plain
// string; every switch over it must handle both variants.
type OccupantType string

const (
	OccupantReservation OccupantType = "reservation" // a booked reservation
	OccupantWaitlist    OccupantType = "waitlist"    // a walk-in waitlist entry
)

// Reservation statuses as reported by the upstream API.
const (
	ReservationBooked   = "booked"
	ReservationReserved = "reserved"
	ReservationSeated   = "seated"
	ReservationFinished = "finished"
	ReservationCanceled = "canceled"
	ReservationNoShow   = "no_show"
)

// Waitlist statuses as reported by the upstream API.
const (
	WaitlistWaiting = "waiting"
	WaitlistSeated  = "seated"
	WaitlistRemoved = "removed"
	WaitlistNoShow  = "no_show"
)

// Reservation is a guest booking for a scheduled time.  Owned and
// mutated by the upstream API; the floor service only reads it to
// populate the wizard and the read-only reservation list.
//
// Fields:
//  ID        – primary key identifier.
//  GuestName – contact name.
//  Phone     – contact phone number.
//  PartySize – number of guests in the party.
//  StartTime – scheduled start of the reservation.
//  Status    – one of the Reservation* status constants.
type Reservation struct {
	ID        uint64    `json:"id"`
	GuestName string    `json:"guest_name"`
	Phone     string    `json:"phone"`
	PartySize uint32    `json:"party_size"`
	StartTime time.Time `json:"start_time"`
	Status    string    `json:"status"`
}

// WaitlistEntry is a walk-in party waiting for seats.
//
// Fields:
//  ID          – primary key identifier.
//  GuestName   – contact name.
//  Phone       – contact phone number.
//  PartySize   – number of guests in the party.
//  CheckedInAt – when the party joined the waitlist.
//  Status      – one of the Waitlist* status constants.
type WaitlistEntry struct {
	ID          uint64    `json:"id"`
	GuestName   string    `json:"guest_name"`
	Phone       string    `json:"phone"`
	PartySize   uint32    `json:"party_size"`
	CheckedInAt time.Time `json:"checked_in_at"`
	Status      string    `json:"status"`
}

// Occupant is the tagged union over the two party kinds.  Exactly one
// of Reservation and Waitlist is non-nil, matching Type.  Constructed
// through OccupantFromReservation / OccupantFromWaitlist so the tag
// and payload can never disagree.
type Occupant struct {
	Type        OccupantType
	Reservation *Reservation
	Waitlist    *WaitlistEntry
}

// OccupantFromReservation wraps a reservation as an Occupant.
func OccupantFromReservation(r *Reservation) Occupant {
	return Occupant{Type: OccupantReservation, Reservation: r}
}

// OccupantFromWaitlist wraps a waitlist entry as an Occupant.
func OccupantFromWaitlist(w *WaitlistEntry) Occupant {
	return Occupant{Type: OccupantWaitlist, Waitlist: w}
}

// ID returns the identifier of the underlying party.
func (o Occupant) ID() uint64 {
	switch o.Type {
	case OccupantReservation:
		if o.Reservation != nil {
			return o.Reservation.ID
		}
	case OccupantWaitlist:
		if o.Waitlist != nil {
			return o.Waitlist.ID
		}
	}
	return 0
}

// PartySize returns the party size of the underlying party.  A
// missing or zero size defaults to 1 so a wizard session always has
// a positive seat target.
func (o Occupant) PartySize() uint32 {
	var n uint32
	switch o.Type {
	case OccupantReservation:
		if o.Reservation != nil {
			n = o.Reservation.PartySize
		}
	case OccupantWaitlist:
		if o.Waitlist != nil {
			n = o.Waitlist.PartySize
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

// DisplayName returns a compact name for the underlying party: the
// first whitespace-delimited token of the contact name, or "Guest"
// when the name is empty.
func (o Occupant) DisplayName() string {
	var name string
	switch o.Type {
	case OccupantReservation:
		if o.Reservation != nil {
			name = o.Reservation.GuestName
		}
	case OccupantWaitlist:
		if o.Waitlist != nil {
			name = o.Waitlist.GuestName
		}
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "Guest"
	}
	return fields[0]
}

// Status returns the raw status string of the underlying party.
func (o Occupant) Status() string {
	switch o.Type {
	case OccupantReservation:
		if o.Reservation != nil {
			return o.Reservation.Status
		}
	case OccupantWaitlist:
		if o.Waitlist != nil {
			return o.Waitlist.Status
		}
	}
	return ""
}
