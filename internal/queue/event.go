// Package queue defines message payloads exchanged over the message broker.
package queue

// FloorCommandEvent is published after every allocation command the
// upstream API accepted.  It carries enough for downstream consumers
// to build the shift audit trail without querying the upstream API.
type FloorCommandEvent struct {
	EventID      string   `json:"event_id"` // uuid, used for consumer-side dedup
	Command      string   `json:"command"`  // seat_now, reserve, arrive, finish, no_show, cancel
	OccupantType string   `json:"occupant_type"`
	OccupantID   uint64   `json:"occupant_id"`
	GuestName    string   `json:"guest_name,omitempty"`
	SeatIDs      []uint64 `json:"seat_ids,omitempty"` // only set for seat_now / reserve
	FloorDate    string   `json:"floor_date"`
	StartsAt     string   `json:"starts_at,omitempty"`
	EndsAt       string   `json:"ends_at,omitempty"`
	Staff        string   `json:"staff"`
	IssuedAt     string   `json:"issued_at"`
}
