// Package occupancy derives per-seat occupant status for one floor
// date from a list of seat allocation records.  The index is rebuilt
// wholesale on every fetch rather than maintained incrementally, so
// it can never drift from what the upstream API last returned.
package occupancy

import "github.com/tableside/floor-manager/internal/model"

// OccupantInfo is the denormalized occupant summary attached to an
// occupied or reserved seat.
type OccupantInfo struct {
	Type      model.OccupantType `json:"occupant_type"`
	ID        uint64             `json:"occupant_id"`
	GuestName string             `json:"guest_name"`
	PartySize uint32             `json:"party_size"`
	Status    string             `json:"status"`
}

// OccupantFor scans the date-scoped allocation list for the first
// active record matching the seat and returns its occupant summary.
// A seat with no active allocation is free and returns ok=false.
// The upstream API should never produce two active allocations for
// one seat on one date; if it does, the first record wins.
func OccupantFor(seatID uint64, allocations []model.SeatAllocation) (OccupantInfo, bool) {
	for _, a := range allocations {
		if a.SeatID != seatID || !a.Active() {
			continue
		}
		return OccupantInfo{
			Type:      a.OccupantType,
			ID:        a.OccupantID,
			GuestName: a.GuestName,
			PartySize: a.PartySize,
			Status:    a.OccupantStatus,
		}, true
	}
	return OccupantInfo{}, false
}

// Index maps seat ids to their current occupant for one floor date.
type Index struct {
	bySeat map[uint64]OccupantInfo
}

// Build computes a fresh index from a date-scoped allocation list.
func Build(allocations []model.SeatAllocation) *Index {
	idx := &Index{bySeat: make(map[uint64]OccupantInfo, len(allocations))}
	for _, a := range allocations {
		if !a.Active() {
			continue
		}
		if _, exists := idx.bySeat[a.SeatID]; exists {
			// First active record wins; duplicates indicate an
			// upstream consistency bug and are not validated here.
			continue
		}
		idx.bySeat[a.SeatID] = OccupantInfo{
			Type:      a.OccupantType,
			ID:        a.OccupantID,
			GuestName: a.GuestName,
			PartySize: a.PartySize,
			Status:    a.OccupantStatus,
		}
	}
	return idx
}

// Occupant returns the occupant of a seat, if any.
func (idx *Index) Occupant(seatID uint64) (OccupantInfo, bool) {
	info, ok := idx.bySeat[seatID]
	return info, ok
}

// StatusOf returns the canonical seat status for a seat.
func (idx *Index) StatusOf(seatID uint64) model.SeatStatus {
	info, ok := idx.bySeat[seatID]
	if !ok {
		return model.SeatFree
	}
	return model.StatusFromOccupant(info.Status)
}

// Free reports whether a seat has no active allocation.
func (idx *Index) Free(seatID uint64) bool {
	_, ok := idx.bySeat[seatID]
	return !ok
}
