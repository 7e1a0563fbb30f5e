package model

import "time"

// Layout is a named floor plan owned by a restaurant.  A restaurant
// points at most one layout at a time via its active_layout_id; the
// floor service only ever reads layouts, editing happens upstream.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the floor plan.
//  Sections  – ordered sections composing the plan.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Layout struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Sections  []Section `json:"sections"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Section is a named region of a layout.  Its offset places the
// section in layout space; seat positions are relative to it.
// Sections may visually overlap, no overlap invariant is enforced.
//
// Fields:
//  ID          – primary key identifier.
//  LayoutID    – layout to which this section belongs.
//  Name        – section name (e.g. "Patio", "Main Dining").
//  OffsetX     – x origin of the section in layout space.
//  OffsetY     – y origin of the section in layout space.
//  Orientation – orientation tag (e.g. "horizontal", "vertical").
//  Seats       – ordered seats within the section.
type Section struct {
	ID          uint64  `json:"id"`
	LayoutID    uint64  `json:"layout_id"`
	Name        string  `json:"name"`
	OffsetX     float64 `json:"offset_x"`
	OffsetY     float64 `json:"offset_y"`
	Orientation string  `json:"orientation"`
	Seats       []Seat  `json:"seats"`
}

// Seat is a single spot within a section.  Occupancy is never stored
// on the seat itself; it is derived per date from SeatAllocation
// records.  The seat's global position is section offset plus the
// relative position stored here.
//
// Fields:
//  ID        – stable primary key identifier.
//  SectionID – section to which this seat belongs.
//  Label     – optional display label (empty if unset).
//  X         – x position relative to the section offset.
//  Y         – y position relative to the section offset.
//  Capacity  – number of guests the spot fits (0 means one).
type Seat struct {
	ID        uint64  `json:"id"`
	SectionID uint64  `json:"section_id"`
	Label     string  `json:"label,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Capacity  uint32  `json:"capacity,omitempty"`
}
