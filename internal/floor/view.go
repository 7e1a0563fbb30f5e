// Package floor assembles the staff floor view: it pulls the active
// layout and the date-scoped reservation, waitlist and allocation
// lists from the upstream API, derives per-seat status through the
// occupancy index and lays seats out through the geometry engine.
package floor

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/tableside/floor-manager/internal/client"
	"github.com/tableside/floor-manager/internal/geometry"
	"github.com/tableside/floor-manager/internal/model"
	"github.com/tableside/floor-manager/internal/occupancy"
)

// API is the slice of the upstream client the floor view needs.
type API interface {
	FetchRestaurant(ctx context.Context) (*client.Restaurant, error)
	FetchLayout(ctx context.Context, id uint64) (*model.Layout, error)
	ListReservations(ctx context.Context, date string) ([]model.Reservation, error)
	ListWaitlist(ctx context.Context, date string) ([]model.WaitlistEntry, error)
	ListAllocations(ctx context.Context, date string) ([]model.SeatAllocation, error)
}

// Snapshot is one consistent fetch of everything the floor needs for
// a date.  It is rebuilt wholesale after every successful command;
// nothing in it is mutated in place.
type Snapshot struct {
	Date         string
	Restaurant   *client.Restaurant
	Layout       *model.Layout
	Reservations []model.Reservation
	Waitlist     []model.WaitlistEntry
	Allocations  []model.SeatAllocation
	Index        *occupancy.Index
}

// Loader fetches snapshots from the upstream API.
type Loader struct {
	api API
}

// NewLoader returns a loader over the given API client.
func NewLoader(api API) *Loader {
	return &Loader{api: api}
}

// Load fetches the restaurant, its active layout and the date-scoped
// lists.  An empty date means "today", computed in the restaurant's
// configured time zone, never the viewer's.  Unparsable list
// responses are logged and degrade to empty lists; an unparsable or
// missing layout degrades to the no-layout view.  Transport errors on
// the restaurant fetch are fatal for the load since nothing can be
// displayed without the venue record.
func (l *Loader) Load(ctx context.Context, date string) (*Snapshot, error) {
	rest, err := l.api.FetchRestaurant(ctx)
	if err != nil {
		if errors.Is(err, client.ErrBadPayload) {
			log.Printf("floor: restaurant payload unparsable: %v", err)
			return &Snapshot{Date: date, Index: occupancy.Build(nil)}, nil
		}
		return nil, err
	}
	if date == "" {
		date = time.Now().In(rest.Location()).Format("2006-01-02")
	}

	snap := &Snapshot{Date: date, Restaurant: rest}

	if rest.ActiveLayoutID != 0 {
		layout, err := l.api.FetchLayout(ctx, rest.ActiveLayoutID)
		if err != nil {
			if !errors.Is(err, client.ErrBadPayload) {
				return nil, err
			}
			log.Printf("floor: layout %d payload unparsable: %v", rest.ActiveLayoutID, err)
		} else {
			snap.Layout = layout
		}
	}

	snap.Reservations = l.listReservations(ctx, date)
	snap.Waitlist = l.listWaitlist(ctx, date)
	snap.Allocations = l.listAllocations(ctx, date)
	snap.Index = occupancy.Build(snap.Allocations)
	return snap, nil
}

// ResolveDate returns the requested date unchanged, or today's date
// in the restaurant's time zone when the request did not name one.
func (l *Loader) ResolveDate(ctx context.Context, date string) (string, error) {
	if date != "" {
		return date, nil
	}
	rest, err := l.api.FetchRestaurant(ctx)
	if err != nil {
		return "", err
	}
	return time.Now().In(rest.Location()).Format("2006-01-02"), nil
}

func (l *Loader) listReservations(ctx context.Context, date string) []model.Reservation {
	items, err := l.api.ListReservations(ctx, date)
	if err != nil {
		log.Printf("floor: list reservations: %v", err)
		return nil
	}
	return items
}

func (l *Loader) listWaitlist(ctx context.Context, date string) []model.WaitlistEntry {
	items, err := l.api.ListWaitlist(ctx, date)
	if err != nil {
		log.Printf("floor: list waitlist: %v", err)
		return nil
	}
	return items
}

func (l *Loader) listAllocations(ctx context.Context, date string) []model.SeatAllocation {
	items, err := l.api.ListAllocations(ctx, date)
	if err != nil {
		log.Printf("floor: list allocations: %v", err)
		return nil
	}
	return items
}

// SeatView is one rendered seat: placement, derived status and the
// occupant summary when the seat is not free.
type SeatView struct {
	geometry.SeatPosition
	Label    string                  `json:"label,omitempty"`
	Capacity uint32                  `json:"capacity,omitempty"`
	Status   model.SeatStatus        `json:"status"`
	Occupant *occupancy.OccupantInfo `json:"occupant,omitempty"`
}

// SectionView is one rendered section with its seats.
type SectionView struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Orientation string     `json:"orientation,omitempty"`
	Seats       []SeatView `json:"seats"`
}

// View is the complete render model for the floor page.
type View struct {
	Date     string          `json:"date"`
	Canvas   geometry.Canvas `json:"canvas"`
	Zoom     float64         `json:"zoom"`
	NoLayout bool            `json:"no_layout,omitempty"`
	Sections []SectionView   `json:"sections"`
}

// BuildView computes the render model for a snapshot.  Zoom is a
// display multiplier only; it is clamped but never influences the
// canvas bounds.
func BuildView(snap *Snapshot, mode geometry.SizeMode, zoom float64) View {
	v := View{Date: snap.Date, Zoom: geometry.ClampZoom(zoom)}
	if snap.Layout == nil {
		v.NoLayout = true
		v.Canvas = geometry.CanvasFor(model.Layout{}, mode)
		v.Sections = []SectionView{}
		return v
	}
	v.Canvas = geometry.CanvasFor(*snap.Layout, mode)
	v.Sections = make([]SectionView, 0, len(snap.Layout.Sections))
	for _, sec := range snap.Layout.Sections {
		sv := SectionView{ID: sec.ID, Name: sec.Name, Orientation: sec.Orientation, Seats: make([]SeatView, 0, len(sec.Seats))}
		for _, seat := range sec.Seats {
			seatView := SeatView{
				SeatPosition: geometry.PositionFor(sec, seat, v.Canvas.SeatScale),
				Label:        seat.Label,
				Capacity:     seat.Capacity,
				Status:       snap.Index.StatusOf(seat.ID),
			}
			if info, ok := snap.Index.Occupant(seat.ID); ok {
				occ := info
				seatView.Occupant = &occ
			}
			sv.Seats = append(sv.Seats, seatView)
		}
		v.Sections = append(v.Sections, sv)
	}
	return v
}

// DialogAction is one action offered by the seat detail dialog.
type DialogAction string

const (
	DialogArrive      DialogAction = "arrive"
	DialogNoShow      DialogAction = "no_show"
	DialogCancel      DialogAction = "cancel"
	DialogFinish      DialogAction = "finish"
	DialogStartWizard DialogAction = "start_wizard"
)

// DialogFor returns the actions the seat detail dialog offers for a
// derived seat status.  The dialog only opens while the wizard is
// idle; an active wizard routes every seat click to ToggleSeat
// instead.
func DialogFor(status model.SeatStatus) []DialogAction {
	switch status {
	case model.SeatReserved:
		return []DialogAction{DialogArrive, DialogNoShow, DialogCancel}
	case model.SeatOccupied:
		return []DialogAction{DialogFinish}
	default:
		return []DialogAction{DialogStartWizard}
	}
}
