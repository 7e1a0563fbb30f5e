package wizard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tableside/floor-manager/internal/model"
)

func reservationOccupant(id uint64, name string, party uint32) model.Occupant {
	return model.OccupantFromReservation(&model.Reservation{
		ID: id, GuestName: name, PartySize: party, Status: model.ReservationBooked,
	})
}

func allFree(uint64) bool { return true }

func activeSession(t *testing.T, party uint32) *Session {
	t.Helper()
	s := NewSession("2026-08-24")
	if err := s.OpenPicker(); err != nil {
		t.Fatal(err)
	}
	if err := s.ChooseOccupant(reservationOccupant(7, "Dana Reyes", party)); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestOpenPickerFromIdle(t *testing.T) {
	s := NewSession("2026-08-24")
	if err := s.OpenPicker(); err != nil {
		t.Fatal(err)
	}
	if s.State != StatePickingOccupant || !s.PickerOpen {
		t.Fatalf("state = %s pickerOpen=%v, want picking_occupant with picker open", s.State, s.PickerOpen)
	}
	if err := s.OpenPicker(); !errors.Is(err, ErrNotIdle) {
		t.Fatalf("second OpenPicker = %v, want ErrNotIdle", err)
	}
}

func TestChooseOccupantDefaults(t *testing.T) {
	s := NewSession("2026-08-24")
	_ = s.OpenPicker()
	if err := s.ChooseOccupant(reservationOccupant(7, "", 0)); err != nil {
		t.Fatal(err)
	}
	if s.DisplayName != "Guest" {
		t.Errorf("display name = %q, want Guest", s.DisplayName)
	}
	if s.PartySize != 1 {
		t.Errorf("party size = %d, want 1", s.PartySize)
	}
	if s.State != StateActive || len(s.Selected) != 0 {
		t.Errorf("state = %s selected=%v, want active with empty selection", s.State, s.Selected)
	}
}

func TestChooseOccupantFirstNameOnly(t *testing.T) {
	s := activeSession(t, 2)
	if s.DisplayName != "Dana" {
		t.Fatalf("display name = %q, want first token only", s.DisplayName)
	}
}

func TestStartWithSeatDirectEntry(t *testing.T) {
	s := NewSession("2026-08-24")
	if err := s.StartWithSeat(12); err != nil {
		t.Fatal(err)
	}
	if s.State != StateActive || !s.PickerOpen {
		t.Fatalf("state = %s pickerOpen=%v, want active with picker open", s.State, s.PickerOpen)
	}
	if len(s.Selected) != 1 || s.Selected[0] != 12 {
		t.Fatalf("selected = %v, want [12]", s.Selected)
	}
	// Occupant is chosen after the first seat in this flow.
	if err := s.ChooseOccupant(reservationOccupant(3, "Ben Ochoa", 2)); err != nil {
		t.Fatal(err)
	}
	if s.PickerOpen {
		t.Error("picker must close once the party is chosen")
	}
	if len(s.Selected) != 1 || s.Selected[0] != 12 {
		t.Fatalf("seeded selection lost: %v", s.Selected)
	}
	// A second party cannot replace the first.
	if err := s.ChooseOccupant(reservationOccupant(4, "Maya", 2)); !errors.Is(err, ErrOccupantSet) {
		t.Fatalf("rebind occupant = %v, want ErrOccupantSet", err)
	}
}

func TestToggleSeatAddAndRemove(t *testing.T) {
	s := activeSession(t, 3)
	for _, id := range []uint64{1, 2} {
		if err := s.ToggleSeat(id, allFree); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.ToggleSeat(1, allFree); err != nil {
		t.Fatal(err)
	}
	if len(s.Selected) != 1 || s.Selected[0] != 2 {
		t.Fatalf("selected = %v, want [2]", s.Selected)
	}
}

func TestToggleSeatRejectsOccupied(t *testing.T) {
	s := activeSession(t, 2)
	occupied := func(id uint64) bool { return id != 9 }
	if err := s.ToggleSeat(9, occupied); !errors.Is(err, ErrSeatUnavailable) {
		t.Fatalf("toggle occupied seat = %v, want ErrSeatUnavailable", err)
	}
	if len(s.Selected) != 0 {
		t.Fatalf("selection mutated on rejection: %v", s.Selected)
	}
}

func TestToggleSeatSeedExemptFromFreeCheck(t *testing.T) {
	s := NewSession("2026-08-24")
	_ = s.StartWithSeat(9)
	_ = s.ChooseOccupant(reservationOccupant(7, "Dana", 2))
	// Remove then re-add the seed seat while the occupancy snapshot
	// still reports it non-free; the seed started this session.
	nothingFree := func(uint64) bool { return false }
	if err := s.ToggleSeat(9, nothingFree); err != nil {
		t.Fatal(err)
	}
	if err := s.ToggleSeat(9, nothingFree); err != nil {
		t.Fatalf("re-adding seed seat = %v, want nil", err)
	}
}

func TestToggleSeatRejectsBeyondPartySize(t *testing.T) {
	s := activeSession(t, 2)
	_ = s.ToggleSeat(1, allFree)
	_ = s.ToggleSeat(2, allFree)
	err := s.ToggleSeat(3, allFree)
	var limit *SelectionLimitError
	if !errors.As(err, &limit) {
		t.Fatalf("toggle beyond limit = %v, want SelectionLimitError", err)
	}
	if len(s.Selected) != 2 || s.Selected[0] != 1 || s.Selected[1] != 2 {
		t.Fatalf("selected = %v, want [1 2] unchanged", s.Selected)
	}
	// Removing remains allowed at the limit.
	if err := s.ToggleSeat(2, allFree); err != nil {
		t.Fatal(err)
	}
}

func TestValidateSubmitExactCount(t *testing.T) {
	s := activeSession(t, 3)
	_ = s.ToggleSeat(1, allFree)
	_ = s.ToggleSeat(2, allFree)
	err := s.ValidateSubmit(ActionSeatNow)
	var count *SeatCountError
	if !errors.As(err, &count) {
		t.Fatalf("submit with 2/3 seats = %v, want SeatCountError", err)
	}
	if count.Required != 3 {
		t.Fatalf("required = %d, want 3", count.Required)
	}
	if !strings.Contains(err.Error(), "3") {
		t.Fatalf("message %q must cite the required count", err.Error())
	}
	_ = s.ToggleSeat(3, allFree)
	if err := s.ValidateSubmit(ActionSeatNow); err != nil {
		t.Fatalf("submit with exact count = %v, want nil", err)
	}
	// Over-selection is equally invalid; the wizard cannot get there
	// through ToggleSeat but the validator does not assume that.
	s.Selected = append(s.Selected, 4)
	if err := s.ValidateSubmit(ActionSeatNow); err == nil {
		t.Fatal("submit with 4/3 seats must be rejected")
	}
}

func TestValidateSubmitReserveOnlyForReservations(t *testing.T) {
	s := NewSession("2026-08-24")
	_ = s.OpenPicker()
	_ = s.ChooseOccupant(model.OccupantFromWaitlist(&model.WaitlistEntry{
		ID: 5, GuestName: "Walkin", PartySize: 1, Status: model.WaitlistWaiting,
	}))
	_ = s.ToggleSeat(1, allFree)
	if err := s.ValidateSubmit(ActionReserve); !errors.Is(err, ErrReserveWaitlist) {
		t.Fatalf("reserve for waitlist = %v, want ErrReserveWaitlist", err)
	}
	if err := s.ValidateSubmit(ActionSeatNow); err != nil {
		t.Fatalf("seat-now for waitlist = %v, want nil", err)
	}
}

func TestValidateSubmitRequiresOccupant(t *testing.T) {
	s := NewSession("2026-08-24")
	_ = s.StartWithSeat(4)
	if err := s.ValidateSubmit(ActionSeatNow); !errors.Is(err, ErrNoOccupant) {
		t.Fatalf("submit without occupant = %v, want ErrNoOccupant", err)
	}
}

func TestSubmitInFlightGuard(t *testing.T) {
	s := activeSession(t, 1)
	_ = s.ToggleSeat(1, allFree)
	key := s.BeginSubmit()
	if key == "" {
		t.Fatal("BeginSubmit must return an idempotency key")
	}
	if err := s.ValidateSubmit(ActionSeatNow); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("second submit = %v, want ErrSubmitInFlight", err)
	}
	// Failure keeps the session intact for a retry.
	s.EndSubmit(false)
	if s.State != StateActive || len(s.Selected) != 1 {
		t.Fatalf("failed submit must preserve session: state=%s selected=%v", s.State, s.Selected)
	}
	if err := s.ValidateSubmit(ActionSeatNow); err != nil {
		t.Fatalf("retry after failure = %v, want nil", err)
	}
	// Success destroys the session.
	s.BeginSubmit()
	s.EndSubmit(true)
	if s.State != StateIdle || len(s.Selected) != 0 {
		t.Fatalf("successful submit must reset session: state=%s selected=%v", s.State, s.Selected)
	}
}

func TestCancelDiscardsSelections(t *testing.T) {
	s := activeSession(t, 2)
	_ = s.ToggleSeat(1, allFree)
	s.Cancel()
	if s.State != StateIdle || len(s.Selected) != 0 || s.OccupantType != "" {
		t.Fatalf("cancel left residue: %+v", s)
	}
}

func TestWindowToday(t *testing.T) {
	loc := time.FixedZone("Test", -5*3600)
	now := time.Date(2026, 8, 24, 19, 30, 0, 0, loc)
	start, end, err := Window("2026-08-24", loc, now)
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(now) {
		t.Fatalf("start = %v, want now", start)
	}
	if end.Sub(start) != time.Hour {
		t.Fatalf("duration = %v, want 1h", end.Sub(start))
	}
}

func TestWindowFutureDate(t *testing.T) {
	loc := time.FixedZone("Test", -5*3600)
	now := time.Date(2026, 8, 24, 19, 30, 0, 0, loc)
	start, end, err := Window("2026-08-30", loc, now)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2026, 8, 30, 18, 0, 0, 0, loc)
	if !start.Equal(want) {
		t.Fatalf("start = %v, want %v", start, want)
	}
	if end.Sub(start) != time.Hour {
		t.Fatalf("duration = %v, want 1h", end.Sub(start))
	}
}

func TestWindowInvalidDate(t *testing.T) {
	if _, _, err := Window("not-a-date", time.UTC, time.Now()); err == nil {
		t.Fatal("invalid floor date must error")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	if s, err := st.Load(ctx, "staff-1"); err != nil || s != nil {
		t.Fatalf("empty store Load = (%v, %v), want (nil, nil)", s, err)
	}
	s := activeSession(t, 2)
	_ = s.ToggleSeat(1, allFree)
	if err := st.Save(ctx, "staff-1", s); err != nil {
		t.Fatal(err)
	}
	// Mutating the original must not leak into the stored copy.
	_ = s.ToggleSeat(2, allFree)
	got, err := st.Load(ctx, "staff-1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got.Selected) != 1 {
		t.Fatalf("stored session = %+v, want one selected seat", got)
	}
	if err := st.Clear(ctx, "staff-1"); err != nil {
		t.Fatal(err)
	}
	if got, _ := st.Load(ctx, "staff-1"); got != nil {
		t.Fatal("session must be gone after Clear")
	}
}
