package geometry

import (
	"testing"

	"github.com/tableside/floor-manager/internal/model"
)

func TestCanvasForPresets(t *testing.T) {
	layout := model.Layout{Sections: []model.Section{
		{OffsetX: 9000, OffsetY: 9000, Seats: []model.Seat{{ID: 1, X: 10, Y: 10}}},
	}}
	cases := []struct {
		mode SizeMode
		w, h float64
	}{
		{SizeSmall, 1200, 800},
		{SizeMedium, 2000, 1200},
		{SizeLarge, 3000, 1800},
	}
	for _, tc := range cases {
		got := CanvasFor(layout, tc.mode)
		if got.Width != tc.w || got.Height != tc.h {
			t.Errorf("%s: got %vx%v, want %vx%v", tc.mode, got.Width, got.Height, tc.w, tc.h)
		}
		if got.SeatScale != 1.0 {
			t.Errorf("%s: seat scale = %v, want 1.0", tc.mode, got.SeatScale)
		}
	}
}

func TestCanvasForAutoBounds(t *testing.T) {
	// Seats spanning 1000x700 globally across two sections.
	layout := model.Layout{Sections: []model.Section{
		{OffsetX: 100, OffsetY: 100, Seats: []model.Seat{
			{ID: 1, X: 0, Y: 0},
			{ID: 2, X: 400, Y: 200},
		}},
		{OffsetX: 600, OffsetY: 500, Seats: []model.Seat{
			{ID: 3, X: 500, Y: 300},
		}},
	}}
	got := CanvasFor(layout, SizeAuto)
	// Global coords span [100,1100]x[100,800]: 1000+200 by 700+200.
	if got.Width != 1200 || got.Height != 900 {
		t.Fatalf("auto canvas = %vx%v, want 1200x900", got.Width, got.Height)
	}
}

func TestCanvasForAutoMinimum(t *testing.T) {
	// A single seat has a zero-size bounding box, so both axes hit
	// the 800x600 floor regardless of where the seat sits.
	layout := model.Layout{Sections: []model.Section{
		{OffsetX: 100, OffsetY: 100, Seats: []model.Seat{{ID: 1, X: 30, Y: 30}}},
	}}
	got := CanvasFor(layout, SizeAuto)
	if got.Width != 800 || got.Height != 600 {
		t.Fatalf("auto canvas = %vx%v, want 800x600", got.Width, got.Height)
	}
}

func TestCanvasForAutoNoSeats(t *testing.T) {
	layout := model.Layout{Sections: []model.Section{{Name: "empty"}}}
	got := CanvasFor(layout, SizeAuto)
	if got.Width != 1200 || got.Height != 800 {
		t.Fatalf("empty layout canvas = %vx%v, want 1200x800", got.Width, got.Height)
	}
}

func TestPositionFor(t *testing.T) {
	sec := model.Section{OffsetX: 100, OffsetY: 50}
	seat := model.Seat{ID: 7, X: 40, Y: 20}
	pos := PositionFor(sec, seat, 1.0)
	if pos.CenterX != 140 || pos.CenterY != 70 {
		t.Fatalf("center = (%v,%v), want (140,70)", pos.CenterX, pos.CenterY)
	}
	if pos.TopLeftX != 110 || pos.TopLeftY != 40 {
		t.Fatalf("top-left = (%v,%v), want (110,40)", pos.TopLeftX, pos.TopLeftY)
	}
	if pos.Diameter != 60 {
		t.Fatalf("diameter = %v, want 60", pos.Diameter)
	}
}

func TestPositionForScaled(t *testing.T) {
	sec := model.Section{}
	seat := model.Seat{ID: 1, X: 100, Y: 100}
	pos := PositionFor(sec, seat, 2.0)
	if pos.Diameter != 120 {
		t.Fatalf("scaled diameter = %v, want 120", pos.Diameter)
	}
	if pos.TopLeftX != 40 || pos.TopLeftY != 40 {
		t.Fatalf("scaled top-left = (%v,%v), want (40,40)", pos.TopLeftX, pos.TopLeftY)
	}
}

func TestClampZoom(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, ZoomDefault},
		{-1, ZoomDefault},
		{0.1, ZoomMin},
		{0.2, 0.2},
		{1.25, 1.25},
		{5.0, 5.0},
		{7.5, ZoomMax},
	}
	for _, tc := range cases {
		if got := ClampZoom(tc.in); got != tc.want {
			t.Errorf("ClampZoom(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
