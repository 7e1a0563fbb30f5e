// Package geometry computes canvas bounds and seat pixel positions
// for a floor layout.  Everything here is a pure function of the
// layout passed in; occupancy and zoom are handled elsewhere.
package geometry

import "github.com/tableside/floor-manager/internal/model"

// SizeMode selects how the canvas dimensions are determined.
type SizeMode string

const (
	SizeSmall  SizeMode = "small"  // fixed 1200x800
	SizeMedium SizeMode = "medium" // fixed 2000x1200
	SizeLarge  SizeMode = "large"  // fixed 3000x1800
	SizeAuto   SizeMode = "auto"   // bounding box of all seats plus margin
)

const (
	// autoMargin is added to both axes of the seat bounding box in auto mode.
	autoMargin = 200.0
	// autoMinWidth/autoMinHeight floor the auto-computed canvas.
	autoMinWidth  = 800.0
	autoMinHeight = 600.0
	// seatDiameter is the unscaled diameter of a rendered seat circle.
	seatDiameter = 60.0

	// Zoom is an independent multiplier applied on top of the canvas;
	// it never feeds back into the bounds computation.
	ZoomMin     = 0.2
	ZoomMax     = 5.0
	ZoomStep    = 0.25
	ZoomDefault = 1.0
)

// Canvas describes the drawing surface for a layout.
type Canvas struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	SeatScale float64 `json:"seat_scale"`
}

// SeatPosition is the computed render placement of one seat.
type SeatPosition struct {
	SeatID   uint64  `json:"seat_id"`
	CenterX  float64 `json:"center_x"`
	CenterY  float64 `json:"center_y"`
	TopLeftX float64 `json:"top_left_x"`
	TopLeftY float64 `json:"top_left_y"`
	Diameter float64 `json:"diameter"`
}

// CanvasFor returns the canvas for a layout under the given size
// mode.  Preset modes return their fixed dimensions verbatim.  Auto
// mode computes the axis-aligned bounding box of all seats' global
// coordinates, adds a fixed margin to each axis and floors the result
// at 800x600; a layout with no seats falls back to the small preset.
func CanvasFor(layout model.Layout, mode SizeMode) Canvas {
	switch mode {
	case SizeSmall:
		return Canvas{Width: 1200, Height: 800, SeatScale: 1.0}
	case SizeMedium:
		return Canvas{Width: 2000, Height: 1200, SeatScale: 1.0}
	case SizeLarge:
		return Canvas{Width: 3000, Height: 1800, SeatScale: 1.0}
	}

	first := true
	var minX, minY, maxX, maxY float64
	for _, sec := range layout.Sections {
		for _, seat := range sec.Seats {
			gx := sec.OffsetX + seat.X
			gy := sec.OffsetY + seat.Y
			if first {
				minX, maxX, minY, maxY = gx, gx, gy, gy
				first = false
				continue
			}
			if gx < minX {
				minX = gx
			}
			if gx > maxX {
				maxX = gx
			}
			if gy < minY {
				minY = gy
			}
			if gy > maxY {
				maxY = gy
			}
		}
	}
	if first {
		// No seats at all: auto-sizing has nothing to enclose.
		return Canvas{Width: 1200, Height: 800, SeatScale: 1.0}
	}

	w := maxX - minX + autoMargin
	if w < autoMinWidth {
		w = autoMinWidth
	}
	h := maxY - minY + autoMargin
	if h < autoMinHeight {
		h = autoMinHeight
	}
	return Canvas{Width: w, Height: h, SeatScale: 1.0}
}

// PositionFor returns the render placement of a seat inside its
// section: a circle of diameter 60 (times the seat scale) centered
// on the seat's global coordinate.
func PositionFor(sec model.Section, seat model.Seat, seatScale float64) SeatPosition {
	if seatScale <= 0 {
		seatScale = 1.0
	}
	d := seatDiameter * seatScale
	cx := sec.OffsetX + seat.X
	cy := sec.OffsetY + seat.Y
	return SeatPosition{
		SeatID:   seat.ID,
		CenterX:  cx,
		CenterY:  cy,
		TopLeftX: cx - d/2,
		TopLeftY: cy - d/2,
		Diameter: d,
	}
}

// ClampZoom normalizes a requested zoom level into the supported
// range.  Non-positive values reset to the default.
func ClampZoom(z float64) float64 {
	if z <= 0 {
		return ZoomDefault
	}
	if z < ZoomMin {
		return ZoomMin
	}
	if z > ZoomMax {
		return ZoomMax
	}
	return z
}
