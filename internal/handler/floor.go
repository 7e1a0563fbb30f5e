package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tableside/floor-manager/internal/floor"
	"github.com/tableside/floor-manager/internal/geometry"
	"github.com/tableside/floor-manager/internal/model"
	"github.com/tableside/floor-manager/internal/wizard"
)

// GetFloor handles GET /v1/floor.  It fetches a fresh snapshot for
// the requested date (default: today in the restaurant's time zone),
// derives per-seat occupancy and returns the full render model.  The
// response is never cached; every call is a fresh upstream fetch.
func (h *FloorHandler) GetFloor(c echo.Context) error {
	st, err := staff(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	date, err := parseDate(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	snap, err := h.Loader.Load(ctx, date)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to load floor data"})
	}

	zoom := geometry.ZoomDefault
	if sess, err := h.Sessions.Load(ctx, st.Subject); err == nil && sess != nil {
		zoom = sess.Zoom
	}
	view := floor.BuildView(snap, h.parseSizeMode(c), zoom)
	return c.JSON(http.StatusOK, echo.Map{
		"floor":        view,
		"reservations": snap.Reservations,
		"waitlist":     snap.Waitlist,
	})
}

// ListReservations handles GET /v1/reservations.  It returns the
// read-only reservation list for the requested date.
func (h *FloorHandler) ListReservations(c echo.Context) error {
	date, err := parseDate(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	resolved, err := h.Loader.ResolveDate(ctx, date)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to resolve floor date"})
	}
	items, err := h.API.ListReservations(ctx, resolved)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to load reservations"})
	}
	if items == nil {
		items = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, echo.Map{"date": resolved, "items": items})
}

// ListWaitlist handles GET /v1/waitlist.  It returns the read-only
// waitlist for the requested date.
func (h *FloorHandler) ListWaitlist(c echo.Context) error {
	date, err := parseDate(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	resolved, err := h.Loader.ResolveDate(ctx, date)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to resolve floor date"})
	}
	items, err := h.API.ListWaitlist(ctx, resolved)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to load waitlist"})
	}
	if items == nil {
		items = []model.WaitlistEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"date": resolved, "items": items})
}

// SeatClick handles POST /v1/floor/seats/:id/click, the single entry
// point for seat clicks.  While the staff member's wizard session is
// active the click toggles the seat in the selection; otherwise it
// returns the seat detail dialog, whose actions branch on the seat's
// derived status.
func (h *FloorHandler) SeatClick(c echo.Context) error {
	st, err := staff(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	seatID, err := parseSeatID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	date, err := parseDate(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()

	sess, err := h.Sessions.Load(ctx, st.Subject)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load wizard session"})
	}

	if sess != nil && sess.State == wizard.StateActive {
		// An active wizard owns every seat click; the dialog never
		// opens underneath it.
		snap, err := h.Loader.Load(ctx, sess.FloorDate)
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to load floor data"})
		}
		if err := sess.ToggleSeat(seatID, snap.Index.Free); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := h.Sessions.Save(ctx, st.Subject, sess); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save wizard session"})
		}
		return c.JSON(http.StatusOK, echo.Map{"result": "toggled", "session": sess})
	}

	snap, err := h.Loader.Load(ctx, date)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to load floor data"})
	}
	status := snap.Index.StatusOf(seatID)
	payload := echo.Map{
		"result":  "dialog",
		"seat_id": seatID,
		"date":    snap.Date,
		"status":  status,
		"actions": floor.DialogFor(status),
	}
	if info, ok := snap.Index.Occupant(seatID); ok {
		payload["occupant"] = info
	}
	return c.JSON(http.StatusOK, payload)
}
