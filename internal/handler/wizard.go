package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tableside/floor-manager/internal/client"
	"github.com/tableside/floor-manager/internal/geometry"
	"github.com/tableside/floor-manager/internal/model"
	"github.com/tableside/floor-manager/internal/queue"
	"github.com/tableside/floor-manager/internal/wizard"
)

// chooseOccupantRequest binds the party picked in the occupant picker.
type chooseOccupantRequest struct {
	Type model.OccupantType `json:"type"`
	ID   uint64             `json:"id"`
}

// seedRequest starts a session directly from a free-seat click.
type seedRequest struct {
	SeatID uint64 `json:"seat_id"`
}

// submitRequest names the command a submission should issue.
type submitRequest struct {
	Action wizard.Action `json:"action"`
}

// zoomRequest updates the display zoom stored on the session.
type zoomRequest struct {
	Zoom float64 `json:"zoom"`
}

// GetWizard handles GET /v1/wizard and returns the staff member's
// current session, or a fresh idle one when none exists.
func (h *FloorHandler) GetWizard(c echo.Context) error {
	st, err := staff(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	sess, err := h.Sessions.Load(ctx, st.Subject)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load wizard session"})
	}
	if sess == nil {
		date, derr := h.Loader.ResolveDate(ctx, "")
		if derr != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to resolve floor date"})
		}
		sess = wizard.NewSession(date)
	}
	return c.JSON(http.StatusOK, echo.Map{"session": sess})
}

// OpenWizard handles POST /v1/wizard.  It opens the occupant picker,
// creating the session for the requested floor date if the staff
// member does not have one yet.  A second open while a session is in
// progress is rejected; the existing session must be cancelled or
// submitted first.
func (h *FloorHandler) OpenWizard(c echo.Context) error {
	st, err := staff(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	date, err := parseDate(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()
	resolved, err := h.Loader.ResolveDate(ctx, date)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to resolve floor date"})
	}

	sess, err := h.Sessions.Load(ctx, st.Subject)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load wizard session"})
	}
	if sess == nil || sess.State == wizard.StateIdle {
		sess = wizard.NewSession(resolved)
	}
	if err := sess.OpenPicker(); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	if err := h.Sessions.Save(ctx, st.Subject, sess); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save wizard session"})
	}
	return c.JSON(http.StatusOK, echo.Map{"session": sess})
}

// ChooseOccupant handles POST /v1/wizard/occupant.  It looks the
// picked party up in the floor date's reservation or waitlist list and
// binds it to the session; a session that already has a party keeps it.
func (h *FloorHandler) ChooseOccupant(c echo.Context) error {
	st, err := staff(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req chooseOccupantRequest
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Type != model.OccupantReservation && req.Type != model.OccupantWaitlist {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be reservation or waitlist"})
	}
	ctx := c.Request().Context()

	sess, err := h.Sessions.Load(ctx, st.Subject)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load wizard session"})
	}
	if sess == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": wizard.ErrNoSession.Error()})
	}

	occ, ok := h.findOccupant(c, sess.FloorDate, req.Type, req.ID)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "party not found for this date"})
	}
	if err := sess.ChooseOccupant(occ); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	if err := h.Sessions.Save(ctx, st.Subject, sess); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save wizard session"})
	}
	return c.JSON(http.StatusOK, echo.Map{"session": sess})
}

// findOccupant resolves a picked party against the floor date's lists.
func (h *FloorHandler) findOccupant(c echo.Context, date string, typ model.OccupantType, id uint64) (model.Occupant, bool) {
	ctx := c.Request().Context()
	switch typ {
	case model.OccupantReservation:
		items, err := h.API.ListReservations(ctx, date)
		if err != nil {
			return model.Occupant{}, false
		}
		for i := range items {
			if items[i].ID == id {
				return model.OccupantFromReservation(&items[i]), true
			}
		}
	case model.OccupantWaitlist:
		items, err := h.API.ListWaitlist(ctx, date)
		if err != nil {
			return model.Occupant{}, false
		}
		for i := range items {
			if items[i].ID == id {
				return model.OccupantFromWaitlist(&items[i]), true
			}
		}
	}
	return model.Occupant{}, false
}

// SeedWizard handles POST /v1/wizard/seed, the direct-entry path: a
// free-seat click starts the session with that seat pre-selected and
// the picker open.
func (h *FloorHandler) SeedWizard(c echo.Context) error {
	st, err := staff(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req seedRequest
	if err := c.Bind(&req); err != nil || req.SeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
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
	if !snap.Index.Free(req.SeatID) {
		return c.JSON(http.StatusConflict, echo.Map{"error": wizard.ErrSeatUnavailable.Error()})
	}

	sess, err := h.Sessions.Load(ctx, st.Subject)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load wizard session"})
	}
	if sess == nil || sess.State == wizard.StateIdle {
		sess = wizard.NewSession(snap.Date)
	}
	if err := sess.StartWithSeat(req.SeatID); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	if err := h.Sessions.Save(ctx, st.Subject, sess); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save wizard session"})
	}
	return c.JSON(http.StatusOK, echo.Map{"session": sess})
}

// SubmitWizard handles POST /v1/wizard/submit.  Local validation runs
// first so a malformed submission never produces a network call; a
// valid one issues the seat-now or reserve command with a fresh
// idempotency key, and only a success destroys the session.
func (h *FloorHandler) SubmitWizard(c echo.Context) error {
	st, err := staff(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Action != wizard.ActionSeatNow && req.Action != wizard.ActionReserve {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be seat_now or reserve"})
	}
	ctx := c.Request().Context()

	sess, err := h.Sessions.Load(ctx, st.Subject)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load wizard session"})
	}
	if sess == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": wizard.ErrNoSession.Error()})
	}
	if err := sess.ValidateSubmit(req.Action); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, wizard.ErrSubmitInFlight) || errors.Is(err, wizard.ErrNoSession) {
			status = http.StatusConflict
		}
		return c.JSON(status, echo.Map{"error": err.Error()})
	}

	rest, err := h.API.FetchRestaurant(ctx)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to load venue record"})
	}
	start, end, err := wizard.Window(sess.FloorDate, rest.Location(), time.Now())
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	key := sess.BeginSubmit()
	if err := h.Sessions.Save(ctx, st.Subject, sess); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save wizard session"})
	}

	cmd := client.CommandSeatNow
	if req.Action == wizard.ActionReserve {
		cmd = client.CommandReserve
	}
	cmdErr := h.API.CreateAllocations(ctx, client.CreateAllocationsRequest{
		Command:      cmd,
		OccupantType: sess.OccupantType,
		OccupantID:   sess.OccupantID,
		SeatIDs:      sess.Selected,
		StartTime:    start,
		EndTime:      end,
	}, key)

	ev := queue.FloorCommandEvent{
		EventID:      key,
		Command:      string(cmd),
		OccupantType: string(sess.OccupantType),
		OccupantID:   sess.OccupantID,
		GuestName:    sess.DisplayName,
		SeatIDs:      append([]uint64(nil), sess.Selected...),
		FloorDate:    sess.FloorDate,
		StartsAt:     start.Format(time.RFC3339),
		EndsAt:       end.Format(time.RFC3339),
		Staff:        st.Subject,
		IssuedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	sess.EndSubmit(cmdErr == nil)
	if err := h.Sessions.Save(ctx, st.Subject, sess); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save wizard session"})
	}
	if cmdErr != nil {
		return c.JSON(upstreamStatus(cmdErr), echo.Map{"error": cmdErr.Error()})
	}

	h.publishCommand(c, ev)
	return c.JSON(http.StatusOK, echo.Map{"result": "submitted", "session": sess})
}

// CancelWizard handles POST /v1/wizard/cancel.  It discards the
// session locally; nothing is sent upstream since an unsubmitted
// session never reserved anything.
func (h *FloorHandler) CancelWizard(c echo.Context) error {
	st, err := staff(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	sess, err := h.Sessions.Load(ctx, st.Subject)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load wizard session"})
	}
	if sess != nil {
		sess.Cancel()
	}
	if err := h.Sessions.Clear(ctx, st.Subject); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to clear wizard session"})
	}
	return c.JSON(http.StatusOK, echo.Map{"result": "cancelled"})
}

// SetZoom handles POST /v1/wizard/zoom.  The zoom is a per-staff
// display preference carried on the session; it survives submissions
// because the session record itself does.
func (h *FloorHandler) SetZoom(c echo.Context) error {
	st, err := staff(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req zoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	sess, err := h.Sessions.Load(ctx, st.Subject)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load wizard session"})
	}
	if sess == nil {
		date, derr := h.Loader.ResolveDate(ctx, "")
		if derr != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to resolve floor date"})
		}
		sess = wizard.NewSession(date)
	}
	sess.Zoom = geometry.ClampZoom(req.Zoom)
	if err := h.Sessions.Save(ctx, st.Subject, sess); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save wizard session"})
	}
	return c.JSON(http.StatusOK, echo.Map{"zoom": sess.Zoom})
}
