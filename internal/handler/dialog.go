package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tableside/floor-manager/internal/model"
	"github.com/tableside/floor-manager/internal/queue"
)

// OccupantCommand handles POST /v1/occupants/:type/:id/:action, the
// backing operation for the seat detail dialog buttons.  Arrive flips
// a reserved party to seated, finish frees the seats of a seated
// party, no-show and cancel release a reserved party's seats.  The
// upstream API is the authority on whether the transition is legal;
// its verdict passes through unchanged.
func (h *FloorHandler) OccupantCommand(c echo.Context) error {
	st, err := staff(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	typ := model.OccupantType(c.Param("type"))
	if typ != model.OccupantReservation && typ != model.OccupantWaitlist {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be reservation or waitlist"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid occupant id"})
	}
	action := c.Param("action")
	date, err := parseDate(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx := c.Request().Context()

	var run func(context.Context, model.OccupantType, uint64) error
	var command string
	switch action {
	case "arrive":
		run, command = h.API.Arrive, "arrive"
	case "finish":
		run, command = h.API.Finish, "finish"
	case "no-show":
		run, command = h.API.NoShow, "no_show"
	case "cancel":
		run, command = h.API.Cancel, "cancel"
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown action"})
	}

	if err := run(ctx, typ, id); err != nil {
		return c.JSON(upstreamStatus(err), echo.Map{"error": err.Error()})
	}

	resolved, derr := h.Loader.ResolveDate(ctx, date)
	if derr != nil {
		resolved = date
	}
	h.publishCommand(c, queue.FloorCommandEvent{
		EventID:      uuid.NewString(),
		Command:      command,
		OccupantType: string(typ),
		OccupantID:   id,
		FloorDate:    resolved,
		Staff:        st.Subject,
		IssuedAt:     time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, echo.Map{"result": "ok"})
}
