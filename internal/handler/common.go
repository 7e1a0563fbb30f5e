package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tableside/floor-manager/internal/client"
	"github.com/tableside/floor-manager/internal/floor"
	"github.com/tableside/floor-manager/internal/geometry"
	"github.com/tableside/floor-manager/internal/middleware"
	"github.com/tableside/floor-manager/internal/model"
	"github.com/tableside/floor-manager/internal/queue"
	"github.com/tableside/floor-manager/internal/wizard"
)

// Upstream is the full surface of the reservations API the handlers
// need: the floor read operations plus the six allocation commands.
type Upstream interface {
	floor.API
	CreateAllocations(ctx context.Context, req client.CreateAllocationsRequest, idempotencyKey string) error
	Arrive(ctx context.Context, occupantType model.OccupantType, occupantID uint64) error
	Finish(ctx context.Context, occupantType model.OccupantType, occupantID uint64) error
	NoShow(ctx context.Context, occupantType model.OccupantType, occupantID uint64) error
	Cancel(ctx context.Context, occupantType model.OccupantType, occupantID uint64) error
}

// Publisher forwards a floor command event to the message broker.  A
// nil publisher disables event publishing entirely.
type Publisher func(ctx context.Context, ev queue.FloorCommandEvent) error

// FloorHandler bundles the collaborators needed to serve the staff
// floor: the upstream API, the snapshot loader, and the per-staff
// wizard session store.
type FloorHandler struct {
	API         Upstream
	Loader      *floor.Loader
	Sessions    wizard.Store
	Publish     Publisher
	DefaultSize geometry.SizeMode
}

// NewFloorHandler constructs a FloorHandler and panics if a required
// dependency is nil.  Publish may be nil when no broker is configured.
func NewFloorHandler(api Upstream, sessions wizard.Store, publish Publisher, defaultSize geometry.SizeMode) *FloorHandler {
	if api == nil || sessions == nil {
		panic("nil dependency passed to NewFloorHandler")
	}
	if defaultSize == "" {
		defaultSize = geometry.SizeAuto
	}
	return &FloorHandler{
		API:         api,
		Loader:      floor.NewLoader(api),
		Sessions:    sessions,
		Publish:     publish,
		DefaultSize: defaultSize,
	}
}

// staff extracts the StaffContext established by the auth middleware.
func staff(c echo.Context) (model.StaffContext, error) {
	s, ok := middleware.StaffFrom(c)
	if !ok || s.Subject == "" {
		return model.StaffContext{}, errors.New("no staff context on request")
	}
	return s, nil
}

// parseSeatID reads the :id path parameter.
func parseSeatID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid seat id")
	}
	return id, nil
}

// parseDate validates an optional date query parameter.  An empty
// value is allowed and means "today in the restaurant's time zone";
// anything else must be a plain YYYY-MM-DD string.
func parseDate(c echo.Context) (string, error) {
	date := c.QueryParam("date")
	if date == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", errors.New("date must be YYYY-MM-DD")
	}
	return date, nil
}

// today returns the current date on the server clock.
func today() string {
	return time.Now().Format("2006-01-02")
}

// parseSizeMode reads the optional size query parameter.
func (h *FloorHandler) parseSizeMode(c echo.Context) geometry.SizeMode {
	switch geometry.SizeMode(c.QueryParam("size")) {
	case geometry.SizeSmall:
		return geometry.SizeSmall
	case geometry.SizeMedium:
		return geometry.SizeMedium
	case geometry.SizeLarge:
		return geometry.SizeLarge
	case geometry.SizeAuto:
		return geometry.SizeAuto
	}
	return h.DefaultSize
}

// upstreamStatus maps a command failure onto the response code: the
// upstream's own verdict (e.g. 409 for a seat that is no longer free)
// passes through, transport errors become 502.
func upstreamStatus(err error) int {
	var ue *client.UpstreamError
	if errors.As(err, &ue) && ue.Status >= 400 && ue.Status < 500 {
		return ue.Status
	}
	return http.StatusBadGateway
}

// publishCommand emits a floor command event.  Publish failures are
// logged inside the publisher and never fail the staff action: the
// command already succeeded upstream.
func (h *FloorHandler) publishCommand(c echo.Context, ev queue.FloorCommandEvent) {
	if h.Publish == nil {
		return
	}
	_ = h.Publish(c.Request().Context(), ev)
}
