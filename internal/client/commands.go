package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tableside/floor-manager/internal/model"
)

// Command names the six state-transition operations an occupant/seat
// pair may undergo.  Each maps 1:1 to an upstream operation; the
// floor service only selects the right one and supplies well-formed
// arguments.
type Command string

const (
	CommandSeatNow Command = "seat_now"
	CommandReserve Command = "reserve"
	CommandArrive  Command = "arrive"
	CommandFinish  Command = "finish"
	CommandNoShow  Command = "no_show"
	CommandCancel  Command = "cancel"
)

// CreateAllocationsRequest is the batch creation payload for the
// seat-now and reserve commands: one occupant, one or more seats,
// one time window.
type CreateAllocationsRequest struct {
	Command      Command            `json:"command"`
	OccupantType model.OccupantType `json:"occupant_type"`
	OccupantID   uint64             `json:"occupant_id"`
	SeatIDs      []uint64           `json:"seat_ids"`
	StartTime    time.Time          `json:"start_time"`
	EndTime      time.Time          `json:"end_time"`
}

// CreateAllocations issues the seat-now or reserve command.  The
// idempotency key deduplicates accidental double submissions server
// side; the upstream API is the sole authority on seat availability,
// a conflicting creation comes back as an UpstreamError.
func (c *Client) CreateAllocations(ctx context.Context, req CreateAllocationsRequest, idempotencyKey string) error {
	if req.Command != CommandSeatNow && req.Command != CommandReserve {
		return fmt.Errorf("command %q cannot create allocations", req.Command)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/seat-allocations", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	}
	return c.do(httpReq, nil)
}

// occupantCommand posts a bodyless lifecycle command for an occupant.
func (c *Client) occupantCommand(ctx context.Context, verb string, occupantType model.OccupantType, occupantID uint64) error {
	u := fmt.Sprintf("%s/v1/occupants/%s/%d/%s", c.baseURL, occupantType, occupantID, verb)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Arrive flips a reserved occupant (and its allocations) to seated.
func (c *Client) Arrive(ctx context.Context, occupantType model.OccupantType, occupantID uint64) error {
	return c.occupantCommand(ctx, "arrive", occupantType, occupantID)
}

// Finish releases a seated occupant's allocations, freeing the seats.
func (c *Client) Finish(ctx context.Context, occupantType model.OccupantType, occupantID uint64) error {
	return c.occupantCommand(ctx, "finish", occupantType, occupantID)
}

// NoShow releases a reserved occupant's allocations and marks the
// occupant no_show.
func (c *Client) NoShow(ctx context.Context, occupantType model.OccupantType, occupantID uint64) error {
	return c.occupantCommand(ctx, "no-show", occupantType, occupantID)
}

// Cancel releases any allocations and marks the occupant canceled.
func (c *Client) Cancel(ctx context.Context, occupantType model.OccupantType, occupantID uint64) error {
	return c.occupantCommand(ctx, "cancel", occupantType, occupantID)
}
