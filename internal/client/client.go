// Package client is the HTTP client for the upstream reservations
// API, the collaborator that owns all durable state and enforces the
// business rules.  The floor service never mutates local copies of
// upstream data; it issues commands and re-fetches.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tableside/floor-manager/internal/model"
)

// ErrBadPayload marks a response body that could not be decoded.
// Callers treat it as "no data" for the affected view rather than a
// fatal condition.
var ErrBadPayload = errors.New("unparsable upstream response")

// UpstreamError is a non-2xx response from the reservations API,
// e.g. a seat that stopped being free between the staff member's
// click and the command.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream API returned %d", e.Status)
	}
	return fmt.Sprintf("upstream API returned %d: %s", e.Status, e.Message)
}

// Restaurant is the venue record: it points at the active layout and
// carries the IANA time zone used for all "today" comparisons.
type Restaurant struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	ActiveLayoutID uint64 `json:"active_layout_id"`
	TimeZone       string `json:"time_zone"`
}

// Location resolves the restaurant's configured time zone, falling
// back to UTC when it is missing or unknown.
func (r *Restaurant) Location() *time.Location {
	if r == nil || r.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Client talks JSON over HTTP to the reservations API.  A bearer
// token may be configured for service-to-service auth; it is sent on
// every request.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

// New returns a client for the given base URL.  A nil http.Client
// uses a default with a conservative timeout.
func New(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, token: token, hc: hc}
}

// get issues a GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("upstream body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &payload)
		return &UpstreamError{Status: resp.StatusCode, Message: payload.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

// FetchRestaurant loads the venue record.
func (c *Client) FetchRestaurant(ctx context.Context) (*Restaurant, error) {
	var out struct {
		Item Restaurant `json:"item"`
	}
	if err := c.get(ctx, "/v1/restaurant", nil, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

// ListLayouts returns all floor plans known upstream.
func (c *Client) ListLayouts(ctx context.Context) ([]model.Layout, error) {
	var out struct {
		Items []model.Layout `json:"items"`
	}
	if err := c.get(ctx, "/v1/layouts", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// FetchLayout loads one layout with its sections and seats.
func (c *Client) FetchLayout(ctx context.Context, id uint64) (*model.Layout, error) {
	var out struct {
		Item model.Layout `json:"item"`
	}
	if err := c.get(ctx, fmt.Sprintf("/v1/layouts/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

// dateQuery builds the plain YYYY-MM-DD date parameter.  The caller
// must already have computed the date in the restaurant's time zone.
func dateQuery(date string) url.Values {
	q := url.Values{}
	q.Set("date", date)
	return q
}

// ListReservations returns reservations scheduled for the date.
func (c *Client) ListReservations(ctx context.Context, date string) ([]model.Reservation, error) {
	var out struct {
		Items []model.Reservation `json:"items"`
	}
	if err := c.get(ctx, "/v1/reservations", dateQuery(date), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ListWaitlist returns waitlist entries checked in on the date.
func (c *Client) ListWaitlist(ctx context.Context, date string) ([]model.WaitlistEntry, error) {
	var out struct {
		Items []model.WaitlistEntry `json:"items"`
	}
	if err := c.get(ctx, "/v1/waitlist", dateQuery(date), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// ListAllocations returns seat allocations overlapping the date.
func (c *Client) ListAllocations(ctx context.Context, date string) ([]model.SeatAllocation, error) {
	var out struct {
		Items []model.SeatAllocation `json:"items"`
	}
	if err := c.get(ctx, "/v1/seat-allocations", dateQuery(date), &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}
