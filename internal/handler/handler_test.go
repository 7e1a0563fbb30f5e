package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tableside/floor-manager/internal/client"
	"github.com/tableside/floor-manager/internal/geometry"
	"github.com/tableside/floor-manager/internal/model"
	"github.com/tableside/floor-manager/internal/queue"
	"github.com/tableside/floor-manager/internal/wizard"
)

// fakeUpstream implements Upstream in memory and records the commands
// it receives.
type fakeUpstream struct {
	restaurant   client.Restaurant
	layout       model.Layout
	reservations []model.Reservation
	waitlist     []model.WaitlistEntry
	allocations  []model.SeatAllocation

	createErr   error
	createCalls []createCall
	commands    []string
	commandErr  error
}

type createCall struct {
	req client.CreateAllocationsRequest
	key string
}

func (f *fakeUpstream) FetchRestaurant(ctx context.Context) (*client.Restaurant, error) {
	r := f.restaurant
	return &r, nil
}

func (f *fakeUpstream) FetchLayout(ctx context.Context, id uint64) (*model.Layout, error) {
	l := f.layout
	return &l, nil
}

func (f *fakeUpstream) ListReservations(ctx context.Context, date string) ([]model.Reservation, error) {
	return f.reservations, nil
}

func (f *fakeUpstream) ListWaitlist(ctx context.Context, date string) ([]model.WaitlistEntry, error) {
	return f.waitlist, nil
}

func (f *fakeUpstream) ListAllocations(ctx context.Context, date string) ([]model.SeatAllocation, error) {
	return f.allocations, nil
}

func (f *fakeUpstream) CreateAllocations(ctx context.Context, req client.CreateAllocationsRequest, key string) error {
	f.createCalls = append(f.createCalls, createCall{req: req, key: key})
	return f.createErr
}

func (f *fakeUpstream) occupantCommand(verb string, typ model.OccupantType, id uint64) error {
	f.commands = append(f.commands, fmt.Sprintf("%s:%s:%d", verb, typ, id))
	return f.commandErr
}

func (f *fakeUpstream) Arrive(ctx context.Context, typ model.OccupantType, id uint64) error {
	return f.occupantCommand("arrive", typ, id)
}

func (f *fakeUpstream) Finish(ctx context.Context, typ model.OccupantType, id uint64) error {
	return f.occupantCommand("finish", typ, id)
}

func (f *fakeUpstream) NoShow(ctx context.Context, typ model.OccupantType, id uint64) error {
	return f.occupantCommand("no_show", typ, id)
}

func (f *fakeUpstream) Cancel(ctx context.Context, typ model.OccupantType, id uint64) error {
	return f.occupantCommand("cancel", typ, id)
}

// newFakeUpstream seeds a small floor: four seats, seat 2 reserved,
// seat 3 seated, seats 1 and 4 free.
func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		restaurant: client.Restaurant{ID: 1, Name: "Harbor Table", ActiveLayoutID: 7, TimeZone: "UTC"},
		layout: model.Layout{
			ID:   7,
			Name: "Main",
			Sections: []model.Section{
				{
					ID: 1, LayoutID: 7, Name: "Dining", OffsetX: 100, OffsetY: 100,
					Seats: []model.Seat{
						{ID: 1, SectionID: 1, X: 0, Y: 0},
						{ID: 2, SectionID: 1, X: 120, Y: 0},
						{ID: 3, SectionID: 1, X: 0, Y: 120},
						{ID: 4, SectionID: 1, X: 120, Y: 120},
					},
				},
			},
		},
		reservations: []model.Reservation{
			{ID: 21, GuestName: "Maria Lopez", PartySize: 2, Status: model.ReservationBooked},
		},
		waitlist: []model.WaitlistEntry{
			{ID: 31, GuestName: "Sam", PartySize: 1, Status: model.WaitlistWaiting},
		},
		allocations: []model.SeatAllocation{
			{ID: 101, SeatID: 2, OccupantType: model.OccupantReservation, OccupantID: 22, GuestName: "Kim", PartySize: 1, OccupantStatus: model.ReservationReserved},
			{ID: 102, SeatID: 3, OccupantType: model.OccupantWaitlist, OccupantID: 32, GuestName: "Lee", PartySize: 1, OccupantStatus: model.WaitlistSeated},
		},
	}
}

type testEnv struct {
	e        *echo.Echo
	h        *FloorHandler
	upstream *fakeUpstream
	events   []queue.FloorCommandEvent
}

func newTestEnv() *testEnv {
	env := &testEnv{e: echo.New(), upstream: newFakeUpstream()}
	publish := func(ctx context.Context, ev queue.FloorCommandEvent) error {
		env.events = append(env.events, ev)
		return nil
	}
	env.h = NewFloorHandler(env.upstream, wizard.NewMemoryStore(), publish, geometry.SizeAuto)
	return env
}

// call builds an authenticated request context and invokes the handler.
func (env *testEnv) call(t *testing.T, method, target, body string, fn echo.HandlerFunc, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	c.Set("staff", model.StaffContext{Subject: "staff-1", Name: "Dana", Role: "HOST"})
	if len(params) >= 2 {
		names := make([]string, 0, len(params)/2)
		values := make([]string, 0, len(params)/2)
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if err := fn(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestSeatClickIdleOpensDialog(t *testing.T) {
	env := newTestEnv()

	rec := env.call(t, http.MethodPost, "/v1/floor/seats/1/click", "", env.h.SeatClick, "id", "1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["result"] != "dialog" {
		t.Fatalf("expected dialog result, got %v", body["result"])
	}
	if body["status"] != "free" {
		t.Fatalf("expected free status, got %v", body["status"])
	}

	rec = env.call(t, http.MethodPost, "/v1/floor/seats/2/click", "", env.h.SeatClick, "id", "2")
	body = decodeBody(t, rec)
	if body["status"] != "reserved" {
		t.Fatalf("expected reserved status, got %v", body["status"])
	}
	actions := fmt.Sprint(body["actions"])
	if !strings.Contains(actions, "arrive") || !strings.Contains(actions, "no_show") || !strings.Contains(actions, "cancel") {
		t.Fatalf("reserved dialog should offer arrive/no_show/cancel, got %v", actions)
	}

	rec = env.call(t, http.MethodPost, "/v1/floor/seats/3/click", "", env.h.SeatClick, "id", "3")
	body = decodeBody(t, rec)
	if body["status"] != "occupied" {
		t.Fatalf("expected occupied status, got %v", body["status"])
	}
	if actions := fmt.Sprint(body["actions"]); !strings.Contains(actions, "finish") {
		t.Fatalf("occupied dialog should offer finish, got %v", actions)
	}
}

func TestWizardPickerFlowSubmits(t *testing.T) {
	env := newTestEnv()

	rec := env.call(t, http.MethodPost, "/v1/wizard", "", env.h.OpenWizard)
	if rec.Code != http.StatusOK {
		t.Fatalf("open wizard: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.call(t, http.MethodPost, "/v1/wizard/occupant", `{"type":"reservation","id":21}`, env.h.ChooseOccupant)
	if rec.Code != http.StatusOK {
		t.Fatalf("choose occupant: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Party of two: select seats 1 and 4.
	for _, id := range []string{"1", "4"} {
		rec = env.call(t, http.MethodPost, "/v1/floor/seats/"+id+"/click", "", env.h.SeatClick, "id", id)
		if rec.Code != http.StatusOK {
			t.Fatalf("toggle seat %s: expected 200, got %d: %s", id, rec.Code, rec.Body.String())
		}
		if body := decodeBody(t, rec); body["result"] != "toggled" {
			t.Fatalf("active wizard click should toggle, got %v", body["result"])
		}
	}

	rec = env.call(t, http.MethodPost, "/v1/wizard/submit", `{"action":"seat_now"}`, env.h.SubmitWizard)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(env.upstream.createCalls) != 1 {
		t.Fatalf("expected one create call, got %d", len(env.upstream.createCalls))
	}
	call := env.upstream.createCalls[0]
	if call.req.Command != client.CommandSeatNow {
		t.Fatalf("expected seat_now command, got %s", call.req.Command)
	}
	if len(call.req.SeatIDs) != 2 || call.req.SeatIDs[0] != 1 || call.req.SeatIDs[1] != 4 {
		t.Fatalf("unexpected seat ids: %v", call.req.SeatIDs)
	}
	if call.key == "" {
		t.Fatal("expected a non-empty idempotency key")
	}
	if len(env.events) != 1 || env.events[0].Command != "seat_now" {
		t.Fatalf("expected one seat_now event, got %v", env.events)
	}

	// The session is destroyed on success.
	sess, err := env.h.Sessions.Load(context.Background(), "staff-1")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess.State != wizard.StateIdle || len(sess.Selected) != 0 {
		t.Fatalf("session should be reset after success, got %+v", sess)
	}
}

func TestWizardSubmitRejectsCountMismatch(t *testing.T) {
	env := newTestEnv()

	env.call(t, http.MethodPost, "/v1/wizard", "", env.h.OpenWizard)
	env.call(t, http.MethodPost, "/v1/wizard/occupant", `{"type":"reservation","id":21}`, env.h.ChooseOccupant)
	env.call(t, http.MethodPost, "/v1/floor/seats/1/click", "", env.h.SeatClick, "id", "1")

	rec := env.call(t, http.MethodPost, "/v1/wizard/submit", `{"action":"seat_now"}`, env.h.SubmitWizard)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "exactly 2 seat(s)") {
		t.Fatalf("expected seat-count message, got %s", rec.Body.String())
	}
	if len(env.upstream.createCalls) != 0 {
		t.Fatal("invalid submission must not reach the upstream API")
	}
}

func TestWizardSubmitUpstreamConflictKeepsSession(t *testing.T) {
	env := newTestEnv()
	env.upstream.createErr = &client.UpstreamError{Status: http.StatusConflict, Message: "seat 4 is no longer free"}

	env.call(t, http.MethodPost, "/v1/wizard", "", env.h.OpenWizard)
	env.call(t, http.MethodPost, "/v1/wizard/occupant", `{"type":"reservation","id":21}`, env.h.ChooseOccupant)
	env.call(t, http.MethodPost, "/v1/floor/seats/1/click", "", env.h.SeatClick, "id", "1")
	env.call(t, http.MethodPost, "/v1/floor/seats/4/click", "", env.h.SeatClick, "id", "4")

	rec := env.call(t, http.MethodPost, "/v1/wizard/submit", `{"action":"seat_now"}`, env.h.SubmitWizard)
	if rec.Code != http.StatusConflict {
		t.Fatalf("upstream 409 should pass through, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(env.events) != 0 {
		t.Fatal("a failed command must not publish an event")
	}

	sess, err := env.h.Sessions.Load(context.Background(), "staff-1")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess.State != wizard.StateActive {
		t.Fatalf("session should survive a failed submit, got state %s", sess.State)
	}
	if sess.InFlight {
		t.Fatal("in-flight flag should clear after the attempt")
	}
	if len(sess.Selected) != 2 {
		t.Fatalf("selection should be preserved, got %v", sess.Selected)
	}
}

func TestWizardReserveRejectedForWaitlist(t *testing.T) {
	env := newTestEnv()

	env.call(t, http.MethodPost, "/v1/wizard", "", env.h.OpenWizard)
	env.call(t, http.MethodPost, "/v1/wizard/occupant", `{"type":"waitlist","id":31}`, env.h.ChooseOccupant)
	env.call(t, http.MethodPost, "/v1/floor/seats/1/click", "", env.h.SeatClick, "id", "1")

	rec := env.call(t, http.MethodPost, "/v1/wizard/submit", `{"action":"reserve"}`, env.h.SubmitWizard)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(env.upstream.createCalls) != 0 {
		t.Fatal("reserve for a waitlist party must not reach the upstream API")
	}
}

func TestSeedWizardRejectsOccupiedSeat(t *testing.T) {
	env := newTestEnv()

	rec := env.call(t, http.MethodPost, "/v1/wizard/seed", `{"seat_id":3}`, env.h.SeedWizard)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for an occupied seed seat, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.call(t, http.MethodPost, "/v1/wizard/seed", `{"seat_id":1}`, env.h.SeedWizard)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a free seed seat, got %d: %s", rec.Code, rec.Body.String())
	}
	sess, err := env.h.Sessions.Load(context.Background(), "staff-1")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess.State != wizard.StateActive || !sess.PickerOpen || sess.SeedSeatID != 1 {
		t.Fatalf("seeded session malformed: %+v", sess)
	}
}

func TestWizardCancelClearsSession(t *testing.T) {
	env := newTestEnv()

	env.call(t, http.MethodPost, "/v1/wizard/seed", `{"seat_id":1}`, env.h.SeedWizard)
	rec := env.call(t, http.MethodPost, "/v1/wizard/cancel", "", env.h.CancelWizard)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	sess, err := env.h.Sessions.Load(context.Background(), "staff-1")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if sess != nil {
		t.Fatalf("cancel should clear the stored session, got %+v", sess)
	}
}

func TestOccupantCommandDispatch(t *testing.T) {
	env := newTestEnv()

	rec := env.call(t, http.MethodPost, "/v1/occupants/reservation/22/arrive", "", env.h.OccupantCommand,
		"type", "reservation", "id", "22", "action", "arrive")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(env.upstream.commands) != 1 || env.upstream.commands[0] != "arrive:reservation:22" {
		t.Fatalf("unexpected upstream commands: %v", env.upstream.commands)
	}
	if len(env.events) != 1 || env.events[0].Command != "arrive" || env.events[0].OccupantID != 22 {
		t.Fatalf("expected one arrive event, got %v", env.events)
	}

	rec = env.call(t, http.MethodPost, "/v1/occupants/reservation/22/teleport", "", env.h.OccupantCommand,
		"type", "reservation", "id", "22", "action", "teleport")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown action should be rejected, got %d", rec.Code)
	}
}

func TestOccupantCommandUpstreamVerdictPassesThrough(t *testing.T) {
	env := newTestEnv()
	env.upstream.commandErr = &client.UpstreamError{Status: http.StatusConflict, Message: "party is already seated"}

	rec := env.call(t, http.MethodPost, "/v1/occupants/waitlist/32/finish", "", env.h.OccupantCommand,
		"type", "waitlist", "id", "32", "action", "finish")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 passthrough, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(env.events) != 0 {
		t.Fatal("a rejected command must not publish an event")
	}
}

func TestSetZoomClamps(t *testing.T) {
	env := newTestEnv()

	rec := env.call(t, http.MethodPost, "/v1/wizard/zoom", `{"zoom":9.9}`, env.h.SetZoom)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["zoom"] != 5.0 {
		t.Fatalf("zoom should clamp to 5.0, got %v", body["zoom"])
	}
}

func TestGetFloorUsesSessionZoom(t *testing.T) {
	env := newTestEnv()
	env.call(t, http.MethodPost, "/v1/wizard/zoom", `{"zoom":2.0}`, env.h.SetZoom)

	rec := env.call(t, http.MethodGet, "/v1/floor", "", env.h.GetFloor)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	view, ok := body["floor"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing floor view in %v", body)
	}
	if view["zoom"] != 2.0 {
		t.Fatalf("expected zoom 2.0, got %v", view["zoom"])
	}
	if view["date"] != time.Now().UTC().Format("2006-01-02") {
		t.Fatalf("expected today's date, got %v", view["date"])
	}
}

func TestAuditListWithoutStore(t *testing.T) {
	env := newTestEnv()
	a := NewAuditHandler(nil)

	rec := env.call(t, http.MethodGet, "/v1/audit", "", a.List)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a database, got %d", rec.Code)
	}
}
