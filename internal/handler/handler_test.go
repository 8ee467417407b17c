package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinshop/vitrin/internal/clock"
	"github.com/vitrinshop/vitrin/internal/model"
	"github.com/vitrinshop/vitrin/internal/repository"
	"github.com/vitrinshop/vitrin/internal/service"
)

// Minimal in-memory stores, just enough surface for the endpoints under
// test.  The runner hands the callback a nil transaction handle; the
// stores ignore it.

type stubRunner struct{}

func (stubRunner) RunInTransaction(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type stubSellers struct{ seller *model.Seller }

func (s *stubSellers) GetByID(_ context.Context, id uint64) (*model.Seller, error) {
	if s.seller == nil || s.seller.ID != id {
		return nil, repository.ErrSellerNotFound
	}
	cp := *s.seller
	return &cp, nil
}
func (s *stubSellers) GetTx(ctx context.Context, _ *sql.Tx, id uint64) (*model.Seller, error) {
	return s.GetByID(ctx, id)
}
func (s *stubSellers) UpdatePolicy(context.Context, uint64, int, int) error { return nil }

func (s *stubSellers) GetByUsername(_ context.Context, username string) (*model.Seller, error) {
	if s.seller != nil && s.seller.Username == username {
		return s.seller, nil
	}
	return nil, repository.ErrSellerNotFound
}

type stubItems struct{ item *model.Item }

func (s *stubItems) Get(_ context.Context, id uint64) (*model.Item, error) {
	if s.item == nil || s.item.ID != id {
		return nil, repository.ErrItemNotFound
	}
	cp := *s.item
	return &cp, nil
}
func (s *stubItems) GetTx(ctx context.Context, _ *sql.Tx, id uint64) (*model.Item, error) {
	return s.Get(ctx, id)
}
func (s *stubItems) ReserveStockTx(context.Context, *sql.Tx, uint64, int) error { return nil }
func (s *stubItems) RestoreStockTx(context.Context, *sql.Tx, uint64, int) error { return nil }

func (s *stubItems) ListActiveBySeller(_ context.Context, sellerID uint64) ([]model.Item, error) {
	if s.item != nil && s.item.SellerID == sellerID && s.item.IsActive {
		return []model.Item{*s.item}, nil
	}
	return []model.Item{}, nil
}

type stubBookings struct {
	existing []model.Booking
	created  *model.Booking
}

func (s *stubBookings) OverlapExistsTx(_ context.Context, _ *sql.Tx, resourceID uint64, start, end time.Time) (bool, error) {
	for i := range s.existing {
		b := &s.existing[i]
		if b.ResourceID == resourceID && model.BookingHoldsSlot(b.Status) && b.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}
func (s *stubBookings) CreateTx(_ context.Context, _ *sql.Tx, b *model.Booking) error {
	cp := *b
	s.created = &cp
	return nil
}
func (s *stubBookings) GetByID(_ context.Context, id string) (*model.Booking, error) {
	if s.created != nil && s.created.ID == id {
		cp := *s.created
		return &cp, nil
	}
	return nil, repository.ErrBookingNotFound
}
func (s *stubBookings) GetTx(ctx context.Context, _ *sql.Tx, id string) (*model.Booking, error) {
	return s.GetByID(ctx, id)
}
func (s *stubBookings) UpdateStatusTx(context.Context, *sql.Tx, string, string) error { return nil }
func (s *stubBookings) ActiveByResourceBetween(_ context.Context, resourceID uint64, from, to time.Time) ([]model.Booking, error) {
	out := make([]model.Booking, 0)
	for _, b := range s.existing {
		if b.ResourceID == resourceID && model.BookingHoldsSlot(b.Status) && b.Overlaps(from, to) {
			out = append(out, b)
		}
	}
	return out, nil
}
func (s *stubBookings) ListByResourceBetween(_ context.Context, resourceID uint64, from, to time.Time) ([]model.Booking, error) {
	return s.ActiveByResourceBetween(context.Background(), resourceID, from, to)
}

type stubRules struct{ rules []model.AvailabilityRule }

func (s *stubRules) ActiveByResourceWeekday(_ context.Context, resourceID uint64, weekday int) ([]model.AvailabilityRule, error) {
	out := make([]model.AvailabilityRule, 0)
	for _, r := range s.rules {
		if r.IsActive && r.ResourceID == resourceID && r.Weekday == weekday {
			out = append(out, r)
		}
	}
	return out, nil
}
func (s *stubRules) ActiveByResource(context.Context, uint64) ([]model.AvailabilityRule, error) {
	return s.rules, nil
}
func (s *stubRules) ActiveOpenRuleTx(context.Context, *sql.Tx, uint64, int) (*model.AvailabilityRule, error) {
	return nil, repository.ErrRuleNotFound
}
func (s *stubRules) DeactivateDayTx(context.Context, *sql.Tx, uint64, int) error { return nil }
func (s *stubRules) InsertTx(context.Context, *sql.Tx, *model.AvailabilityRule) error {
	return nil
}

type env struct {
	e        *echo.Echo
	bookings *stubBookings
	now      time.Time
}

// 2025-07-05 is a Saturday, weekday 0.
func newEnv(t *testing.T) *env {
	t.Helper()
	cs, err := clock.New("UTC")
	require.NoError(t, err)
	now := time.Date(2025, time.July, 1, 8, 0, 0, 0, time.UTC)
	nowFn := func() time.Time { return now }

	sellers := &stubSellers{seller: &model.Seller{
		ID: 1, Username: "sara", DisplayName: "Sara's Studio", CancellationWindowHours: 24,
	}}
	items := &stubItems{item: &model.Item{
		ID: 10, SellerID: 1, Type: model.ItemTypeService, Name: "Consultation",
		UnitPrice: decimal.RequireFromString("150.00"), DurationMinutes: 30, IsActive: true,
	}}
	bookings := &stubBookings{}
	rules := &stubRules{rules: []model.AvailabilityRule{{
		ID: 1, ResourceID: 1, Weekday: model.WeekdaySaturday,
		StartLocal: "09:00", EndLocal: "11:00", SlotDurationMinutes: 30, IsActive: true,
	}}}

	slotSvc := service.NewSlotService(cs, sellers, items, rules, bookings, nowFn, zerolog.Nop())
	ledger := service.NewBookingLedger(stubRunner{}, items, sellers, bookings, service.NopNotifier{}, nowFn, zerolog.Nop())

	e := echo.New()
	sh := NewSlotHandler(slotSvc, zerolog.Nop())
	bh := NewBookingHandler(ledger, zerolog.Nop())
	ch := NewCatalogHandler(service.NewCatalogService(sellers, items), zerolog.Nop())
	e.GET("/v1/sellers/:username", ch.Storefront)
	e.GET("/v1/services/:id/slots", sh.ListSlots)
	e.POST("/v1/bookings", bh.Create)
	e.GET("/healthz", Health)

	return &env{e: e, bookings: bookings, now: now}
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	env := newEnv(t)
	rec := doJSON(env.e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestListSlotsEndpoint(t *testing.T) {
	env := newEnv(t)

	rec := doJSON(env.e, http.MethodGet, "/v1/services/10/slots?date=2025-07-05", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Date  string `json:"date"`
		Slots []struct {
			DisplayStart string `json:"display_start"`
			DisplayEnd   string `json:"display_end"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Slots, 4)
	assert.Equal(t, "09:00", body.Slots[0].DisplayStart)
	assert.Equal(t, "11:00", body.Slots[3].DisplayEnd)
}

func TestStorefrontEndpoint(t *testing.T) {
	env := newEnv(t)

	rec := doJSON(env.e, http.MethodGet, "/v1/sellers/sara", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Seller struct {
			Username    string `json:"username"`
			DisplayName string `json:"display_name"`
		} `json:"seller"`
		Items []struct {
			Name            string `json:"name"`
			Type            string `json:"type"`
			UnitPrice       string `json:"unit_price"`
			DurationMinutes int    `json:"duration_minutes"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Sara's Studio", body.Seller.DisplayName)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Consultation", body.Items[0].Name)
	assert.Equal(t, "150.00", body.Items[0].UnitPrice)
	assert.Equal(t, 30, body.Items[0].DurationMinutes)

	rec = doJSON(env.e, http.MethodGet, "/v1/sellers/nobody", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSlotsEndpointErrors(t *testing.T) {
	env := newEnv(t)

	rec := doJSON(env.e, http.MethodGet, "/v1/services/10/slots", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "missing date")

	rec = doJSON(env.e, http.MethodGet, "/v1/services/10/slots?date=garbage", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "malformed date")

	rec = doJSON(env.e, http.MethodGet, "/v1/services/99/slots?date=2025-07-05", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "unknown service")

	rec = doJSON(env.e, http.MethodGet, "/v1/services/abc/slots?date=2025-07-05", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "non-numeric id")
}

func TestCreateBookingEndpoint(t *testing.T) {
	env := newEnv(t)

	body := `{"service_id":10,"starts_at":"2025-07-05T09:00:00Z","customer":{"name":"Omid","phone":"09121234567"}}`
	rec := doJSON(env.e, http.MethodPost, "/v1/bookings", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp bookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "2025-07-05T09:30:00Z", resp.EndsAt)
	assert.Equal(t, 24, resp.CancellationWindowHours)
	require.NotNil(t, env.bookings.created)
}

func TestCreateBookingEndpointErrors(t *testing.T) {
	env := newEnv(t)

	// Taken slot answers 409.
	env.bookings.existing = []model.Booking{{
		ID: "held", ResourceID: 1, Status: model.BookingStatusConfirmed,
		StartsAt: time.Date(2025, time.July, 5, 9, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2025, time.July, 5, 9, 30, 0, 0, time.UTC),
	}}
	body := `{"service_id":10,"starts_at":"2025-07-05T09:00:00Z","customer":{"name":"Omid","phone":"09121234567"}}`
	rec := doJSON(env.e, http.MethodPost, "/v1/bookings", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Bad customer input answers 422 with the offending field.
	body = `{"service_id":10,"starts_at":"2025-07-05T10:00:00Z","customer":{"name":"Omid","phone":"nope"}}`
	rec = doJSON(env.e, http.MethodPost, "/v1/bookings", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var errBody struct {
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, "phone", errBody.Field)

	// Start in the past answers 422; malformed timestamp likewise.
	body = `{"service_id":10,"starts_at":"2020-01-01T09:00:00Z","customer":{"name":"Omid","phone":"09121234567"}}`
	rec = doJSON(env.e, http.MethodPost, "/v1/bookings", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body = `{"service_id":10,"starts_at":"tomorrow","customer":{"name":"Omid","phone":"09121234567"}}`
	rec = doJSON(env.e, http.MethodPost, "/v1/bookings", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body = `{"starts_at":"2025-07-05T09:00:00Z","customer":{"name":"Omid","phone":"09121234567"}}`
	rec = doJSON(env.e, http.MethodPost, "/v1/bookings", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "missing service_id")
}
