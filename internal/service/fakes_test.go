package service

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/vitrinshop/vitrin/internal/model"
	"github.com/vitrinshop/vitrin/internal/repository"
)

// The fakes below satisfy the store interfaces with in-memory maps.  The
// fake runner hands fn a nil *sql.Tx; the fakes ignore the handle, so the
// ledgers' transactional call sequences run unchanged.

type fakeRunner struct{}

func (fakeRunner) RunInTransaction(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type fakeSellerStore struct {
	sellers map[uint64]*model.Seller
}

func (f *fakeSellerStore) GetByID(_ context.Context, id uint64) (*model.Seller, error) {
	s, ok := f.sellers[id]
	if !ok {
		return nil, repository.ErrSellerNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSellerStore) GetTx(ctx context.Context, _ *sql.Tx, id uint64) (*model.Seller, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeSellerStore) UpdatePolicy(_ context.Context, id uint64, lead, window int) error {
	s, ok := f.sellers[id]
	if !ok {
		return repository.ErrSellerNotFound
	}
	s.LeadTimeHours = lead
	s.CancellationWindowHours = window
	return nil
}

type fakeItemStore struct {
	items map[uint64]*model.Item
}

func (f *fakeItemStore) Get(_ context.Context, id uint64) (*model.Item, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	cp := *it
	if it.StockQuantity != nil {
		n := *it.StockQuantity
		cp.StockQuantity = &n
	}
	return &cp, nil
}

func (f *fakeItemStore) GetTx(ctx context.Context, _ *sql.Tx, id uint64) (*model.Item, error) {
	return f.Get(ctx, id)
}

// ReserveStockTx mirrors the repository's conditional UPDATE: a missing
// row, a NULL stock column or an insufficient count all match zero rows
// and surface ErrNegativeStock.
func (f *fakeItemStore) ReserveStockTx(_ context.Context, _ *sql.Tx, id uint64, qty int) error {
	it, ok := f.items[id]
	if !ok || it.StockQuantity == nil || *it.StockQuantity < qty {
		return model.ErrNegativeStock
	}
	*it.StockQuantity -= qty
	return nil
}

// RestoreStockTx mirrors the repository's restore UPDATE, which succeeds
// even when no tracked row matches.
func (f *fakeItemStore) RestoreStockTx(_ context.Context, _ *sql.Tx, id uint64, qty int) error {
	it, ok := f.items[id]
	if ok && it.StockQuantity != nil {
		*it.StockQuantity += qty
	}
	return nil
}

func (f *fakeItemStore) stock(id uint64) int { return *f.items[id].StockQuantity }

type fakeBookingStore struct {
	bookings  map[string]*model.Booking
	createErr error
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[string]*model.Booking)}
}

func (f *fakeBookingStore) OverlapExistsTx(_ context.Context, _ *sql.Tx, resourceID uint64, start, end time.Time) (bool, error) {
	for _, b := range f.bookings {
		if b.ResourceID == resourceID && model.BookingHoldsSlot(b.Status) && b.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingStore) CreateTx(_ context.Context, _ *sql.Tx, b *model.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id string) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingStore) GetTx(ctx context.Context, _ *sql.Tx, id string) (*model.Booking, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeBookingStore) UpdateStatusTx(_ context.Context, _ *sql.Tx, id, status string) error {
	b, ok := f.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeBookingStore) ActiveByResourceBetween(_ context.Context, resourceID uint64, from, to time.Time) ([]model.Booking, error) {
	out := make([]model.Booking, 0)
	for _, b := range f.bookings {
		if b.ResourceID == resourceID && model.BookingHoldsSlot(b.Status) && b.Overlaps(from, to) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (f *fakeBookingStore) ListByResourceBetween(_ context.Context, resourceID uint64, from, to time.Time) ([]model.Booking, error) {
	out := make([]model.Booking, 0)
	for _, b := range f.bookings {
		if b.ResourceID == resourceID && b.Overlaps(from, to) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	return out, nil
}

type fakeOrderStore struct {
	orders     map[uint64]*model.Order
	nextID     uint64
	numbers    map[string]bool
	dupOnFirst bool // force one duplicate-number failure to exercise the retry
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[uint64]*model.Order), numbers: make(map[string]bool)}
}

func (f *fakeOrderStore) CreateTx(_ context.Context, _ *sql.Tx, o *model.Order) error {
	if f.dupOnFirst {
		f.dupOnFirst = false
		return repository.ErrDuplicateOrderNumber
	}
	if f.numbers[o.OrderNumber] {
		return repository.ErrDuplicateOrderNumber
	}
	f.nextID++
	o.ID = f.nextID
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	f.numbers[o.OrderNumber] = true
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrderStore) GetByID(_ context.Context, id uint64) (*model.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (f *fakeOrderStore) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	for id, o := range f.orders {
		if o.OrderNumber == number {
			return f.GetByID(ctx, id)
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (f *fakeOrderStore) GetTx(ctx context.Context, _ *sql.Tx, id uint64) (*model.Order, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeOrderStore) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uint64, status, paymentStatus string, at time.Time) error {
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	o.PaymentStatus = paymentStatus
	return nil
}

func (f *fakeOrderStore) ListBySeller(_ context.Context, sellerID uint64, status string) ([]model.Order, error) {
	out := make([]model.Order, 0)
	for _, o := range f.orders {
		if o.SellerID == sellerID && (status == "" || o.Status == status) {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakeAvailabilityStore struct {
	rules  []model.AvailabilityRule
	nextID uint64
}

func (f *fakeAvailabilityStore) ActiveByResourceWeekday(_ context.Context, resourceID uint64, weekday int) ([]model.AvailabilityRule, error) {
	out := make([]model.AvailabilityRule, 0)
	for _, r := range f.rules {
		if r.IsActive && r.ResourceID == resourceID && r.Weekday == weekday {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAvailabilityStore) ActiveByResource(_ context.Context, resourceID uint64) ([]model.AvailabilityRule, error) {
	out := make([]model.AvailabilityRule, 0)
	for _, r := range f.rules {
		if r.IsActive && r.ResourceID == resourceID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAvailabilityStore) ActiveOpenRuleTx(_ context.Context, _ *sql.Tx, resourceID uint64, weekday int) (*model.AvailabilityRule, error) {
	for i := range f.rules {
		r := &f.rules[i]
		if r.IsActive && !r.IsBreak && r.ResourceID == resourceID && r.Weekday == weekday {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrRuleNotFound
}

func (f *fakeAvailabilityStore) DeactivateDayTx(_ context.Context, _ *sql.Tx, resourceID uint64, weekday int) error {
	for i := range f.rules {
		if f.rules[i].ResourceID == resourceID && f.rules[i].Weekday == weekday {
			f.rules[i].IsActive = false
		}
	}
	return nil
}

func (f *fakeAvailabilityStore) InsertTx(_ context.Context, _ *sql.Tx, rule *model.AvailabilityRule) error {
	f.nextID++
	rule.ID = f.nextID
	rule.IsActive = true
	f.rules = append(f.rules, *rule)
	return nil
}

type notifierEvent struct {
	kind     string
	previous string
}

type fakeNotifier struct {
	events []notifierEvent
}

func (f *fakeNotifier) BookingCreated(_ context.Context, _ *model.Booking) {
	f.events = append(f.events, notifierEvent{kind: "booking.created"})
}

func (f *fakeNotifier) BookingStatusChanged(_ context.Context, _ *model.Booking, previous string) {
	f.events = append(f.events, notifierEvent{kind: "booking.status", previous: previous})
}

func (f *fakeNotifier) OrderCreated(_ context.Context, _ *model.Order) {
	f.events = append(f.events, notifierEvent{kind: "order.created"})
}

func (f *fakeNotifier) OrderStatusChanged(_ context.Context, _ *model.Order, previous string) {
	f.events = append(f.events, notifierEvent{kind: "order.status", previous: previous})
}
