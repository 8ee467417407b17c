// Package service implements the scheduling and commerce ledgers.  Each
// ledger depends on narrow store interfaces satisfied by the repository
// layer, plus a transaction runner; every multi-step mutation executes
// inside one transaction obtained from the runner.  Tests substitute
// in-memory fakes for the stores.
package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/vitrinshop/vitrin/internal/model"
)

// TxRunner executes a function inside a database transaction, committing
// when it returns nil and rolling back otherwise.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// SellerStore reads seller records and policy.
type SellerStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Seller, error)
	GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Seller, error)
	UpdatePolicy(ctx context.Context, sellerID uint64, leadTimeHours, cancellationWindowHours int) error
}

// ItemStore reads catalog items and guards stock.  The stock methods
// require an enclosing transaction by construction.
type ItemStore interface {
	Get(ctx context.Context, id uint64) (*model.Item, error)
	GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Item, error)
	ReserveStockTx(ctx context.Context, tx *sql.Tx, itemID uint64, quantity int) error
	RestoreStockTx(ctx context.Context, tx *sql.Tx, itemID uint64, quantity int) error
}

// BookingStore persists bookings.
type BookingStore interface {
	OverlapExistsTx(ctx context.Context, tx *sql.Tx, resourceID uint64, start, end time.Time) (bool, error)
	CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetTx(ctx context.Context, tx *sql.Tx, id string) (*model.Booking, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id, status string) error
	ActiveByResourceBetween(ctx context.Context, resourceID uint64, from, to time.Time) ([]model.Booking, error)
	ListByResourceBetween(ctx context.Context, resourceID uint64, from, to time.Time) ([]model.Booking, error)
}

// OrderStore persists orders and their line-item snapshots.
type OrderStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error
	GetByID(ctx context.Context, id uint64) (*model.Order, error)
	GetByNumber(ctx context.Context, number string) (*model.Order, error)
	GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Order, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status, paymentStatus string, at time.Time) error
	ListBySeller(ctx context.Context, sellerID uint64, status string) ([]model.Order, error)
}

// AvailabilityStore persists weekly schedules.
type AvailabilityStore interface {
	ActiveByResourceWeekday(ctx context.Context, resourceID uint64, weekday int) ([]model.AvailabilityRule, error)
	ActiveByResource(ctx context.Context, resourceID uint64) ([]model.AvailabilityRule, error)
	ActiveOpenRuleTx(ctx context.Context, tx *sql.Tx, resourceID uint64, weekday int) (*model.AvailabilityRule, error)
	DeactivateDayTx(ctx context.Context, tx *sql.Tx, resourceID uint64, weekday int) error
	InsertTx(ctx context.Context, tx *sql.Tx, rule *model.AvailabilityRule) error
}

// Notifier receives status-change events after a mutation commits.
// Delivery is best effort: implementations log failures and never block
// or fail the request that triggered them.
type Notifier interface {
	BookingCreated(ctx context.Context, b *model.Booking)
	BookingStatusChanged(ctx context.Context, b *model.Booking, previous string)
	OrderCreated(ctx context.Context, o *model.Order)
	OrderStatusChanged(ctx context.Context, o *model.Order, previous string)
}

// NopNotifier discards all events.  Used when the broker is not configured.
type NopNotifier struct{}

func (NopNotifier) BookingCreated(context.Context, *model.Booking)               {}
func (NopNotifier) BookingStatusChanged(context.Context, *model.Booking, string) {}
func (NopNotifier) OrderCreated(context.Context, *model.Order)                   {}
func (NopNotifier) OrderStatusChanged(context.Context, *model.Order, string)     {}
