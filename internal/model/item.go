package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item types.  Products carry stock; services carry a duration and are
// booked against the seller's calendar instead of a stock pool.
const (
	ItemTypeProduct = "product"
	ItemTypeService = "service"
)

// Item is the subset of a catalog entry the engines care about.  Orders
// snapshot an item's name, type and unit price at creation time; bookings
// re-read a service item's current duration when the booking is made.
//
// Fields:
//  ID              – primary key identifier.
//  SellerID        – owning seller.
//  Type            – "product" or "service".
//  Name            – display name, copied into order snapshots.
//  UnitPrice       – price with two fractional digits.
//  DurationMinutes – appointment length; only meaningful for services.
//  StockQuantity   – remaining stock; nil for services (unlimited).
//  IsActive        – soft availability flag; inactive items cannot be
//                    ordered or booked but stay referenced by history.
type Item struct {
	ID              uint64          // items.id
	SellerID        uint64          // items.seller_id
	Type            string          // items.type
	Name            string          // items.name
	UnitPrice       decimal.Decimal // items.unit_price
	DurationMinutes int             // items.duration_minutes
	StockQuantity   *int            // items.stock_quantity (nullable)
	IsActive        bool            // items.is_active
	CreatedAt       time.Time       // items.created_at
	UpdatedAt       time.Time       // items.updated_at
}
