package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.  Two entry states exist: awaiting_approval for manual
// orders the seller confirms by hand, and approved for cart checkouts.
// Stock is reserved at creation regardless of entry path, so an order in
// any non-terminal state holds its reservation; entering cancelled or
// refunded releases it.  completed, cancelled and refunded are terminal.
const (
	OrderStatusAwaitingApproval = "awaiting_approval"
	OrderStatusApproved         = "approved"
	OrderStatusPaid             = "paid"
	OrderStatusProcessing       = "processing"
	OrderStatusCompleted        = "completed"
	OrderStatusCancelled        = "cancelled"
	OrderStatusRefunded         = "refunded"
)

// Payment statuses tracked alongside the order status.
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

var orderTransitions = map[string][]string{
	OrderStatusAwaitingApproval: {OrderStatusApproved, OrderStatusCancelled},
	OrderStatusApproved:         {OrderStatusPaid, OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusPaid:             {OrderStatusProcessing, OrderStatusRefunded},
	OrderStatusProcessing:       {OrderStatusCompleted},
}

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusAwaitingApproval, OrderStatusApproved, OrderStatusPaid,
		OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled,
		OrderStatusRefunded:
		return true
	}
	return false
}

// CanTransitionOrder reports whether an order may move from one status to
// another according to the state machine.
func CanTransitionOrder(from, to string) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ReleasesStock reports whether entering the given status returns the
// order's reserved stock to the pool.  The transition table guarantees a
// release happens at most once: both releasing states are terminal.
func ReleasesStock(to string) bool {
	return to == OrderStatusCancelled || to == OrderStatusRefunded
}

// OrderItem is an immutable snapshot of a catalog item taken at order
// creation.  Later catalog edits never touch these rows; the snapshot is
// what financial history is audited against.  Quantity is also what a
// cancel/refund restores to stock for product items.
type OrderItem struct {
	ID              uint64          // order_items.id
	OrderID         uint64          // order_items.order_id
	ItemID          uint64          // order_items.item_id
	Name            string          // order_items.name (snapshot)
	Type            string          // order_items.type (snapshot)
	UnitPrice       decimal.Decimal // order_items.unit_price (snapshot)
	Quantity        int             // order_items.quantity
	DurationMinutes int             // order_items.duration_minutes (snapshot)
}

// Order is a customer's purchase from one seller.  Money fields follow the
// round-once policy: subtotal and platform fee are each rounded to two
// digits exactly once and the seller amount is their exact difference, so
// subtotal = platformFee + sellerAmount holds to the cent.
//
// Fields:
//  ID           – primary key identifier.
//  OrderNumber  – human-readable "PREFIX-YYYYMMDD-XXXXXX" handle.
//  SellerID     – owning seller.
//  Customer     – contact snapshot.
//  Items        – line-item snapshots.
//  Subtotal     – Σ(unit price × quantity), rounded once.
//  PlatformFee  – subtotal × fee% / 100, rounded once.
//  SellerAmount – subtotal − platform fee, no further rounding.
//  TotalAmount  – amount charged to the customer.
//  Currency     – ISO currency code.
//  Status       – state machine position.
//  PaymentStatus – unpaid / paid / refunded.
//  ApprovedAt/PaidAt/CompletedAt/CancelledAt – transition timestamps.
type Order struct {
	ID            uint64          // orders.id
	OrderNumber   string          // orders.order_number
	SellerID      uint64          // orders.seller_id
	Customer      Customer        // orders.customer_* columns
	Items         []OrderItem     // order_items rows
	Subtotal      decimal.Decimal // orders.subtotal
	PlatformFee   decimal.Decimal // orders.platform_fee
	SellerAmount  decimal.Decimal // orders.seller_amount
	TotalAmount   decimal.Decimal // orders.total_amount
	Currency      string          // orders.currency
	Status        string          // orders.status
	PaymentStatus string          // orders.payment_status
	ApprovedAt    *time.Time      // orders.approved_at
	PaidAt        *time.Time      // orders.paid_at
	CompletedAt   *time.Time      // orders.completed_at
	CancelledAt   *time.Time      // orders.cancelled_at
	CreatedAt     time.Time       // orders.created_at
}
