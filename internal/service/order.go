package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vitrinshop/vitrin/internal/clock"
	"github.com/vitrinshop/vitrin/internal/model"
	"github.com/vitrinshop/vitrin/internal/repository"
	"github.com/vitrinshop/vitrin/internal/utils"
)

// Order entry paths.  Manual orders are placed by the seller on a
// customer's behalf and wait for approval; checkout orders come from the
// storefront cart and enter approved.  Stock is reserved at creation on
// both paths, so an awaiting-approval order holds its reservation and
// cannot be oversold while the seller decides.
const (
	OrderEntryManual   = "manual"
	OrderEntryCheckout = "checkout"
)

// LineRequest is one requested order line before snapshotting.
type LineRequest struct {
	ItemID   uint64
	Quantity int
}

// OrderLedger creates orders and drives their state machine.  Creation is
// one atomic unit: item validation, the money split, the order insert with
// its snapshots and the stock decrements all commit or abort together.
type OrderLedger struct {
	runner      TxRunner
	sellers     SellerStore
	items       ItemStore
	orders      OrderStore
	notifier    Notifier
	clock       *clock.Service
	now         func() time.Time
	orderPrefix string
	currency    string
	log         zerolog.Logger
}

// NewOrderLedger constructs an OrderLedger.  orderPrefix and currency are
// fixed per deployment.
func NewOrderLedger(runner TxRunner, sellers SellerStore, items ItemStore, orders OrderStore, notifier Notifier, cs *clock.Service, now func() time.Time, orderPrefix, currency string, log zerolog.Logger) *OrderLedger {
	return &OrderLedger{
		runner: runner, sellers: sellers, items: items, orders: orders,
		notifier: notifier, clock: cs, now: now,
		orderPrefix: orderPrefix, currency: currency, log: log,
	}
}

// CreateOrder places an order against a seller's catalog.  Within one
// transaction every referenced item is re-fetched under lock and checked
// for ownership and activity, product stock is verified and decremented,
// and the order plus its line-item snapshots are inserted.  Any failure
// aborts the whole unit: no partial order, no partial stock change.  A
// duplicate order number is regenerated and retried once.
func (l *OrderLedger) CreateOrder(ctx context.Context, sellerID uint64, customer model.Customer, lines []LineRequest, entry string) (*model.Order, error) {
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &model.ValidationError{Field: "items", Reason: "at least one line item required"}
	}
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			return nil, &model.ValidationError{Field: "quantity", Reason: "must be positive"}
		}
	}
	status := model.OrderStatusAwaitingApproval
	if entry == OrderEntryCheckout {
		status = model.OrderStatusApproved
	}

	order, err := l.createOnce(ctx, sellerID, customer, lines, status)
	if errors.Is(err, repository.ErrDuplicateOrderNumber) {
		// 24 bits of suffix make this a once-in-a-blue-moon event; one
		// regeneration is enough before treating it as fatal.
		l.log.Warn().Uint64("seller_id", sellerID).Msg("order number collision, retrying once")
		order, err = l.createOnce(ctx, sellerID, customer, lines, status)
	}
	if err != nil {
		return nil, err
	}
	l.notifier.OrderCreated(ctx, order)
	return order, nil
}

func (l *OrderLedger) createOnce(ctx context.Context, sellerID uint64, customer model.Customer, lines []LineRequest, status string) (*model.Order, error) {
	now := l.now()
	number, err := utils.OrderNumber(l.orderPrefix, now.In(l.clock.Location()))
	if err != nil {
		return nil, err
	}

	var order *model.Order
	err = l.runner.RunInTransaction(ctx, func(tx *sql.Tx) error {
		seller, err := l.sellers.GetTx(ctx, tx, sellerID)
		if err != nil {
			return err
		}

		snapshots := make([]model.OrderItem, 0, len(lines))
		trackedStock := make([]bool, 0, len(lines))
		for _, ln := range lines {
			item, err := l.items.GetTx(ctx, tx, ln.ItemID)
			if err != nil {
				return err
			}
			if item.SellerID != seller.ID || !item.IsActive {
				return repository.ErrItemNotFound
			}
			if item.Type == model.ItemTypeProduct && item.StockQuantity != nil && *item.StockQuantity < ln.Quantity {
				return &model.InsufficientStockError{ItemName: item.Name, Available: *item.StockQuantity}
			}
			trackedStock = append(trackedStock, item.Type == model.ItemTypeProduct && item.StockQuantity != nil)
			snapshots = append(snapshots, model.OrderItem{
				ItemID:          item.ID,
				Name:            item.Name,
				Type:            item.Type,
				UnitPrice:       item.UnitPrice,
				Quantity:        ln.Quantity,
				DurationMinutes: item.DurationMinutes,
			})
		}

		subtotal, fee, sellerAmount := computeTotals(snapshots, seller.FeePercentage)
		order = &model.Order{
			OrderNumber:   number,
			SellerID:      seller.ID,
			Customer:      customer,
			Items:         snapshots,
			Subtotal:      subtotal,
			PlatformFee:   fee,
			SellerAmount:  sellerAmount,
			TotalAmount:   subtotal,
			Currency:      l.currency,
			Status:        status,
			PaymentStatus: model.PaymentStatusUnpaid,
			CreatedAt:     now,
		}
		if status == model.OrderStatusApproved {
			order.ApprovedAt = &now
		}
		if err := l.orders.CreateTx(ctx, tx, order); err != nil {
			return err
		}

		// Reserve stock for product lines in the same transaction that
		// wrote the order.  Lines whose item had NULL stock at snapshot
		// time are untracked and reserve nothing.
		for i := range snapshots {
			if !trackedStock[i] {
				continue
			}
			if err := l.items.ReserveStockTx(ctx, tx, snapshots[i].ItemID, snapshots[i].Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// TransitionStatus moves an order through its state machine on behalf of
// the owning seller.  Entering cancelled or refunded restores each product
// line's snapshotted quantity to stock inside the same transaction; since
// both states are terminal, a second transition attempt fails with
// ErrInvalidTransition and the restore cannot run twice.
func (l *OrderLedger) TransitionStatus(ctx context.Context, sellerID, orderID uint64, newStatus string) (*model.Order, error) {
	if !model.ValidOrderStatus(newStatus) {
		return nil, model.ErrInvalidTransition
	}
	var order *model.Order
	var previous string
	err := l.runner.RunInTransaction(ctx, func(tx *sql.Tx) error {
		o, err := l.orders.GetTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o.SellerID != sellerID {
			return repository.ErrForbidden
		}
		if !model.CanTransitionOrder(o.Status, newStatus) {
			return model.ErrInvalidTransition
		}

		paymentStatus := o.PaymentStatus
		switch newStatus {
		case model.OrderStatusPaid:
			paymentStatus = model.PaymentStatusPaid
		case model.OrderStatusRefunded:
			paymentStatus = model.PaymentStatusRefunded
		}
		now := l.now()
		if err := l.orders.UpdateStatusTx(ctx, tx, o.ID, newStatus, paymentStatus, now); err != nil {
			return err
		}

		if model.ReleasesStock(newStatus) {
			for i := range o.Items {
				if o.Items[i].Type != model.ItemTypeProduct {
					continue
				}
				if err := l.items.RestoreStockTx(ctx, tx, o.Items[i].ItemID, o.Items[i].Quantity); err != nil {
					return fmt.Errorf("restore stock for item %d: %w", o.Items[i].ItemID, err)
				}
			}
		}

		previous = o.Status
		o.Status = newStatus
		o.PaymentStatus = paymentStatus
		stamp := now.UTC()
		switch newStatus {
		case model.OrderStatusApproved:
			o.ApprovedAt = &stamp
		case model.OrderStatusPaid:
			o.PaidAt = &stamp
		case model.OrderStatusCompleted:
			o.CompletedAt = &stamp
		case model.OrderStatusCancelled:
			o.CancelledAt = &stamp
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.notifier.OrderStatusChanged(ctx, order, previous)
	return order, nil
}

// LookupForCustomer returns an order by number plus the customer's phone.
// A phone mismatch reads as not found so order numbers cannot be probed.
func (l *OrderLedger) LookupForCustomer(ctx context.Context, number, phone string) (*model.Order, error) {
	o, err := l.orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if o.Customer.Phone != phone {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

// ListForSeller returns a seller's orders, optionally filtered by status.
func (l *OrderLedger) ListForSeller(ctx context.Context, sellerID uint64, status string) ([]model.Order, error) {
	if status != "" && !model.ValidOrderStatus(status) {
		return nil, &model.ValidationError{Field: "status", Reason: "unknown order status"}
	}
	return l.orders.ListBySeller(ctx, sellerID, status)
}
