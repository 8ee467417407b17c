package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/vitrinshop/vitrin/internal/model"
)

// OrderRepo provides access to orders and their line-item snapshots.  An
// order and its items are always written in the same transaction that
// validated and decremented stock; there is no path that creates one
// without the other.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, order_number, seller_id, customer_name, customer_phone, customer_email, customer_note,
	subtotal, platform_fee, seller_amount, total_amount, currency, status, payment_status,
	approved_at, paid_at, completed_at, cancelled_at, created_at`

const mysqlDuplicateEntry = 1062

// CreateTx inserts an order and its line-item snapshots within the
// provided transaction and populates the generated order ID.  A collision
// on the order_number unique index surfaces as ErrDuplicateOrderNumber so
// the ledger can regenerate and retry once.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders
	           (order_number, seller_id, customer_name, customer_phone, customer_email, customer_note,
	            subtotal, platform_fee, seller_amount, total_amount, currency, status, payment_status, approved_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var approvedAt interface{}
	if o.ApprovedAt != nil {
		approvedAt = o.ApprovedAt.UTC()
	}
	res, err := tx.ExecContext(ctx, q, o.OrderNumber, o.SellerID,
		o.Customer.Name, o.Customer.Phone, nullable(o.Customer.Email), nullable(o.Customer.Note),
		o.Subtotal, o.PlatformFee, o.SellerAmount, o.TotalAmount, o.Currency, o.Status, o.PaymentStatus, approvedAt)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrDuplicateOrderNumber
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)

	if len(o.Items) == 0 {
		return nil
	}
	// Bulk insert the snapshots in one statement.
	itemQ := `INSERT INTO order_items (order_id, item_id, name, type, unit_price, quantity, duration_minutes) VALUES `
	args := make([]interface{}, 0, len(o.Items)*7)
	for i := range o.Items {
		if i > 0 {
			itemQ += ","
		}
		itemQ += "(?, ?, ?, ?, ?, ?, ?)"
		it := &o.Items[i]
		it.OrderID = o.ID
		args = append(args, it.OrderID, it.ItemID, it.Name, it.Type, it.UnitPrice, it.Quantity, it.DurationMinutes)
	}
	_, err = tx.ExecContext(ctx, itemQ, args...)
	return err
}

func scanOrder(scan func(dest ...interface{}) error) (*model.Order, error) {
	var o model.Order
	var email, note sql.NullString
	var approved, paid, completed, cancelled sql.NullTime
	err := scan(&o.ID, &o.OrderNumber, &o.SellerID,
		&o.Customer.Name, &o.Customer.Phone, &email, &note,
		&o.Subtotal, &o.PlatformFee, &o.SellerAmount, &o.TotalAmount,
		&o.Currency, &o.Status, &o.PaymentStatus,
		&approved, &paid, &completed, &cancelled, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Customer.Email = email.String
	o.Customer.Note = note.String
	o.ApprovedAt = nullTime(approved)
	o.PaidAt = nullTime(paid)
	o.CompletedAt = nullTime(completed)
	o.CancelledAt = nullTime(cancelled)
	return &o, nil
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

// GetByID returns an order with its line items, or ErrOrderNotFound.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		return nil, err
	}
	items, err := r.items(ctx, r.db.QueryContext, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// GetByNumber returns an order by its human-readable number.  Customers
// look orders up with the number plus their phone; the phone match is the
// service's concern.
func (r *OrderRepo) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE order_number = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, number).Scan)
	if err != nil {
		return nil, err
	}
	items, err := r.items(ctx, r.db.QueryContext, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// GetTx reads an order with its items inside a transaction, locking the
// order row.  Status transitions and the stock restore they may imply
// validate against this snapshot.
func (r *OrderRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = ? FOR UPDATE`
	o, err := scanOrder(tx.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		return nil, err
	}
	items, err := r.items(ctx, tx.QueryContext, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// UpdateStatusTx moves an order to the given status within a transaction
// and stamps the matching timestamp column, when the target status has one.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status, paymentStatus string, at time.Time) error {
	q := `UPDATE orders SET status = ?, payment_status = ?`
	args := []interface{}{status, paymentStatus}
	switch status {
	case model.OrderStatusApproved:
		q += `, approved_at = ?`
		args = append(args, at.UTC())
	case model.OrderStatusPaid:
		q += `, paid_at = ?`
		args = append(args, at.UTC())
	case model.OrderStatusCompleted:
		q += `, completed_at = ?`
		args = append(args, at.UTC())
	case model.OrderStatusCancelled:
		q += `, cancelled_at = ?`
		args = append(args, at.UTC())
	}
	q += ` WHERE id = ?`
	args = append(args, id)
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// ListBySeller returns a seller's orders newest first, optionally filtered
// by status.  Line items are not loaded for list views.
func (r *OrderRepo) ListBySeller(ctx context.Context, sellerID uint64, status string) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE seller_id = ?`
	args := []interface{}{sellerID}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

type queryFn func(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)

func (r *OrderRepo) items(ctx context.Context, query queryFn, orderID uint64) ([]model.OrderItem, error) {
	const q = `SELECT id, order_id, item_id, name, type, unit_price, quantity, duration_minutes
	           FROM order_items WHERE order_id = ? ORDER BY id`
	rows, err := query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ItemID, &it.Name, &it.Type,
			&it.UnitPrice, &it.Quantity, &it.DurationMinutes); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
