package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vitrinshop/vitrin/internal/model"
)

// ItemRepo provides access to catalog items and owns the stock guard.
// Stock mutations only exist as ...Tx variants: a decrement is meaningless
// outside the transaction that creates the order referencing it, and a
// restore is meaningless outside the transaction that cancels it.
type ItemRepo struct {
	db *sql.DB
}

// NewItemRepo returns a new ItemRepo bound to the given database.
func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{db: db} }

const itemColumns = `id, seller_id, type, name, unit_price, duration_minutes, stock_quantity, is_active, created_at, updated_at`

func scanItem(scan func(dest ...interface{}) error) (*model.Item, error) {
	var it model.Item
	var stock sql.NullInt64
	err := scan(&it.ID, &it.SellerID, &it.Type, &it.Name, &it.UnitPrice,
		&it.DurationMinutes, &stock, &it.IsActive, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	if stock.Valid {
		n := int(stock.Int64)
		it.StockQuantity = &n
	}
	return &it, nil
}

// Get returns an item by primary key, or ErrItemNotFound.
func (r *ItemRepo) Get(ctx context.Context, id uint64) (*model.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	return scanItem(r.db.QueryRowContext(ctx, q, id).Scan)
}

// GetTx re-reads an item inside a transaction with a row lock.  The order
// ledger uses this so the stock quantity it validates against cannot move
// under it before the decrement commits.
func (r *ItemRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items WHERE id = ? FOR UPDATE`
	return scanItem(tx.QueryRowContext(ctx, q, id).Scan)
}

// ReserveStockTx decrements an item's stock by quantity within the given
// transaction.  The decrement is conditional on sufficient stock, so two
// concurrent reservations for the last unit resolve at the database: one
// commits, the other matches no row and fails with ErrNegativeStock.  The
// ledger's prior locked read makes that outcome unreachable in practice;
// reaching it is a bug-report condition, not a user-facing retry.
func (r *ItemRepo) ReserveStockTx(ctx context.Context, tx *sql.Tx, itemID uint64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("reserve stock: quantity must be positive, got %d", quantity)
	}
	const q = `UPDATE items SET stock_quantity = stock_quantity - ?
	           WHERE id = ? AND stock_quantity IS NOT NULL AND stock_quantity >= ?`
	res, err := tx.ExecContext(ctx, q, quantity, itemID, quantity)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNegativeStock
	}
	return nil
}

// RestoreStockTx returns quantity units to an item's stock within the
// given transaction.  Called exactly once per order when it enters a
// stock-releasing terminal state, with the snapshotted line-item quantity.
func (r *ItemRepo) RestoreStockTx(ctx context.Context, tx *sql.Tx, itemID uint64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("restore stock: quantity must be positive, got %d", quantity)
	}
	const q = `UPDATE items SET stock_quantity = stock_quantity + ?
	           WHERE id = ? AND stock_quantity IS NOT NULL`
	_, err := tx.ExecContext(ctx, q, quantity, itemID)
	return err
}

// ListActiveBySeller returns a seller's active catalog items ordered by
// creation time.  Used by the storefront page and dashboards.
func (r *ItemRepo) ListActiveBySeller(ctx context.Context, sellerID uint64) ([]model.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items WHERE seller_id = ? AND is_active = 1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
