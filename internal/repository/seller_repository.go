package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vitrinshop/vitrin/internal/model"
)

// SellerRepo provides access to the sellers table.  Only the columns the
// scheduling and order engines need are exposed: the platform fee
// percentage and the booking policy fields.
type SellerRepo struct {
	db *sql.DB
}

// NewSellerRepo returns a new SellerRepo bound to the given database.
func NewSellerRepo(db *sql.DB) *SellerRepo { return &SellerRepo{db: db} }

const sellerColumns = `id, username, display_name, fee_percentage, lead_time_hours, cancellation_window_hours, created_at`

func scanSeller(row *sql.Row) (*model.Seller, error) {
	var s model.Seller
	err := row.Scan(&s.ID, &s.Username, &s.DisplayName, &s.FeePercentage,
		&s.LeadTimeHours, &s.CancellationWindowHours, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSellerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID returns a seller by primary key, or ErrSellerNotFound.
func (r *SellerRepo) GetByID(ctx context.Context, id uint64) (*model.Seller, error) {
	const q = `SELECT ` + sellerColumns + ` FROM sellers WHERE id = ?`
	return scanSeller(r.db.QueryRowContext(ctx, q, id))
}

// GetByUsername returns a seller by public handle, or ErrSellerNotFound.
func (r *SellerRepo) GetByUsername(ctx context.Context, username string) (*model.Seller, error) {
	const q = `SELECT ` + sellerColumns + ` FROM sellers WHERE username = ?`
	return scanSeller(r.db.QueryRowContext(ctx, q, username))
}

// GetTx reads a seller within a transaction.  Used by the order ledger so
// the fee percentage applied is the one committed at order time.
func (r *SellerRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Seller, error) {
	const q = `SELECT ` + sellerColumns + ` FROM sellers WHERE id = ?`
	return scanSeller(tx.QueryRowContext(ctx, q, id))
}

// UpdatePolicy stores the seller-editable scheduling policy: minimum lead
// time for new bookings and the customer cancellation window.  Existing
// bookings keep their snapshotted window; only future bookings see the new
// values.
func (r *SellerRepo) UpdatePolicy(ctx context.Context, sellerID uint64, leadTimeHours, cancellationWindowHours int) error {
	const q = `UPDATE sellers SET lead_time_hours = ?, cancellation_window_hours = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, leadTimeHours, cancellationWindowHours, sellerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also zero when the values did not change; confirm
		// existence before reporting not found.
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM sellers WHERE id = ?`, sellerID).Scan(&one); errors.Is(err, sql.ErrNoRows) {
			return ErrSellerNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}
