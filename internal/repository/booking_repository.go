package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vitrinshop/vitrin/internal/model"
)

// BookingRepo provides access to the bookings table.  All timestamps are
// stored as UTC DATETIME.  The overlap check and the insert that depends
// on it only exist as ...Tx variants; the booking ledger runs them inside
// one transaction to close the race between slot listing and submission.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, service_id, resource_id, customer_name, customer_phone, customer_email, customer_note, starts_at, ends_at, status, cancellation_window_hours, created_at`

func scanBooking(scan func(dest ...interface{}) error) (*model.Booking, error) {
	var b model.Booking
	var email, note sql.NullString
	err := scan(&b.ID, &b.ServiceID, &b.ResourceID,
		&b.Customer.Name, &b.Customer.Phone, &email, &note,
		&b.StartsAt, &b.EndsAt, &b.Status, &b.CancellationWindowHours, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	b.Customer.Email = email.String
	b.Customer.Note = note.String
	b.StartsAt = b.StartsAt.UTC()
	b.EndsAt = b.EndsAt.UTC()
	return &b, nil
}

// OverlapExistsTx reports whether any booking that still holds its slot
// overlaps [start, end) on the given resource.  The locked read keeps a
// concurrent transaction from passing the same check until this one
// commits or rolls back; whichever commits first wins the slot.
func (r *BookingRepo) OverlapExistsTx(ctx context.Context, tx *sql.Tx, resourceID uint64, start, end time.Time) (bool, error) {
	const q = `SELECT COUNT(*) FROM bookings
	           WHERE resource_id = ? AND status IN ('pending','confirmed')
	             AND starts_at < ? AND ends_at > ?
	           FOR UPDATE`
	var n int
	if err := tx.QueryRowContext(ctx, q, resourceID, end.UTC(), start.UTC()).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateTx inserts a booking within the provided transaction.  The caller
// supplies the UUID; the row carries a snapshot of the customer contact
// details and the cancellation window in force at creation.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
	           (id, service_id, resource_id, customer_name, customer_phone, customer_email, customer_note,
	            starts_at, ends_at, status, cancellation_window_hours)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, b.ID, b.ServiceID, b.ResourceID,
		b.Customer.Name, b.Customer.Phone, nullable(b.Customer.Email), nullable(b.Customer.Note),
		b.StartsAt.UTC(), b.EndsAt.UTC(), b.Status, b.CancellationWindowHours)
	return err
}

// GetByID returns a booking by UUID, or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return scanBooking(r.db.QueryRowContext(ctx, q, id).Scan)
}

// GetTx reads a booking inside a transaction with a row lock, so a status
// transition validates against the current state and no concurrent
// transition can interleave.
func (r *BookingRepo) GetTx(ctx context.Context, tx *sql.Tx, id string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	return scanBooking(tx.QueryRowContext(ctx, q, id).Scan)
}

// UpdateStatusTx moves a booking to the given status within a transaction.
// State machine validation happens in the ledger before this is called.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id, status string) error {
	const q = `UPDATE bookings SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, id)
	return err
}

// ActiveByResourceBetween returns the bookings that hold slots on a
// resource within [from, to).  Slot generation feeds its overlap step with
// this; ordering by start keeps output deterministic.
func (r *BookingRepo) ActiveByResourceBetween(ctx context.Context, resourceID uint64, from, to time.Time) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE resource_id = ? AND status IN ('pending','confirmed')
	             AND starts_at < ? AND ends_at > ?
	           ORDER BY starts_at`
	return r.queryBookings(ctx, q, resourceID, to.UTC(), from.UTC())
}

// ListByResourceBetween returns all of a resource's bookings in the range
// regardless of status, newest first.  Used by the seller dashboard.
func (r *BookingRepo) ListByResourceBetween(ctx context.Context, resourceID uint64, from, to time.Time) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE resource_id = ? AND starts_at < ? AND ends_at > ?
	           ORDER BY starts_at DESC`
	return r.queryBookings(ctx, q, resourceID, to.UTC(), from.UTC())
}

func (r *BookingRepo) queryBookings(ctx context.Context, q string, args ...interface{}) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bookings := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// nullable maps an empty string onto SQL NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
