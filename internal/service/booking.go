package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vitrinshop/vitrin/internal/model"
	"github.com/vitrinshop/vitrin/internal/repository"
)

// BookingLedger creates bookings and drives their state machine.  The
// overlap recheck and the insert run inside one transaction: a slot that
// looked free at listing time is re-validated against the committed state
// at booking time, and whichever of two concurrent attempts commits first
// wins the slot.
type BookingLedger struct {
	runner   TxRunner
	items    ItemStore
	sellers  SellerStore
	bookings BookingStore
	notifier Notifier
	now      func() time.Time
	log      zerolog.Logger
}

// NewBookingLedger constructs a BookingLedger.
func NewBookingLedger(runner TxRunner, items ItemStore, sellers SellerStore, bookings BookingStore, notifier Notifier, now func() time.Time, log zerolog.Logger) *BookingLedger {
	return &BookingLedger{runner: runner, items: items, sellers: sellers, bookings: bookings, notifier: notifier, now: now, log: log}
}

// CreateBooking books a slot on a service for a customer.  The end instant
// is re-derived from the service's current duration rather than trusted
// from the client, and the cancellation window in force at the seller is
// snapshotted onto the booking.  Returns ErrSlotAlreadyTaken when a
// concurrent booking claimed an overlapping range first.
func (l *BookingLedger) CreateBooking(ctx context.Context, serviceID uint64, startsAt time.Time, customer model.Customer) (*model.Booking, error) {
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	now := l.now()
	if startsAt.Before(now) {
		return nil, &model.ValidationError{Field: "starts_at", Reason: "must be in the future"}
	}

	var booking *model.Booking
	err := l.runner.RunInTransaction(ctx, func(tx *sql.Tx) error {
		item, err := l.items.GetTx(ctx, tx, serviceID)
		if err != nil {
			return err
		}
		if item.Type != model.ItemTypeService || !item.IsActive {
			return repository.ErrItemNotFound
		}
		if item.DurationMinutes <= 0 {
			return fmt.Errorf("service %d has no duration", item.ID)
		}
		seller, err := l.sellers.GetTx(ctx, tx, item.SellerID)
		if err != nil {
			return err
		}

		start := startsAt.UTC()
		end := start.Add(time.Duration(item.DurationMinutes) * time.Minute)

		taken, err := l.bookings.OverlapExistsTx(ctx, tx, seller.ID, start, end)
		if err != nil {
			return fmt.Errorf("overlap check: %w", err)
		}
		if taken {
			return model.ErrSlotAlreadyTaken
		}

		booking = &model.Booking{
			ID:                      uuid.NewString(),
			ServiceID:               item.ID,
			ResourceID:              seller.ID,
			Customer:                customer,
			StartsAt:                start,
			EndsAt:                  end,
			Status:                  model.BookingStatusPending,
			CancellationWindowHours: seller.CancellationWindowHours,
			CreatedAt:               now,
		}
		return l.bookings.CreateTx(ctx, tx, booking)
	})
	if repository.IsDeadlock(err) {
		return nil, model.ErrSlotAlreadyTaken
	}
	if err != nil {
		return nil, err
	}
	l.notifier.BookingCreated(ctx, booking)
	return booking, nil
}

// TransitionStatus moves a booking through its state machine on behalf of
// the owning seller.  The acting seller is an explicit argument; a booking
// on another seller's calendar fails with ErrForbidden.
func (l *BookingLedger) TransitionStatus(ctx context.Context, sellerID uint64, bookingID, newStatus string) (*model.Booking, error) {
	if !model.ValidBookingStatus(newStatus) {
		return nil, model.ErrInvalidTransition
	}
	var booking *model.Booking
	var previous string
	err := l.runner.RunInTransaction(ctx, func(tx *sql.Tx) error {
		b, err := l.bookings.GetTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.ResourceID != sellerID {
			return repository.ErrForbidden
		}
		if !model.CanTransitionBooking(b.Status, newStatus) {
			return model.ErrInvalidTransition
		}
		if err := l.bookings.UpdateStatusTx(ctx, tx, b.ID, newStatus); err != nil {
			return err
		}
		previous = b.Status
		b.Status = newStatus
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.notifier.BookingStatusChanged(ctx, booking, previous)
	return booking, nil
}

// CancelByCustomer cancels a booking on the customer's own initiative.
// The phone number is the customer's only credential: a mismatch reads as
// not found so booking IDs cannot be probed.  Cancellation is allowed only
// from pending or confirmed, and only while now is at least the booking's
// snapshotted window ahead of the start.
func (l *BookingLedger) CancelByCustomer(ctx context.Context, bookingID, phone string) (*model.Booking, error) {
	var booking *model.Booking
	var previous string
	err := l.runner.RunInTransaction(ctx, func(tx *sql.Tx) error {
		b, err := l.bookings.GetTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.Customer.Phone != phone {
			return repository.ErrBookingNotFound
		}
		if !model.BookingHoldsSlot(b.Status) {
			return model.ErrInvalidTransition
		}
		if !b.CancellableAt(l.now()) {
			return model.ErrCancellationWindowClosed
		}
		if err := l.bookings.UpdateStatusTx(ctx, tx, b.ID, model.BookingStatusCancelled); err != nil {
			return err
		}
		previous = b.Status
		b.Status = model.BookingStatusCancelled
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.notifier.BookingStatusChanged(ctx, booking, previous)
	return booking, nil
}

// GetForCustomer returns a booking looked up by ID plus the customer's
// phone.  A phone mismatch reads as not found.
func (l *BookingLedger) GetForCustomer(ctx context.Context, bookingID, phone string) (*model.Booking, error) {
	b, err := l.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Customer.Phone != phone {
		return nil, repository.ErrBookingNotFound
	}
	return b, nil
}

// ListForSeller returns a seller's bookings overlapping [from, to).
func (l *BookingLedger) ListForSeller(ctx context.Context, sellerID uint64, from, to time.Time) ([]model.Booking, error) {
	return l.bookings.ListByResourceBetween(ctx, sellerID, from, to)
}
