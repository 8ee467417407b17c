package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinshop/vitrin/internal/model"
	"github.com/vitrinshop/vitrin/internal/repository"
)

type bookingFixture struct {
	ledger   *BookingLedger
	items    *fakeItemStore
	sellers  *fakeSellerStore
	bookings *fakeBookingStore
	notifier *fakeNotifier
	now      time.Time
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	now := time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)
	f := &bookingFixture{
		items: &fakeItemStore{items: map[uint64]*model.Item{
			10: {ID: 10, SellerID: 1, Type: model.ItemTypeService, Name: "Consultation", DurationMinutes: 30, IsActive: true},
			11: {ID: 11, SellerID: 1, Type: model.ItemTypeService, Name: "Retired", DurationMinutes: 30, IsActive: false},
			12: {ID: 12, SellerID: 1, Type: model.ItemTypeProduct, Name: "Mug", IsActive: true},
		}},
		sellers: &fakeSellerStore{sellers: map[uint64]*model.Seller{
			1: {ID: 1, Username: "sara", LeadTimeHours: 0, CancellationWindowHours: 24},
		}},
		bookings: newFakeBookingStore(),
		notifier: &fakeNotifier{},
		now:      now,
	}
	f.ledger = NewBookingLedger(fakeRunner{}, f.items, f.sellers, f.bookings, f.notifier,
		func() time.Time { return f.now }, zerolog.Nop())
	return f
}

func validCustomer() model.Customer {
	return model.Customer{Name: "Omid", Phone: "09121234567"}
}

func TestCreateBooking(t *testing.T) {
	f := newBookingFixture(t)
	start := f.now.Add(48 * time.Hour)

	b, err := f.ledger.CreateBooking(context.Background(), 10, start, validCustomer())
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, model.BookingStatusPending, b.Status)
	assert.Equal(t, start, b.StartsAt)
	assert.Equal(t, start.Add(30*time.Minute), b.EndsAt, "end derives from the service duration")
	assert.Equal(t, 24, b.CancellationWindowHours, "window snapshotted from seller policy")
	assert.Equal(t, uint64(1), b.ResourceID)
	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, "booking.created", f.notifier.events[0].kind)
}

func TestCreateBookingSlotTaken(t *testing.T) {
	f := newBookingFixture(t)
	start := f.now.Add(48 * time.Hour)

	_, err := f.ledger.CreateBooking(context.Background(), 10, start, validCustomer())
	require.NoError(t, err)

	// A second attempt overlapping the first loses the race.
	_, err = f.ledger.CreateBooking(context.Background(), 10, start.Add(10*time.Minute), validCustomer())
	assert.ErrorIs(t, err, model.ErrSlotAlreadyTaken)

	// Back-to-back is fine: [s, s+30) and [s+30, s+60) touch, not overlap.
	_, err = f.ledger.CreateBooking(context.Background(), 10, start.Add(30*time.Minute), validCustomer())
	assert.NoError(t, err)
}

func TestCreateBookingDeadlockReadsAsSlotTaken(t *testing.T) {
	f := newBookingFixture(t)
	// Two inserts racing for the same empty range deadlock on their gap
	// locks; the loser's rollback means the other attempt won the slot.
	f.bookings.createErr = &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}

	_, err := f.ledger.CreateBooking(context.Background(), 10, f.now.Add(48*time.Hour), validCustomer())
	assert.ErrorIs(t, err, model.ErrSlotAlreadyTaken)
	assert.Empty(t, f.notifier.events)
}

func TestCreateBookingRejectsBadInput(t *testing.T) {
	f := newBookingFixture(t)
	future := f.now.Add(48 * time.Hour)

	var verr *model.ValidationError
	_, err := f.ledger.CreateBooking(context.Background(), 10, future, model.Customer{Name: "X", Phone: "09121234567"})
	assert.ErrorAs(t, err, &verr)

	_, err = f.ledger.CreateBooking(context.Background(), 10, f.now.Add(-time.Hour), validCustomer())
	assert.ErrorAs(t, err, &verr)

	_, err = f.ledger.CreateBooking(context.Background(), 11, future, validCustomer())
	assert.ErrorIs(t, err, repository.ErrItemNotFound, "inactive service is not bookable")

	_, err = f.ledger.CreateBooking(context.Background(), 12, future, validCustomer())
	assert.ErrorIs(t, err, repository.ErrItemNotFound, "products are not bookable")

	_, err = f.ledger.CreateBooking(context.Background(), 99, future, validCustomer())
	assert.ErrorIs(t, err, repository.ErrItemNotFound)
}

func TestTransitionBookingStatus(t *testing.T) {
	f := newBookingFixture(t)
	b, err := f.ledger.CreateBooking(context.Background(), 10, f.now.Add(48*time.Hour), validCustomer())
	require.NoError(t, err)

	got, err := f.ledger.TransitionStatus(context.Background(), 1, b.ID, model.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, got.Status)

	// pending -> completed is not in the table, and neither is anything out
	// of a terminal state.
	_, err = f.ledger.TransitionStatus(context.Background(), 1, b.ID, model.BookingStatusPending)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = f.ledger.TransitionStatus(context.Background(), 1, b.ID, "teleported")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	// Another seller cannot touch the booking.
	_, err = f.ledger.TransitionStatus(context.Background(), 2, b.ID, model.BookingStatusCompleted)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	got, err = f.ledger.TransitionStatus(context.Background(), 1, b.ID, model.BookingStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, got.Status)

	_, err = f.ledger.TransitionStatus(context.Background(), 1, b.ID, model.BookingStatusCancelled)
	assert.ErrorIs(t, err, model.ErrInvalidTransition, "completed is terminal")
}

func TestCancelByCustomerWindow(t *testing.T) {
	f := newBookingFixture(t)
	start := f.now.Add(100 * time.Hour)
	b, err := f.ledger.CreateBooking(context.Background(), 10, start, validCustomer())
	require.NoError(t, err)

	// 23 hours before the start the 24-hour window has closed.
	f.now = start.Add(-23 * time.Hour)
	_, err = f.ledger.CancelByCustomer(context.Background(), b.ID, "09121234567")
	assert.ErrorIs(t, err, model.ErrCancellationWindowClosed)

	// 25 hours before the start it is still open.
	f.now = start.Add(-25 * time.Hour)
	got, err := f.ledger.CancelByCustomer(context.Background(), b.ID, "09121234567")
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, got.Status)

	// A cancelled booking cannot be cancelled again.
	_, err = f.ledger.CancelByCustomer(context.Background(), b.ID, "09121234567")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestCancelByCustomerWrongPhone(t *testing.T) {
	f := newBookingFixture(t)
	b, err := f.ledger.CreateBooking(context.Background(), 10, f.now.Add(100*time.Hour), validCustomer())
	require.NoError(t, err)

	_, err = f.ledger.CancelByCustomer(context.Background(), b.ID, "09999999999")
	assert.ErrorIs(t, err, repository.ErrBookingNotFound, "phone mismatch must not reveal the booking")

	_, err = f.ledger.GetForCustomer(context.Background(), b.ID, "09999999999")
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)

	got, err := f.ledger.GetForCustomer(context.Background(), b.ID, "09121234567")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	f := newBookingFixture(t)
	start := f.now.Add(100 * time.Hour)
	b, err := f.ledger.CreateBooking(context.Background(), 10, start, validCustomer())
	require.NoError(t, err)

	_, err = f.ledger.CancelByCustomer(context.Background(), b.ID, "09121234567")
	require.NoError(t, err)

	// The slot opens up again once the booking no longer holds it.
	_, err = f.ledger.CreateBooking(context.Background(), 10, start, validCustomer())
	assert.NoError(t, err)
}
