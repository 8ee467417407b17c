package model

import "time"

// Booking statuses.  A booking enters as pending; completed, cancelled and
// no_show are terminal.  Pending and confirmed bookings hold the slot: for
// a fixed resource no two bookings in those states may overlap in time.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
	BookingStatusNoShow    = "no_show"
)

// bookingTransitions is the full transition table for bookings.  Absent
// keys are terminal states.
var bookingTransitions = map[string][]string{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow},
}

// ValidBookingStatus reports whether s is a known booking status.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusNoShow:
		return true
	}
	return false
}

// CanTransitionBooking reports whether a booking may move from one status
// to another according to the state machine.
func CanTransitionBooking(from, to string) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// BookingHoldsSlot reports whether a booking in the given status still
// occupies its time range for overlap purposes.
func BookingHoldsSlot(status string) bool {
	return status == BookingStatusPending || status == BookingStatusConfirmed
}

// Booking records a customer's appointment for a service.  The time range
// is immutable after creation; only the status advances, and only through
// the transition table.  ResourceID is the seller whose calendar holds the
// slot.  CancellationWindowHours is snapshotted from the seller's policy at
// creation so later policy edits do not change the terms of an existing
// booking.
//
// Fields:
//  ID                      – UUID handed to the customer for lookup.
//  ServiceID               – booked service item.
//  ResourceID              – seller whose calendar the slot belongs to.
//  Customer                – contact details captured at creation.
//  StartsAt/EndsAt         – UTC instants; EndsAt = StartsAt + duration.
//  Status                  – state machine position.
//  CancellationWindowHours – snapshotted cancellation policy.
//  CreatedAt               – creation timestamp.
type Booking struct {
	ID                      string    // bookings.id (UUID)
	ServiceID               uint64    // bookings.service_id
	ResourceID              uint64    // bookings.resource_id
	Customer                Customer  // bookings.customer_* columns
	StartsAt                time.Time // bookings.starts_at (UTC)
	EndsAt                  time.Time // bookings.ends_at (UTC)
	Status                  string    // bookings.status
	CancellationWindowHours int       // bookings.cancellation_window_hours
	CreatedAt               time.Time // bookings.created_at
}

// Overlaps reports whether the booking's half-open range [StartsAt, EndsAt)
// intersects [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartsAt.Before(end) && b.EndsAt.After(start)
}

// CancellableAt reports whether a customer cancellation at the given
// instant is still inside the allowed window: now must be at least
// CancellationWindowHours before the booking starts.
func (b *Booking) CancellableAt(now time.Time) bool {
	deadline := b.StartsAt.Add(-time.Duration(b.CancellationWindowHours) * time.Hour)
	return !now.After(deadline)
}
