// Package model defines the domain entities of the storefront core and the
// typed errors that business rules surface to callers.  Handlers translate
// these errors into HTTP responses; they must never leak past the API
// boundary as opaque failures.
package model

import (
	"errors"
	"fmt"
)

// State machine and capacity errors.  SlotAlreadyTaken and the insufficient
// stock error both mean "the race was lost": the capacity observed at
// listing time is gone by commit time.  Callers should prompt the customer
// to refresh and retry rather than retry automatically.
var (
	ErrInvalidTransition        = errors.New("invalid status transition")
	ErrSlotAlreadyTaken         = errors.New("slot already taken")
	ErrCancellationWindowClosed = errors.New("cancellation window closed")
)

// ErrNegativeStock signals a breach of the stock invariant.  The conditional
// decrement makes it unreachable in normal operation, so it is treated as a
// bug-report condition: logged with full context, surfaced generically.
var ErrNegativeStock = errors.New("stock would go negative")

// ErrInvalidTimeFormat is returned for malformed or out-of-range "HH:MM"
// values.  Out-of-range components (hour > 23, minute > 59) are rejected the
// same way; there is no silent clamping.
var ErrInvalidTimeFormat = errors.New("invalid time format")

// InsufficientStockError reports a failed stock reservation together with
// the item name and the quantity actually available, so the storefront can
// show the customer what is left.
type InsufficientStockError struct {
	ItemName  string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available", e.ItemName, e.Available)
}

// ValidationError reports malformed customer input.  It is raised before
// any transaction opens, so a validation failure never touches the database.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}
