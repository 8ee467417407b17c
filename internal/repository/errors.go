// Package repository implements data access over MySQL.  Sentinel errors
// defined here are reused across repositories so that higher layers such
// as services and handlers can distinguish failure scenarios with
// errors.Is.  Not-found conditions get their own sentinels per entity;
// ErrForbidden indicates the caller does not own the touched resource.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrSellerNotFound is returned when the referenced seller does not exist.
var ErrSellerNotFound = errors.New("seller not found")

// ErrItemNotFound is returned when the referenced catalog item does not exist.
var ErrItemNotFound = errors.New("item not found")

// ErrBookingNotFound is returned when the referenced booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrOrderNotFound is returned when the referenced order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// ErrRuleNotFound is returned when no availability rule matches the query.
var ErrRuleNotFound = errors.New("availability rule not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicateOrderNumber is returned when an order insert hits the unique
// index on order_number.  The ledger retries generation once before giving
// up.
var ErrDuplicateOrderNumber = errors.New("duplicate order number")

// mysqlDeadlock is ER_LOCK_DEADLOCK.
const mysqlDeadlock = 1213

// IsDeadlock reports whether err is a MySQL deadlock rollback.  Two
// booking attempts racing for the same empty slot range take compatible
// gap locks on the overlap check and then deadlock on their inserts; the
// losing transaction rolls back, which for the caller means the slot went
// to someone else.
func IsDeadlock(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDeadlock
}
