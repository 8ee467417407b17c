package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Seller is a storefront owner.  The fields carried here are the ones the
// scheduling and order engines need: the platform fee percentage applied to
// each order and the booking policy knobs (minimum notice for new bookings,
// minimum notice for customer cancellations).
//
// Fields:
//  ID                      – primary key identifier.
//  Username                – unique handle used in the seller's page link.
//  DisplayName             – storefront display name.
//  FeePercentage           – platform fee as a percentage, e.g. 10.00.
//  LeadTimeHours           – minimum hours between "now" and a bookable slot.
//  CancellationWindowHours – minimum hours of notice for customer cancels.
//  CreatedAt               – creation timestamp.
type Seller struct {
	ID                      uint64          // sellers.id
	Username                string          // sellers.username
	DisplayName             string          // sellers.display_name
	FeePercentage           decimal.Decimal // sellers.fee_percentage
	LeadTimeHours           int             // sellers.lead_time_hours
	CancellationWindowHours int             // sellers.cancellation_window_hours
	CreatedAt               time.Time       // sellers.created_at
}
