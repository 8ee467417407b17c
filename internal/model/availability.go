package model

import "time"

// Weekday numbering used throughout the scheduling engine.  The storefront's
// civil week starts on Saturday, so 0=Saturday .. 6=Friday.  This differs
// from time.Weekday (0=Sunday); internal/clock owns the conversion.
const (
	WeekdaySaturday = 0
	WeekdayFriday   = 6
)

// AvailabilityRule describes one window of a resource's weekly recurring
// schedule.  A non-break rule opens the day (at most one active per
// resource+weekday); break rules carve closed intervals out of it and must
// fall fully inside the open window.  Rules are never deleted, only
// deactivated, so bookings made under an old schedule keep their context.
//
// Fields:
//  ID                  – primary key identifier.
//  ResourceID          – schedulable entity (the seller) this rule belongs to.
//  Weekday             – 0=Saturday .. 6=Friday.
//  StartLocal/EndLocal – "HH:MM" local wall-clock bounds of the window.
//  SlotDurationMinutes – granularity of generated slots; ignored for breaks.
//  IsBreak             – true for break windows.
//  IsActive            – soft state; inactive rules are kept for history.
type AvailabilityRule struct {
	ID                  uint64    // availability_rules.id
	ResourceID          uint64    // availability_rules.resource_id
	Weekday             int       // availability_rules.weekday
	StartLocal          string    // availability_rules.start_local
	EndLocal            string    // availability_rules.end_local
	SlotDurationMinutes int       // availability_rules.slot_duration_minutes
	IsBreak             bool      // availability_rules.is_break
	IsActive            bool      // availability_rules.is_active
	CreatedAt           time.Time // availability_rules.created_at
}
