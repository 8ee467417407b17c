package service

import (
	"context"
	"database/sql"

	"github.com/vitrinshop/vitrin/internal/clock"
	"github.com/vitrinshop/vitrin/internal/model"
)

// ScheduleService lets a seller edit their weekly availability.  Edits are
// soft-state replacements: setting a day's window deactivates the previous
// rules for that day and inserts fresh ones.  In-flight slot listings may
// briefly offer slots from the old schedule; booking-time re-validation
// catches those, so schedule writes need no extra synchronization.
type ScheduleService struct {
	runner  TxRunner
	rules   AvailabilityStore
	sellers SellerStore
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(runner TxRunner, rules AvailabilityStore, sellers SellerStore) *ScheduleService {
	return &ScheduleService{runner: runner, rules: rules, sellers: sellers}
}

// Schedule returns the seller's active rules across the week.
func (s *ScheduleService) Schedule(ctx context.Context, sellerID uint64) ([]model.AvailabilityRule, error) {
	return s.rules.ActiveByResource(ctx, sellerID)
}

// SetDayWindow replaces the open window for one weekday.  Any previous
// rules for the day, breaks included, are deactivated; a break only makes
// sense relative to the window it was cut from.
func (s *ScheduleService) SetDayWindow(ctx context.Context, sellerID uint64, weekday int, startLocal, endLocal string, slotDurationMinutes int) (*model.AvailabilityRule, error) {
	if weekday < model.WeekdaySaturday || weekday > model.WeekdayFriday {
		return nil, &model.ValidationError{Field: "weekday", Reason: "must be 0 (Saturday) through 6 (Friday)"}
	}
	startMin, err := clock.ParseClock(startLocal)
	if err != nil {
		return nil, err
	}
	endMin, err := clock.ParseClock(endLocal)
	if err != nil {
		return nil, err
	}
	if endMin <= startMin {
		return nil, &model.ValidationError{Field: "end_local", Reason: "must be after start_local"}
	}
	if slotDurationMinutes <= 0 || slotDurationMinutes > endMin-startMin {
		return nil, &model.ValidationError{Field: "slot_duration_minutes", Reason: "must be positive and fit the window"}
	}

	rule := &model.AvailabilityRule{
		ResourceID:          sellerID,
		Weekday:             weekday,
		StartLocal:          startLocal,
		EndLocal:            endLocal,
		SlotDurationMinutes: slotDurationMinutes,
	}
	err = s.runner.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if err := s.rules.DeactivateDayTx(ctx, tx, sellerID, weekday); err != nil {
			return err
		}
		return s.rules.InsertTx(ctx, tx, rule)
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// AddBreak carves a closed interval out of a weekday's open window.  The
// break must fall fully inside the active window.
func (s *ScheduleService) AddBreak(ctx context.Context, sellerID uint64, weekday int, startLocal, endLocal string) (*model.AvailabilityRule, error) {
	if weekday < model.WeekdaySaturday || weekday > model.WeekdayFriday {
		return nil, &model.ValidationError{Field: "weekday", Reason: "must be 0 (Saturday) through 6 (Friday)"}
	}
	startMin, err := clock.ParseClock(startLocal)
	if err != nil {
		return nil, err
	}
	endMin, err := clock.ParseClock(endLocal)
	if err != nil {
		return nil, err
	}
	if endMin <= startMin {
		return nil, &model.ValidationError{Field: "end_local", Reason: "must be after start_local"}
	}

	rule := &model.AvailabilityRule{
		ResourceID: sellerID,
		Weekday:    weekday,
		StartLocal: startLocal,
		EndLocal:   endLocal,
		IsBreak:    true,
	}
	err = s.runner.RunInTransaction(ctx, func(tx *sql.Tx) error {
		open, err := s.rules.ActiveOpenRuleTx(ctx, tx, sellerID, weekday)
		if err != nil {
			return err
		}
		openStart, err := clock.ParseClock(open.StartLocal)
		if err != nil {
			return err
		}
		openEnd, err := clock.ParseClock(open.EndLocal)
		if err != nil {
			return err
		}
		if startMin < openStart || endMin > openEnd {
			return &model.ValidationError{Field: "break", Reason: "must fall inside the day's open window"}
		}
		return s.rules.InsertTx(ctx, tx, rule)
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// CloseDay deactivates all rules for one weekday, closing the resource on
// that day.
func (s *ScheduleService) CloseDay(ctx context.Context, sellerID uint64, weekday int) error {
	if weekday < model.WeekdaySaturday || weekday > model.WeekdayFriday {
		return &model.ValidationError{Field: "weekday", Reason: "must be 0 (Saturday) through 6 (Friday)"}
	}
	return s.runner.RunInTransaction(ctx, func(tx *sql.Tx) error {
		return s.rules.DeactivateDayTx(ctx, tx, sellerID, weekday)
	})
}

// UpdatePolicy stores the seller's lead-time and cancellation-window
// settings.  Existing bookings keep their snapshotted window.
func (s *ScheduleService) UpdatePolicy(ctx context.Context, sellerID uint64, leadTimeHours, cancellationWindowHours int) error {
	if leadTimeHours < 0 {
		return &model.ValidationError{Field: "lead_time_hours", Reason: "must not be negative"}
	}
	if cancellationWindowHours < 0 {
		return &model.ValidationError{Field: "cancellation_window_hours", Reason: "must not be negative"}
	}
	return s.sellers.UpdatePolicy(ctx, sellerID, leadTimeHours, cancellationWindowHours)
}
