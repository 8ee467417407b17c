package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vitrinshop/vitrin/internal/clock"
	"github.com/vitrinshop/vitrin/internal/model"
	"github.com/vitrinshop/vitrin/internal/repository"
	"github.com/vitrinshop/vitrin/internal/slot"
)

// SlotService assembles the inputs for slot generation: the service item,
// the owning seller's lead-time policy, the day's availability rules and
// the bookings that still hold slots.  Generation itself is pure; this
// layer only does the reads.
type SlotService struct {
	clock    *clock.Service
	sellers  SellerStore
	items    ItemStore
	rules    AvailabilityStore
	bookings BookingStore
	now      func() time.Time
	log      zerolog.Logger
}

// NewSlotService constructs a SlotService.  now is the single source of
// truth for the current instant and is injectable for tests.
func NewSlotService(cs *clock.Service, sellers SellerStore, items ItemStore, rules AvailabilityStore, bookings BookingStore, now func() time.Time, log zerolog.Logger) *SlotService {
	return &SlotService{clock: cs, sellers: sellers, items: items, rules: rules, bookings: bookings, now: now, log: log}
}

// ListAvailableSlots returns the bookable slots for a service item on one
// local calendar day ("YYYY-MM-DD").  A closed day returns an empty list.
func (s *SlotService) ListAvailableSlots(ctx context.Context, serviceID uint64, dateLocal string) ([]slot.Slot, error) {
	year, month, day, err := clock.ParseCivilDate(dateLocal)
	if err != nil {
		return nil, err
	}
	item, err := s.items.Get(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if item.Type != model.ItemTypeService || !item.IsActive {
		return nil, repository.ErrItemNotFound
	}
	seller, err := s.sellers.GetByID(ctx, item.SellerID)
	if err != nil {
		return nil, err
	}

	weekday := s.clock.Weekday(s.clock.ToInstant(year, month, day, 12*60))
	rules, err := s.rules.ActiveByResourceWeekday(ctx, seller.ID, weekday)
	if err != nil {
		return nil, fmt.Errorf("load availability rules: %w", err)
	}

	// Bookings that could overlap any slot on this local day.
	dayStart := s.clock.ToInstant(year, month, day, 0)
	dayEnd := s.clock.ToInstant(year, month, day+1, 0)
	bookings, err := s.bookings.ActiveByResourceBetween(ctx, seller.ID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	slots, err := slot.Generate(s.clock, slot.Input{
		Year: year, Month: month, Day: day,
		Rules:         rules,
		Bookings:      bookings,
		Now:           s.now(),
		LeadTimeHours: seller.LeadTimeHours,
	})
	if err != nil {
		s.log.Error().Err(err).Uint64("service_id", serviceID).Str("date", dateLocal).
			Msg("slot generation failed on stored rules")
		return nil, err
	}
	return slots, nil
}
