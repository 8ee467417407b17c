// Package slot derives bookable appointment slots from a resource's weekly
// availability rules.  Generation is a pure computation: the caller hands
// in the rules, the committed bookings and an explicit "now", and identical
// inputs always produce identical output.
package slot

import (
	"time"

	"github.com/vitrinshop/vitrin/internal/clock"
	"github.com/vitrinshop/vitrin/internal/model"
)

// Slot is one bookable interval.  Instants are UTC; the display strings
// are local wall-clock for rendering on the storefront page.
type Slot struct {
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	DisplayStart string    `json:"display_start"`
	DisplayEnd   string    `json:"display_end"`
}

// Input bundles everything slot generation depends on.  Bookings should be
// the resource's pending and confirmed bookings around the target date;
// anything in another status is ignored.  Now is explicit so that listing
// the same day twice with the same inputs is idempotent.
type Input struct {
	Year          int
	Month         time.Month
	Day           int
	Rules         []model.AvailabilityRule
	Bookings      []model.Booking
	Now           time.Time
	LeadTimeHours int
}

// Generate produces the ordered list of bookable start times for one local
// calendar day.  A day with no active open rule, or an open rule whose
// window is empty or inverted, yields an empty list rather than an error.
// Malformed "HH:MM" values in a rule surface as ErrInvalidTimeFormat.
func Generate(cs *clock.Service, in Input) ([]Slot, error) {
	// Weekday of the civil day; noon keeps clear of DST boundaries.
	weekday := cs.Weekday(cs.ToInstant(in.Year, in.Month, in.Day, 12*60))

	open := activeOpenRule(in.Rules, weekday)
	if open == nil {
		return []Slot{}, nil
	}
	startMin, err := clock.ParseClock(open.StartLocal)
	if err != nil {
		return nil, err
	}
	endMin, err := clock.ParseClock(open.EndLocal)
	if err != nil {
		return nil, err
	}
	dur := open.SlotDurationMinutes
	if dur <= 0 || endMin <= startMin {
		return []Slot{}, nil
	}

	breaks, err := breakWindows(in.Rules, weekday)
	if err != nil {
		return nil, err
	}

	cutoff := in.Now.Add(time.Duration(in.LeadTimeHours) * time.Hour)
	slots := make([]Slot, 0, (endMin-startMin)/dur)
	for cand := startMin; cand+dur <= endMin; cand += dur {
		if intersectsBreak(breaks, cand, cand+dur) {
			continue
		}
		// The offset is resolved per slot, so DST transition days come out
		// right even when the offset changes mid-window.
		st := cs.ToInstant(in.Year, in.Month, in.Day, cand)
		en := cs.ToInstant(in.Year, in.Month, in.Day, cand+dur)
		// A spring-forward gap swallows some wall-clock times; those
		// normalize to an instant that formats differently.  Skipping them
		// keeps the output strictly ascending with no duplicate instants.
		if cs.FormatLocal(st) != clock.FormatClock(cand) {
			continue
		}
		if st.Before(cutoff) {
			continue
		}
		if overlapsBooking(in.Bookings, st, en) {
			continue
		}
		slots = append(slots, Slot{
			StartsAt:     st,
			EndsAt:       en,
			DisplayStart: clock.FormatClock(cand),
			DisplayEnd:   clock.FormatClock(cand + dur),
		})
	}
	return slots, nil
}

// activeOpenRule selects the active non-break rule for the weekday.  The
// store enforces at most one; if several slipped in, the first wins
// deterministically.
func activeOpenRule(rules []model.AvailabilityRule, weekday int) *model.AvailabilityRule {
	for i := range rules {
		r := &rules[i]
		if r.IsActive && !r.IsBreak && r.Weekday == weekday {
			return r
		}
	}
	return nil
}

type window struct{ start, end int }

func breakWindows(rules []model.AvailabilityRule, weekday int) ([]window, error) {
	var out []window
	for _, r := range rules {
		if !r.IsActive || !r.IsBreak || r.Weekday != weekday {
			continue
		}
		s, err := clock.ParseClock(r.StartLocal)
		if err != nil {
			return nil, err
		}
		e, err := clock.ParseClock(r.EndLocal)
		if err != nil {
			return nil, err
		}
		if e > s {
			out = append(out, window{start: s, end: e})
		}
	}
	return out, nil
}

// intersectsBreak applies the half-open overlap test in local minutes.
func intersectsBreak(breaks []window, start, end int) bool {
	for _, w := range breaks {
		if start < w.end && end > w.start {
			return true
		}
	}
	return false
}

// overlapsBooking applies the half-open overlap test against bookings that
// still hold their slot.
func overlapsBooking(bookings []model.Booking, start, end time.Time) bool {
	for i := range bookings {
		b := &bookings[i]
		if model.BookingHoldsSlot(b.Status) && b.Overlaps(start, end) {
			return true
		}
	}
	return false
}
