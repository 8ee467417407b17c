package slot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinshop/vitrin/internal/clock"
	"github.com/vitrinshop/vitrin/internal/model"
)

func berlinClock(t *testing.T) *clock.Service {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return clock.NewWithLocation(loc)
}

func openRule(weekday int, start, end string, dur int) model.AvailabilityRule {
	return model.AvailabilityRule{
		ResourceID: 1, Weekday: weekday, StartLocal: start, EndLocal: end,
		SlotDurationMinutes: dur, IsActive: true,
	}
}

func breakRule(weekday int, start, end string) model.AvailabilityRule {
	return model.AvailabilityRule{
		ResourceID: 1, Weekday: weekday, StartLocal: start, EndLocal: end,
		IsBreak: true, IsActive: true,
	}
}

func TestGenerateSaturdayLeadTimeCutoff(t *testing.T) {
	cs := berlinClock(t)
	// 2025-07-05 is a Saturday (weekday 0).  Open 09:00-18:00, 30-minute
	// slots, no breaks, zero lead time, now = 09:05 local.
	in := Input{
		Year: 2025, Month: time.July, Day: 5,
		Rules: []model.AvailabilityRule{openRule(0, "09:00", "18:00", 30)},
		Now:   cs.ToInstant(2025, time.July, 5, 9*60+5),
	}
	slots, err := Generate(cs, in)
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	// 09:00 has already passed the cutoff; the first offered slot is 09:30.
	assert.Equal(t, "09:30", slots[0].DisplayStart)
	// The last slot is 17:30-18:00; 18:00 itself would exceed the window.
	last := slots[len(slots)-1]
	assert.Equal(t, "17:30", last.DisplayStart)
	assert.Equal(t, "18:00", last.DisplayEnd)
	assert.Len(t, slots, 17)
}

func TestGenerateClosedDay(t *testing.T) {
	cs := berlinClock(t)
	in := Input{
		Year: 2025, Month: time.July, Day: 6, // Sunday, weekday 1
		Rules: []model.AvailabilityRule{openRule(0, "09:00", "18:00", 30)},
		Now:   cs.ToInstant(2025, time.July, 1, 0),
	}
	slots, err := Generate(cs, in)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateInvertedAndZeroWindows(t *testing.T) {
	cs := berlinClock(t)
	for _, rule := range []model.AvailabilityRule{
		openRule(0, "18:00", "09:00", 30),
		openRule(0, "09:00", "09:00", 30),
	} {
		in := Input{
			Year: 2025, Month: time.July, Day: 5,
			Rules: []model.AvailabilityRule{rule},
			Now:   cs.ToInstant(2025, time.July, 1, 0),
		}
		slots, err := Generate(cs, in)
		require.NoError(t, err)
		assert.Empty(t, slots, "window %s-%s", rule.StartLocal, rule.EndLocal)
	}
}

func TestGenerateInactiveRuleIgnored(t *testing.T) {
	cs := berlinClock(t)
	rule := openRule(0, "09:00", "18:00", 30)
	rule.IsActive = false
	in := Input{
		Year: 2025, Month: time.July, Day: 5,
		Rules: []model.AvailabilityRule{rule},
		Now:   cs.ToInstant(2025, time.July, 1, 0),
	}
	slots, err := Generate(cs, in)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateBreakExclusion(t *testing.T) {
	cs := berlinClock(t)
	in := Input{
		Year: 2025, Month: time.July, Day: 5,
		Rules: []model.AvailabilityRule{
			openRule(0, "09:00", "13:00", 60),
			breakRule(0, "11:00", "12:00"),
		},
		Now: cs.ToInstant(2025, time.July, 1, 0),
	}
	slots, err := Generate(cs, in)
	require.NoError(t, err)
	starts := displayStarts(slots)
	assert.Equal(t, []string{"09:00", "10:00", "12:00"}, starts)
}

func TestGenerateBreakPartialOverlap(t *testing.T) {
	cs := berlinClock(t)
	// A break from 10:15 to 10:45 knocks out both the 10:00 and 10:30
	// slots because each intersects it.
	in := Input{
		Year: 2025, Month: time.July, Day: 5,
		Rules: []model.AvailabilityRule{
			openRule(0, "10:00", "12:00", 30),
			breakRule(0, "10:15", "10:45"),
		},
		Now: cs.ToInstant(2025, time.July, 1, 0),
	}
	slots, err := Generate(cs, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"11:00", "11:30"}, displayStarts(slots))
}

func TestGenerateBookingOverlap(t *testing.T) {
	cs := berlinClock(t)
	booked := model.Booking{
		ResourceID: 1,
		Status:     model.BookingStatusConfirmed,
		StartsAt:   cs.ToInstant(2025, time.July, 5, 10*60),
		EndsAt:     cs.ToInstant(2025, time.July, 5, 10*60+30),
	}
	cancelled := model.Booking{
		ResourceID: 1,
		Status:     model.BookingStatusCancelled,
		StartsAt:   cs.ToInstant(2025, time.July, 5, 11*60),
		EndsAt:     cs.ToInstant(2025, time.July, 5, 11*60+30),
	}
	in := Input{
		Year: 2025, Month: time.July, Day: 5,
		Rules:    []model.AvailabilityRule{openRule(0, "09:00", "12:00", 30)},
		Bookings: []model.Booking{booked, cancelled},
		Now:      cs.ToInstant(2025, time.July, 1, 0),
	}
	slots, err := Generate(cs, in)
	require.NoError(t, err)
	starts := displayStarts(slots)
	// 10:00 is taken by the confirmed booking; the cancelled one no longer
	// holds its slot, so 11:00 stays bookable.
	assert.NotContains(t, starts, "10:00")
	assert.Contains(t, starts, "11:00")
}

func TestGenerateLeadTimeHours(t *testing.T) {
	cs := berlinClock(t)
	in := Input{
		Year: 2025, Month: time.July, Day: 5,
		Rules:         []model.AvailabilityRule{openRule(0, "09:00", "18:00", 60)},
		Now:           cs.ToInstant(2025, time.July, 5, 8*60),
		LeadTimeHours: 3,
	}
	slots, err := Generate(cs, in)
	require.NoError(t, err)
	// Cutoff is 11:00 local; 11:00 itself satisfies start >= now+lead.
	assert.Equal(t, "11:00", slots[0].DisplayStart)
}

func TestGenerateDeterministic(t *testing.T) {
	cs := berlinClock(t)
	in := Input{
		Year: 2025, Month: time.July, Day: 5,
		Rules: []model.AvailabilityRule{
			openRule(0, "09:00", "18:00", 30),
			breakRule(0, "13:00", "14:00"),
		},
		Now:           cs.ToInstant(2025, time.July, 5, 9*60+5),
		LeadTimeHours: 1,
	}
	first, err := Generate(cs, in)
	require.NoError(t, err)
	second, err := Generate(cs, in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateAscendingNoOverlap(t *testing.T) {
	cs := berlinClock(t)
	now := cs.ToInstant(2025, time.June, 1, 0)
	rules := []model.AvailabilityRule{
		openRule(0, "09:00", "18:00", 45),
		breakRule(0, "12:00", "13:30"),
	}
	// Check the ordering and non-overlap properties across a whole week of
	// Saturdays in July.
	for day := 5; day <= 26; day += 7 {
		slots, err := Generate(cs, Input{
			Year: 2025, Month: time.July, Day: day, Rules: rules, Now: now,
		})
		require.NoError(t, err)
		for i := 1; i < len(slots); i++ {
			assert.True(t, slots[i].StartsAt.After(slots[i-1].StartsAt),
				"day %d: starts must be strictly ascending", day)
			assert.False(t, slots[i].StartsAt.Before(slots[i-1].EndsAt),
				"day %d: slots must not overlap", day)
		}
	}
}

func TestGenerateDSTSpringForwardDay(t *testing.T) {
	cs := berlinClock(t)
	// 2025-03-30 is the Berlin spring-forward Sunday (weekday 1): wall
	// clocks jump from 02:00 to 03:00.  An open window spanning the gap
	// produces slots whose instants honor the offset change.
	in := Input{
		Year: 2025, Month: time.March, Day: 30,
		Rules: []model.AvailabilityRule{openRule(1, "01:00", "05:00", 60)},
		Now:   cs.ToInstant(2025, time.March, 29, 0),
	}
	slots, err := Generate(cs, in)
	require.NoError(t, err)
	// 02:00 does not exist on this day and is skipped entirely.
	require.Len(t, slots, 3)
	assert.Equal(t, []string{"01:00", "03:00", "04:00"}, displayStarts(slots))
	// 01:00 CET and 03:00 CEST are only one absolute hour apart.
	assert.Equal(t, time.Hour, slots[1].StartsAt.Sub(slots[0].StartsAt))
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i].StartsAt.After(slots[i-1].StartsAt))
	}
}

func TestGenerateMalformedRuleTime(t *testing.T) {
	cs := berlinClock(t)
	in := Input{
		Year: 2025, Month: time.July, Day: 5,
		Rules: []model.AvailabilityRule{openRule(0, "9am", "18:00", 30)},
		Now:   cs.ToInstant(2025, time.July, 1, 0),
	}
	_, err := Generate(cs, in)
	require.Error(t, err)
}

func displayStarts(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.DisplayStart)
	}
	return out
}
