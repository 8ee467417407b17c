// Package clock converts between the storefront's fixed civil calendar and
// absolute instants.  The whole platform runs on one named timezone; this
// package is the single place that knows about it, including its DST
// transition table (carried by the stdlib tzdata for the named zone).
// Everything stored in the database is UTC; everything shown to people is
// local wall-clock produced here.
package clock

import (
	"fmt"
	"time"

	"github.com/vitrinshop/vitrin/internal/model"
)

// Service performs all local-time arithmetic for one named timezone.
type Service struct {
	loc *time.Location
}

// New loads the named timezone and returns a Service bound to it.  The name
// must be an IANA zone like "Asia/Tehran".
func New(name string) (*Service, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return &Service{loc: loc}, nil
}

// NewWithLocation returns a Service for an already-loaded location.  Used
// by tests that need a specific DST behavior.
func NewWithLocation(loc *time.Location) *Service { return &Service{loc: loc} }

// Location returns the service's timezone.
func (s *Service) Location() *time.Location { return s.loc }

// ParseClock parses a "HH:MM" wall-clock string into minutes since
// midnight.  Malformed strings and out-of-range components (hour > 23,
// minute > 59) fail with ErrInvalidTimeFormat; nothing is clamped.
func ParseClock(v string) (int, error) {
	if len(v) != 5 || v[2] != ':' {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidTimeFormat, v)
	}
	h, err := twoDigits(v[0], v[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidTimeFormat, v)
	}
	m, err := twoDigits(v[3], v[4])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidTimeFormat, v)
	}
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidTimeFormat, v)
	}
	return h*60 + m, nil
}

func twoDigits(a, b byte) (int, error) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, model.ErrInvalidTimeFormat
	}
	return int(a-'0')*10 + int(b-'0'), nil
}

// ToInstant resolves a local civil date plus minutes-since-midnight to an
// absolute instant.  The offset is looked up for that specific wall-clock
// value, so DST transition days resolve per slot: a nonexistent
// spring-forward time maps to the instant after the gap and an ambiguous
// fall-back time takes the zone's first occurrence, both per time.Date
// semantics for the zone.
func (s *Service) ToInstant(year int, month time.Month, day, minuteOfDay int) time.Time {
	return time.Date(year, month, day, minuteOfDay/60, minuteOfDay%60, 0, 0, s.loc).UTC()
}

// CivilDate returns the local calendar date containing the instant.
func (s *Service) CivilDate(t time.Time) (int, time.Month, int) {
	return t.In(s.loc).Date()
}

// Weekday returns the storefront weekday (0=Saturday .. 6=Friday) of the
// local calendar day containing the instant.
func (s *Service) Weekday(t time.Time) int {
	return WeekdayOf(t.In(s.loc).Weekday())
}

// WeekdayOf maps a time.Weekday (0=Sunday) onto the storefront numbering
// (0=Saturday).
func WeekdayOf(w time.Weekday) int {
	return (int(w) + 1) % 7
}

// FormatLocal renders an instant as local "HH:MM".
func (s *Service) FormatLocal(t time.Time) string {
	return t.In(s.loc).Format("15:04")
}

// FormatLocalDate renders an instant's local calendar date as "YYYY-MM-DD".
func (s *Service) FormatLocalDate(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02")
}

// ParseCivilDate parses a "YYYY-MM-DD" local calendar date.  The date
// itself carries no offset; pair it with ToInstant to obtain instants.
func ParseCivilDate(v string) (int, time.Month, int, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", model.ErrInvalidTimeFormat, v)
	}
	y, m, d := t.Date()
	return y, m, d, nil
}

// FormatClock renders minutes-since-midnight back to "HH:MM".
func FormatClock(minuteOfDay int) string {
	return fmt.Sprintf("%02d:%02d", minuteOfDay/60, minuteOfDay%60)
}
