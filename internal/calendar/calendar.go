// Package calendar converts absolute instants to civil calendar days in a
// specific timezone, and back. All reading analytics bucket activity by the
// user's local day, so this is the one place day arithmetic is allowed.
package calendar

import (
	"fmt"
	"time"

	"github.com/pageturnapp/pageturn-server/internal/errors"
)

// Day is a civil calendar date with no time-of-day component. It is only
// meaningful relative to the timezone it was derived in. Comparable, so it
// works as a map key for daily totals.
type Day struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Date  int        `json:"date"`
}

// LoadZone resolves an IANA timezone identifier.
// Unknown identifiers return a CodeInvalidTimezone domain error so callers
// can fall back to a default zone instead of failing the request.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return nil, errors.InvalidTimezone("timezone identifier is empty")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.InvalidTimezonef("unknown timezone %q", name).WithCause(err)
	}
	return loc, nil
}

// DayOf returns the calendar day the instant falls on in loc, using the
// zone's civil rules (DST included). Instants a nanosecond apart across
// local midnight land on different days.
func DayOf(t time.Time, loc *time.Location) Day {
	year, month, date := t.In(loc).Date()
	return Day{Year: year, Month: month, Date: date}
}

// StartOfDay returns the instant at 00:00:00 local time on d in loc.
// time.Date performs the civil-to-instant conversion, so days whose
// midnight falls inside a DST gap resolve to the normalized instant rather
// than a nonexistent local time.
func StartOfDay(d Day, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Date, 0, 0, 0, 0, loc)
}

// Today returns the calendar day of now in loc. now is always an explicit
// parameter so callers stay deterministic under test.
func Today(now time.Time, loc *time.Location) Day {
	return DayOf(now, loc)
}

// AddDays returns d shifted by n calendar days. Pure date math, no
// timezone involved; time.Date normalizes across month and year ends.
func AddDays(d Day, n int) Day {
	t := time.Date(d.Year, d.Month, d.Date+n, 0, 0, 0, 0, time.UTC)
	year, month, date := t.Date()
	return Day{Year: year, Month: month, Date: date}
}

// Compare orders two days chronologically: -1 if d is before other,
// 0 if equal, +1 if after.
func (d Day) Compare(other Day) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Date, other.Date)
	}
}

// Before reports whether d is chronologically before other.
func (d Day) Before(other Day) bool { return d.Compare(other) < 0 }

// After reports whether d is chronologically after other.
func (d Day) After(other Day) bool { return d.Compare(other) > 0 }

// String formats the day as YYYY-MM-DD.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Date)
}

// ParseDay parses a YYYY-MM-DD string into a Day.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Day{}, errors.Validationf("invalid day %q: expected YYYY-MM-DD", s).WithCause(err)
	}
	year, month, date := t.Date()
	return Day{Year: year, Month: month, Date: date}, nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
