package localdate

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the calendar-day string form.
const Layout = "2006-01-02"

// ErrInvalidDay indicates a string is not a YYYY-MM-DD calendar day.
var ErrInvalidDay = errors.New("invalid calendar day")

// Day is a calendar day with no time and no zone.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// Of returns the calendar day of t in the process-local zone.
func Of(t time.Time) Day {
	return In(t, time.Local)
}

// In returns the calendar day of t on the wall clock of loc.
// A nil loc means the process-local zone.
func In(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// Today returns the current local calendar day.
func Today() Day {
	return Of(time.Now())
}

// TodayIn returns the current calendar day in loc.
func TodayIn(loc *time.Location) Day {
	return In(time.Now(), loc)
}

// Format returns the local YYYY-MM-DD string for t.
func Format(t time.Time) string {
	return Of(t).String()
}

// Weekday returns the local day of week of t, 0 = Sunday .. 6 = Saturday.
func Weekday(t time.Time) int {
	return Of(t).Weekday()
}

// Date builds a Day, normalizing out-of-range values the way time.Date does.
func Date(year int, month time.Month, day int) Day {
	return fromTime(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

// Parse parses a strict YYYY-MM-DD string.
func Parse(s string) (Day, error) {
	if len(s) != len(Layout) {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return fromTime(t), nil
}

// MustParse is Parse for literals; it panics on malformed input.
func MustParse(s string) Day {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String renders the day as YYYY-MM-DD.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText encodes the day as YYYY-MM-DD.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a YYYY-MM-DD day.
func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d == Day{}
}

// Weekday returns 0 = Sunday .. 6 = Saturday.
func (d Day) Weekday() int {
	return int(d.noon().Weekday())
}

// DaysInMonth returns the number of days in d's month.
func (d Day) DaysInMonth() int {
	return time.Date(d.Year, d.Month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// AddDays returns the day n days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	return fromTime(d.noon().AddDate(0, 0, n))
}

// Compare returns -1, 0, or +1 as d is before, equal to, or after o.
func (d Day) Compare(o Day) int {
	switch {
	case d.Year != o.Year:
		return sign(d.Year - o.Year)
	case d.Month != o.Month:
		return sign(int(d.Month) - int(o.Month))
	default:
		return sign(d.Day - o.Day)
	}
}

// Before reports whether d is strictly before o.
func (d Day) Before(o Day) bool { return d.Compare(o) < 0 }

// After reports whether d is strictly after o.
func (d Day) After(o Day) bool { return d.Compare(o) > 0 }

// Sub returns the whole number of days from o to d.
func (d Day) Sub(o Day) int {
	return int(d.noon().Sub(o.noon()).Hours() / 24)
}

// StartOfWeek returns the Sunday on or before d.
func (d Day) StartOfWeek() Day {
	return d.AddDays(-d.Weekday())
}

// Range returns every day from from to to inclusive. It is empty when to
// is before from.
func Range(from, to Day) []Day {
	if to.Before(from) {
		return nil
	}
	days := make([]Day, 0, to.Sub(from)+1)
	for d := from; !d.After(to); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// noon anchors calendar arithmetic at midday UTC so no DST shift can move
// the result across a day boundary.
func (d Day) noon() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

func fromTime(t time.Time) Day {
	y, m, dd := t.Date()
	return Day{Year: y, Month: m, Day: dd}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
