package utils

import (
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// LocalDate is a calendar day with no time-of-day and no zone. The zero value
// is invalid and every comparison against an invalid date is false.
type LocalDate struct {
	t     time.Time
	valid bool
}

// DateOf takes the calendar day of t as seen in t's own location, so a
// late-evening local time never rolls over to the next UTC day.
func DateOf(t time.Time) LocalDate {
	y, m, d := t.Date()
	return LocalDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), valid: true}
}

// Today returns the current calendar day in loc.
func Today(loc *time.Location) LocalDate {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

// FormatLocalDate renders t as YYYY-MM-DD in t's own location.
func FormatLocalDate(t time.Time) string {
	return DateOf(t).String()
}

// ParseLocalDate parses YYYY-MM-DD. Malformed input yields an invalid date
// rather than an error.
func ParseLocalDate(s string) LocalDate {
	if len(s) != len(DateLayout) {
		return LocalDate{}
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return LocalDate{}
	}
	return LocalDate{t: t, valid: true}
}

func (d LocalDate) Valid() bool { return d.valid }

func (d LocalDate) String() string {
	if !d.valid {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d LocalDate) Before(o LocalDate) bool {
	return d.valid && o.valid && d.t.Before(o.t)
}

func (d LocalDate) After(o LocalDate) bool {
	return d.valid && o.valid && d.t.After(o.t)
}

func (d LocalDate) Equal(o LocalDate) bool {
	return d.valid && o.valid && d.t.Equal(o.t)
}

// AddDays returns the date n days later. Invalid dates stay invalid.
func (d LocalDate) AddDays(n int) LocalDate {
	if !d.valid {
		return d
	}
	return LocalDate{t: d.t.AddDate(0, 0, n), valid: true}
}

// DaysUntil is the signed number of days from d to o, or 0 if either is invalid.
func (d LocalDate) DaysUntil(o LocalDate) int {
	if !d.valid || !o.valid {
		return 0
	}
	return int(o.t.Sub(d.t).Hours() / 24)
}

// DateRange is a stay [CheckIn, CheckOut): the check-out day itself is not occupied.
type DateRange struct {
	CheckIn  LocalDate
	CheckOut LocalDate
}

func NewDateRange(checkIn, checkOut string) DateRange {
	return DateRange{CheckIn: ParseLocalDate(checkIn), CheckOut: ParseLocalDate(checkOut)}
}

// Valid reports whether both ends parse and CheckOut is strictly after CheckIn.
func (r DateRange) Valid() bool {
	return r.CheckIn.Valid() && r.CheckOut.Valid() && r.CheckOut.After(r.CheckIn)
}

// Overlaps uses half-open semantics, so back-to-back stays never collide.
// Malformed ranges never overlap anything.
func (r DateRange) Overlaps(o DateRange) bool {
	if !r.CheckIn.Valid() || !r.CheckOut.Valid() || !o.CheckIn.Valid() || !o.CheckOut.Valid() {
		return false
	}
	return r.CheckIn.Before(o.CheckOut) && r.CheckOut.After(o.CheckIn)
}

// Nights lists every occupied night of a valid range.
func (r DateRange) Nights() []LocalDate {
	if !r.Valid() {
		return nil
	}
	nights := make([]LocalDate, 0, r.CheckIn.DaysUntil(r.CheckOut))
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDays(1) {
		nights = append(nights, d)
	}
	return nights
}

func (r DateRange) String() string {
	return "[" + r.CheckIn.String() + ", " + r.CheckOut.String() + ")"
}
