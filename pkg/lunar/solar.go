package lunar

import (
	"fmt"
	"time"

	"cloudeng.io/datetime"
)

// epoch is the Gregorian day of lunar MinYear-01-01.
var epoch = time.Date(MinYear, time.January, 31, 0, 0, 0, 0, time.UTC)

// totalDays is the number of days covered by the year table.
var totalDays = func() int {
	n := 0
	for y := MinYear; y <= MaxYear; y++ {
		n += yearDays(y)
	}
	return n
}()

// Offset returns the number of days between lunar MinYear-01-01 and d.
// The zero Date is not a day; its offset is -1, one day before MinYear.
func (d Date) Offset() int {
	n := 0
	for y := MinYear; y < d.year; y++ {
		n += yearDays(y)
	}
	lm := LeapMonth(d.year)
	for m := 1; m < d.month; m++ {
		n += regularDays(d.year, m)
		if m == lm {
			n += leapDays(d.year)
		}
	}
	if d.leap {
		n += regularDays(d.year, d.month)
	}
	return n + d.day - 1
}

func fromOffset(n int) (Date, error) {
	if n < 0 || n >= totalDays {
		return Date{}, fmt.Errorf("%w: day offset %d outside the supported range", ErrInvalidDate, n)
	}
	year := MinYear
	for ; ; year++ {
		yd := yearDays(year)
		if n < yd {
			break
		}
		n -= yd
	}
	lm := LeapMonth(year)
	for m := 1; m <= 12; m++ {
		md := regularDays(year, m)
		if n < md {
			return Date{year: year, month: m, day: n + 1}, nil
		}
		n -= md
		if m == lm {
			ld := leapDays(year)
			if n < ld {
				return Date{year: year, month: m, day: n + 1, leap: true}, nil
			}
			n -= ld
		}
	}
	// Unreachable while yearDays agrees with the month sizes.
	return Date{}, fmt.Errorf("%w: day offset overflows year %d", ErrInvalidDate, year)
}

// ToSolar returns the Gregorian date of d. Check IsZero first: the zero
// Date maps to 1900-01-30, the day before the table starts.
func (d Date) ToSolar() datetime.CalendarDate {
	t := epoch.AddDate(0, 0, d.Offset())
	return datetime.CalendarDate{
		Year:  t.Year(),
		Month: datetime.Month(t.Month()),
		Day:   t.Day(),
	}
}

// Time returns midnight of the Gregorian date of d in loc. Like ToSolar
// it is meaningless for the zero Date.
func (d Date) Time(loc *time.Location) time.Time {
	s := d.ToSolar()
	return time.Date(s.Year, time.Month(s.Month), s.Day, 0, 0, 0, 0, loc)
}

// FromSolar returns the lunar date falling on the Gregorian date cd.
func FromSolar(cd datetime.CalendarDate) (Date, error) {
	if cd.Year < MinYear || cd.Year > MaxYear+1 {
		return Date{}, fmt.Errorf("%w: solar year %d outside the supported range", ErrInvalidDate, cd.Year)
	}
	if cd.Month < 1 || cd.Month > 12 {
		return Date{}, fmt.Errorf("%w: solar month %d", ErrInvalidDate, cd.Month)
	}
	if cd.Day < 1 || cd.Day > datetime.DaysInMonth(cd.Year, cd.Month) {
		return Date{}, fmt.Errorf("%w: solar day %d in %04d-%02d", ErrInvalidDate, cd.Day, cd.Year, cd.Month)
	}
	t := time.Date(cd.Year, time.Month(cd.Month), cd.Day, 0, 0, 0, 0, time.UTC)
	return fromOffset(int(t.Sub(epoch) / (24 * time.Hour)))
}

// FromTime returns the lunar date of the calendar day of t in its own
// location.
func FromTime(t time.Time) (Date, error) {
	y, m, day := t.Date()
	return FromSolar(datetime.CalendarDate{Year: y, Month: datetime.Month(m), Day: day})
}

// AddDays returns d moved by n days, which may be negative.
func (d Date) AddDays(n int) (Date, error) {
	return fromOffset(d.Offset() + n)
}

// Sub returns the number of days from o to d.
func (d Date) Sub(o Date) int {
	return d.Offset() - o.Offset()
}

// Compare returns -1, 0 or +1 as d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch a, b := d.Offset(), o.Offset(); {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports whether d is later than o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }
