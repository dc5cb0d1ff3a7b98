package lunar

import "fmt"

// Date is a day in the lunar calendar. It is immutable; the zero value is
// not a valid date. Dates are comparable with == and usable as map keys.
type Date struct {
	year  int
	month int
	day   int
	leap  bool
}

// New returns the date for the given fields. leap selects the leap month
// numbered month; pass false for a regular month. It returns an error
// matching ErrInvalidDate when the fields do not name a real day.
func New(year, month, day int, leap bool) (Date, error) {
	n, err := MonthDays(year, month, leap)
	if err != nil {
		return Date{}, err
	}
	if day < 1 || day > n {
		return Date{}, fmt.Errorf("%w: day %d outside 1..%d for %s", ErrInvalidDate, day, n, monthLabel(year, month, leap))
	}
	return Date{year: year, month: month, day: day, leap: leap}, nil
}

// Year returns the lunar year.
func (d Date) Year() int { return d.year }

// Month returns the month number, 1 to 12.
func (d Date) Month() int { return d.month }

// Day returns the day of the month, 1 to 30.
func (d Date) Day() int { return d.day }

// Leap reports whether the date falls in the year's leap month.
func (d Date) Leap() bool { return d.leap }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String formats the date as 2018-05-03, with an L before the month for
// leap months: 2020-L04-01.
func (d Date) String() string {
	if d.leap {
		return fmt.Sprintf("%04d-L%02d-%02d", d.year, d.month, d.day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

func monthLabel(year, month int, leap bool) string {
	if leap {
		return fmt.Sprintf("%04d leap month %d", year, month)
	}
	return fmt.Sprintf("%04d month %d", year, month)
}
