package types

import (
	"strings"
	"time"

	"github.com/mesh-intelligence/almanac/pkg/lunar"
)

// Member is a person whose birthday is kept in the lunar calendar.
type Member struct {
	MemberID  string     `json:"member_id"`
	Name      string     `json:"name"`
	Birthday  lunar.Date `json:"birthday"`
	CreatedAt time.Time  `json:"created_at"`
}

// Validate checks the fields Set requires.
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrInvalidName
	}
	if m.Birthday.IsZero() {
		return ErrInvalidData
	}
	return nil
}

// NextBirthday returns the Gregorian day of the first lunar anniversary of
// the member's birthday on or after from. A birthday in a leap month is
// observed in the regular month of the same number in years without that
// leap month, and day 30 falls back to day 29 in short months.
func (m *Member) NextBirthday(from time.Time) (time.Time, error) {
	today, err := lunar.FromTime(from)
	if err != nil {
		return time.Time{}, err
	}
	b := m.Birthday
	for year := today.Year(); year <= lunar.MaxYear; year++ {
		leap := b.Leap() && lunar.LeapMonth(year) == b.Month()
		n, err := lunar.MonthDays(year, b.Month(), leap)
		if err != nil {
			return time.Time{}, err
		}
		d, err := lunar.New(year, b.Month(), min(b.Day(), n), leap)
		if err != nil {
			return time.Time{}, err
		}
		if !d.Before(today) {
			return d.Time(from.Location()), nil
		}
	}
	return time.Time{}, lunar.ErrInvalidDate
}
