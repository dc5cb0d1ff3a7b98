package lunar

import "fmt"

// Supported year range, inclusive.
const (
	MinYear = 1900
	MaxYear = 2100
)

// yearInfo encodes one lunar year per entry, starting at MinYear.
//
//	bits 0-3   leap month number, 0 when the year has none
//	bits 4-15  month sizes, month 1 at bit 15 down to month 12 at bit 4;
//	           a set bit is a 30 day month, clear is 29
//	bit  16    size of the leap month, set for 30 days
var yearInfo = [MaxYear - MinYear + 1]uint32{
	0x04bd8, 0x04ae0, 0x0a570, 0x054d5, 0x0d260, 0x0d950, 0x16554, 0x056a0, 0x09ad0, 0x055d2, // 1900
	0x04ae0, 0x0a5b6, 0x0a4d0, 0x0d250, 0x1d255, 0x0b540, 0x0d6a0, 0x0ada2, 0x095b0, 0x14977, // 1910
	0x04970, 0x0a4b0, 0x0b4b5, 0x06a50, 0x06d40, 0x1ab54, 0x02b60, 0x09570, 0x052f2, 0x04970, // 1920
	0x06566, 0x0d4a0, 0x0ea50, 0x16a95, 0x05ad0, 0x02b60, 0x186e3, 0x092e0, 0x1c8d7, 0x0c950, // 1930
	0x0d4a0, 0x1d8a6, 0x0b550, 0x056a0, 0x1a5b4, 0x025d0, 0x092d0, 0x0d2b2, 0x0a950, 0x0b557, // 1940
	0x06ca0, 0x0b550, 0x15355, 0x04da0, 0x0a5b0, 0x14573, 0x052b0, 0x0a9a8, 0x0e950, 0x06aa0, // 1950
	0x0aea6, 0x0ab50, 0x04b60, 0x0aae4, 0x0a570, 0x05260, 0x0f263, 0x0d950, 0x05b57, 0x056a0, // 1960
	0x096d0, 0x04dd5, 0x04ad0, 0x0a4d0, 0x0d4d4, 0x0d250, 0x0d558, 0x0b540, 0x0b6a0, 0x195a6, // 1970
	0x095b0, 0x049b0, 0x0a974, 0x0a4b0, 0x0b27a, 0x06a50, 0x06d40, 0x0af46, 0x0ab60, 0x09570, // 1980
	0x04af5, 0x04970, 0x064b0, 0x074a3, 0x0ea50, 0x06b58, 0x05ac0, 0x0ab60, 0x096d5, 0x092e0, // 1990
	0x0c960, 0x0d954, 0x0d4a0, 0x0da50, 0x07552, 0x056a0, 0x0abb7, 0x025d0, 0x092d0, 0x0cab5, // 2000
	0x0a950, 0x0b4a0, 0x0baa4, 0x0ad50, 0x055d9, 0x04ba0, 0x0a5b0, 0x15176, 0x052b0, 0x0a930, // 2010
	0x07954, 0x06aa0, 0x0ad50, 0x05b52, 0x04b60, 0x0a6e6, 0x0a4e0, 0x0d260, 0x0ea65, 0x0d530, // 2020
	0x05aa0, 0x076a3, 0x096d0, 0x04afb, 0x04ad0, 0x0a4d0, 0x1d0b6, 0x0d250, 0x0d520, 0x0dd45, // 2030
	0x0b5a0, 0x056d0, 0x055b2, 0x049b0, 0x0a577, 0x0a4b0, 0x0aa50, 0x1b255, 0x06d20, 0x0ada0, // 2040
	0x14b63, 0x09370, 0x049f8, 0x04970, 0x064b0, 0x168a6, 0x0ea50, 0x06b20, 0x1a6c4, 0x0aae0, // 2050
	0x092e0, 0x0d2e3, 0x0c960, 0x0d557, 0x0d4a0, 0x0da50, 0x05d55, 0x056a0, 0x0a6d0, 0x055d4, // 2060
	0x052d0, 0x0a9b8, 0x0a950, 0x0b4a0, 0x0b6a6, 0x0ad50, 0x055a0, 0x0aba4, 0x0a5b0, 0x052b0, // 2070
	0x0b273, 0x06930, 0x07337, 0x06aa0, 0x0ad50, 0x14b55, 0x04b60, 0x0a570, 0x054e4, 0x0d160, // 2080
	0x0e968, 0x0d520, 0x0daa0, 0x16aa6, 0x056d0, 0x04ae0, 0x0a9d4, 0x0a2d0, 0x0d150, 0x0f252, // 2090
	0x0d520, // 2100
}

func inRange(year int) bool {
	return year >= MinYear && year <= MaxYear
}

func checkYear(year int) error {
	if !inRange(year) {
		return fmt.Errorf("%w: year %d outside %d..%d", ErrInvalidDate, year, MinYear, MaxYear)
	}
	return nil
}

// LeapMonth returns the number of the month repeated as a leap month in
// year, or 0 when the year has no leap month or is outside the table.
func LeapMonth(year int) int {
	if !inRange(year) {
		return 0
	}
	return int(yearInfo[year-MinYear] & 0xf)
}

// leapDays assumes year is in range.
func leapDays(year int) int {
	if LeapMonth(year) == 0 {
		return 0
	}
	if yearInfo[year-MinYear]&0x10000 != 0 {
		return 30
	}
	return 29
}

// regularDays assumes year and month are in range.
func regularDays(year, month int) int {
	if yearInfo[year-MinYear]&(0x10000>>uint(month)) != 0 {
		return 30
	}
	return 29
}

// MonthDays returns the length of a month. leap selects the leap month
// sharing the number month, which must exist in that year.
func MonthDays(year, month int, leap bool) (int, error) {
	if err := checkYear(year); err != nil {
		return 0, err
	}
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: month %d outside 1..12", ErrInvalidDate, month)
	}
	if leap {
		if LeapMonth(year) != month {
			return 0, fmt.Errorf("%w: year %d has no leap month %d", ErrInvalidDate, year, month)
		}
		return leapDays(year), nil
	}
	return regularDays(year, month), nil
}

// YearDays returns the number of days in a lunar year.
func YearDays(year int) (int, error) {
	if err := checkYear(year); err != nil {
		return 0, err
	}
	return yearDays(year), nil
}

func yearDays(year int) int {
	n := 12 * 29
	info := yearInfo[year-MinYear]
	for bit := uint32(0x8000); bit > 0x8; bit >>= 1 {
		if info&bit != 0 {
			n++
		}
	}
	return n + leapDays(year)
}
