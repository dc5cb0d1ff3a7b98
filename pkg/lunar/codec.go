package lunar

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// encodedLen is the width of the storable form YYYYMMDDL.
const encodedLen = 9

// Encode returns the storable form of d: four digits of year, two of
// month, two of day and a trailing 1 for leap months or 0 otherwise.
func (d Date) Encode() string {
	leap := 0
	if d.leap {
		leap = 1
	}
	return fmt.Sprintf("%04d%02d%02d%d", d.year, d.month, d.day, leap)
}

// Decode parses the output of Encode. Malformed input returns an error
// matching ErrDecode; well formed input naming an impossible day matches
// both ErrDecode and ErrInvalidDate.
func Decode(s string) (Date, error) {
	if len(s) != encodedLen {
		return Date{}, fmt.Errorf("%w: %q: want %d digits", ErrDecode, s, encodedLen)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Date{}, fmt.Errorf("%w: %q: non-digit at offset %d", ErrDecode, s, i)
		}
	}
	year := atoi(s[0:4])
	month := atoi(s[4:6])
	day := atoi(s[6:8])
	var leap bool
	switch s[8] {
	case '0':
	case '1':
		leap = true
	default:
		return Date{}, fmt.Errorf("%w: %q: leap flag must be 0 or 1", ErrDecode, s)
	}
	d, err := New(year, month, day, leap)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q: %w", ErrDecode, s, err)
	}
	return d, nil
}

// atoi assumes s holds only ASCII digits.
func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}

// Parse reads the String form of a date, 2018-05-03 or 2020-L04-01.
func Parse(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q: want YYYY-MM-DD", ErrDecode, s)
	}
	leap := false
	if m, ok := strings.CutPrefix(parts[1], "L"); ok {
		leap = true
		parts[1] = m
	}
	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q: %w", ErrDecode, s, err)
		}
		fields[i] = n
	}
	return New(fields[0], fields[1], fields[2], leap)
}

// MarshalText implements encoding.TextMarshaler using Encode.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("%w: zero date", ErrInvalidDate)
	}
	return []byte(d.Encode()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using Decode.
func (d *Date) UnmarshalText(text []byte) error {
	v, err := Decode(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("%w: zero date", ErrInvalidDate)
	}
	return d.Encode(), nil
}

// Scan implements sql.Scanner. NULL is rejected; scan nullable columns
// into a NullDate.
func (d *Date) Scan(src any) error {
	v, err := fromPrimitive(src)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// fromPrimitive accepts the forms a driver may hand back for an encoded
// date. Columns without TEXT affinity store the digits as an integer.
func fromPrimitive(src any) (Date, error) {
	switch v := src.(type) {
	case string:
		return Decode(v)
	case []byte:
		return Decode(string(v))
	case int64:
		return Decode(strconv.FormatInt(v, 10))
	case Date:
		return v, nil
	case nil:
		return Date{}, fmt.Errorf("%w: NULL value", ErrDecode)
	default:
		return Date{}, fmt.Errorf("%w: unsupported type %T", ErrDecode, src)
	}
}

// Adapter converts a Date to its storable form for query arguments.
func Adapter(d Date) (driver.Value, error) {
	return d.Value()
}

// Converter rebuilds a Date from a stored column value. NULL passes
// through as nil.
func Converter(src any) (any, error) {
	if src == nil {
		return nil, nil
	}
	d, err := fromPrimitive(src)
	if err != nil {
		return nil, err
	}
	return d, nil
}
