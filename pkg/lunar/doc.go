// Package lunar defines Date, an immutable value for a day in the Chinese
// lunisolar calendar, together with the year table it is validated
// against, conversion to and from the Gregorian calendar, and the text
// encoding used to store it.
//
// A Date round-trips through its storable form:
//
//	d, err := lunar.New(2018, 5, 3, false)
//	s := d.Encode()           // "201805030"
//	back, err := lunar.Decode(s)
//	// back == d
//
// Date implements driver.Valuer and sql.Scanner so it can be bound and
// scanned directly with database/sql. Adapter and Converter expose the same
// encoding as plain functions for callers that wire type conversion
// explicitly.
package lunar
