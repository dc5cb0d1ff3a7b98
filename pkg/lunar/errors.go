package lunar

import "errors"

// Date errors. Call sites wrap these with detail; match with errors.Is.
var (
	ErrInvalidDate = errors.New("invalid lunar date")
	ErrDecode      = errors.New("malformed lunar date encoding")
)
