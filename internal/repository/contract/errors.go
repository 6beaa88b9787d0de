package contract

import "errors"

// ErrRecordNotFound is returned by updates that matched no row.
var ErrRecordNotFound = errors.New("record not found")
