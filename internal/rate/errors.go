package rate

import "errors"

var (
	// ErrStoreUnavailable indicates the counter store failed a read or write.
	ErrStoreUnavailable = errors.New("counter store unavailable")
)
