package analytics

import "errors"

var (
	// ErrInvalidArgument is returned when a caller supplies a non-positive
	// window, threshold, or result limit
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDataSourceUnavailable is returned when the event store cannot be
	// reached, as opposed to reachable-but-empty
	ErrDataSourceUnavailable = errors.New("data source unavailable")
)

// NotEnabledMessage is returned in-band on the zombie report when session
// tracking has recorded no data at all. It is a degraded-capability signal,
// not an error.
const NotEnabledMessage = "session tracking not yet enabled"
