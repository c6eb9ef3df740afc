package policy

import "errors"

var (
	// ErrDeadlineExceeded is the cancellation cause recorded when a Deadline fires.
	ErrDeadlineExceeded = errors.New("deadline exceeded")
	// ErrInvalidTimeout indicates the provided timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout")
)
