package youtube

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable marks any upstream failure: network error, non-2xx
// response, or a payload that could not be decoded. A legitimately empty
// resource (unknown channel, zero uploads) is not an error; those calls
// return an empty result instead.
var ErrSourceUnavailable = errors.New("video source unavailable")

// SourceError wraps an upstream failure with the operation that produced it.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("youtube %s: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is reports e as an ErrSourceUnavailable so callers can match the whole
// taxonomy with a single errors.Is check.
func (e *SourceError) Is(target error) bool { return target == ErrSourceUnavailable }

func sourceErr(op string, err error) error {
	return &SourceError{Op: op, Err: err}
}
