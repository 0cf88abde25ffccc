package bq25896

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentityMismatch is matched by errors returned from Init when the chip
	// does not identify as a BQ25896.
	ErrIdentityMismatch = errors.New("chip identity mismatch")
	// ErrReadingUnavailable is returned by readings the chip derives from the
	// NTC circuit while that circuit reports an abnormal state.
	ErrReadingUnavailable = errors.New("reading unavailable, NTC abnormal")
	// ErrNotInitialized is returned by ChipID before a successful Init.
	ErrNotInitialized = errors.New("device not initialized")
)

// TransportError wraps a failed bus transaction.
type TransportError struct {
	Op  string // "read" or "write"
	Reg uint8
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("bq25896: %s register 0x%02x: %v", e.Op, e.Reg, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IdentityError reports the chip ID read during Init.
type IdentityError struct {
	Got  uint8
	Want uint8
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("bq25896: unexpected chip id 0x%02x, want 0x%02x", e.Got, e.Want)
}

func (e *IdentityError) Is(target error) bool {
	return target == ErrIdentityMismatch
}
