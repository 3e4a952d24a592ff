package address

import (
	"errors"
	"fmt"
)

var (
	ErrMissingPrefix = errors.New("missing did:bid: prefix")
	ErrMissingHex    = errors.New("missing 0x prefix or sign/encode bytes")
	ErrWordOverflow  = errors.New("linear address longer than an ABI word")
)

// DecodeError is returned when an address cannot be decoded.
// Value holds the offending input as given by the caller.
type DecodeError struct {
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode address %q: %v", e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
