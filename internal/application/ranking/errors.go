package ranking

import (
	"fmt"

	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
)

type DurationError struct {
	Input  string
	Reason string
}

func (e *DurationError) Error() string {
	return fmt.Sprintf("parse duration %q: %s", e.Input, e.Reason)
}

func (e *DurationError) Unwrap() error { return derr.ErrInvalidDuration }

type TimestampError struct {
	Input string
	Err   error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("parse timestamp %q: %v", e.Input, e.Err)
}

func (e *TimestampError) Unwrap() []error { return []error{derr.ErrInvalidTimestamp, e.Err} }

// MalformedOfferError rejects a whole batch: the offer at Index lacks data
// every offer must carry.
type MalformedOfferError struct {
	Index   int
	OfferID string
	Reason  string
}

func (e *MalformedOfferError) Error() string {
	return fmt.Sprintf("offer %d (id %q): %s", e.Index, e.OfferID, e.Reason)
}

func (e *MalformedOfferError) Unwrap() error { return derr.ErrMalformedOffer }
