package errors

import "errors"

var (
	ErrInvalidDuration   = errors.New("invalid iso-8601 duration")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrMalformedOffer    = errors.New("malformed flight offer")
	ErrInvalidSearch     = errors.New("invalid flight search")
	ErrInvalidTrip       = errors.New("invalid trip request")
	ErrSourceTemporary   = errors.New("temporary source failure")
	ErrOffersNotFound    = errors.New("flight offers not found")
	ErrNoFlightOptions   = errors.New("no flight options found")
	ErrPlanNotFound      = errors.New("travel plan not found")
	ErrSearchIDExhausted = errors.New("could not allocate a free search id")
	ErrSearchIDTaken     = errors.New("search id already taken")
	ErrEmailDisabled     = errors.New("email delivery disabled")
	ErrCancelled         = errors.New("cancelled by user")
)
