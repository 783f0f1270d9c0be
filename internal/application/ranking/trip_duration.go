package ranking

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ozzus/cocoplanner/internal/domain/models"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp accepts RFC3339 timestamps and the offset-less local times flight
// APIs report; the latter are read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, &TimestampError{Input: value, Err: lastErr}
}

// TotalDuration sums every segment's flight time plus the connection time between
// consecutive segments of the same itinerary. Time spent between itineraries,
// e.g. the stay of a round trip, is not counted.
func TotalDuration(offer models.FlightOffer) (int, error) {
	total := 0
	for i, itinerary := range offer.Itineraries {
		for j, segment := range itinerary.Segments {
			minutes, err := ParseDuration(segment.Duration)
			if err != nil {
				return 0, fmt.Errorf("itinerary %d segment %d: %w", i, j, err)
			}
			if total, err = addMinutes(total, minutes); err != nil {
				return 0, fmt.Errorf("itinerary %d segment %d: %w", i, j, &DurationError{Input: segment.Duration, Reason: err.Error()})
			}

			if j == 0 {
				continue
			}
			arrival, err := ParseTimestamp(itinerary.Segments[j-1].ArrivalAt)
			if err != nil {
				return 0, fmt.Errorf("itinerary %d segment %d: %w", i, j-1, err)
			}
			departure, err := ParseTimestamp(segment.DepartureAt)
			if err != nil {
				return 0, fmt.Errorf("itinerary %d segment %d: %w", i, j, err)
			}
			gap := int(departure.Sub(arrival) / time.Minute)
			if total, err = addMinutes(total, gap); err != nil {
				return 0, fmt.Errorf("itinerary %d segment %d: %w", i, j, &DurationError{Input: segment.Duration, Reason: err.Error()})
			}
		}
	}
	return total, nil
}

func addMinutes(total, n int) (int, error) {
	if (n > 0 && total > math.MaxInt-n) || (n < 0 && total < math.MinInt-n) {
		return 0, errors.New("total duration out of range")
	}
	return total + n, nil
}
