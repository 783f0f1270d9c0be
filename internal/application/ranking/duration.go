package ranking

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const isoDurationPrefix = "PT"

// ParseDuration converts an ISO-8601 time duration of the form PT<h>H<m>M into
// minutes. Both components are optional and "PT" alone is zero.
func ParseDuration(value string) (int, error) {
	rest, ok := strings.CutPrefix(value, isoDurationPrefix)
	if !ok {
		return 0, &DurationError{Input: value, Reason: "missing PT prefix"}
	}

	minutes := 0
	seenHours, seenMinutes := false, false
	for rest != "" {
		end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
		switch {
		case end == 0:
			return 0, &DurationError{Input: value, Reason: fmt.Sprintf("non-numeric component %q", rest)}
		case end < 0:
			return 0, &DurationError{Input: value, Reason: fmt.Sprintf("component %q has no designator", rest)}
		}

		n, err := strconv.Atoi(rest[:end])
		if err != nil {
			return 0, &DurationError{Input: value, Reason: err.Error()}
		}

		switch rest[end] {
		case 'H':
			if seenHours || seenMinutes {
				return 0, &DurationError{Input: value, Reason: "hours out of order"}
			}
			seenHours = true
			if n > (math.MaxInt-minutes)/60 {
				return 0, &DurationError{Input: value, Reason: "hours out of range"}
			}
			minutes += n * 60
		case 'M':
			if seenMinutes {
				return 0, &DurationError{Input: value, Reason: "duplicate minutes"}
			}
			seenMinutes = true
			if n > math.MaxInt-minutes {
				return 0, &DurationError{Input: value, Reason: "minutes out of range"}
			}
			minutes += n
		default:
			return 0, &DurationError{Input: value, Reason: fmt.Sprintf("unknown designator %q", rest[end])}
		}
		rest = rest[end+1:]
	}

	return minutes, nil
}

func FormatISODuration(hours, minutes int) string {
	return fmt.Sprintf("%s%dH%dM", isoDurationPrefix, hours, minutes)
}

func FormatHuman(totalMinutes int) string {
	return fmt.Sprintf("%dh %dm", totalMinutes/60, totalMinutes%60)
}
