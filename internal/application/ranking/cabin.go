package ranking

import (
	"strings"

	"github.com/ozzus/cocoplanner/internal/domain/models"
)

func matchesCabin(offer models.FlightOffer, cabin models.CabinClass) bool {
	return strings.EqualFold(offer.Cabin(), string(cabin))
}

// FilterByCabin keeps the offers booked in the requested cabin. When none match
// it returns the input unchanged and reports the fallback.
func FilterByCabin(offers []models.FlightOffer, cabin models.CabinClass) ([]models.FlightOffer, bool) {
	return filterByCabin(offers, cabin, func(o models.FlightOffer) models.FlightOffer { return o })
}
