package ranking

import "github.com/ozzus/cocoplanner/internal/domain/models"

func testSegment(flight, from, to, dep, arr, duration string) models.FlightSegment {
	return models.FlightSegment{
		Origin:      from,
		Destination: to,
		DepartureAt: dep,
		ArrivalAt:   arr,
		Duration:    duration,
		CarrierCode: flight[:2],
		Number:      flight[2:],
	}
}

func testOffer(id, price, cabin string, itineraries ...[]models.FlightSegment) models.FlightOffer {
	offer := models.FlightOffer{
		ID:    id,
		Price: models.Price{Total: price, Currency: "EUR"},
		TravelerPricings: []models.TravelerPricing{{
			TravelerID:   "1",
			TravelerType: "ADULT",
			FareDetails:  []models.FareDetail{{SegmentID: "1", Cabin: cabin}},
		}},
	}
	for _, segments := range itineraries {
		offer.Itineraries = append(offer.Itineraries, models.Itinerary{Segments: segments})
	}
	return offer
}

// directOffer is a single non-stop flight; the flight number keeps offers distinct.
func directOffer(id, price, duration, flight string) models.FlightOffer {
	return testOffer(id, price, "ECONOMY", []models.FlightSegment{
		testSegment(flight, "BER", "LIS", "2026-06-01T08:00:00", "2026-06-01T12:00:00", duration),
	})
}

func offerIDs(selection models.RankedSelection) []string {
	ids := make([]string, 0, len(selection.Offers))
	for _, offer := range selection.Offers {
		ids = append(ids, offer.Offer.ID)
	}
	return ids
}
