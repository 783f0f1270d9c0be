package mappers

import (
	"strconv"
	"strings"

	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/ozzus/cocoplanner/internal/infrastructures/amadeus/dto"
)

const (
	sourceGDS          = "GDS"
	coverageAllSegment = "ALL_SEGMENTS"
)

func BuildOffersRequest(search models.FlightSearch, currency string, maxOffers int) dto.FlightOffersRequest {
	if search.Currency != "" {
		currency = search.Currency
	}
	if search.MaxOffers > 0 {
		maxOffers = search.MaxOffers
	}

	req := dto.FlightOffersRequest{
		CurrencyCode:       strings.ToUpper(currency),
		OriginDestinations: make([]dto.OriginDestination, 0, len(search.Routes)),
		Travelers:          buildTravelers(search.Travelers),
		Sources:            []string{sourceGDS},
	}

	ids := make([]string, 0, len(search.Routes))
	for i, route := range search.Routes {
		id := strconv.Itoa(i + 1)
		ids = append(ids, id)
		req.OriginDestinations = append(req.OriginDestinations, dto.OriginDestination{
			ID:                      id,
			OriginLocationCode:      route.Origin,
			DestinationLocationCode: route.Destination,
			DepartureDateTimeRange:  dto.DateTimeRange{Date: route.DepartureDate},
		})
	}

	req.SearchCriteria = dto.SearchCriteria{
		MaxFlightOffers: maxOffers,
		FlightFilters: dto.FlightFilters{
			CabinRestrictions: []dto.CabinRestriction{{
				Cabin:                CabinCode(search.CabinClass),
				Coverage:             coverageAllSegment,
				OriginDestinationIDs: ids,
			}},
		},
	}
	if search.NonStop {
		req.SearchCriteria.FlightFilters.ConnectionRestriction = &dto.ConnectionRestriction{MaxNumberOfConnections: 0}
	}

	return req
}

// Travelers are numbered adults first, then children, then infants; each infant
// sits on the lap of the adult with the same position.
func buildTravelers(counts models.TravelerCounts) []dto.Traveler {
	travelers := make([]dto.Traveler, 0, counts.Total())
	next := 1
	for range counts.Adults {
		travelers = append(travelers, dto.Traveler{ID: strconv.Itoa(next), TravelerType: "ADULT"})
		next++
	}
	for range counts.Children {
		travelers = append(travelers, dto.Traveler{ID: strconv.Itoa(next), TravelerType: "CHILD"})
		next++
	}
	for i := range counts.Infants {
		travelers = append(travelers, dto.Traveler{
			ID:                strconv.Itoa(next),
			TravelerType:      "HELD_INFANT",
			AssociatedAdultID: strconv.Itoa(i + 1),
		})
		next++
	}
	return travelers
}

func CabinCode(cabin models.CabinClass) string {
	switch cabin {
	case models.CabinPremiumEconomy:
		return "PREMIUM_ECONOMY"
	case models.CabinBusiness:
		return "BUSINESS"
	case models.CabinFirst:
		return "FIRST"
	default:
		return "ECONOMY"
	}
}

func ToOffers(data []dto.FlightOffer) []models.FlightOffer {
	offers := make([]models.FlightOffer, 0, len(data))
	for _, item := range data {
		offers = append(offers, ToOffer(item))
	}
	return offers
}

func ToOffer(item dto.FlightOffer) models.FlightOffer {
	offer := models.FlightOffer{
		ID:          item.ID,
		Source:      item.Source,
		Itineraries: make([]models.Itinerary, 0, len(item.Itineraries)),
		Price: models.Price{
			Total:    item.Price.Total,
			Currency: item.Price.Currency,
		},
	}

	for _, itinerary := range item.Itineraries {
		segments := make([]models.FlightSegment, 0, len(itinerary.Segments))
		for _, segment := range itinerary.Segments {
			segments = append(segments, models.FlightSegment{
				ID:          segment.ID,
				Origin:      segment.Departure.IATACode,
				Destination: segment.Arrival.IATACode,
				DepartureAt: segment.Departure.At,
				ArrivalAt:   segment.Arrival.At,
				Duration:    segment.Duration,
				CarrierCode: segment.CarrierCode,
				Number:      segment.Number,
			})
		}
		offer.Itineraries = append(offer.Itineraries, models.Itinerary{
			Duration: itinerary.Duration,
			Segments: segments,
		})
	}

	for _, pricing := range item.TravelerPricings {
		details := make([]models.FareDetail, 0, len(pricing.FareDetailsBySegment))
		for _, fare := range pricing.FareDetailsBySegment {
			details = append(details, models.FareDetail{SegmentID: fare.SegmentID, Cabin: fare.Cabin})
		}
		offer.TravelerPricings = append(offer.TravelerPricings, models.TravelerPricing{
			TravelerID:   pricing.TravelerID,
			TravelerType: pricing.TravelerType,
			FareDetails:  details,
		})
	}

	return offer
}
