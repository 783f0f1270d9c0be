package mappers

import (
	"encoding/json"
	"testing"

	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/ozzus/cocoplanner/internal/infrastructures/amadeus/dto"
)

func TestBuildOffersRequest_RoundTripNonStop(t *testing.T) {
	search := models.FlightSearch{
		Routes: []models.FlightRoute{
			{Origin: "BER", Destination: "LIS", DepartureDate: "2026-06-01"},
			{Origin: "LIS", Destination: "BER", DepartureDate: "2026-06-08"},
		},
		Travelers:  models.TravelerCounts{Adults: 2, Children: 1, Infants: 1},
		CabinClass: models.CabinBusiness,
		NonStop:    true,
	}

	req := BuildOffersRequest(search, "eur", 20)

	if req.CurrencyCode != "EUR" {
		t.Fatalf("unexpected currency: %q", req.CurrencyCode)
	}
	if len(req.OriginDestinations) != 2 || req.OriginDestinations[1].ID != "2" || req.OriginDestinations[1].DepartureDateTimeRange.Date != "2026-06-08" {
		t.Fatalf("unexpected origin destinations: %+v", req.OriginDestinations)
	}
	if len(req.Travelers) != 4 {
		t.Fatalf("unexpected travelers: %+v", req.Travelers)
	}
	infant := req.Travelers[3]
	if infant.ID != "4" || infant.TravelerType != "HELD_INFANT" || infant.AssociatedAdultID != "1" {
		t.Fatalf("unexpected infant: %+v", infant)
	}
	if req.Travelers[2].TravelerType != "CHILD" {
		t.Fatalf("unexpected child: %+v", req.Travelers[2])
	}

	filters := req.SearchCriteria.FlightFilters
	if req.SearchCriteria.MaxFlightOffers != 20 {
		t.Fatalf("unexpected max offers: %d", req.SearchCriteria.MaxFlightOffers)
	}
	if filters.CabinRestrictions[0].Cabin != "BUSINESS" || filters.CabinRestrictions[0].Coverage != "ALL_SEGMENTS" {
		t.Fatalf("unexpected cabin restriction: %+v", filters.CabinRestrictions[0])
	}
	if len(filters.CabinRestrictions[0].OriginDestinationIDs) != 2 {
		t.Fatalf("unexpected cabin restriction ids: %v", filters.CabinRestrictions[0].OriginDestinationIDs)
	}
	if filters.ConnectionRestriction == nil || filters.ConnectionRestriction.MaxNumberOfConnections != 0 {
		t.Fatalf("expected non-stop connection restriction: %+v", filters.ConnectionRestriction)
	}
}

func TestBuildOffersRequest_OmitsConnectionRestriction(t *testing.T) {
	req := BuildOffersRequest(models.FlightSearch{
		Routes:     []models.FlightRoute{{Origin: "BER", Destination: "LIS", DepartureDate: "2026-06-01"}},
		Travelers:  models.TravelerCounts{Adults: 1},
		CabinClass: models.CabinEconomy,
		Currency:   "USD",
		MaxOffers:  5,
	}, "EUR", 20)

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	filters := raw["searchCriteria"].(map[string]any)["flightFilters"].(map[string]any)
	if _, ok := filters["connectionRestriction"]; ok {
		t.Fatalf("connectionRestriction should be omitted: %s", body)
	}
	if raw["currencyCode"] != "USD" || req.SearchCriteria.MaxFlightOffers != 5 {
		t.Fatalf("search overrides not applied: %s", body)
	}
}

func TestToOffer(t *testing.T) {
	var payload dto.FlightOffersResponse
	err := json.Unmarshal([]byte(`{"data":[{
		"id":"7","source":"GDS",
		"itineraries":[{"duration":"PT5H","segments":[
			{"id":"1","departure":{"iataCode":"BER","at":"2026-06-01T08:00:00"},"arrival":{"iataCode":"FRA","at":"2026-06-01T09:10:00"},"carrierCode":"LH","number":"171","duration":"PT1H10M"},
			{"id":"2","departure":{"iataCode":"FRA","at":"2026-06-01T10:00:00"},"arrival":{"iataCode":"LIS","at":"2026-06-01T13:00:00"},"carrierCode":"LH","number":"1166","duration":"PT3H"}
		]}],
		"price":{"currency":"EUR","total":"245.18"},
		"travelerPricings":[{"travelerId":"1","travelerType":"ADULT","fareDetailsBySegment":[{"segmentId":"1","cabin":"ECONOMY"}]}]
	}]}`), &payload)
	if err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	offers := ToOffers(payload.Data)
	if len(offers) != 1 {
		t.Fatalf("unexpected offers: %+v", offers)
	}
	got := offers[0]
	if got.ID != "7" || got.Price.Total != "245.18" || got.Price.Currency != "EUR" {
		t.Fatalf("unexpected offer header: %+v", got)
	}
	segments := got.Segments()
	if len(segments) != 2 || segments[1].FlightNumber() != "LH1166" || segments[1].Origin != "FRA" || segments[1].ArrivalAt != "2026-06-01T13:00:00" {
		t.Fatalf("unexpected segments: %+v", segments)
	}
	if got.Cabin() != "ECONOMY" {
		t.Fatalf("unexpected cabin: %q", got.Cabin())
	}
}
