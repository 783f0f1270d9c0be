package dto

type FlightOffersRequest struct {
	CurrencyCode       string              `json:"currencyCode"`
	OriginDestinations []OriginDestination `json:"originDestinations"`
	Travelers          []Traveler          `json:"travelers"`
	Sources            []string            `json:"sources"`
	SearchCriteria     SearchCriteria      `json:"searchCriteria"`
}

type OriginDestination struct {
	ID                      string        `json:"id"`
	OriginLocationCode      string        `json:"originLocationCode"`
	DestinationLocationCode string        `json:"destinationLocationCode"`
	DepartureDateTimeRange  DateTimeRange `json:"departureDateTimeRange"`
}

type DateTimeRange struct {
	Date string `json:"date"`
	Time string `json:"time,omitempty"`
}

type Traveler struct {
	ID                string `json:"id"`
	TravelerType      string `json:"travelerType"`
	AssociatedAdultID string `json:"associatedAdultId,omitempty"`
}

type SearchCriteria struct {
	MaxFlightOffers int           `json:"maxFlightOffers"`
	FlightFilters   FlightFilters `json:"flightFilters"`
}

type FlightFilters struct {
	CabinRestrictions     []CabinRestriction     `json:"cabinRestrictions"`
	ConnectionRestriction *ConnectionRestriction `json:"connectionRestriction,omitempty"`
}

type CabinRestriction struct {
	Cabin                string   `json:"cabin"`
	Coverage             string   `json:"coverage"`
	OriginDestinationIDs []string `json:"originDestinationIds"`
}

type ConnectionRestriction struct {
	MaxNumberOfConnections int `json:"maxNumberOfConnections"`
}

type FlightOffersResponse struct {
	Data []FlightOffer `json:"data"`
}

type FlightOffer struct {
	Type             string            `json:"type"`
	ID               string            `json:"id"`
	Source           string            `json:"source"`
	Itineraries      []Itinerary       `json:"itineraries"`
	Price            Price             `json:"price"`
	TravelerPricings []TravelerPricing `json:"travelerPricings"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	ID          string   `json:"id"`
	Departure   Endpoint `json:"departure"`
	Arrival     Endpoint `json:"arrival"`
	CarrierCode string   `json:"carrierCode"`
	Number      string   `json:"number"`
	Duration    string   `json:"duration"`
}

type Endpoint struct {
	IATACode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

type Price struct {
	Currency   string `json:"currency"`
	Total      string `json:"total"`
	Base       string `json:"base,omitempty"`
	GrandTotal string `json:"grandTotal,omitempty"`
}

type TravelerPricing struct {
	TravelerID           string              `json:"travelerId"`
	TravelerType         string              `json:"travelerType"`
	FareDetailsBySegment []FareDetailSegment `json:"fareDetailsBySegment"`
}

type FareDetailSegment struct {
	SegmentID string `json:"segmentId"`
	Cabin     string `json:"cabin"`
}
