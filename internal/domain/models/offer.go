package models

import "strings"

type CabinClass string

const (
	CabinEconomy        CabinClass = "economy"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinBusiness       CabinClass = "business"
	CabinFirst          CabinClass = "first"
)

// ParseCabinClass accepts the lower-case names as well as the upper-case codes
// flight APIs put into fare details (ECONOMY, PREMIUM_ECONOMY, ...).
func ParseCabinClass(value string) (CabinClass, bool) {
	switch CabinClass(strings.ToLower(strings.TrimSpace(value))) {
	case CabinEconomy:
		return CabinEconomy, true
	case CabinPremiumEconomy:
		return CabinPremiumEconomy, true
	case CabinBusiness:
		return CabinBusiness, true
	case CabinFirst:
		return CabinFirst, true
	default:
		return "", false
	}
}

// ParseCabinFilter is ParseCabinClass for ranking requests, where a blank value
// means no cabin filter.
func ParseCabinFilter(value string) (CabinClass, bool) {
	if strings.TrimSpace(value) == "" {
		return "", true
	}
	return ParseCabinClass(value)
}

func (c CabinClass) Label() string {
	switch c {
	case CabinPremiumEconomy:
		return "Premium Economy"
	case CabinBusiness:
		return "Business"
	case CabinFirst:
		return "First"
	case CabinEconomy:
		return "Economy"
	default:
		return string(c)
	}
}

type FlightSegment struct {
	ID          string `json:"id,omitempty"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	DepartureAt string `json:"departure_at"`
	ArrivalAt   string `json:"arrival_at"`
	Duration    string `json:"duration"`
	CarrierCode string `json:"carrier_code"`
	Number      string `json:"number"`
}

func (s FlightSegment) FlightNumber() string {
	return s.CarrierCode + s.Number
}

type Itinerary struct {
	Duration string          `json:"duration,omitempty"`
	Segments []FlightSegment `json:"segments"`
}

// Price keeps the amount as the API reported it; it is parsed during ranking.
type Price struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type FareDetail struct {
	SegmentID string `json:"segment_id,omitempty"`
	Cabin     string `json:"cabin"`
}

type TravelerPricing struct {
	TravelerID   string       `json:"traveler_id,omitempty"`
	TravelerType string       `json:"traveler_type,omitempty"`
	FareDetails  []FareDetail `json:"fare_details,omitempty"`
}

type FlightOffer struct {
	ID               string            `json:"id"`
	Source           string            `json:"source,omitempty"`
	Itineraries      []Itinerary       `json:"itineraries"`
	Price            Price             `json:"price"`
	TravelerPricings []TravelerPricing `json:"traveler_pricings,omitempty"`
}

// Cabin returns the cabin of the first fare detail of the first traveler, or "".
func (o FlightOffer) Cabin() string {
	if len(o.TravelerPricings) == 0 || len(o.TravelerPricings[0].FareDetails) == 0 {
		return ""
	}
	return o.TravelerPricings[0].FareDetails[0].Cabin
}

func (o FlightOffer) Segments() []FlightSegment {
	var segments []FlightSegment
	for _, itinerary := range o.Itineraries {
		segments = append(segments, itinerary.Segments...)
	}
	return segments
}
