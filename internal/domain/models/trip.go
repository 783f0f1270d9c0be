package models

import "strings"

type TripType string

const (
	TripOneWay    TripType = "one-way"
	TripRoundTrip TripType = "round-trip"
	TripMultiCity TripType = "multi-city"
)

func (t TripType) Label() string {
	switch t {
	case TripOneWay:
		return "One-way"
	case TripRoundTrip:
		return "Round-trip"
	case TripMultiCity:
		return "Multi-city"
	default:
		return string(t)
	}
}

type TravelerType string

const (
	TravelerAdult  TravelerType = "ADT"
	TravelerChild  TravelerType = "CHD"
	TravelerInfant TravelerType = "INF"
)

func (t TravelerType) Label() string {
	switch t {
	case TravelerAdult:
		return "Adult"
	case TravelerChild:
		return "Child"
	case TravelerInfant:
		return "Infant"
	default:
		return string(t)
	}
}

type Traveler struct {
	Type TravelerType `json:"type" validate:"required,oneof=ADT CHD INF"`
	Name string       `json:"name" validate:"required"`
}

type Airport struct {
	Code    string `json:"code" validate:"required,len=3"`
	City    string `json:"city,omitempty"`
	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
}

// Display renders "City - Airport (CODE) - Country", skipping unknown parts.
func (a Airport) Display() string {
	var parts []string
	if a.City != "" {
		parts = append(parts, a.City)
	}
	if a.Name != "" {
		parts = append(parts, a.Name+" ("+a.Code+")")
	} else {
		parts = append(parts, a.Code)
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, " - ")
}

func (a Airport) CityName() string {
	if a.City != "" {
		return a.City
	}
	return a.Code
}

type TripLeg struct {
	Origin        Airport `json:"origin"`
	Destination   Airport `json:"destination"`
	DepartureDate string  `json:"departure_date" validate:"required,datetime=2006-01-02"`
	StayDays      int     `json:"stay_days,omitempty" validate:"min=0"`
}

type HotelPreference struct {
	City     string `json:"city" validate:"required"`
	Location string `json:"location" validate:"required"`
}

// TripRequest is everything the wizard collects from the user.
type TripRequest struct {
	TripType   TripType          `json:"trip_type" validate:"required,oneof=one-way round-trip multi-city"`
	Travelers  []Traveler        `json:"travelers" validate:"required,min=1,dive"`
	Counts     TravelerCounts    `json:"counts"`
	Email      string            `json:"email" validate:"required,email"`
	Legs       []TripLeg         `json:"legs" validate:"required,min=1,dive"`
	Hotels     []HotelPreference `json:"hotels,omitempty" validate:"dive"`
	CabinClass CabinClass        `json:"cabin_class" validate:"required,oneof=economy premium_economy business first"`
	NonStop    bool              `json:"non_stop"`
}

func (r TripRequest) Routes() []FlightRoute {
	routes := make([]FlightRoute, 0, len(r.Legs))
	for _, leg := range r.Legs {
		routes = append(routes, FlightRoute{
			Origin:        leg.Origin.Code,
			Destination:   leg.Destination.Code,
			DepartureDate: leg.DepartureDate,
		})
	}
	return routes
}

func (r TripRequest) FlightSearch(currency string, maxOffers int) FlightSearch {
	return FlightSearch{
		Routes:     r.Routes(),
		Travelers:  r.Counts,
		CabinClass: r.CabinClass,
		NonStop:    r.NonStop,
		Currency:   currency,
		MaxOffers:  maxOffers,
	}
}

func (r TripRequest) LeadTravelerName() string {
	if len(r.Travelers) == 0 {
		return "Traveler"
	}
	return r.Travelers[0].Name
}

// Destinations lists the places the travelers stay at, in visiting order. The home
// airport a round trip returns to is not a destination.
func (r TripRequest) Destinations() []Airport {
	if len(r.Legs) == 0 {
		return nil
	}
	home := r.Legs[0].Origin.Code
	seen := map[string]bool{home: true}
	var out []Airport
	for _, leg := range r.Legs {
		if seen[leg.Destination.Code] {
			continue
		}
		seen[leg.Destination.Code] = true
		out = append(out, leg.Destination)
	}
	return out
}
