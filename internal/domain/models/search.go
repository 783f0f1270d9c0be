package models

import (
	"fmt"
	"strings"
)

type TravelerCounts struct {
	Adults   int `json:"adults" validate:"min=1,max=9"`
	Children int `json:"children" validate:"min=0,max=9"`
	Infants  int `json:"infants" validate:"min=0,ltefield=Adults"`
}

func (c TravelerCounts) Total() int {
	return c.Adults + c.Children + c.Infants
}

type FlightRoute struct {
	Origin        string `json:"origin" validate:"required,len=3,alpha"`
	Destination   string `json:"destination" validate:"required,len=3,alpha,nefield=Origin"`
	DepartureDate string `json:"departure_date" validate:"required,datetime=2006-01-02"`
}

// FlightSearch is what the flight gateway needs to fetch and rank offers.
type FlightSearch struct {
	Routes     []FlightRoute  `json:"routes" validate:"required,min=1,dive"`
	Travelers  TravelerCounts `json:"travelers"`
	CabinClass CabinClass     `json:"cabin_class" validate:"required,oneof=economy premium_economy business first"`
	NonStop    bool           `json:"non_stop"`
	Currency   string         `json:"currency" validate:"omitempty,len=3,alpha"`
	MaxOffers  int            `json:"max_offers" validate:"min=0,max=250"`
}

func (s FlightSearch) Normalized() FlightSearch {
	out := s
	out.Routes = make([]FlightRoute, len(s.Routes))
	for i, route := range s.Routes {
		out.Routes[i] = FlightRoute{
			Origin:        strings.ToUpper(strings.TrimSpace(route.Origin)),
			Destination:   strings.ToUpper(strings.TrimSpace(route.Destination)),
			DepartureDate: strings.TrimSpace(route.DepartureDate),
		}
	}
	if cabin, ok := ParseCabinClass(string(s.CabinClass)); ok {
		out.CabinClass = cabin
	}
	out.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	return out
}

// CacheKey identifies the raw offers returned for this search. Cabin class is part
// of the key because it is sent to the flight API as a restriction.
func (s FlightSearch) CacheKey() string {
	parts := make([]string, 0, len(s.Routes)+2)
	for _, route := range s.Routes {
		parts = append(parts, route.Origin+"-"+route.Destination+"@"+route.DepartureDate)
	}
	parts = append(parts,
		fmt.Sprintf("a%dc%di%d", s.Travelers.Adults, s.Travelers.Children, s.Travelers.Infants),
		fmt.Sprintf("%s:%t:%s:%d", s.CabinClass, s.NonStop, s.Currency, s.MaxOffers),
	)
	return "offers:" + strings.Join(parts, "|")
}
