package model

import (
	"time"

	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/shopspring/decimal"
)

// PlanDocument is the stored form of a travel plan. Mongo stores it as is,
// postgres keeps it in a jsonb column.
type PlanDocument struct {
	SearchID          string          `bson:"search_id" json:"search_id"`
	Timestamp         time.Time       `bson:"timestamp" json:"timestamp"`
	CustomerInfo      CustomerInfo    `bson:"customer_info" json:"customer_info"`
	TripDetails       TripDetails     `bson:"trip_details" json:"trip_details"`
	FlightOptions     []FlightOption  `bson:"flight_options" json:"flight_options"`
	CabinFallback     bool            `bson:"cabin_fallback" json:"cabin_fallback"`
	ExcludedOffers    []ExcludedOffer `bson:"excluded_offers,omitempty" json:"excluded_offers,omitempty"`
	FlightOptionsText string          `bson:"flight_options_text" json:"flight_options_text"`
	FinalItinerary    string          `bson:"final_itinerary" json:"final_itinerary"`
	LastUpdated       time.Time       `bson:"last_updated" json:"last_updated"`
}

type CustomerInfo struct {
	Travelers      []Traveler     `bson:"travelers" json:"travelers"`
	Email          string         `bson:"email" json:"email"`
	TotalTravelers TravelerTotals `bson:"total_travelers" json:"total_travelers"`
}

type Traveler struct {
	Type string `bson:"type" json:"type"`
	Name string `bson:"name" json:"name"`
}

type TravelerTotals struct {
	Adults   int `bson:"adults" json:"adults"`
	Children int `bson:"children" json:"children"`
	Infants  int `bson:"infants" json:"infants"`
}

type TripDetails struct {
	TripType       string  `bson:"trip_type" json:"trip_type"`
	FlightRoutes   []Route `bson:"flight_routes" json:"flight_routes"`
	TravelClass    string  `bson:"travel_class" json:"travel_class"`
	NonStop        bool    `bson:"non_stop" json:"non_stop"`
	HotelLocations []Hotel `bson:"hotel_locations" json:"hotel_locations"`
}

type Route struct {
	Origin             string  `bson:"origin" json:"origin"`
	Destination        string  `bson:"destination" json:"destination"`
	DepartureDate      string  `bson:"departure_date" json:"departure_date"`
	OriginDetails      Airport `bson:"origin_details" json:"origin_details"`
	DestinationDetails Airport `bson:"destination_details" json:"destination_details"`
	StayDuration       int     `bson:"stay_duration,omitempty" json:"stay_duration,omitempty"`
}

type Airport struct {
	Code    string `bson:"code" json:"code"`
	City    string `bson:"city" json:"city"`
	Name    string `bson:"name" json:"name"`
	Country string `bson:"country" json:"country"`
}

type Hotel struct {
	City     string `bson:"city" json:"city"`
	Location string `bson:"location" json:"location"`
}

type FlightOption struct {
	Type          string    `bson:"type" json:"type"`
	OfferID       string    `bson:"offer_id" json:"offer_id"`
	Price         string    `bson:"price" json:"price"`
	Currency      string    `bson:"currency" json:"currency"`
	TravelClass   string    `bson:"travel_class" json:"travel_class"`
	TotalDuration int       `bson:"total_duration" json:"total_duration"`
	Segments      []Segment `bson:"segments" json:"segments"`
}

type Segment struct {
	Itinerary     int    `bson:"itinerary" json:"itinerary"`
	Origin        string `bson:"origin" json:"origin"`
	Destination   string `bson:"destination" json:"destination"`
	DepartureTime string `bson:"departure_time" json:"departure_time"`
	ArrivalTime   string `bson:"arrival_time" json:"arrival_time"`
	Duration      string `bson:"duration" json:"duration"`
	Carrier       string `bson:"carrier" json:"carrier"`
	FlightNumber  string `bson:"flight_number" json:"flight_number"`
}

type ExcludedOffer struct {
	Index   int    `bson:"index" json:"index"`
	OfferID string `bson:"offer_id" json:"offer_id"`
	Reason  string `bson:"reason" json:"reason"`
}

func FromPlan(plan models.TravelPlan) PlanDocument {
	req := plan.Request
	doc := PlanDocument{
		SearchID:  plan.SearchID,
		Timestamp: plan.CreatedAt.UTC(),
		CustomerInfo: CustomerInfo{
			Travelers: make([]Traveler, 0, len(req.Travelers)),
			Email:     req.Email,
			TotalTravelers: TravelerTotals{
				Adults:   req.Counts.Adults,
				Children: req.Counts.Children,
				Infants:  req.Counts.Infants,
			},
		},
		TripDetails: TripDetails{
			TripType:       string(req.TripType),
			FlightRoutes:   make([]Route, 0, len(req.Legs)),
			TravelClass:    string(req.CabinClass),
			NonStop:        req.NonStop,
			HotelLocations: make([]Hotel, 0, len(req.Hotels)),
		},
		FlightOptions:     make([]FlightOption, 0, len(plan.Flights.Offers)),
		CabinFallback:     plan.Flights.CabinFallback,
		FlightOptionsText: plan.FlightOptionsText,
		FinalItinerary:    plan.Itinerary,
		LastUpdated:       plan.UpdatedAt.UTC(),
	}

	for _, traveler := range req.Travelers {
		doc.CustomerInfo.Travelers = append(doc.CustomerInfo.Travelers, Traveler{Type: string(traveler.Type), Name: traveler.Name})
	}
	for _, leg := range req.Legs {
		doc.TripDetails.FlightRoutes = append(doc.TripDetails.FlightRoutes, Route{
			Origin:             leg.Origin.Code,
			Destination:        leg.Destination.Code,
			DepartureDate:      leg.DepartureDate,
			OriginDetails:      fromAirport(leg.Origin),
			DestinationDetails: fromAirport(leg.Destination),
			StayDuration:       leg.StayDays,
		})
	}
	for _, hotel := range req.Hotels {
		doc.TripDetails.HotelLocations = append(doc.TripDetails.HotelLocations, Hotel{City: hotel.City, Location: hotel.Location})
	}
	for _, ranked := range plan.Flights.Offers {
		doc.FlightOptions = append(doc.FlightOptions, fromRankedOffer(ranked))
	}
	for _, excluded := range plan.Flights.Excluded {
		doc.ExcludedOffers = append(doc.ExcludedOffers, ExcludedOffer{Index: excluded.Index, OfferID: excluded.OfferID, Reason: excluded.Reason})
	}

	return doc
}

func (d PlanDocument) ToPlan() models.TravelPlan {
	cabin := models.CabinClass(d.TripDetails.TravelClass)
	plan := models.TravelPlan{
		SearchID:  d.SearchID,
		CreatedAt: d.Timestamp,
		UpdatedAt: d.LastUpdated,
		Request: models.TripRequest{
			TripType: models.TripType(d.TripDetails.TripType),
			Email:    d.CustomerInfo.Email,
			Counts: models.TravelerCounts{
				Adults:   d.CustomerInfo.TotalTravelers.Adults,
				Children: d.CustomerInfo.TotalTravelers.Children,
				Infants:  d.CustomerInfo.TotalTravelers.Infants,
			},
			CabinClass: cabin,
			NonStop:    d.TripDetails.NonStop,
		},
		Flights: models.RankedSelection{
			CabinClass:    cabin,
			CabinFallback: d.CabinFallback,
			Offers:        make([]models.RankedOffer, 0, len(d.FlightOptions)),
		},
		FlightOptionsText: d.FlightOptionsText,
		Itinerary:         d.FinalItinerary,
	}

	for _, traveler := range d.CustomerInfo.Travelers {
		plan.Request.Travelers = append(plan.Request.Travelers, models.Traveler{Type: models.TravelerType(traveler.Type), Name: traveler.Name})
	}
	for _, route := range d.TripDetails.FlightRoutes {
		plan.Request.Legs = append(plan.Request.Legs, models.TripLeg{
			Origin:        route.OriginDetails.toAirport(route.Origin),
			Destination:   route.DestinationDetails.toAirport(route.Destination),
			DepartureDate: route.DepartureDate,
			StayDays:      route.StayDuration,
		})
	}
	for _, hotel := range d.TripDetails.HotelLocations {
		plan.Request.Hotels = append(plan.Request.Hotels, models.HotelPreference{City: hotel.City, Location: hotel.Location})
	}
	for _, option := range d.FlightOptions {
		plan.Flights.Offers = append(plan.Flights.Offers, option.toRankedOffer())
	}
	for _, excluded := range d.ExcludedOffers {
		plan.Flights.Excluded = append(plan.Flights.Excluded, models.ExcludedOffer{Index: excluded.Index, OfferID: excluded.OfferID, Reason: excluded.Reason})
	}

	return plan
}

func fromAirport(a models.Airport) Airport {
	return Airport{Code: a.Code, City: a.City, Name: a.Name, Country: a.Country}
}

func (a Airport) toAirport(code string) models.Airport {
	if a.Code == "" {
		a.Code = code
	}
	return models.Airport{Code: a.Code, City: a.City, Name: a.Name, Country: a.Country}
}

func fromRankedOffer(ranked models.RankedOffer) FlightOption {
	option := FlightOption{
		Type:          string(ranked.Tag),
		OfferID:       ranked.Offer.ID,
		Price:         ranked.Price.String(),
		Currency:      ranked.Currency,
		TravelClass:   ranked.Offer.Cabin(),
		TotalDuration: ranked.TotalDurationMinutes,
	}
	for i, itinerary := range ranked.Offer.Itineraries {
		for _, segment := range itinerary.Segments {
			option.Segments = append(option.Segments, Segment{
				Itinerary:     i,
				Origin:        segment.Origin,
				Destination:   segment.Destination,
				DepartureTime: segment.DepartureAt,
				ArrivalTime:   segment.ArrivalAt,
				Duration:      segment.Duration,
				Carrier:       segment.CarrierCode,
				FlightNumber:  segment.Number,
			})
		}
	}
	return option
}

func (o FlightOption) toRankedOffer() models.RankedOffer {
	price, _ := decimal.NewFromString(o.Price)

	offer := models.FlightOffer{
		ID:    o.OfferID,
		Price: models.Price{Total: o.Price, Currency: o.Currency},
	}
	if o.TravelClass != "" {
		offer.TravelerPricings = []models.TravelerPricing{{FareDetails: []models.FareDetail{{Cabin: o.TravelClass}}}}
	}
	for _, segment := range o.Segments {
		for len(offer.Itineraries) <= segment.Itinerary {
			offer.Itineraries = append(offer.Itineraries, models.Itinerary{})
		}
		itinerary := &offer.Itineraries[segment.Itinerary]
		itinerary.Segments = append(itinerary.Segments, models.FlightSegment{
			Origin:      segment.Origin,
			Destination: segment.Destination,
			DepartureAt: segment.DepartureTime,
			ArrivalAt:   segment.ArrivalTime,
			Duration:    segment.Duration,
			CarrierCode: segment.Carrier,
			Number:      segment.FlightNumber,
		})
	}

	return models.RankedOffer{
		Offer:                offer,
		Tag:                  models.Tag(o.Type),
		Price:                price,
		Currency:             o.Currency,
		TotalDurationMinutes: o.TotalDuration,
	}
}
