package models

import "time"

type TravelPlan struct {
	SearchID          string          `json:"search_id"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Request           TripRequest     `json:"request"`
	Flights           RankedSelection `json:"flights"`
	FlightOptionsText string          `json:"flight_options_text"`
	Itinerary         string          `json:"itinerary"`
}

// ItineraryInput is handed to the itinerary generator.
type ItineraryInput struct {
	Request           TripRequest
	FlightOptionsText string
	TripDetailsText   string
}

type WebResult struct {
	Title   string
	Link    string
	Snippet string
}

// PlanEmail is the content of the results email for one plan.
type PlanEmail struct {
	To           string
	CustomerName string
	SearchID     string
	SentAt       time.Time
	TripDetails  string
	Itinerary    string
}
