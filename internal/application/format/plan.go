package format

import (
	"fmt"
	"strings"

	"github.com/ozzus/cocoplanner/internal/domain/models"
)

const rule = "=================================================="

// PlanReport renders a stored plan for the retrieve command.
func PlanReport(plan models.TravelPlan) string {
	req := plan.Request
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nTravel Plan - Search ID: %s\n%s\n", rule, plan.SearchID, rule)

	b.WriteString("\nTravelers Information:\n--------------------\n")
	for _, traveler := range req.Travelers {
		fmt.Fprintf(&b, "%s: %s\n", travelerAge(traveler.Type), traveler.Name)
	}
	b.WriteString("\nTotal Travelers:\n")
	fmt.Fprintf(&b, "Adults (12+ years): %d\n", req.Counts.Adults)
	fmt.Fprintf(&b, "Children (2-11 years): %d\n", req.Counts.Children)
	fmt.Fprintf(&b, "Infants (0-2 years): %d\n", req.Counts.Infants)
	fmt.Fprintf(&b, "Contact Email: %s\n", req.Email)

	b.WriteString("\nTrip Details:\n--------------------\n")
	fmt.Fprintf(&b, "Trip Type: %s\n", req.TripType.Label())
	fmt.Fprintf(&b, "Travel Class: %s\n", req.CabinClass.Label())

	b.WriteString("\nFlight Routes:\n")
	for i, leg := range req.Legs {
		fmt.Fprintf(&b, "\nRoute %d:\n", i+1)
		fmt.Fprintf(&b, "From: %s\n", leg.Origin.Display())
		fmt.Fprintf(&b, "To: %s\n", leg.Destination.Display())
		fmt.Fprintf(&b, "Date: %s\n", leg.DepartureDate)
	}

	if !plan.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "\nCreated on: %s\n", plan.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	}

	if strings.TrimSpace(plan.FlightOptionsText) != "" {
		b.WriteString("\nFlight Options:\n--------------------")
		b.WriteString(plan.FlightOptionsText)
	}

	if strings.TrimSpace(plan.Itinerary) != "" {
		b.WriteString("\nDetailed Itinerary:\n--------------------\n")
		b.WriteString(plan.Itinerary)
		b.WriteString("\n")
	}
	return b.String()
}

func travelerAge(t models.TravelerType) string {
	switch t {
	case models.TravelerAdult:
		return "Adult (12+ years)"
	case models.TravelerChild:
		return "Child (2-11 years)"
	case models.TravelerInfant:
		return "Infant (0-2 years)"
	default:
		return string(t)
	}
}
