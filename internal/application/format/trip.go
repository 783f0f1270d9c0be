package format

import (
	"fmt"
	"strings"

	"github.com/ozzus/cocoplanner/internal/domain/models"
)

// TripDetails is the plain trip description used in emails and agent prompts.
func TripDetails(req models.TripRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trip Type: %s\n", req.TripType.Label())
	fmt.Fprintf(&b, "Travel Class: %s\n", req.CabinClass.Label())
	fmt.Fprintf(&b, "Non-stop Flights Only: %s\n", yesNo(req.NonStop))

	b.WriteString("\nTravelers:\n")
	for i, traveler := range req.Travelers {
		fmt.Fprintf(&b, "%d- %s (%s)\n", i+1, traveler.Name, traveler.Type.Label())
	}

	b.WriteString("\nFlight Routes:\n")
	for i, leg := range req.Legs {
		fmt.Fprintf(&b, "\nRoute %d:\n", i+1)
		fmt.Fprintf(&b, "From: %s\n", leg.Origin.Display())
		fmt.Fprintf(&b, "To: %s\n", leg.Destination.Display())
		fmt.Fprintf(&b, "Date: %s\n", leg.DepartureDate)
		if leg.StayDays > 0 {
			fmt.Fprintf(&b, "Stay Duration: %d days\n", leg.StayDays)
		}
	}

	if len(req.Hotels) > 0 {
		b.WriteString("\nHotel Preferences:\n")
		for _, hotel := range req.Hotels {
			fmt.Fprintf(&b, "Location in %s: %s\n", hotel.City, hotel.Location)
		}
	}
	return b.String()
}

// TripSummary numbers each editable section of the request so the user can pick one
// to change.
func TripSummary(req models.TripRequest) string {
	var b strings.Builder
	b.WriteString("1. Travelers:\n")
	fmt.Fprintf(&b, "   Adults: %d\n", req.Counts.Adults)
	fmt.Fprintf(&b, "   Children: %d\n", req.Counts.Children)
	fmt.Fprintf(&b, "   Infants: %d\n", req.Counts.Infants)

	b.WriteString("\n2. Traveler Names:\n")
	for i, traveler := range req.Travelers {
		fmt.Fprintf(&b, "   %d- %s (%s)\n", i+1, traveler.Name, traveler.Type.Label())
	}

	fmt.Fprintf(&b, "\n3. Contact Email: %s\n", req.Email)

	fmt.Fprintf(&b, "\n4. Trip Details (%s):\n", req.TripType.Label())
	for i, leg := range req.Legs {
		if len(req.Legs) > 1 {
			fmt.Fprintf(&b, "\n   Flight %d:\n", i+1)
		}
		fmt.Fprintf(&b, "   From: %s\n", leg.Origin.Display())
		fmt.Fprintf(&b, "   To: %s\n", leg.Destination.Display())
		fmt.Fprintf(&b, "   Date: %s\n", leg.DepartureDate)
		if leg.StayDays > 0 {
			fmt.Fprintf(&b, "   Stay Duration: %d days\n", leg.StayDays)
		}
	}

	b.WriteString("\n5. Hotel Preferences:\n")
	if len(req.Hotels) == 0 {
		b.WriteString("   None\n")
	}
	for _, hotel := range req.Hotels {
		fmt.Fprintf(&b, "   Preferred location in %s: %s\n", hotel.City, hotel.Location)
	}

	fmt.Fprintf(&b, "\n6. Travel Class: %s\n", req.CabinClass.Label())
	fmt.Fprintf(&b, "\n7. Non-stop Flights Only: %s\n", yesNo(req.NonStop))
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
