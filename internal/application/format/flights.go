package format

import (
	"fmt"
	"strings"

	"github.com/ozzus/cocoplanner/internal/application/ranking"
	"github.com/ozzus/cocoplanner/internal/domain/models"
)

// FlightOptions renders the ranked selection as the text block shown to the user,
// stored with the plan and handed to the itinerary agents.
func FlightOptions(selection models.RankedSelection) string {
	var b strings.Builder
	if selection.CabinFallback {
		fmt.Fprintf(&b, "\nNote: no offers matched %s class, showing all available cabins.\n", selection.CabinClass.Label())
	}
	writeGroup(&b, "CHEAPEST OPTIONS", "Cheapest", selection.ByTag(models.TagCheapest))
	writeGroup(&b, "FASTEST OPTIONS", "Fastest", selection.ByTag(models.TagFastest))
	return b.String()
}

func writeGroup(b *strings.Builder, title, label string, offers []models.RankedOffer) {
	fmt.Fprintf(b, "\n%s:\n", title)
	if len(offers) == 0 {
		b.WriteString("\nNo distinct options.\n")
		return
	}
	for i, offer := range offers {
		fmt.Fprintf(b, "\nOption %d - %s:\n", i+1, label)
		fmt.Fprintf(b, "Total Price: %s\n", Price(offer))
		fmt.Fprintf(b, "Travel Class: %s\n", offerCabin(offer.Offer))
		fmt.Fprintf(b, "Total Duration: %s\n\n", ranking.FormatHuman(offer.TotalDurationMinutes))
		for j, segment := range offer.Offer.Segments() {
			fmt.Fprintf(b, "Flight Segment %d:\n", j+1)
			fmt.Fprintf(b, "- From: %s\n", segment.Origin)
			fmt.Fprintf(b, "- To: %s\n", segment.Destination)
			fmt.Fprintf(b, "- Departure: %s\n", segment.DepartureAt)
			fmt.Fprintf(b, "- Arrival: %s\n", segment.ArrivalAt)
			fmt.Fprintf(b, "- Duration: %s\n", segmentDuration(segment.Duration))
			fmt.Fprintf(b, "- Carrier: %s\n", segment.CarrierCode)
			fmt.Fprintf(b, "- Flight Number: %s\n\n", segment.FlightNumber())
		}
	}
}

// Price renders the amount with a currency symbol for the common currencies and the
// ISO code otherwise.
func Price(offer models.RankedOffer) string {
	amount := offer.Price.StringFixed(2)
	switch strings.ToUpper(offer.Currency) {
	case "EUR":
		return "€" + amount
	case "USD":
		return "$" + amount
	case "GBP":
		return "£" + amount
	case "":
		return amount
	default:
		return amount + " " + strings.ToUpper(offer.Currency)
	}
}

func offerCabin(offer models.FlightOffer) string {
	if cabin, ok := models.ParseCabinClass(offer.Cabin()); ok {
		return cabin.Label()
	}
	if offer.Cabin() == "" {
		return "Unknown"
	}
	return offer.Cabin()
}

func segmentDuration(value string) string {
	minutes, err := ranking.ParseDuration(value)
	if err != nil {
		return value
	}
	return ranking.FormatHuman(minutes)
}
