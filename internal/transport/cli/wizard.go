package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ozzus/cocoplanner/internal/application/format"
	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/ozzus/cocoplanner/internal/domain/ports"
)

const (
	maxTravelersPerType = 9
	maxStops            = 8
	maxStayDays         = 365
)

// Wizard walks the user through a trip request.
type Wizard struct {
	p        *Prompter
	airports ports.AirportDirectory
	validate *validator.Validate
	now      func() time.Time
}

func NewWizard(p *Prompter, airports ports.AirportDirectory) *Wizard {
	return &Wizard{
		p:        p,
		airports: airports,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Collect asks every question, then loops over the summary until the user
// confirms. Quitting returns ErrCancelled.
func (w *Wizard) Collect() (models.TripRequest, error) {
	w.p.Heading("Let's Plan Your Trip!")

	var req models.TripRequest
	var err error

	if err = w.askTravelers(&req); err != nil {
		return models.TripRequest{}, err
	}
	if req.Email, err = w.askEmail(); err != nil {
		return models.TripRequest{}, err
	}
	if req.TripType, err = w.askTripType(); err != nil {
		return models.TripRequest{}, err
	}
	if req.Legs, err = w.askLegs(req.TripType); err != nil {
		return models.TripRequest{}, err
	}
	if req.Hotels, err = w.askHotels(req); err != nil {
		return models.TripRequest{}, err
	}

	w.p.Heading("Travel Preferences")
	if req.CabinClass, err = w.askCabin(); err != nil {
		return models.TripRequest{}, err
	}
	if req.NonStop, err = w.p.AskYesNo("\nDo you want non-stop flights only? (y/n): "); err != nil {
		return models.TripRequest{}, err
	}

	return w.Confirm(req)
}

// Confirm shows the numbered summary and lets the user start planning, make
// changes or quit.
func (w *Wizard) Confirm(req models.TripRequest) (models.TripRequest, error) {
	for {
		w.p.Heading("Travel Plan Summary")
		w.p.Println(format.TripSummary(req))
		w.p.Println("****************")
		w.p.Println("Are the above information correct?")
		w.p.Println("1 - Yes, start planning")
		w.p.Println("2 - No, I need to make changes")
		w.p.Println("q - Quit planning")

		choice, err := w.p.AskChoice("> ", "1", "2", "q")
		if err != nil {
			return models.TripRequest{}, err
		}
		switch choice {
		case "1":
			return req, nil
		case "q":
			return models.TripRequest{}, derr.ErrCancelled
		}

		if req, err = w.Modify(req); err != nil {
			return models.TripRequest{}, err
		}
	}
}

// Modify is the change menu: 1-7 edit a section, 8 returns the edited request,
// q quits.
func (w *Wizard) Modify(req models.TripRequest) (models.TripRequest, error) {
	for {
		w.p.Heading("Travel Plan Summary")
		w.p.Println(format.TripSummary(req))
		w.p.Println("****************")
		w.p.Println("What would you like to modify?")
		w.p.Println("1 - Passenger counts")
		w.p.Println("2 - Passenger names")
		w.p.Println("3 - Email")
		w.p.Println("4 - Flight information")
		w.p.Println("5 - Hotel location")
		w.p.Println("6 - Travel class")
		w.p.Println("7 - Non-stop preference")
		w.p.Println()
		w.p.Println("8 - Confirm changes")
		w.p.Println("q - Quit planning")

		choice, err := w.p.AskChoice("> ", "1", "2", "3", "4", "5", "6", "7", "8", "q")
		if err != nil {
			return models.TripRequest{}, err
		}

		switch choice {
		case "1":
			err = w.askTravelers(&req)
		case "2":
			req.Travelers, err = w.askNames(req.Counts)
		case "3":
			req.Email, err = w.askEmail()
		case "4":
			if req.Legs, err = w.askLegs(req.TripType); err == nil {
				req.Hotels, err = w.askHotels(req)
			}
		case "5":
			req.Hotels, err = w.askHotels(req)
		case "6":
			req.CabinClass, err = w.askCabin()
		case "7":
			req.NonStop, err = w.p.AskYesNo("\nDo you want non-stop flights only? (y/n): ")
		case "8":
			return req, nil
		case "q":
			return models.TripRequest{}, derr.ErrCancelled
		}
		if err != nil {
			return models.TripRequest{}, err
		}
	}
}

func (w *Wizard) askTravelers(req *models.TripRequest) error {
	adults, err := w.p.AskInt("How many adults (12+ years) are traveling?: ", 1, maxTravelersPerType,
		"At least one adult traveler is required. Children and infants must be accompanied by an adult.")
	if err != nil {
		return err
	}
	children, err := w.p.AskInt("How many children (2-11 years) are traveling?: ", 0, maxTravelersPerType,
		"Please enter a valid number (0 or more).")
	if err != nil {
		return err
	}
	infants, err := w.p.AskInt("How many infants (0-2 years) are traveling?: ", 0, adults,
		"Number of infants cannot exceed number of adults. Each infant must be accompanied by an adult.")
	if err != nil {
		return err
	}

	counts := models.TravelerCounts{Adults: adults, Children: children, Infants: infants}
	travelers, err := w.askNames(counts)
	if err != nil {
		return err
	}
	req.Counts = counts
	req.Travelers = travelers
	return nil
}

func (w *Wizard) askNames(counts models.TravelerCounts) ([]models.Traveler, error) {
	groups := []struct {
		kind  models.TravelerType
		count int
		ages  string
	}{
		{kind: models.TravelerAdult, count: counts.Adults, ages: "12+ years"},
		{kind: models.TravelerChild, count: counts.Children, ages: "2-11 years"},
		{kind: models.TravelerInfant, count: counts.Infants, ages: "0-2 years"},
	}

	travelers := make([]models.Traveler, 0, counts.Total())
	w.p.Println()
	for _, group := range groups {
		for i := range group.count {
			prompt := fmt.Sprintf("Enter name for %s %d (%s): ", group.kind.Label(), i+1, group.ages)
			name, err := w.p.AskNonEmpty(prompt, "Name cannot be empty.")
			if err != nil {
				return nil, err
			}
			travelers = append(travelers, models.Traveler{Type: group.kind, Name: name})
		}
	}
	return travelers, nil
}

func (w *Wizard) askEmail() (string, error) {
	for {
		email, err := w.p.AskNonEmpty("\nPlease enter your email address: ", "Email cannot be empty.")
		if err != nil {
			return "", err
		}
		if w.validate.Var(email, "required,email") == nil {
			return email, nil
		}
		w.p.Warn("Invalid email format. Please enter a valid email address.")
	}
}

func (w *Wizard) askTripType() (models.TripType, error) {
	w.p.Println("\nSelect trip type:")
	w.p.Println("1. One-way")
	w.p.Println("2. Round-trip")
	w.p.Println("3. Multi-city")
	choice, err := w.p.AskChoice("> ", "1", "2", "3")
	if err != nil {
		return "", err
	}
	switch choice {
	case "1":
		return models.TripOneWay, nil
	case "2":
		return models.TripRoundTrip, nil
	default:
		return models.TripMultiCity, nil
	}
}

func (w *Wizard) askCabin() (models.CabinClass, error) {
	w.p.Println("Select travel class:")
	w.p.Println("e - Economy")
	w.p.Println("b - Business")
	w.p.Println("f - First")
	choice, err := w.p.AskChoice("> ", "e", "b", "f")
	if err != nil {
		return "", err
	}
	switch choice {
	case "b":
		return models.CabinBusiness, nil
	case "f":
		return models.CabinFirst, nil
	default:
		return models.CabinEconomy, nil
	}
}

func (w *Wizard) askLegs(tripType models.TripType) ([]models.TripLeg, error) {
	switch tripType {
	case models.TripOneWay:
		return w.askOneWay()
	case models.TripRoundTrip:
		return w.askRoundTrip()
	default:
		return w.askMultiCity()
	}
}

func (w *Wizard) askOneWay() ([]models.TripLeg, error) {
	origin, err := w.selectAirport("Where would you like to start your journey from?", "")
	if err != nil {
		return nil, err
	}
	date, err := w.askDate("\nEnter departure date (YYYY-MM-DD): ", time.Time{})
	if err != nil {
		return nil, err
	}
	dest, err := w.selectAirport("Where would you like to fly to?", origin.Code)
	if err != nil {
		return nil, err
	}
	stay, err := w.askStay(dest.CityName())
	if err != nil {
		return nil, err
	}
	return []models.TripLeg{{
		Origin:        origin,
		Destination:   dest,
		DepartureDate: date.Format(time.DateOnly),
		StayDays:      stay,
	}}, nil
}

func (w *Wizard) askRoundTrip() ([]models.TripLeg, error) {
	origin, err := w.selectAirport("Where would you like to start your journey from?", "")
	if err != nil {
		return nil, err
	}
	departure, err := w.askDate("\nEnter departure date (YYYY-MM-DD): ", time.Time{})
	if err != nil {
		return nil, err
	}
	dest, err := w.selectAirport("Where would you like to fly to?", origin.Code)
	if err != nil {
		return nil, err
	}
	w.p.Printf("\nReturn from: %s\n", dest.Display())
	ret, err := w.askDate("Enter return date (YYYY-MM-DD): ", departure)
	if err != nil {
		return nil, err
	}
	return []models.TripLeg{
		{Origin: origin, Destination: dest, DepartureDate: departure.Format(time.DateOnly), StayDays: daysBetween(departure, ret)},
		{Origin: dest, Destination: origin, DepartureDate: ret.Format(time.DateOnly)},
	}, nil
}

func (w *Wizard) askMultiCity() ([]models.TripLeg, error) {
	w.p.Println("\nHow many stops would you like to make?")
	w.p.Println("(Minimum 2 stops - departure and final destination)")
	stops, err := w.p.AskInt("Enter number of stops: ", 2, maxStops, "Please enter at least 2 stops.")
	if err != nil {
		return nil, err
	}

	legs := make([]models.TripLeg, 0, stops)
	dates := make([]time.Time, 0, stops)
	for i := range stops {
		w.p.Heading(fmt.Sprintf("Stop %d of %d", i+1, stops))

		var origin models.Airport
		notBefore := time.Time{}
		if i == 0 {
			if origin, err = w.selectAirport("Where would you like to start your journey from?", ""); err != nil {
				return nil, err
			}
		} else {
			origin = legs[i-1].Destination
			notBefore = dates[i-1]
			w.p.Printf("Departing from: %s\n", origin.Display())
		}

		date, err := w.askDate(fmt.Sprintf("\nEnter departure date for stop %d (YYYY-MM-DD): ", i+1), notBefore)
		if err != nil {
			return nil, err
		}
		dest, err := w.selectAirport(fmt.Sprintf("Where would you like to fly to for stop %d?", i+1), origin.Code)
		if err != nil {
			return nil, err
		}

		legs = append(legs, models.TripLeg{Origin: origin, Destination: dest, DepartureDate: date.Format(time.DateOnly)})
		dates = append(dates, date)
	}

	for i := 0; i < len(legs)-1; i++ {
		legs[i].StayDays = daysBetween(dates[i], dates[i+1])
	}

	last := &legs[len(legs)-1]
	if last.Destination.Code != legs[0].Origin.Code {
		want, err := w.p.AskYesNo(fmt.Sprintf("\nWould you like to get a plan for your stay in %s? (y/n): ", last.Destination.CityName()))
		if err != nil {
			return nil, err
		}
		if want {
			if last.StayDays, err = w.askStay(last.Destination.CityName()); err != nil {
				return nil, err
			}
		}
	}
	return legs, nil
}

func (w *Wizard) askStay(city string) (int, error) {
	return w.p.AskInt(fmt.Sprintf("\nHow many days would you like to explore %s? ", city), 1, maxStayDays,
		"Please enter a number greater than 0.")
}

// askDate accepts YYYY-MM-DD dates that are neither in the past nor before
// notBefore.
func (w *Wizard) askDate(prompt string, notBefore time.Time) (time.Time, error) {
	now := w.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for {
		answer, err := w.p.AskNonEmpty(prompt, "Date cannot be empty. Please enter a date.")
		if err != nil {
			return time.Time{}, err
		}
		date, err := time.Parse(time.DateOnly, answer)
		if err != nil {
			w.p.Warn("Invalid date format. Please use YYYY-MM-DD.")
			continue
		}
		if date.Before(today) {
			w.p.Warn("Date cannot be in the past.")
			continue
		}
		if !notBefore.IsZero() && date.Before(notBefore) {
			w.p.Warn("Date cannot be before %s.", notBefore.Format(time.DateOnly))
			continue
		}
		return date, nil
	}
}

// selectAirport searches the directory until the user picks a match. exclude is
// the code the airport must differ from.
func (w *Wizard) selectAirport(prompt, exclude string) (models.Airport, error) {
	for {
		term, err := w.p.Ask(fmt.Sprintf("\n%s\nEnter city name, airport name, country, or IATA code (or 'q' to quit): ", prompt))
		if err != nil {
			return models.Airport{}, err
		}
		if strings.EqualFold(term, "q") {
			return models.Airport{}, derr.ErrCancelled
		}
		if term == "" {
			w.p.Warn("Please enter a search term.")
			continue
		}

		matches := w.airports.Search(term)
		if len(matches) == 0 {
			w.p.Warn("No matching airports found.")
			continue
		}

		w.p.Println("\nMatching airports:")
		for i, airport := range matches {
			w.p.Printf("%d. %s\n", i+1, airport.Display())
		}

		n, err := w.p.AskInt("\nEnter the number of your chosen airport (or 0 to search again): ", 0, len(matches),
			fmt.Sprintf("Please enter a number between 0 and %d.", len(matches)))
		if err != nil {
			return models.Airport{}, err
		}
		if n == 0 {
			continue
		}

		selected := matches[n-1]
		if exclude != "" && strings.EqualFold(selected.Code, exclude) {
			w.p.Warn("Destination must be different from the departure airport.")
			continue
		}
		w.p.Printf("\nSelected: %s\n", selected.Display())
		return selected, nil
	}
}

// askHotels asks for a hotel area in every city the travelers stay at.
func (w *Wizard) askHotels(req models.TripRequest) ([]models.HotelPreference, error) {
	cities := hotelCities(req)
	if len(cities) == 0 {
		return nil, nil
	}

	w.p.Heading("Hotel Information")
	hotels := make([]models.HotelPreference, 0, len(cities))
	for _, city := range cities {
		w.p.Printf("\nAvailable areas in %s:\n", city)
		w.p.Println("1. City Center")
		w.p.Println("2. Airport Area")
		w.p.Println("3. Custom Location")

		choice, err := w.p.AskChoice("> ", "1", "2", "3")
		if err != nil {
			return nil, err
		}
		location := "City Center"
		switch choice {
		case "2":
			location = "Airport Area"
		case "3":
			if location, err = w.p.AskNonEmpty("\nEnter custom location: ", "Location cannot be empty. Please try again."); err != nil {
				return nil, err
			}
		}
		hotels = append(hotels, models.HotelPreference{City: city, Location: location})
	}
	return hotels, nil
}

func hotelCities(req models.TripRequest) []string {
	if len(req.Legs) == 0 {
		return nil
	}
	if req.TripType != models.TripMultiCity {
		return []string{req.Legs[0].Destination.CityName()}
	}

	var cities []string
	for i, leg := range req.Legs {
		last := i == len(req.Legs)-1
		if last && (leg.StayDays == 0 || leg.Destination.Code == req.Legs[0].Origin.Code) {
			continue
		}
		cities = append(cities, leg.Destination.CityName())
	}
	return cities
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
