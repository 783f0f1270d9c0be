package service

import (
	"context"
	"slices"
	"time"

	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/models"
)

type testSource struct {
	offers   []models.FlightOffer
	err      error
	searches []models.FlightSearch
}

func (s *testSource) SearchOffers(ctx context.Context, search models.FlightSearch) ([]models.FlightOffer, error) {
	s.searches = append(s.searches, search)
	if s.err != nil {
		return nil, s.err
	}
	return s.offers, nil
}

type testCache struct {
	getResult []models.FlightOffer
	getErr    error
	setErr    error
	getKeys   []string
	setKeys   []string
	setTTL    time.Duration
}

func (c *testCache) GetOffers(ctx context.Context, key string) ([]models.FlightOffer, error) {
	c.getKeys = append(c.getKeys, key)
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.getResult, nil
}

func (c *testCache) SetOffers(ctx context.Context, key string, offers []models.FlightOffer, ttl time.Duration) error {
	c.setKeys = append(c.setKeys, key)
	c.setTTL = ttl
	return c.setErr
}

type testMetrics struct {
	searches   []string
	cache      []string
	selections int
	plans      int
	emails     int
}

func (m *testMetrics) ObserveSearch(outcome string, elapsed time.Duration) {
	m.searches = append(m.searches, outcome)
}

func (m *testMetrics) ObserveCache(result string) { m.cache = append(m.cache, result) }

func (m *testMetrics) ObserveSelection(models.RankedSelection) { m.selections++ }

func (m *testMetrics) ObservePlan() { m.plans++ }

func (m *testMetrics) ObservePlanEmail() { m.emails++ }

type testRepo struct {
	plans    map[string]models.TravelPlan
	count    int64
	countErr error
	saveErr  error
	getErr   error
	checked  []string
	// taken ids are stored by someone else without PlanExists seeing them.
	taken []string
	saves []string
}

func newTestRepo() *testRepo {
	return &testRepo{plans: map[string]models.TravelPlan{}}
}

func (r *testRepo) SavePlan(ctx context.Context, plan models.TravelPlan) error {
	r.saves = append(r.saves, plan.SearchID)
	if r.saveErr != nil {
		return r.saveErr
	}
	if slices.Contains(r.taken, plan.SearchID) {
		return derr.ErrSearchIDTaken
	}
	if _, ok := r.plans[plan.SearchID]; ok {
		return derr.ErrSearchIDTaken
	}
	r.plans[plan.SearchID] = plan
	return nil
}

func (r *testRepo) GetPlan(ctx context.Context, searchID string) (models.TravelPlan, error) {
	if r.getErr != nil {
		return models.TravelPlan{}, r.getErr
	}
	plan, ok := r.plans[searchID]
	if !ok {
		return models.TravelPlan{}, derr.ErrPlanNotFound
	}
	return plan, nil
}

func (r *testRepo) PlanExists(ctx context.Context, searchID string) (bool, error) {
	r.checked = append(r.checked, searchID)
	_, ok := r.plans[searchID]
	return ok, nil
}

func (r *testRepo) CountPlans(ctx context.Context) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	if r.count > 0 {
		return r.count, nil
	}
	return int64(len(r.plans)), nil
}

type testFlights struct {
	selection models.RankedSelection
	err       error
	searches  []models.FlightSearch
}

func (f *testFlights) SearchFlights(ctx context.Context, search models.FlightSearch) (models.RankedSelection, error) {
	f.searches = append(f.searches, search)
	return f.selection, f.err
}

type testItinerary struct {
	text   string
	err    error
	inputs []models.ItineraryInput
}

func (g *testItinerary) GenerateItinerary(ctx context.Context, input models.ItineraryInput) (string, error) {
	g.inputs = append(g.inputs, input)
	return g.text, g.err
}

type testNotifier struct {
	err  error
	sent []models.PlanEmail
}

func (n *testNotifier) SendPlan(ctx context.Context, email models.PlanEmail) error {
	n.sent = append(n.sent, email)
	return n.err
}

func testFlightOffer(id, price, cabin, duration, flight string) models.FlightOffer {
	return models.FlightOffer{
		ID: id,
		Itineraries: []models.Itinerary{{Segments: []models.FlightSegment{{
			Origin:      "BER",
			Destination: "LIS",
			DepartureAt: "2026-06-01T08:00:00",
			ArrivalAt:   "2026-06-01T12:00:00",
			Duration:    duration,
			CarrierCode: flight[:2],
			Number:      flight[2:],
		}}}},
		Price: models.Price{Total: price, Currency: "EUR"},
		TravelerPricings: []models.TravelerPricing{{
			FareDetails: []models.FareDetail{{Cabin: cabin}},
		}},
	}
}

func testSearch() models.FlightSearch {
	return models.FlightSearch{
		Routes:     []models.FlightRoute{{Origin: "ber", Destination: "lis", DepartureDate: "2026-06-01"}},
		Travelers:  models.TravelerCounts{Adults: 1},
		CabinClass: models.CabinEconomy,
	}
}

func testAirport(code, city string) models.Airport {
	return models.Airport{Code: code, City: city, Name: city + " Airport", Country: "Somewhere"}
}

func testTrip() models.TripRequest {
	return models.TripRequest{
		TripType:  models.TripRoundTrip,
		Travelers: []models.Traveler{{Type: models.TravelerAdult, Name: "Ana"}},
		Counts:    models.TravelerCounts{Adults: 1},
		Email:     "ana@example.com",
		Legs: []models.TripLeg{
			{Origin: testAirport("BER", "Berlin"), Destination: testAirport("LIS", "Lisbon"), DepartureDate: "2026-06-01", StayDays: 4},
			{Origin: testAirport("LIS", "Lisbon"), Destination: testAirport("BER", "Berlin"), DepartureDate: "2026-06-05"},
		},
		Hotels:     []models.HotelPreference{{City: "Lisbon", Location: "City Center"}},
		CabinClass: models.CabinEconomy,
	}
}
