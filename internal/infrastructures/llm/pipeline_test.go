package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/tmc/langchaingo/llms"
)

// testModel answers with a marker naming the agent that sent the prompt.
type testModel struct {
	mu      sync.Mutex
	prompts map[string]string
	failOn  string
}

func (m *testModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var prompt strings.Builder
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				prompt.WriteString(text.Text)
			}
		}
	}

	name := agentFor(prompt.String())
	m.mu.Lock()
	if m.prompts == nil {
		m.prompts = map[string]string{}
	}
	m.prompts[name] = prompt.String()
	m.mu.Unlock()

	if name == m.failOn {
		return nil, errors.New("model unavailable")
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "  <" + name + " output>\n"}}}, nil
}

func (m *testModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func agentFor(prompt string) string {
	switch {
	case strings.HasPrefix(prompt, "You are an experienced flight analyst"):
		return "flights"
	case strings.HasPrefix(prompt, "You are a personalized activity planner"):
		return "activities"
	case strings.HasPrefix(prompt, "You are a restaurant scout"):
		return "restaurants"
	default:
		return "compiler"
	}
}

type testSearcher struct {
	mu      sync.Mutex
	queries []string
	err     error
}

func (s *testSearcher) Search(ctx context.Context, query string, limit int) ([]models.WebResult, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return []models.WebResult{
		{Title: "Guide", Link: "https://guide.example/" + strings.ReplaceAll(query, " ", "-"), Snippet: "snippet for " + query},
		{Title: "Blog", Link: "https://blog.example", Snippet: "blog"},
	}, nil
}

type testFetcher struct{}

func (testFetcher) FetchText(ctx context.Context, url string) (string, error) {
	if strings.Contains(url, "blog") {
		return "", errors.New("blocked")
	}
	return "scraped " + url, nil
}

func testInput() models.ItineraryInput {
	return models.ItineraryInput{
		Request: models.TripRequest{
			TripType: models.TripRoundTrip,
			Counts:   models.TravelerCounts{Adults: 2, Children: 1},
			Legs: []models.TripLeg{
				{Origin: models.Airport{Code: "BER", City: "Berlin"}, Destination: models.Airport{Code: "LIS", City: "Lisbon", Country: "Portugal"}, DepartureDate: "2026-06-01", StayDays: 7},
				{Origin: models.Airport{Code: "LIS", City: "Lisbon"}, Destination: models.Airport{Code: "BER", City: "Berlin"}, DepartureDate: "2026-06-08"},
			},
			Hotels:     []models.HotelPreference{{City: "Lisbon", Location: "City Center"}},
			CabinClass: models.CabinEconomy,
		},
		FlightOptionsText: "CHEAPEST OPTIONS\nOption 1",
		TripDetailsText:   "Trip Type: Round-trip",
	}
}

func TestGenerateItinerary(t *testing.T) {
	model := &testModel{}
	searcher := &testSearcher{}
	var stagesMu sync.Mutex
	var stages []string
	p := NewPipeline(nil, model, searcher, testFetcher{},
		WithResearchLimits(2, 2),
		WithStageHook(func(stage string) {
			stagesMu.Lock()
			stages = append(stages, stage)
			stagesMu.Unlock()
		}),
	)

	got, err := p.GenerateItinerary(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "<compiler output>" {
		t.Fatalf("unexpected itinerary: %q", got)
	}

	if !strings.Contains(model.prompts["flights"], "CHEAPEST OPTIONS") {
		t.Fatalf("flight prompt misses options:\n%s", model.prompts["flights"])
	}
	activities := model.prompts["activities"]
	for _, want := range []string{"2 adults, 1 child", "Lisbon, Portugal: arriving 2026-06-01, staying 7 days, hotel near City Center", "scraped https://guide.example/top-things-to-do-in-Lisbon-Portugal"} {
		if !strings.Contains(activities, want) {
			t.Fatalf("activity prompt misses %q:\n%s", want, activities)
		}
	}
	if strings.Contains(activities, "Berlin:") {
		t.Fatalf("home airport must not be a destination:\n%s", activities)
	}
	if !strings.Contains(model.prompts["restaurants"], "best local restaurants in Lisbon Portugal") {
		t.Fatalf("restaurant prompt misses research:\n%s", model.prompts["restaurants"])
	}

	compiler := model.prompts["compiler"]
	for _, want := range []string{"<flights output>", "<activities output>", "<restaurants output>"} {
		if !strings.Contains(compiler, want) {
			t.Fatalf("compiler prompt misses %q:\n%s", want, compiler)
		}
	}

	if len(stages) != 4 || stages[0] != StageFlights || stages[3] != StageItinerary {
		t.Fatalf("unexpected stages: %v", stages)
	}
}

func TestGenerateItinerary_SearchFailureIsTolerated(t *testing.T) {
	model := &testModel{}
	p := NewPipeline(nil, model, &testSearcher{err: errors.New("quota")}, testFetcher{})

	if _, err := p.GenerateItinerary(context.Background(), testInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(model.prompts["activities"], "(none available") {
		t.Fatalf("expected fallback research text:\n%s", model.prompts["activities"])
	}
}

func TestGenerateItinerary_AgentFailure(t *testing.T) {
	p := NewPipeline(nil, &testModel{failOn: "restaurants"}, nil, nil)

	_, err := p.GenerateItinerary(context.Background(), testInput())
	if err == nil || !strings.Contains(err.Error(), "restaurant_scout") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDescribeTravelers(t *testing.T) {
	if got := describeTravelers(models.TravelerCounts{Adults: 1, Children: 2, Infants: 1}); got != "1 adult, 2 children, 1 infant" {
		t.Fatalf("unexpected description: %q", got)
	}
}
