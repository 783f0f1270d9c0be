package llm

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/ozzus/cocoplanner/internal/domain/ports"
	"github.com/tmc/langchaingo/llms"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	StageFlights     = "Analyzing flights"
	StageActivities  = "Planning activities"
	StageRestaurants = "Finding restaurants"
	StageItinerary   = "Compiling itinerary"
)

type agent struct {
	name   string
	prompt *template.Template
}

var (
	flightAnalyst     = agent{name: "flight_analyst", prompt: flightAnalystPrompt}
	activityPlanner   = agent{name: "activity_planner", prompt: activityPlannerPrompt}
	restaurantScout   = agent{name: "restaurant_scout", prompt: restaurantScoutPrompt}
	itineraryCompiler = agent{name: "itinerary_compiler", prompt: itineraryCompilerPrompt}
)

type Option func(*Pipeline)

func WithTemperature(t float64) Option {
	return func(p *Pipeline) { p.temperature = t }
}

// WithResearchLimits sets how many search results are listed and how many of
// them are scraped per query.
func WithResearchLimits(results, pages int) Option {
	return func(p *Pipeline) {
		p.searchResults = results
		p.maxPages = pages
	}
}

// WithStageHook is called when a stage starts; the CLI uses it for progress output.
func WithStageHook(hook func(stage string)) Option {
	return func(p *Pipeline) { p.onStage = hook }
}

// Pipeline writes the itinerary with four agents: a flight analyst, then an
// activity planner and a restaurant scout side by side, then a compiler that
// merges their answers.
type Pipeline struct {
	log           *zap.Logger
	model         llms.Model
	search        ports.WebSearcher
	pages         ports.PageFetcher
	temperature   float64
	searchResults int
	maxPages      int
	onStage       func(stage string)
}

func NewPipeline(log *zap.Logger, model llms.Model, search ports.WebSearcher, pages ports.PageFetcher, opts ...Option) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}

	p := &Pipeline{
		log:           log,
		model:         model,
		search:        search,
		pages:         pages,
		temperature:   0.7,
		searchResults: 5,
		maxPages:      2,
		onStage:       func(string) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) GenerateItinerary(ctx context.Context, input models.ItineraryInput) (string, error) {
	const op = "llm.GenerateItinerary"
	tracer := otel.Tracer("cocoplanner/llm")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	logger := p.log.With(zap.String("op", op))
	data := newPromptData(input)
	span.SetAttributes(attribute.Int("itinerary.destinations", len(data.Destinations)))

	p.onStage(StageFlights)
	analysis, err := p.run(ctx, flightAnalyst, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "flight analyst failed")
		return "", err
	}

	var activities, restaurants string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.onStage(StageActivities)
		agentData := data
		agentData.Research = p.research(gctx, logger, activityQueries(data.Destinations))
		out, err := p.run(gctx, activityPlanner, agentData)
		activities = out
		return err
	})
	g.Go(func() error {
		p.onStage(StageRestaurants)
		agentData := data
		agentData.Research = p.research(gctx, logger, restaurantQueries(data.Destinations))
		out, err := p.run(gctx, restaurantScout, agentData)
		restaurants = out
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "research agents failed")
		return "", err
	}

	p.onStage(StageItinerary)
	data.FlightAnalysis = analysis
	data.Activities = activities
	data.Restaurants = restaurants
	itinerary, err := p.run(ctx, itineraryCompiler, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "itinerary compiler failed")
		return "", err
	}

	span.SetStatus(otelcodes.Ok, "ok")
	logger.Info("itinerary generated", zap.Int("chars", len(itinerary)))
	return itinerary, nil
}

func (p *Pipeline) run(ctx context.Context, a agent, data promptData) (string, error) {
	var prompt bytes.Buffer
	if err := a.prompt.Execute(&prompt, data); err != nil {
		return "", fmt.Errorf("%s: render prompt: %w", a.name, err)
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, p.model, prompt.String(), llms.WithTemperature(p.temperature))
	if err != nil {
		return "", fmt.Errorf("%s: generate: %w", a.name, err)
	}

	p.log.Debug("agent finished", zap.String("agent", a.name), zap.Int("chars", len(out)))
	return strings.TrimSpace(out), nil
}

// research is best effort: failed searches or pages are logged and skipped so the
// agents can still answer from general knowledge.
func (p *Pipeline) research(ctx context.Context, logger *zap.Logger, queries []string) string {
	if p.search == nil {
		return ""
	}

	var b strings.Builder
	for _, query := range queries {
		results, err := p.search.Search(ctx, query, p.searchResults)
		if err != nil {
			logger.Warn("web search failed", zap.String("query", query), zap.Error(err))
			continue
		}

		fmt.Fprintf(&b, "Search: %s\n", query)
		for _, r := range results {
			fmt.Fprintf(&b, "- %s (%s): %s\n", r.Title, r.Link, r.Snippet)
		}

		if p.pages == nil {
			continue
		}
		for _, r := range results[:min(p.maxPages, len(results))] {
			text, err := p.pages.FetchText(ctx, r.Link)
			if err != nil {
				logger.Warn("page scrape failed", zap.String("url", r.Link), zap.Error(err))
				continue
			}
			if text != "" {
				fmt.Fprintf(&b, "\nPage %s:\n%s\n", r.Link, text)
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func activityQueries(destinations []destination) []string {
	queries := make([]string, 0, len(destinations))
	for _, d := range destinations {
		queries = append(queries, strings.TrimSpace("top things to do in "+d.City+" "+d.Country))
	}
	return queries
}

func restaurantQueries(destinations []destination) []string {
	queries := make([]string, 0, len(destinations))
	for _, d := range destinations {
		queries = append(queries, strings.TrimSpace("best local restaurants in "+d.City+" "+d.Country))
	}
	return queries
}

func newPromptData(input models.ItineraryInput) promptData {
	req := input.Request
	data := promptData{
		TripDetails:   input.TripDetailsText,
		FlightOptions: input.FlightOptionsText,
		Travelers:     describeTravelers(req.Counts),
		TravelClass:   strings.ToLower(req.CabinClass.Label()),
	}

	hotels := make(map[string]string, len(req.Hotels))
	for _, h := range req.Hotels {
		hotels[h.City] = h.Location
	}

	home := ""
	if len(req.Legs) > 0 {
		home = req.Legs[0].Origin.Code
	}
	for _, leg := range req.Legs {
		if leg.Destination.Code == home {
			continue
		}
		city := leg.Destination.CityName()
		data.Destinations = append(data.Destinations, destination{
			City:     city,
			Country:  leg.Destination.Country,
			Arrival:  leg.DepartureDate,
			StayDays: leg.StayDays,
			Hotel:    hotels[city],
		})
	}
	return data
}

func describeTravelers(c models.TravelerCounts) string {
	parts := []string{fmt.Sprintf("%d %s", c.Adults, pluralize(c.Adults, "adult"))}
	if c.Children > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", c.Children, pluralize(c.Children, "child")))
	}
	if c.Infants > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", c.Infants, pluralize(c.Infants, "infant")))
	}
	return strings.Join(parts, ", ")
}

func pluralize(n int, word string) string {
	switch {
	case n == 1:
		return word
	case word == "child":
		return "children"
	default:
		return word + "s"
	}
}
