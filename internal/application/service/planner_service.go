package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ozzus/cocoplanner/internal/application/format"
	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/ozzus/cocoplanner/internal/domain/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const saveIDRetries = 3

// PlanResult is a generated plan. Saved is false when the plan could not be
// stored; the itinerary is still returned so the user does not lose it.
type PlanResult struct {
	Plan    models.TravelPlan
	Saved   bool
	SaveErr error
}

type PlannerService struct {
	log       *zap.Logger
	flights   ports.FlightSearcher
	repo      ports.PlanRepository
	itinerary ports.ItineraryGenerator
	notifier  ports.PlanNotifier
	ids       *SearchIDGenerator
	metrics   ports.PlanMetrics
	currency  string
	maxOffers int
	validate  *validator.Validate
	now       func() time.Time
}

// NewPlannerService wires the trip planner. A nil notifier disables email delivery.
func NewPlannerService(
	log *zap.Logger,
	flights ports.FlightSearcher,
	repo ports.PlanRepository,
	itinerary ports.ItineraryGenerator,
	notifier ports.PlanNotifier,
	ids *SearchIDGenerator,
	metrics ports.PlanMetrics,
	currency string,
	maxOffers int,
) *PlannerService {
	if log == nil {
		log = zap.NewNop()
	}
	if ids == nil && repo != nil {
		ids = NewSearchIDGenerator(repo, DefaultSearchIDAttempts)
	}
	if metrics == nil {
		metrics = nopPlanMetrics{}
	}

	return &PlannerService{
		log:       log,
		flights:   flights,
		repo:      repo,
		itinerary: itinerary,
		notifier:  notifier,
		ids:       ids,
		metrics:   metrics,
		currency:  currency,
		maxOffers: maxOffers,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       time.Now,
	}
}

func (s *PlannerService) EmailEnabled() bool {
	return s.notifier != nil
}

// ValidateTrip checks the request as a whole: field rules plus the shape of the
// legs for the trip type.
func (s *PlannerService) ValidateTrip(req models.TripRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", derr.ErrInvalidTrip, err)
	}
	if len(req.Travelers) != req.Counts.Total() {
		return fmt.Errorf("%w: %d traveler names for %d travelers", derr.ErrInvalidTrip, len(req.Travelers), req.Counts.Total())
	}

	counts := map[models.TravelerType]int{}
	for _, traveler := range req.Travelers {
		if strings.TrimSpace(traveler.Name) == "" {
			return fmt.Errorf("%w: empty traveler name", derr.ErrInvalidTrip)
		}
		counts[traveler.Type]++
	}
	if counts[models.TravelerAdult] != req.Counts.Adults ||
		counts[models.TravelerChild] != req.Counts.Children ||
		counts[models.TravelerInfant] != req.Counts.Infants {
		return fmt.Errorf("%w: traveler types do not match the counts", derr.ErrInvalidTrip)
	}

	switch req.TripType {
	case models.TripOneWay:
		if len(req.Legs) != 1 {
			return fmt.Errorf("%w: one-way trip needs exactly one leg", derr.ErrInvalidTrip)
		}
	case models.TripRoundTrip:
		if len(req.Legs) != 2 {
			return fmt.Errorf("%w: round trip needs exactly two legs", derr.ErrInvalidTrip)
		}
		if req.Legs[1].Origin.Code != req.Legs[0].Destination.Code || req.Legs[1].Destination.Code != req.Legs[0].Origin.Code {
			return fmt.Errorf("%w: return leg must reverse the outbound leg", derr.ErrInvalidTrip)
		}
	case models.TripMultiCity:
		if len(req.Legs) < 2 {
			return fmt.Errorf("%w: multi-city trip needs at least two legs", derr.ErrInvalidTrip)
		}
		for i := 1; i < len(req.Legs); i++ {
			if req.Legs[i].Origin.Code != req.Legs[i-1].Destination.Code {
				return fmt.Errorf("%w: leg %d must depart from %s", derr.ErrInvalidTrip, i+1, req.Legs[i-1].Destination.Code)
			}
		}
	}

	for i := 1; i < len(req.Legs); i++ {
		if req.Legs[i].DepartureDate < req.Legs[i-1].DepartureDate {
			return fmt.Errorf("%w: leg %d departs before leg %d", derr.ErrInvalidTrip, i+1, i)
		}
	}
	return nil
}

// SearchFlights runs the flight search for a trip. An empty selection is reported
// as ErrNoFlightOptions.
func (s *PlannerService) SearchFlights(ctx context.Context, req models.TripRequest) (models.RankedSelection, error) {
	const op = "service.PlannerService.SearchFlights"
	logger := s.log.With(zap.String("op", op), zap.String("trip_type", string(req.TripType)))

	if err := s.ValidateTrip(req); err != nil {
		logger.Warn("invalid trip request", zap.Error(err))
		return models.RankedSelection{}, err
	}

	selection, err := s.flights.SearchFlights(ctx, req.FlightSearch(s.currency, s.maxOffers))
	if err != nil {
		logger.Warn("flight search failed", zap.Error(err))
		return models.RankedSelection{}, fmt.Errorf("%s: %w", op, err)
	}
	if selection.Empty() {
		logger.Info("no flight options found", zap.Int("excluded", len(selection.Excluded)))
		return selection, derr.ErrNoFlightOptions
	}
	return selection, nil
}

// BuildPlan allocates a search id, asks the itinerary generator for the final
// itinerary and stores the plan.
func (s *PlannerService) BuildPlan(ctx context.Context, req models.TripRequest, selection models.RankedSelection) (PlanResult, error) {
	const op = "service.BuildPlan"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	logger := s.log.With(zap.String("op", op))

	searchID, err := s.ids.Next(ctx)
	if err != nil {
		logger.Error("failed to allocate search id", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "search id")
		return PlanResult{}, fmt.Errorf("%s: %w", op, err)
	}
	logger = logger.With(zap.String("search_id", searchID))
	span.SetAttributes(attribute.String("plan.search_id", searchID))

	optionsText := format.FlightOptions(selection)
	itinerary, err := s.itinerary.GenerateItinerary(ctx, models.ItineraryInput{
		Request:           req,
		FlightOptionsText: optionsText,
		TripDetailsText:   format.TripDetails(req),
	})
	if err != nil {
		logger.Error("itinerary generation failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "itinerary")
		return PlanResult{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	result := PlanResult{Plan: models.TravelPlan{
		SearchID:          searchID,
		CreatedAt:         now,
		UpdatedAt:         now,
		Request:           req,
		Flights:           selection,
		FlightOptionsText: optionsText,
		Itinerary:         itinerary,
	}}

	if err := s.savePlan(ctx, logger, &result.Plan); err != nil {
		logger.Warn("failed to store plan", zap.Error(err))
		span.RecordError(err)
		result.SaveErr = err
	} else {
		result.Saved = true
		span.SetAttributes(attribute.String("plan.search_id", result.Plan.SearchID))
	}

	s.metrics.ObservePlan()
	span.SetStatus(otelcodes.Ok, "ok")
	logger.Info("travel plan generated", zap.Bool("saved", result.Saved))
	return result, nil
}

// savePlan inserts the plan. Another planner may have stored a plan under the
// same id since it was allocated; the plan then gets a fresh id.
func (s *PlannerService) savePlan(ctx context.Context, logger *zap.Logger, plan *models.TravelPlan) error {
	for attempt := 0; ; attempt++ {
		err := s.repo.SavePlan(ctx, *plan)
		if err == nil || !errors.Is(err, derr.ErrSearchIDTaken) || attempt >= saveIDRetries {
			return err
		}

		searchID, idErr := s.ids.Next(ctx)
		if idErr != nil {
			return idErr
		}
		logger.Warn("search id taken, retrying with a new one",
			zap.String("taken", plan.SearchID),
			zap.String("next", searchID),
		)
		plan.SearchID = searchID
	}
}

// Plan is SearchFlights followed by BuildPlan.
func (s *PlannerService) Plan(ctx context.Context, req models.TripRequest) (PlanResult, error) {
	selection, err := s.SearchFlights(ctx, req)
	if err != nil {
		return PlanResult{}, err
	}
	return s.BuildPlan(ctx, req, selection)
}

func (s *PlannerService) GetPlan(ctx context.Context, searchID string) (models.TravelPlan, error) {
	const op = "service.GetPlan"
	searchID = strings.TrimSpace(searchID)
	logger := s.log.With(zap.String("op", op), zap.String("search_id", searchID))

	if searchID == "" {
		return models.TravelPlan{}, derr.ErrPlanNotFound
	}

	plan, err := s.repo.GetPlan(ctx, searchID)
	if err != nil {
		if errors.Is(err, derr.ErrPlanNotFound) {
			logger.Info("plan not found")
			return models.TravelPlan{}, err
		}
		logger.Warn("failed to load plan", zap.Error(err))
		return models.TravelPlan{}, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// EmailPlan sends the plan to the contact email of the trip.
func (s *PlannerService) EmailPlan(ctx context.Context, plan models.TravelPlan) error {
	const op = "service.EmailPlan"
	logger := s.log.With(zap.String("op", op), zap.String("search_id", plan.SearchID))

	if s.notifier == nil {
		return derr.ErrEmailDisabled
	}

	email := models.PlanEmail{
		To:           plan.Request.Email,
		CustomerName: plan.Request.LeadTravelerName(),
		SearchID:     plan.SearchID,
		SentAt:       s.now(),
		TripDetails:  format.TripDetails(plan.Request),
		Itinerary:    plan.Itinerary,
	}
	if err := s.notifier.SendPlan(ctx, email); err != nil {
		logger.Warn("failed to send plan email", zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.ObservePlanEmail()
	logger.Info("plan email sent")
	return nil
}

type nopPlanMetrics struct{}

func (nopPlanMetrics) ObservePlan()      {}
func (nopPlanMetrics) ObservePlanEmail() {}
