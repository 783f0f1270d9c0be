package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ozzus/cocoplanner/internal/application/ranking"
	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/ozzus/cocoplanner/internal/domain/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "cocoplanner/service"

type FlightService struct {
	log      *zap.Logger
	source   ports.OfferSource
	cache    ports.OfferCache
	ranker   *ranking.Ranker
	metrics  ports.SearchMetrics
	cacheTTL time.Duration
	validate *validator.Validate
	now      func() time.Time
}

func NewFlightService(log *zap.Logger, source ports.OfferSource, cache ports.OfferCache, ranker *ranking.Ranker, metrics ports.SearchMetrics, cacheTTL time.Duration) *FlightService {
	if log == nil {
		log = zap.NewNop()
	}
	if ranker == nil {
		ranker = ranking.NewRanker()
	}
	if metrics == nil {
		metrics = nopSearchMetrics{}
	}

	return &FlightService{
		log:      log,
		source:   source,
		cache:    cache,
		ranker:   ranker,
		metrics:  metrics,
		cacheTTL: cacheTTL,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// SearchFlights fetches raw offers for the search (cache first) and ranks them.
// An empty selection is not an error here; callers decide what "no options" means.
func (s *FlightService) SearchFlights(ctx context.Context, search models.FlightSearch) (models.RankedSelection, error) {
	const op = "service.SearchFlights"
	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	started := s.now()
	search = search.Normalized()
	key := search.CacheKey()
	span.SetAttributes(
		attribute.String("flights.cache_key", key),
		attribute.String("flights.cabin", string(search.CabinClass)),
		attribute.Int("flights.routes", len(search.Routes)),
	)

	logger := s.log.With(
		zap.String("op", op),
		zap.String("cache_key", key),
	)

	if err := s.validateSearch(search); err != nil {
		logger.Warn("invalid flight search", zap.Error(err))
		span.SetStatus(otelcodes.Error, "invalid flight search")
		s.metrics.ObserveSearch(ports.SearchRejected, s.now().Sub(started))
		return models.RankedSelection{}, err
	}

	offers, err := s.loadOffers(ctx, logger, span, search, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "failed to load offers")
		s.metrics.ObserveSearch(ports.SearchFailed, s.now().Sub(started))
		return models.RankedSelection{}, fmt.Errorf("%s: %w", op, err)
	}

	selection, err := s.rank(logger, span, offers, search.CabinClass)
	if err != nil {
		s.metrics.ObserveSearch(ports.SearchFailed, s.now().Sub(started))
		return models.RankedSelection{}, fmt.Errorf("%s: %w", op, err)
	}

	outcome := ports.SearchOK
	if selection.Empty() {
		outcome = ports.SearchEmpty
	}
	s.metrics.ObserveSearch(outcome, s.now().Sub(started))
	return selection, nil
}

// RankOffers ranks offers the caller already has, e.g. a saved API response.
func (s *FlightService) RankOffers(ctx context.Context, offers []models.FlightOffer, cabin models.CabinClass) (models.RankedSelection, error) {
	const op = "service.RankOffers"
	_, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	logger := s.log.With(zap.String("op", op), zap.String("cabin", string(cabin)))
	selection, err := s.rank(logger, span, offers, cabin)
	if err != nil {
		return models.RankedSelection{}, fmt.Errorf("%s: %w", op, err)
	}
	return selection, nil
}

func (s *FlightService) validateSearch(search models.FlightSearch) error {
	if err := s.validate.Struct(search); err != nil {
		return fmt.Errorf("%w: %v", derr.ErrInvalidSearch, err)
	}

	var previous time.Time
	for i, route := range search.Routes {
		date, err := time.Parse(time.DateOnly, route.DepartureDate)
		if err != nil {
			return fmt.Errorf("%w: route %d: %v", derr.ErrInvalidSearch, i+1, err)
		}
		if date.Before(previous) {
			return fmt.Errorf("%w: route %d departs before route %d", derr.ErrInvalidSearch, i+1, i)
		}
		previous = date
	}
	return nil
}

func (s *FlightService) loadOffers(ctx context.Context, logger *zap.Logger, span trace.Span, search models.FlightSearch, key string) ([]models.FlightOffer, error) {
	if s.cache != nil {
		cached, err := s.cache.GetOffers(ctx, key)
		switch {
		case err == nil:
			logger.Info("offer cache hit", zap.Int("offers", len(cached)))
			span.AddEvent("flights.cache.hit")
			s.metrics.ObserveCache(ports.CacheHit)
			return cached, nil
		case errors.Is(err, derr.ErrOffersNotFound):
			logger.Info("offer cache miss")
			span.AddEvent("flights.cache.miss")
			s.metrics.ObserveCache(ports.CacheMiss)
		default:
			logger.Warn("redis cache read failed", zap.Error(err))
			span.RecordError(err)
			s.metrics.ObserveCache(ports.CacheError)
		}
	}

	if s.source == nil {
		return nil, derr.ErrSourceTemporary
	}

	offers, err := s.source.SearchOffers(ctx, search)
	if err != nil {
		logger.Warn("failed to fetch flight offers", zap.Error(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int("flights.raw_offers", len(offers)))

	if s.cache != nil && len(offers) > 0 {
		if err := s.cache.SetOffers(ctx, key, offers, s.cacheTTL); err != nil {
			logger.Warn("redis cache write failed", zap.Error(err))
			span.RecordError(err)
		}
	}
	return offers, nil
}

func (s *FlightService) rank(logger *zap.Logger, span trace.Span, offers []models.FlightOffer, cabin models.CabinClass) (models.RankedSelection, error) {
	selection, err := s.ranker.Rank(offers, cabin)
	if err != nil {
		logger.Warn("offer batch rejected", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "malformed offers")
		return models.RankedSelection{}, err
	}

	for _, excluded := range selection.Excluded {
		logger.Warn("offer excluded from ranking",
			zap.Int("index", excluded.Index),
			zap.String("offer_id", excluded.OfferID),
			zap.String("reason", excluded.Reason),
		)
	}
	if selection.CabinFallback {
		logger.Info("no offers in requested cabin, ranking all cabins")
		span.AddEvent("flights.cabin_fallback")
	}

	s.metrics.ObserveSelection(selection)
	span.SetAttributes(
		attribute.Int("flights.selected", len(selection.Offers)),
		attribute.Int("flights.excluded", len(selection.Excluded)),
		attribute.Bool("flights.cabin_fallback", selection.CabinFallback),
	)
	span.SetStatus(otelcodes.Ok, "ok")
	logger.Info("offers ranked",
		zap.Int("offers", len(offers)),
		zap.Int("selected", len(selection.Offers)),
	)
	return selection, nil
}

type nopSearchMetrics struct{}

func (nopSearchMetrics) ObserveSearch(string, time.Duration)     {}
func (nopSearchMetrics) ObserveCache(string)                     {}
func (nopSearchMetrics) ObserveSelection(models.RankedSelection) {}
