package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ozzus/cocoplanner/internal/application/ranking"
	"github.com/ozzus/cocoplanner/internal/application/service"
	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/ozzus/cocoplanner/internal/domain/ports"
	"github.com/ozzus/cocoplanner/internal/infrastructures/airports"
	amadeus "github.com/ozzus/cocoplanner/internal/infrastructures/amadeus/http/client"
	mongorepo "github.com/ozzus/cocoplanner/internal/infrastructures/db/mongo"
	pgrepo "github.com/ozzus/cocoplanner/internal/infrastructures/db/postgres"
	cacheredis "github.com/ozzus/cocoplanner/internal/infrastructures/db/redis"
	"github.com/ozzus/cocoplanner/internal/infrastructures/email"
	"github.com/ozzus/cocoplanner/internal/infrastructures/llm"
	"github.com/ozzus/cocoplanner/internal/infrastructures/metrics"
	"github.com/ozzus/cocoplanner/internal/infrastructures/scraper"
	serper "github.com/ozzus/cocoplanner/internal/infrastructures/serper/http/client"
	grpcapi "github.com/ozzus/cocoplanner/internal/transport/grpc"
	"github.com/redis/go-redis/v9"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

func (r *runtime) offerCache() ports.OfferCache {
	if r.cfg.Redis.Addr == "" {
		r.log.Info("redis address not set, offer cache disabled")
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     r.cfg.Redis.Addr,
		Password: r.cfg.Redis.Password,
		DB:       r.cfg.Redis.DB,
	})
	r.onShutdown(func() {
		if err := redisClient.Close(); err != nil {
			r.log.Warn("failed to close redis client", zap.Error(err))
		}
	})
	return cacheredis.NewOfferCacheRepository(redisClient)
}

func (r *runtime) flightService(registry *metrics.Registry) *service.FlightService {
	cfg := r.cfg.Amadeus
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		r.log.Warn("amadeus credentials are not set, flight searches will fail")
	}
	source := amadeus.NewClient(cfg.BaseURL, cfg.ClientID, cfg.ClientSecret, cfg.Currency, cfg.MaxOffers, cfg.Timeout)
	ranker := ranking.NewRanker(ranking.WithTopN(r.cfg.Ranking.TopN))

	var searchMetrics ports.SearchMetrics
	if registry != nil {
		searchMetrics = registry
	}
	return service.NewFlightService(r.log, source, r.offerCache(), ranker, searchMetrics, r.cfg.OfferCacheTTL)
}

// flightSearcher uses a remote flight service when one is configured and an
// in-process one otherwise.
func (r *runtime) flightSearcher(registry *metrics.Registry) (ports.FlightSearcher, error) {
	addr := r.cfg.Planner.FlightServiceAddr
	if addr == "" {
		return r.flightService(registry), nil
	}

	client, err := r.remoteRanker()
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *runtime) remoteRanker() (*grpcapi.Client, error) {
	addr := r.cfg.Planner.FlightServiceAddr
	client, err := grpcapi.NewClient(addr, r.cfg.GRPC.Timeout)
	if err != nil {
		return nil, err
	}
	r.log.Info("using remote flight service", zap.String("addr", addr))
	r.onShutdown(func() {
		if err := client.Close(); err != nil {
			r.log.Warn("failed to close flight service client", zap.Error(err))
		}
	})
	return client, nil
}

func (r *runtime) planRepository(ctx context.Context) (ports.PlanRepository, error) {
	storage := r.cfg.Storage
	switch strings.ToLower(storage.Driver) {
	case "", "mongo", "mongodb":
		repo, err := mongorepo.New(ctx, storage.Mongo.URI, storage.Mongo.Database, storage.Mongo.Collection, storage.Mongo.Timeout)
		if err != nil {
			return nil, err
		}
		r.onShutdown(func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := repo.Close(closeCtx); err != nil {
				r.log.Warn("failed to close mongo client", zap.Error(err))
			}
		})
		return repo, nil
	case "postgres", "postgresql":
		repo, err := pgrepo.New(ctx, storage.Postgres.DatabaseURL())
		if err != nil {
			return nil, err
		}
		r.onShutdown(repo.Close)
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", storage.Driver)
	}
}

func (r *runtime) itineraryGenerator(onStage func(string)) (ports.ItineraryGenerator, error) {
	cfg := r.cfg.LLM
	opts := []openai.Option{openai.WithModel(cfg.Model)}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}

	var search ports.WebSearcher
	var pages ports.PageFetcher
	if r.cfg.Serper.APIKey != "" {
		search = serper.NewClient(r.cfg.Serper.BaseURL, r.cfg.Serper.APIKey, r.cfg.Serper.Timeout)
		pages = scraper.New(r.cfg.Scraper.Timeout, r.cfg.Scraper.MaxChars)
	} else {
		r.log.Info("serper api key not set, agents will plan without web research")
	}

	pipeline := llm.NewPipeline(r.log, model, search, pages,
		llm.WithTemperature(cfg.Temperature),
		llm.WithResearchLimits(r.cfg.Serper.Results, r.cfg.Scraper.MaxPages),
		llm.WithStageHook(onStage),
	)
	return timeoutGenerator{next: pipeline, timeout: cfg.Timeout}, nil
}

func (r *runtime) planNotifier(ctx context.Context) ports.PlanNotifier {
	cfg := r.cfg.Email
	if !cfg.Enabled {
		return nil
	}

	sender, err := email.NewSESV2Sender(ctx, r.log, cfg.Region, cfg.Sender)
	if err != nil {
		r.log.Warn("email disabled: failed to init ses client", zap.Error(err))
		return nil
	}
	templates, err := email.NewTemplateManager()
	if err != nil {
		r.log.Warn("email disabled: failed to parse templates", zap.Error(err))
		return nil
	}
	return email.NewPlanNotifier(sender, templates)
}

func (r *runtime) airportDirectory() (*airports.Directory, error) {
	return airports.Open(r.cfg.Airports.Path, r.cfg.Airports.MaxResults)
}

// timeoutGenerator bounds the whole agent run.
type timeoutGenerator struct {
	next    ports.ItineraryGenerator
	timeout time.Duration
}

func (g timeoutGenerator) GenerateItinerary(ctx context.Context, input models.ItineraryInput) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.next.GenerateItinerary(ctx, input)
}
