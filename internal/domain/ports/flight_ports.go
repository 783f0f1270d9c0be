package ports

import (
	"context"
	"time"

	"github.com/ozzus/cocoplanner/internal/domain/models"
)

// OfferSource fetches raw flight offers from a flight-search API.
type OfferSource interface {
	SearchOffers(ctx context.Context, search models.FlightSearch) ([]models.FlightOffer, error)
}

type OfferCache interface {
	GetOffers(ctx context.Context, key string) ([]models.FlightOffer, error)
	SetOffers(ctx context.Context, key string, offers []models.FlightOffer, ttl time.Duration) error
}

// FlightSearcher returns ranked offers for a search. It is served in-process by the
// flight service or remotely over gRPC.
type FlightSearcher interface {
	SearchFlights(ctx context.Context, search models.FlightSearch) (models.RankedSelection, error)
}

const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"

	SearchOK       = "ok"
	SearchEmpty    = "empty"
	SearchRejected = "rejected"
	SearchFailed   = "error"
)

type SearchMetrics interface {
	ObserveSearch(outcome string, elapsed time.Duration)
	ObserveCache(result string)
	ObserveSelection(selection models.RankedSelection)
}

type AirportDirectory interface {
	Search(query string) []models.Airport
	Lookup(code string) (models.Airport, bool)
}
