package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

// OfferCacheRepository keeps raw offers per search; ranking always runs on
// fresh input so a cached batch can be re-ranked with other settings.
type OfferCacheRepository struct {
	redis *redis.Client
}

func NewOfferCacheRepository(redisClient *redis.Client) *OfferCacheRepository {
	return &OfferCacheRepository{redis: redisClient}
}

func (r *OfferCacheRepository) GetOffers(ctx context.Context, key string) ([]models.FlightOffer, error) {
	data, err := r.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, derr.ErrOffersNotFound
		}
		return nil, fmt.Errorf("redis get offers: %w", err)
	}

	var offers []models.FlightOffer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, fmt.Errorf("unmarshal cached offers: %w", err)
	}

	return offers, nil
}

func (r *OfferCacheRepository) SetOffers(ctx context.Context, key string, offers []models.FlightOffer, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(offers)
	if err != nil {
		return fmt.Errorf("marshal offers for cache: %w", err)
	}

	if err := r.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set offers: %w", err)
	}

	return nil
}
