package ports

import (
	"context"

	"github.com/ozzus/cocoplanner/internal/domain/models"
)

type PlanRepository interface {
	// SavePlan inserts a new plan and returns derr.ErrSearchIDTaken when its id
	// is already stored.
	SavePlan(ctx context.Context, plan models.TravelPlan) error
	GetPlan(ctx context.Context, searchID string) (models.TravelPlan, error)
	PlanExists(ctx context.Context, searchID string) (bool, error)
	CountPlans(ctx context.Context) (int64, error)
}

type ItineraryGenerator interface {
	GenerateItinerary(ctx context.Context, input models.ItineraryInput) (string, error)
}

type PlanNotifier interface {
	SendPlan(ctx context.Context, email models.PlanEmail) error
}

type WebSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.WebResult, error)
}

type PageFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

type PlanMetrics interface {
	ObservePlan()
	ObservePlanEmail()
}
