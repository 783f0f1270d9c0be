package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/ozzus/cocoplanner/internal/infrastructures/db/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PlanRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func New(ctx context.Context, uri, database, collection string, timeout time.Duration) (*PlanRepository, error) {
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetTimeout(timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	repo := &PlanRepository{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
	if err := repo.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return repo, nil
}

func (r *PlanRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "search_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create search_id index: %w", err)
	}
	return nil
}

func (r *PlanRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// SavePlan inserts a new plan. The unique search_id index rejects an id that is
// already stored with derr.ErrSearchIDTaken.
func (r *PlanRepository) SavePlan(ctx context.Context, plan models.TravelPlan) error {
	_, err := r.collection.InsertOne(ctx, model.FromPlan(plan))
	return insertError(plan.SearchID, err)
}

func insertError(searchID string, err error) error {
	switch {
	case err == nil:
		return nil
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("insert plan %s: %w", searchID, derr.ErrSearchIDTaken)
	default:
		return fmt.Errorf("insert plan %s: %w", searchID, err)
	}
}

func (r *PlanRepository) GetPlan(ctx context.Context, searchID string) (models.TravelPlan, error) {
	var doc model.PlanDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "search_id", Value: searchID}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.TravelPlan{}, derr.ErrPlanNotFound
		}
		return models.TravelPlan{}, fmt.Errorf("find plan %s: %w", searchID, err)
	}
	return doc.ToPlan(), nil
}

func (r *PlanRepository) PlanExists(ctx context.Context, searchID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx,
		bson.D{{Key: "search_id", Value: searchID}},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("count plans by search_id: %w", err)
	}
	return n > 0, nil
}

func (r *PlanRepository) CountPlans(ctx context.Context) (int64, error) {
	n, err := r.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count plans: %w", err)
	}
	return n, nil
}
