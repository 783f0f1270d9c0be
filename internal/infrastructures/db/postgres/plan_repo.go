package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/models"
	"github.com/ozzus/cocoplanner/internal/infrastructures/db/model"
)

type PlanRepository struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*PlanRepository, error) {
	poolCfg, err := buildPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	repo := &PlanRepository{db: pool}
	if err := repo.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

func buildPoolConfig(dsn string) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx pool config: %w", err)
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.StatementCacheCapacity = 0
	poolCfg.ConnConfig.DescriptionCacheCapacity = 0

	return poolCfg, nil
}

func (r *PlanRepository) ensureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS travel_plans (
			search_id    TEXT PRIMARY KEY,
			email        TEXT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL,
			last_updated TIMESTAMPTZ NOT NULL,
			document     JSONB NOT NULL
		)
	`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create travel_plans table: %w", err)
	}
	return nil
}

func (r *PlanRepository) Close() {
	r.db.Close()
}

func (r *PlanRepository) SavePlan(ctx context.Context, plan models.TravelPlan) error {
	doc := model.FromPlan(plan)
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal plan document: %w", err)
	}

	const query = `
		INSERT INTO travel_plans (search_id, email, created_at, last_updated, document)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (search_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, doc.SearchID, doc.CustomerInfo.Email, doc.Timestamp, doc.LastUpdated, string(payload))
	if err != nil {
		return fmt.Errorf("insert plan %s: %w", plan.SearchID, err)
	}
	return checkInserted(plan.SearchID, tag)
}

func checkInserted(searchID string, tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("insert plan %s: %w", searchID, derr.ErrSearchIDTaken)
	}
	return nil
}

func (r *PlanRepository) GetPlan(ctx context.Context, searchID string) (models.TravelPlan, error) {
	const query = `
		SELECT document
		FROM travel_plans
		WHERE search_id = $1
	`

	var payload []byte
	if err := r.db.QueryRow(ctx, query, searchID).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TravelPlan{}, derr.ErrPlanNotFound
		}
		return models.TravelPlan{}, fmt.Errorf("query plan %s: %w", searchID, err)
	}

	var doc model.PlanDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return models.TravelPlan{}, fmt.Errorf("unmarshal plan document: %w", err)
	}
	return doc.ToPlan(), nil
}

func (r *PlanRepository) PlanExists(ctx context.Context, searchID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM travel_plans WHERE search_id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, searchID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check plan %s: %w", searchID, err)
	}
	return exists, nil
}

func (r *PlanRepository) CountPlans(ctx context.Context) (int64, error) {
	const query = `SELECT count(*) FROM travel_plans`

	var n int64
	if err := r.db.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count plans: %w", err)
	}
	return n, nil
}
