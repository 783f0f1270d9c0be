package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	derr "github.com/ozzus/cocoplanner/internal/domain/errors"
	"github.com/ozzus/cocoplanner/internal/domain/ports"
)

const (
	DefaultSearchIDAttempts = 100
	shortIDLimit            = 9999
)

// SearchIDGenerator hands out the short numeric ids users type into `retrieve`.
// Ids are "00" plus four digits until the store holds 9999 plans, then "0" plus
// five digits.
type SearchIDGenerator struct {
	repo     ports.PlanRepository
	attempts int
	intn     func(n int) int
}

func NewSearchIDGenerator(repo ports.PlanRepository, attempts int) *SearchIDGenerator {
	if attempts <= 0 {
		attempts = DefaultSearchIDAttempts
	}
	return &SearchIDGenerator{
		repo:     repo,
		attempts: attempts,
		intn:     rand.IntN,
	}
}

func (g *SearchIDGenerator) Next(ctx context.Context) (string, error) {
	const op = "service.SearchIDGenerator.Next"

	total, err := g.repo.CountPlans(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: count plans: %w", op, err)
	}

	prefix, digits := "00", 4
	if total >= shortIDLimit {
		prefix, digits = "0", 5
	}
	limit := pow10(digits)

	for range g.attempts {
		id := fmt.Sprintf("%s%0*d", prefix, digits, g.intn(limit))
		exists, err := g.repo.PlanExists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("%s: check %s: %w", op, id, err)
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("%s: %d attempts: %w", op, g.attempts, derr.ErrSearchIDExhausted)
}

func pow10(n int) int {
	v := 1
	for range n {
		v *= 10
	}
	return v
}
