package service

import (
	"context"
	"errors"
	"fmt"

	"member-lookup/internal/util"

	"go.uber.org/zap"
)

// queryTier is one form of a dependent query
type queryTier[T any] struct {
	name string
	run  func(ctx context.Context) ([]T, error)
}

// firstSuccessful runs the tiers in order and returns the rows of the first
// one that does not error. A tier that returns zero rows still wins; later
// tiers only run after an error. When every tier fails the joined error is
// returned.
func firstSuccessful[T any](ctx context.Context, logger *zap.Logger, category string, tiers []queryTier[T]) ([]T, error) {
	errs := make([]error, 0, len(tiers))

	for _, tier := range tiers {
		rows, err := tier.run(ctx)
		if err == nil {
			util.FallbackTierUsed.WithLabelValues(category, tier.name).Inc()
			return rows, nil
		}

		logger.Warn("Dependent query tier failed",
			zap.String("category", category),
			zap.String("tier", tier.name),
			zap.Error(err))
		errs = append(errs, fmt.Errorf("%s: %w", tier.name, err))
	}

	return nil, errors.Join(errs...)
}
