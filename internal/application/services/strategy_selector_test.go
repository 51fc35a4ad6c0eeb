package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/vehicle-discovery/internal/application/services"
	"github.com/velora/vehicle-discovery/internal/domain/entities"
	apperrors "github.com/velora/vehicle-discovery/pkg/errors"
)

func composeQuery(t *testing.T, constraints ...entities.SearchConstraint) *entities.ComposedQuery {
	t.Helper()
	composer := services.NewQueryComposerService()
	return composer.Compose(context.Background(), "query",
		entities.ConstraintGroup{Constraints: constraints},
		entities.ConstraintGroup{}, entities.ConstraintGroup{})
}

func TestStrategySelector_NilQueryFailsFast(t *testing.T) {
	selector := services.NewStrategySelectorService()
	_, err := selector.DetermineStrategy(nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestStrategySelector_ExactOnly(t *testing.T) {
	selector := services.NewStrategySelectorService()

	strategy, err := selector.DetermineStrategy(composeQuery(t,
		exactConstraint("make", "BMW"),
		rangeConstraint("price", entities.OpLessThanOrEqual, 20000),
	))
	require.NoError(t, err)

	assert.Equal(t, entities.StrategyExactOnly, strategy.Type)
	assert.Equal(t, []entities.SearchApproach{entities.ApproachExactMatch}, strategy.Approaches)
	assert.Equal(t, 1.0, strategy.Weight(entities.ApproachExactMatch))
	assert.False(t, strategy.ShouldRerank)
}

func TestStrategySelector_SemanticOnly(t *testing.T) {
	selector := services.NewStrategySelectorService()

	// No structured constraints at all: raw text goes to the similarity backend.
	strategy, err := selector.DetermineStrategy(composeQuery(t))
	require.NoError(t, err)
	assert.Equal(t, entities.StrategySemanticOnly, strategy.Type)
	assert.Equal(t, 1.0, strategy.Weight(entities.ApproachSemanticSearch))
	assert.False(t, strategy.ShouldRerank)

	// Semantic-only constraints select the same strategy.
	strategy, err = selector.DetermineStrategy(composeQuery(t, semanticConstraint("reliable")))
	require.NoError(t, err)
	assert.Equal(t, entities.StrategySemanticOnly, strategy.Type)
}

func TestStrategySelector_HybridWeightFormula(t *testing.T) {
	selector := services.NewStrategySelectorService()

	cases := []struct {
		exactCount  int
		exactWeight float64
	}{
		{1, 0.15},
		{2, 0.30},
		{3, 0.45},
		{4, 0.60},
		{5, 0.70},
		{8, 0.70},
	}

	fields := []string{"make", "model", "fuel_type", "body_type", "transmission", "color", "price", "mileage_km"}

	for _, tc := range cases {
		constraints := []entities.SearchConstraint{semanticConstraint("reliable")}
		for i := 0; i < tc.exactCount; i++ {
			constraints = append(constraints, exactConstraint(fields[i], "v"))
		}

		strategy, err := selector.DetermineStrategy(composeQuery(t, constraints...))
		require.NoError(t, err)

		assert.Equal(t, entities.StrategyHybrid, strategy.Type)
		assert.True(t, strategy.ShouldRerank)
		assert.InDelta(t, tc.exactWeight, strategy.Weight(entities.ApproachExactMatch), 1e-9)
		assert.InDelta(t, 1.0-tc.exactWeight, strategy.Weight(entities.ApproachSemanticSearch), 1e-9)
	}
}

func TestStrategySelector_Deterministic(t *testing.T) {
	selector := services.NewStrategySelectorService()
	query := composeQuery(t, exactConstraint("make", "BMW"), semanticConstraint("sporty"))

	first, err := selector.DetermineStrategy(query)
	require.NoError(t, err)
	second, err := selector.DetermineStrategy(query)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
