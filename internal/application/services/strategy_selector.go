package services

import (
	"github.com/velora/vehicle-discovery/internal/domain/entities"
	apperrors "github.com/velora/vehicle-discovery/pkg/errors"
)

const (
	maxExactWeight     = 0.7
	exactWeightPerTerm = 0.15
)

// StrategySelectorService decides how a composed query is executed. The
// decision is a pure function of the query's constraint mix, so the same
// query always selects the same strategy.
type StrategySelectorService struct{}

// NewStrategySelectorService creates a new strategy selector
func NewStrategySelectorService() *StrategySelectorService {
	return &StrategySelectorService{}
}

// DetermineStrategy maps the constraint mix to an execution strategy.
// Purely filtered queries skip the similarity backend, purely semantic
// ones skip the filter backend, and mixed queries run both with weights
// that favor exact matching as structured constraints accumulate.
func (s *StrategySelectorService) DetermineStrategy(query *entities.ComposedQuery) (*entities.SearchStrategy, error) {
	if query == nil {
		return nil, apperrors.NewValidationError("composed query is required")
	}

	exactCount, semanticCount := query.CountByKind()

	switch {
	case exactCount == 0:
		return &entities.SearchStrategy{
			Type:       entities.StrategySemanticOnly,
			Approaches: []entities.SearchApproach{entities.ApproachSemanticSearch},
			Weights: map[entities.SearchApproach]float64{
				entities.ApproachSemanticSearch: 1.0,
			},
			ShouldRerank: false,
		}, nil

	case semanticCount == 0:
		return &entities.SearchStrategy{
			Type:       entities.StrategyExactOnly,
			Approaches: []entities.SearchApproach{entities.ApproachExactMatch},
			Weights: map[entities.SearchApproach]float64{
				entities.ApproachExactMatch: 1.0,
			},
			ShouldRerank: false,
		}, nil
	}

	exactWeight := exactWeightPerTerm * float64(exactCount)
	if exactWeight > maxExactWeight {
		exactWeight = maxExactWeight
	}

	return &entities.SearchStrategy{
		Type: entities.StrategyHybrid,
		Approaches: []entities.SearchApproach{
			entities.ApproachExactMatch,
			entities.ApproachSemanticSearch,
		},
		Weights: map[entities.SearchApproach]float64{
			entities.ApproachExactMatch:     exactWeight,
			entities.ApproachSemanticSearch: 1.0 - exactWeight,
		},
		ShouldRerank: true,
	}, nil
}
