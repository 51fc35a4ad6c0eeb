package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/velora/vehicle-discovery/internal/domain/entities"
)

var (
	conflictOnce    sync.Once
	conflictCounter metric.Int64Counter
)

// QueryComposerService merges the turn's own constraints with those
// inherited or synthesized from history, resolving contradictions by
// keeping the most recent statement. Conflicts are surfaced, never fatal.
type QueryComposerService struct{}

// NewQueryComposerService creates a new query composer
func NewQueryComposerService() *QueryComposerService {
	return &QueryComposerService{}
}

// Compose builds the final query for one turn. Constraint precedence is
// inherited, then synthesized, then the current turn, so the user's latest
// explicit statement always wins.
func (s *QueryComposerService) Compose(ctx context.Context, rawQuery string, current, inherited, synthesized entities.ConstraintGroup) *entities.ComposedQuery {
	merged := make([]entities.SearchConstraint, 0,
		len(inherited.Constraints)+len(synthesized.Constraints)+len(current.Constraints))
	hasConflicts := false

	add := func(c entities.SearchConstraint) {
		kept, conflict := mergeConstraint(merged, c)
		merged = kept
		if conflict {
			hasConflicts = true
			log.Debug().
				Str("field", c.FieldName).
				Str("operator", string(c.Operator)).
				Str("value", c.Value.String()).
				Msg("constraint conflict resolved in favor of latest statement")
			recordConflict(ctx, c.FieldName)
		}
	}

	for _, c := range inherited.Constraints {
		add(c)
	}
	for _, c := range synthesized.Constraints {
		add(c)
	}
	for _, c := range current.Constraints {
		add(c)
	}

	query := &entities.ComposedQuery{
		SemanticText: rawQuery,
		HasConflicts: hasConflicts,
	}
	if len(merged) > 0 {
		query.Groups = []entities.ConstraintGroup{{Constraints: merged}}
	}

	exactCount, semanticCount := query.CountByKind()
	switch {
	case exactCount == 0:
		query.QueryType = entities.QuerySimple
	case semanticCount == 0:
		query.QueryType = entities.QueryFiltered
	default:
		query.QueryType = entities.QueryComplex
	}

	return query
}

// mergeConstraint folds one constraint into the kept set. Returns the new
// set and whether the fold displaced a contradictory earlier constraint.
func mergeConstraint(kept []entities.SearchConstraint, c entities.SearchConstraint) ([]entities.SearchConstraint, bool) {
	switch c.Kind {
	case entities.KindSemantic:
		for _, k := range kept {
			if k.Kind == entities.KindSemantic && k.FieldName == c.FieldName && k.Value.Equal(c.Value) {
				return kept, false
			}
		}
		return append(kept, c), false

	case entities.KindExact:
		for i, k := range kept {
			if k.Kind != entities.KindExact || k.FieldName != c.FieldName {
				continue
			}
			if k.Value.Equal(c.Value) {
				return kept, false
			}
			kept[i] = c
			return kept, true
		}
		return append(kept, c), false

	default: // range
		conflict := false
		out := kept[:0]
		for _, k := range kept {
			if k.Kind != entities.KindRange || k.FieldName != c.FieldName {
				out = append(out, k)
				continue
			}
			if boundDirection(k.Operator) == boundDirection(c.Operator) {
				// Same-direction bound restated: latest value replaces it.
				continue
			}
			if boundsFeasible(k, c) {
				out = append(out, k)
				continue
			}
			conflict = true
		}
		return append(out, c), conflict
	}
}

func boundDirection(op entities.Operator) int {
	switch op {
	case entities.OpLessThan, entities.OpLessThanOrEqual:
		return -1
	case entities.OpGreaterThan, entities.OpGreaterThanOrEqual:
		return 1
	}
	return 0
}

// boundsFeasible reports whether two opposite-direction bounds on the same
// field admit any value.
func boundsFeasible(a, b entities.SearchConstraint) bool {
	av, aok := a.Value.Ordinal()
	bv, bok := b.Value.Ordinal()
	if !aok || !bok {
		return true
	}
	lower, upper := av, bv
	lowerOp, upperOp := a.Operator, b.Operator
	if boundDirection(a.Operator) < 0 {
		lower, upper = bv, av
		lowerOp, upperOp = b.Operator, a.Operator
	}
	if lower != upper {
		return lower < upper
	}
	// Equal bounds only admit the boundary value when both sides include it.
	return lowerOp == entities.OpGreaterThanOrEqual && upperOp == entities.OpLessThanOrEqual
}

func initConflictCounter() {
	meter := otel.Meter("github.com/velora/vehicle-discovery/query_composer")
	counter, err := meter.Int64Counter(
		"search.constraint.conflict.count",
		metric.WithDescription("Count of constraint conflicts resolved during query composition"),
	)
	if err == nil {
		conflictCounter = counter
	}
}

func recordConflict(ctx context.Context, field string) {
	conflictOnce.Do(initConflictCounter)
	if conflictCounter == nil {
		return
	}
	conflictCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field)))
}
