package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/vehicle-discovery/internal/application/services"
	"github.com/velora/vehicle-discovery/internal/domain/entities"
)

func rangeConstraint(field string, op entities.Operator, value float64) entities.SearchConstraint {
	return entities.SearchConstraint{
		FieldName: field,
		Operator:  op,
		Value:     entities.NumberValue(value),
		Kind:      entities.KindRange,
	}
}

func semanticConstraint(text string) entities.SearchConstraint {
	return entities.SearchConstraint{
		FieldName: "description",
		Operator:  entities.OpContains,
		Value:     entities.TextValue(text),
		Kind:      entities.KindSemantic,
	}
}

func TestQueryComposer_InfeasibleBoundsKeepNewest(t *testing.T) {
	composer := services.NewQueryComposerService()

	inherited := entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		rangeConstraint("price", entities.OpLessThanOrEqual, 15000),
	}}
	current := entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		rangeConstraint("price", entities.OpGreaterThanOrEqual, 20000),
	}}

	query := composer.Compose(context.Background(), "over 20000", current, inherited, entities.ConstraintGroup{})

	assert.True(t, query.HasConflicts)
	require.Len(t, query.Groups, 1)
	require.Len(t, query.Groups[0].Constraints, 1)
	kept := query.Groups[0].Constraints[0]
	assert.Equal(t, entities.OpGreaterThanOrEqual, kept.Operator)
	assert.Equal(t, 20000.0, *kept.Value.Number)
}

func TestQueryComposer_StrictBoundsAtSameValueConflict(t *testing.T) {
	composer := services.NewQueryComposerService()

	inherited := entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		rangeConstraint("price", entities.OpLessThan, 10000),
	}}
	current := entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		rangeConstraint("price", entities.OpGreaterThan, 10000),
	}}

	// price < 10000 and price > 10000 admit no value at all.
	query := composer.Compose(context.Background(), "over 10000", current, inherited, entities.ConstraintGroup{})

	assert.True(t, query.HasConflicts)
	require.Len(t, query.Groups[0].Constraints, 1)
	assert.Equal(t, entities.OpGreaterThan, query.Groups[0].Constraints[0].Operator)
}

func TestQueryComposer_InclusiveBoundsAtSameValueCoexist(t *testing.T) {
	composer := services.NewQueryComposerService()

	inherited := entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		rangeConstraint("price", entities.OpGreaterThanOrEqual, 10000),
	}}
	current := entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		rangeConstraint("price", entities.OpLessThanOrEqual, 10000),
	}}

	query := composer.Compose(context.Background(), "exactly 10000", current, inherited, entities.ConstraintGroup{})

	assert.False(t, query.HasConflicts)
	assert.Len(t, query.Groups[0].Constraints, 2)
}

func TestQueryComposer_ExactOverrideWins(t *testing.T) {
	composer := services.NewQueryComposerService()

	inherited := entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		exactConstraint("make", "BMW"),
	}}
	current := entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		exactConstraint("make", "Audi"),
	}}

	query := composer.Compose(context.Background(), "Audi instead", current, inherited, entities.ConstraintGroup{})

	assert.True(t, query.HasConflicts)
	require.Len(t, query.Groups[0].Constraints, 1)
	assert.Equal(t, "Audi", *query.Groups[0].Constraints[0].Value.Text)
}

func TestQueryComposer_CompatibleBoundsCoexist(t *testing.T) {
	composer := services.NewQueryComposerService()

	inherited := entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		rangeConstraint("price", entities.OpGreaterThanOrEqual, 10000),
	}}
	current := entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		rangeConstraint("price", entities.OpLessThanOrEqual, 25000),
	}}

	query := composer.Compose(context.Background(), "between", current, inherited, entities.ConstraintGroup{})

	assert.False(t, query.HasConflicts)
	assert.Len(t, query.Groups[0].Constraints, 2)
}

func TestQueryComposer_SameDirectionRestatementIsNotConflict(t *testing.T) {
	composer := services.NewQueryComposerService()

	synthesized := entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		rangeConstraint("price", entities.OpLessThanOrEqual, 19000),
	}}
	current := entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		rangeConstraint("price", entities.OpLessThanOrEqual, 15000),
	}}

	query := composer.Compose(context.Background(), "under 15000", current, entities.ConstraintGroup{}, synthesized)

	assert.False(t, query.HasConflicts)
	require.Len(t, query.Groups[0].Constraints, 1)
	assert.Equal(t, 15000.0, *query.Groups[0].Constraints[0].Value.Number)
}

func TestQueryComposer_DuplicateExactDeduplicates(t *testing.T) {
	composer := services.NewQueryComposerService()

	inherited := entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		exactConstraint("make", "BMW"),
	}}
	current := entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		exactConstraint("make", "BMW"),
	}}

	query := composer.Compose(context.Background(), "BMW", current, inherited, entities.ConstraintGroup{})

	assert.False(t, query.HasConflicts)
	assert.Len(t, query.Groups[0].Constraints, 1)
}

func TestQueryComposer_QueryTypeClassification(t *testing.T) {
	composer := services.NewQueryComposerService()
	ctx := context.Background()
	empty := entities.ConstraintGroup{}

	simple := composer.Compose(ctx, "something comfortable for the family", empty, empty, empty)
	assert.Equal(t, entities.QuerySimple, simple.QueryType)
	assert.Empty(t, simple.Groups)
	assert.Equal(t, "something comfortable for the family", simple.SemanticText)

	filtered := composer.Compose(ctx, "BMW under 20000", entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		exactConstraint("make", "BMW"),
		rangeConstraint("price", entities.OpLessThanOrEqual, 20000),
	}}, empty, empty)
	assert.Equal(t, entities.QueryFiltered, filtered.QueryType)

	complexQuery := composer.Compose(ctx, "reliable BMW", entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		exactConstraint("make", "BMW"),
		semanticConstraint("reliable"),
	}}, empty, empty)
	assert.Equal(t, entities.QueryComplex, complexQuery.QueryType)
}

func TestQueryComposer_SemanticQueryTextIncludesConstraints(t *testing.T) {
	composer := services.NewQueryComposerService()

	query := composer.Compose(context.Background(), "reliable BMW", entities.ConstraintGroup{Constraints: []entities.SearchConstraint{
		exactConstraint("make", "BMW"),
		semanticConstraint("reliable"),
	}}, entities.ConstraintGroup{}, entities.ConstraintGroup{})

	assert.Equal(t, "reliable BMW reliable", query.SemanticQueryText())
}
