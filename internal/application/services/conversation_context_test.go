package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/vehicle-discovery/internal/application/services"
	"github.com/velora/vehicle-discovery/internal/domain/entities"
	apperrors "github.com/velora/vehicle-discovery/pkg/errors"
)

func exactConstraint(field, value string) entities.SearchConstraint {
	return entities.SearchConstraint{
		FieldName: field,
		Operator:  entities.OpEquals,
		Value:     entities.TextValue(value),
		Kind:      entities.KindExact,
	}
}

func TestConversationContext_PronounInheritsExactConstraints(t *testing.T) {
	ctx := context.Background()
	svc := services.NewConversationContextService(30*time.Minute, 0)
	defer svc.Close()

	priorConstraints := []entities.SearchConstraint{
		exactConstraint("make", "BMW"),
		exactConstraint("model", "3 Series"),
		{
			FieldName: "price",
			Operator:  entities.OpLessThanOrEqual,
			Value:     entities.NumberValue(30000),
			Kind:      entities.KindRange,
		},
	}
	svc.RecordTurn(ctx, "s1", "BMW 3 Series under 30000", priorConstraints, entities.ResultSummary{
		Count:        3,
		AveragePrice: 19000,
	})

	resolved, err := svc.Resolve(ctx, "s1", "show me cheaper ones")
	require.NoError(t, err)
	assert.False(t, resolved.SessionExpired)

	// Only the exact constraints carry over.
	require.Len(t, resolved.Inherited.Constraints, 2)
	assert.Equal(t, "make", resolved.Inherited.Constraints[0].FieldName)
	assert.Equal(t, "model", resolved.Inherited.Constraints[1].FieldName)

	// "cheaper" synthesizes a bound at the previous average price.
	require.Len(t, resolved.Synthesized.Constraints, 1)
	synth := resolved.Synthesized.Constraints[0]
	assert.Equal(t, "price", synth.FieldName)
	assert.Equal(t, entities.OpLessThanOrEqual, synth.Operator)
	assert.Equal(t, 19000.0, *synth.Value.Number)
	assert.Equal(t, entities.KindRange, synth.Kind)
}

func TestConversationContext_ComparativeMarkers(t *testing.T) {
	ctx := context.Background()
	svc := services.NewConversationContextService(30*time.Minute, 0)
	defer svc.Close()

	median := time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC)
	svc.RecordTurn(ctx, "s1", "diesel estates", nil, entities.ResultSummary{
		Count:              5,
		AverageMileage:     82000,
		MedianRegistration: median,
	})

	resolved, err := svc.Resolve(ctx, "s1", "newer ones with lower mileage")
	require.NoError(t, err)
	require.Len(t, resolved.Synthesized.Constraints, 2)

	byField := map[string]entities.SearchConstraint{}
	for _, c := range resolved.Synthesized.Constraints {
		byField[c.FieldName] = c
	}

	mileage := byField["mileage_km"]
	assert.Equal(t, entities.OpLessThanOrEqual, mileage.Operator)
	assert.Equal(t, 82000.0, *mileage.Value.Number)

	reg := byField["first_registration"]
	assert.Equal(t, entities.OpGreaterThanOrEqual, reg.Operator)
	assert.True(t, reg.Value.Date.Equal(median))
}

func TestConversationContext_NoPriorTurnIgnoresMarkers(t *testing.T) {
	ctx := context.Background()
	svc := services.NewConversationContextService(30*time.Minute, 0)
	defer svc.Close()

	resolved, err := svc.Resolve(ctx, "fresh", "show me cheaper ones")
	require.NoError(t, err)
	assert.Empty(t, resolved.Inherited.Constraints)
	assert.Empty(t, resolved.Synthesized.Constraints)
	assert.False(t, resolved.SessionExpired)
	assert.Equal(t, 0, resolved.TurnIndex)
}

func TestConversationContext_ExpiredSessionRestartsEmpty(t *testing.T) {
	ctx := context.Background()
	svc := services.NewConversationContextService(10*time.Millisecond, 0)
	defer svc.Close()

	svc.RecordTurn(ctx, "s1", "BMW", []entities.SearchConstraint{exactConstraint("make", "BMW")}, entities.ResultSummary{Count: 1})
	time.Sleep(25 * time.Millisecond)

	resolved, err := svc.Resolve(ctx, "s1", "show me those again")
	require.NoError(t, err)
	assert.True(t, resolved.SessionExpired)
	assert.Empty(t, resolved.Inherited.Constraints)
	assert.Equal(t, 0, resolved.TurnIndex)
}

func TestConversationContext_HistoryAndClear(t *testing.T) {
	ctx := context.Background()
	svc := services.NewConversationContextService(30*time.Minute, 0)
	defer svc.Close()

	svc.RecordTurn(ctx, "s1", "first", nil, entities.ResultSummary{Count: 1})
	svc.RecordTurn(ctx, "s1", "second", nil, entities.ResultSummary{Count: 2})

	turns, err := svc.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, 0, turns[0].TurnIndex)
	assert.Equal(t, "first", turns[0].Query)
	assert.Equal(t, 1, turns[1].TurnIndex)
	assert.Equal(t, "second", turns[1].Query)

	svc.Clear(ctx, "s1")
	_, err = svc.History(ctx, "s1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeSessionExpired))

	// The id stays usable after a clear.
	svc.RecordTurn(ctx, "s1", "third", nil, entities.ResultSummary{Count: 1})
	turns, err = svc.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "third", turns[0].Query)
}

func TestConversationContext_HistoryUnknownSession(t *testing.T) {
	svc := services.NewConversationContextService(30*time.Minute, 0)
	defer svc.Close()

	_, err := svc.History(context.Background(), "nope")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeSessionExpired))
}
