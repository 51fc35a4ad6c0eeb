package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/velora/vehicle-discovery/internal/adapters/providers/nlu"
	"github.com/velora/vehicle-discovery/internal/domain/entities"
	"github.com/velora/vehicle-discovery/internal/domain/providers"
)

// FieldNames of the vehicle index the mapper targets.
const (
	FieldMake              = "make"
	FieldModel             = "model"
	FieldFuelType          = "fuel_type"
	FieldBodyType          = "body_type"
	FieldTransmission      = "transmission"
	FieldColor             = "color"
	FieldPrice             = "price"
	FieldMileage           = "mileage_km"
	FieldFirstRegistration = "first_registration"
	FieldDescription       = "description"
)

// constraintTemplate fixes how one entity type becomes a constraint.
type constraintTemplate struct {
	fieldName string
	operator  entities.Operator
	kind      entities.ConstraintKind
	numeric   bool
	yearDate  bool
}

var entityTemplates = map[string]constraintTemplate{
	nlu.EntityMake:         {fieldName: FieldMake, operator: entities.OpEquals, kind: entities.KindExact},
	nlu.EntityModel:        {fieldName: FieldModel, operator: entities.OpEquals, kind: entities.KindExact},
	nlu.EntityFuelType:     {fieldName: FieldFuelType, operator: entities.OpEquals, kind: entities.KindExact},
	nlu.EntityBodyType:     {fieldName: FieldBodyType, operator: entities.OpEquals, kind: entities.KindExact},
	nlu.EntityTransmission: {fieldName: FieldTransmission, operator: entities.OpEquals, kind: entities.KindExact},
	nlu.EntityColor:        {fieldName: FieldColor, operator: entities.OpEquals, kind: entities.KindExact},
	nlu.EntityPriceMax:     {fieldName: FieldPrice, operator: entities.OpLessThanOrEqual, kind: entities.KindRange, numeric: true},
	nlu.EntityPriceMin:     {fieldName: FieldPrice, operator: entities.OpGreaterThanOrEqual, kind: entities.KindRange, numeric: true},
	nlu.EntityMileageMax:   {fieldName: FieldMileage, operator: entities.OpLessThanOrEqual, kind: entities.KindRange, numeric: true},
	nlu.EntityYearMin:      {fieldName: FieldFirstRegistration, operator: entities.OpGreaterThanOrEqual, kind: entities.KindRange, yearDate: true},
	nlu.EntityQuality:      {fieldName: FieldDescription, operator: entities.OpContains, kind: entities.KindSemantic},
}

var (
	droppedEntityOnce    sync.Once
	droppedEntityCounter metric.Int64Counter
)

// AttributeMapper converts NLU entities into typed search constraints.
// Malformed entity data is dropped with a warning, never raised.
type AttributeMapper struct{}

// NewAttributeMapper creates a new attribute mapper
func NewAttributeMapper() *AttributeMapper {
	return &AttributeMapper{}
}

// Map produces the constraint group for the current turn alone.
func (m *AttributeMapper) Map(ctx context.Context, result *providers.NLUResult) entities.ConstraintGroup {
	group := entities.ConstraintGroup{}
	if result == nil {
		return group
	}

	for _, e := range result.Entities {
		tmpl, ok := entityTemplates[e.Type]
		if !ok {
			log.Warn().Str("entity_type", e.Type).Str("value", e.Value).Msg("dropping unrecognized entity type")
			recordDroppedEntity(ctx, e.Type, "unrecognized")
			continue
		}

		value, ok := tmpl.parseValue(e.Value)
		if !ok {
			log.Warn().Str("entity_type", e.Type).Str("value", e.Value).Msg("dropping unparseable entity value")
			recordDroppedEntity(ctx, e.Type, "unparseable")
			continue
		}

		group.Constraints = append(group.Constraints, entities.SearchConstraint{
			FieldName: tmpl.fieldName,
			Operator:  tmpl.operator,
			Value:     value,
			Kind:      tmpl.kind,
		})
	}

	return group
}

func (t constraintTemplate) parseValue(raw string) (entities.ConstraintValue, bool) {
	switch {
	case t.numeric:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return entities.ConstraintValue{}, false
		}
		return entities.NumberValue(v), true
	case t.yearDate:
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1980 || year > time.Now().Year()+1 {
			return entities.ConstraintValue{}, false
		}
		return entities.DateValue(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)), true
	}
	if raw == "" {
		return entities.ConstraintValue{}, false
	}
	return entities.TextValue(raw), true
}

func initDroppedEntityCounter() {
	meter := otel.Meter("github.com/velora/vehicle-discovery/attribute_mapper")
	counter, err := meter.Int64Counter(
		"search.entity.dropped.count",
		metric.WithDescription("Count of NLU entities dropped during constraint mapping"),
	)
	if err == nil {
		droppedEntityCounter = counter
	}
}

func recordDroppedEntity(ctx context.Context, entityType, reason string) {
	droppedEntityOnce.Do(initDroppedEntityCounter)
	if droppedEntityCounter == nil {
		return
	}
	droppedEntityCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity.type", entityType),
		attribute.String("drop.reason", reason),
	))
}
