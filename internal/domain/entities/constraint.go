package entities

import (
	"fmt"
	"time"
)

// Operator is the comparison applied by a constraint.
type Operator string

const (
	OpEquals             Operator = "eq"
	OpNotEquals          Operator = "neq"
	OpLessThan           Operator = "lt"
	OpLessThanOrEqual    Operator = "lte"
	OpGreaterThan        Operator = "gt"
	OpGreaterThanOrEqual Operator = "gte"
	OpContains           Operator = "contains"
)

// IsValid checks if the operator is one of the defined constants.
func (o Operator) IsValid() bool {
	switch o {
	case OpEquals, OpNotEquals, OpLessThan, OpLessThanOrEqual, OpGreaterThan, OpGreaterThanOrEqual, OpContains:
		return true
	}
	return false
}

// ConstraintKind classifies how a constraint is evaluated.
type ConstraintKind string

const (
	KindExact    ConstraintKind = "exact"    // equality on a structured field
	KindRange    ConstraintKind = "range"    // ordered comparison on a numeric/date field
	KindSemantic ConstraintKind = "semantic" // free text matched by similarity
)

// IsValid checks if the kind is one of the defined constants.
func (k ConstraintKind) IsValid() bool {
	switch k {
	case KindExact, KindRange, KindSemantic:
		return true
	}
	return false
}

// SearchConstraint is a single typed condition on a vehicle field.
// Range constraints carry numeric or date-comparable values; semantic
// constraints carry free text and never use equality operators.
type SearchConstraint struct {
	FieldName string         `json:"field_name"`
	Operator  Operator       `json:"operator"`
	Value     ConstraintValue `json:"value"`
	Kind      ConstraintKind `json:"kind"`
}

// ConstraintValue is the typed scalar a constraint compares against.
// Exactly one of the pointers is set, matching Kind.
type ConstraintValue struct {
	Text   *string    `json:"text,omitempty"`
	Number *float64   `json:"number,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
}

// TextValue wraps a string into a ConstraintValue.
func TextValue(s string) ConstraintValue {
	return ConstraintValue{Text: &s}
}

// NumberValue wraps a number into a ConstraintValue.
func NumberValue(n float64) ConstraintValue {
	return ConstraintValue{Number: &n}
}

// DateValue wraps a timestamp into a ConstraintValue.
func DateValue(t time.Time) ConstraintValue {
	return ConstraintValue{Date: &t}
}

// String renders the scalar for filter expressions and logs.
func (v ConstraintValue) String() string {
	switch {
	case v.Text != nil:
		return *v.Text
	case v.Number != nil:
		return fmt.Sprintf("%g", *v.Number)
	case v.Date != nil:
		return fmt.Sprintf("%d", v.Date.Unix())
	}
	return ""
}

// Comparable reports whether the value supports ordered comparison.
func (v ConstraintValue) Comparable() bool {
	return v.Number != nil || v.Date != nil
}

// Ordinal returns the value on a single comparable axis. Dates collapse to
// unix seconds so price, mileage and registration bounds share one code path.
func (v ConstraintValue) Ordinal() (float64, bool) {
	if v.Number != nil {
		return *v.Number, true
	}
	if v.Date != nil {
		return float64(v.Date.Unix()), true
	}
	return 0, false
}

// Equal reports scalar equality across the variant.
func (v ConstraintValue) Equal(o ConstraintValue) bool {
	switch {
	case v.Text != nil && o.Text != nil:
		return *v.Text == *o.Text
	case v.Number != nil && o.Number != nil:
		return *v.Number == *o.Number
	case v.Date != nil && o.Date != nil:
		return v.Date.Equal(*o.Date)
	}
	return false
}

// ConstraintGroup is an ordered set of constraints combined with AND
// semantics; multiple groups combine with OR across groups.
type ConstraintGroup struct {
	Constraints []SearchConstraint `json:"constraints"`
}

// IsEmpty reports whether the group holds no constraints.
func (g ConstraintGroup) IsEmpty() bool {
	return len(g.Constraints) == 0
}

// QueryType classifies a composed query by its constraint mix.
type QueryType string

const (
	QuerySimple   QueryType = "simple"   // no constraint groups; raw semantic pass-through
	QueryFiltered QueryType = "filtered" // every constraint is exact or range
	QueryComplex  QueryType = "complex"  // semantic constraints alongside others, or multiple groups
)

// ComposedQuery is the merged, conflict-resolved query for one turn.
// Immutable once returned by the composer.
type ComposedQuery struct {
	QueryType    QueryType         `json:"query_type"`
	Groups       []ConstraintGroup `json:"groups"`
	SemanticText string            `json:"semantic_text,omitempty"`
	HasConflicts bool              `json:"has_conflicts"`
}

// CountByKind tallies constraints across all groups. Exact and range
// constraints count together as exact-filterable; semantic separately.
func (q *ComposedQuery) CountByKind() (exactCount, semanticCount int) {
	for _, g := range q.Groups {
		for _, c := range g.Constraints {
			switch c.Kind {
			case KindSemantic:
				semanticCount++
			default:
				exactCount++
			}
		}
	}
	return exactCount, semanticCount
}

// SemanticQueryText joins the semantic constraints and raw text into the
// query string sent to the similarity backend.
func (q *ComposedQuery) SemanticQueryText() string {
	text := q.SemanticText
	for _, g := range q.Groups {
		for _, c := range g.Constraints {
			if c.Kind != KindSemantic || c.Value.Text == nil {
				continue
			}
			if text == "" {
				text = *c.Value.Text
			} else {
				text = text + " " + *c.Value.Text
			}
		}
	}
	return text
}
