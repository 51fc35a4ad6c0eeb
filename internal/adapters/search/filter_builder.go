package search

import (
	"fmt"
	"strings"

	"github.com/velora/vehicle-discovery/internal/domain/entities"
)

// typesenseOperators maps constraint operators to Typesense filter syntax.
var typesenseOperators = map[entities.Operator]string{
	entities.OpEquals:             ":=",
	entities.OpNotEquals:          ":!=",
	entities.OpLessThan:           ":<",
	entities.OpLessThanOrEqual:    ":<=",
	entities.OpGreaterThan:        ":>",
	entities.OpGreaterThanOrEqual: ":>=",
}

// BuildFilterExpression compiles constraint groups into a Typesense filter_by
// expression: AND within a group, OR across groups. Semantic constraints are
// not filterable and are skipped; groups left empty after skipping are
// dropped entirely.
func BuildFilterExpression(groups []entities.ConstraintGroup) string {
	var clauses []string
	for _, group := range groups {
		var parts []string
		for _, c := range group.Constraints {
			if c.Kind == entities.KindSemantic {
				continue
			}
			op, ok := typesenseOperators[c.Operator]
			if !ok {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s%s%s", c.FieldName, op, filterValue(c)))
		}
		if len(parts) == 0 {
			continue
		}
		clauses = append(clauses, strings.Join(parts, " && "))
	}

	switch len(clauses) {
	case 0:
		return ""
	case 1:
		return clauses[0]
	}
	for i, c := range clauses {
		clauses[i] = "(" + c + ")"
	}
	return strings.Join(clauses, " || ")
}

// filterValue renders a constraint value for filter_by. Text values are
// backtick-quoted so makes like `Alfa Romeo` survive tokenization; dates
// collapse to unix seconds to match the int64 registration field.
func filterValue(c entities.SearchConstraint) string {
	if c.Value.Text != nil {
		return "`" + *c.Value.Text + "`"
	}
	return c.Value.String()
}

// MaxGroupSize returns the largest filterable constraint count across
// groups. A hit satisfied every conjunct of its group, so this bounds the
// matched-field count reported per hit.
func MaxGroupSize(groups []entities.ConstraintGroup) int {
	max := 0
	for _, g := range groups {
		n := 0
		for _, c := range g.Constraints {
			if c.Kind != entities.KindSemantic {
				n++
			}
		}
		if n > max {
			max = n
		}
	}
	return max
}
