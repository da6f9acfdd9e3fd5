package filter

import (
	"fmt"
	"strings"
)

// Operator selects how a Condition compares its property.
type Operator int

const (
	OpEq Operator = iota
	OpNeq
	OpGt
	OpGte
	OpLt
	OpLte
	OpBetween
	OpStartsWith
	OpEndsWith
	OpContains
	OpMatches
	OpIsNull
	OpIsNotNull
)

var operatorNames = [...]string{
	OpEq:         "eq",
	OpNeq:        "neq",
	OpGt:         "gt",
	OpGte:        "gte",
	OpLt:         "lt",
	OpLte:        "lte",
	OpBetween:    "between",
	OpStartsWith: "starts_with",
	OpEndsWith:   "ends_with",
	OpContains:   "contains",
	OpMatches:    "matches",
	OpIsNull:     "is_null",
	OpIsNotNull:  "is_not_null",
}

func (op Operator) String() string {
	if op < 0 || int(op) >= len(operatorNames) {
		return fmt.Sprintf("Operator(%d)", int(op))
	}
	return operatorNames[op]
}

// ParseOperator resolves an operator name as written in query documents.
func ParseOperator(s string) (Operator, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for op, n := range operatorNames {
		if n == name {
			return Operator(op), nil
		}
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

// IsComparison reports whether op is one of =, !=, >, >=, <, <=.
func (op Operator) IsComparison() bool {
	return op >= OpEq && op <= OpLte
}

// IsOrdering reports whether op orders values (>, >=, <, <=, BETWEEN).
func (op Operator) IsOrdering() bool {
	return op >= OpGt && op <= OpBetween
}

// IsPattern reports whether op matches text against a pattern.
func (op Operator) IsPattern() bool {
	return op >= OpStartsWith && op <= OpMatches
}

// IsNullCheck reports whether op observes null directly.
func (op Operator) IsNullCheck() bool {
	return op == OpIsNull || op == OpIsNotNull
}
