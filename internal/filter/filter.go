package filter

import (
	"github.com/roach88/qplan/internal/value"
)

// Filter is a node of the predicate tree.
//
// This is a sealed interface - only types in this package implement it.
type Filter interface {
	filterNode() // Marker method - seals interface to this package
}

// And is true when every child is true. Empty And is true.
type And struct {
	Filters []Filter
}

func (And) filterNode() {}

// Or is true when any child is true. Empty Or is false.
type Or struct {
	Filters []Filter
}

func (Or) filterNode() {}

// Not negates its child under three-valued logic.
type Not struct {
	Filter Filter
}

func (Not) filterNode() {}

// Condition compares one property against its operand(s).
type Condition struct {
	// Property is the property index within the collection.
	Property uint16

	// Op selects the comparison.
	Op Operator

	// Value is the operand. Lower bound for Between; nil for IsNull/IsNotNull.
	Value value.Value

	// Upper is the upper bound for Between and nil otherwise.
	Upper value.Value

	// CaseSensitive selects binary (true) or ASCII case-insensitive (false)
	// text comparison. Ignored for non-text properties.
	CaseSensitive bool
}

func (Condition) filterNode() {}

// Eq builds property = v.
func Eq(property uint16, v value.Value) Condition {
	return Condition{Property: property, Op: OpEq, Value: v, CaseSensitive: true}
}

// Neq builds property != v.
func Neq(property uint16, v value.Value) Condition {
	return Condition{Property: property, Op: OpNeq, Value: v, CaseSensitive: true}
}

// Gt builds property > v.
func Gt(property uint16, v value.Value) Condition {
	return Condition{Property: property, Op: OpGt, Value: v, CaseSensitive: true}
}

// Gte builds property >= v.
func Gte(property uint16, v value.Value) Condition {
	return Condition{Property: property, Op: OpGte, Value: v, CaseSensitive: true}
}

// Lt builds property < v.
func Lt(property uint16, v value.Value) Condition {
	return Condition{Property: property, Op: OpLt, Value: v, CaseSensitive: true}
}

// Lte builds property <= v.
func Lte(property uint16, v value.Value) Condition {
	return Condition{Property: property, Op: OpLte, Value: v, CaseSensitive: true}
}

// Between builds lower <= property <= upper.
func Between(property uint16, lower, upper value.Value) Condition {
	return Condition{Property: property, Op: OpBetween, Value: lower, Upper: upper, CaseSensitive: true}
}

// StartsWith matches text beginning with prefix.
func StartsWith(property uint16, prefix string, caseSensitive bool) Condition {
	return Condition{Property: property, Op: OpStartsWith, Value: value.String(prefix), CaseSensitive: caseSensitive}
}

// EndsWith matches text ending with suffix.
func EndsWith(property uint16, suffix string, caseSensitive bool) Condition {
	return Condition{Property: property, Op: OpEndsWith, Value: value.String(suffix), CaseSensitive: caseSensitive}
}

// Contains matches text containing substr.
func Contains(property uint16, substr string, caseSensitive bool) Condition {
	return Condition{Property: property, Op: OpContains, Value: value.String(substr), CaseSensitive: caseSensitive}
}

// Matches matches text against a wildcard pattern where * is any run of
// characters and ? is exactly one.
func Matches(property uint16, pattern string, caseSensitive bool) Condition {
	return Condition{Property: property, Op: OpMatches, Value: value.String(pattern), CaseSensitive: caseSensitive}
}

// IsNull matches rows where property is null.
func IsNull(property uint16) Condition {
	return Condition{Property: property, Op: OpIsNull}
}

// IsNotNull matches rows where property is not null.
func IsNotNull(property uint16) Condition {
	return Condition{Property: property, Op: OpIsNotNull}
}

// Walk visits f and its descendants depth-first, left to right. Returning
// false from fn skips the node's children.
func Walk(f Filter, fn func(Filter) bool) {
	if f == nil || !fn(f) {
		return
	}
	switch node := f.(type) {
	case And:
		for _, child := range node.Filters {
			Walk(child, fn)
		}
	case *And:
		for _, child := range node.Filters {
			Walk(child, fn)
		}
	case Or:
		for _, child := range node.Filters {
			Walk(child, fn)
		}
	case *Or:
		for _, child := range node.Filters {
			Walk(child, fn)
		}
	case Not:
		Walk(node.Filter, fn)
	case *Not:
		Walk(node.Filter, fn)
	}
}
