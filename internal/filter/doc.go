// Package filter defines the backend-agnostic boolean predicate tree that a
// query filters rows with.
//
// Filter is a sealed interface using the marker method pattern: only And, Or,
// Not and Condition implement it, so backends can switch exhaustively and a
// new node kind is a compile-time visible change.
//
//	filter.Or{Filters: []filter.Filter{
//		filter.And{Filters: []filter.Filter{
//			filter.Gt(0, value.Int(18)),
//			filter.StartsWith(1, "Al", false),
//		}},
//		filter.IsNull(2),
//	}}
//
// Conditions reference properties by index; names are resolved through the
// collection schema by the backend, never taken from the tree.
//
// # Null semantics
//
// Comparisons follow three-valued logic: a null property compared with any
// ordering or equality operator is unknown, so the row is not selected and
// NOT does not select it either. IsNull and IsNotNull are the only operators
// that observe null directly. A Null operand is therefore rejected on every
// other operator.
//
// # Empty groups
//
// And with no children is true and Or with no children is false, the
// identity elements of each connective.
package filter
