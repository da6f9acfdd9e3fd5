// Package value provides the scalar operand types that flow from a filter
// condition into the bound-value list of a compiled query.
//
// Value is a sealed interface: only Null, Bool, Int, Float and String
// implement it. Backends switch exhaustively over these five kinds.
//
// Key constraints:
//   - Values are the ONLY caller-supplied data that reaches a compiled query,
//     and they are always bound as parameters, never rendered into SQL text
//   - Null is explicit so a missing operand can be told apart from a null one
//   - Canonical JSON (MarshalCanonical) is used for golden traces and must be
//     byte-for-byte deterministic
package value
