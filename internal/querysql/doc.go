// Package querysql compiles a backend-agnostic query specification (a filter
// tree, sort keys and distinct keys) into parameterized SQLite text plus the
// ordered list of values to bind.
//
// Generated text has the shape
//
//	FROM <collection> [WHERE <expr>] [GROUP BY <keys>] [ORDER BY <keys>]
//
// and is completed by the execution layer (see Query.SelectSQL and
// Query.CountSQL).
//
// # Injection safety
//
// Identifiers come only from the collection schema, which validates them at
// load time. Caller-supplied data reaches the query only as bound values, in
// the same left-to-right order as the `?` placeholders in the text.
//
// # Collation
//
// Text comparisons carry their collation at the comparison site, so one query
// may mix case-sensitive (BINARY) and case-insensitive (NOCASE) conditions.
// NOCASE folds ASCII letters only; see filter.Validate.
//
// Pattern operators use LIKE for case-insensitive matching and GLOB for
// case-sensitive matching, because SQLite's LIKE ignores collations.
//
// # Caller-visible limitations
//
//   - ORDER BY lists exactly the caller's keys. Rows tied on every key come
//     back in whatever order the engine produces them; end the sort with a
//     unique property when a stable order matters.
//   - Distinct is emulated with GROUP BY. Which row of a group is returned
//     is chosen by the engine and is not guaranteed.
//   - Queries with sort or distinct set RequiresMaterialization; the executor
//     must not stream them with cursor-style pagination.
package querysql
