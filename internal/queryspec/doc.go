// Package queryspec reads query documents: YAML descriptions of a filter,
// sort keys, and distinct keys against one collection, with properties
// referenced by name.
//
// A document resolves against a schema.Schema into a querysql.Builder:
//
//	collection: users
//	filter:
//	  and:
//	    - condition: {property: age, op: gt, value: 18}
//	    - not:
//	        condition: {property: email, op: is_null}
//	sort:
//	  - {property: age, direction: desc}
//	distinct:
//	  - {property: email, case_sensitive: false}
//
// A filter node holds exactly one of and, or, not, or condition. An empty
// and list selects every row; an empty or list selects none. case_sensitive
// defaults to true.
package queryspec
