// Package schema holds the read-only Collection Schema shared by every query
// compiled against a collection.
//
// A Property is identified two ways: by a stable numeric index, which callers
// and bindings use, and by a name, which only ever appears inside generated
// SQL text. Every name is validated as a plain SQLite identifier when the
// collection is constructed, so no caller-supplied string can reach query
// text through the schema.
//
// Collections and Schemas are immutable after construction and safe for
// concurrent use without locking.
//
// Schemas are usually loaded from CUE files:
//
//	collection: users: {
//		properties: [
//			{name: "age", type: "long"},
//			{name: "name", type: "string"},
//		]
//	}
//
// Collection and property indexes follow declaration order.
package schema
