// Package store executes compiled queries against SQLite.
//
// Each schema collection is a table whose columns are the collection's
// properties, declared with the property type's affinity. Rows are written
// with named parameters and read back as maps of property name to value.
//
// # Execution strategy
//
// Find honors querysql.Query.RequiresMaterialization. Queries without sort
// or distinct keys push the page into SQL as LIMIT/OFFSET and stream rows.
// Queries that sort or group are read to completion first and paged in
// memory.
//
// # Storage forms
//
//   - bool: INTEGER 0/1, read back as value.Bool
//   - datetime: INTEGER Unix milliseconds
//   - json, object, lists: TEXT holding JSON
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
