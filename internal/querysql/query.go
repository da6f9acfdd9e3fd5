package querysql

import (
	"encoding/json"

	"github.com/roach88/qplan/internal/value"
)

// Query is the immutable result of Builder.Build: query text starting at
// FROM, its bound values in placeholder order, and an execution hint.
type Query struct {
	collectionIndex         uint16
	sql                     string
	requiresMaterialization bool
	values                  []value.Value
}

// Page restricts a result to a window. Limit <= 0 means no limit.
type Page struct {
	Offset int
	Limit  int
}

// IsZero reports whether p selects the whole result.
func (p Page) IsZero() bool {
	return p.Offset <= 0 && p.Limit <= 0
}

// CollectionIndex identifies the collection the query runs against.
func (q *Query) CollectionIndex() uint16 {
	return q.collectionIndex
}

// SQL returns the query text, starting at FROM.
func (q *Query) SQL() string {
	return q.sql
}

// Values returns a copy of the bound values in placeholder order.
func (q *Query) Values() []value.Value {
	out := make([]value.Value, len(q.values))
	copy(out, q.values)
	return out
}

// Params returns the bound values converted for database/sql.
func (q *Query) Params() ([]any, error) {
	return value.ToParams(q.values)
}

// RequiresMaterialization is true when the query sorts or deduplicates.
// Such results must be read to completion before paging; when false, rows
// may be streamed and the page pushed into SQL.
func (q *Query) RequiresMaterialization() bool {
	return q.requiresMaterialization
}

// SelectSQL renders a full SELECT. A non-zero page appends LIMIT and OFFSET
// placeholders whose values follow the filter values.
func (q *Query) SelectSQL(p Page) (string, []value.Value) {
	sql := "SELECT * " + q.sql
	vals := q.Values()
	if !p.IsZero() {
		limit := int64(-1) // SQLite: negative LIMIT means no limit
		if p.Limit > 0 {
			limit = int64(p.Limit)
		}
		offset := int64(0)
		if p.Offset > 0 {
			offset = int64(p.Offset)
		}
		sql += " LIMIT ? OFFSET ?"
		vals = append(vals, value.Int(limit), value.Int(offset))
	}
	return sql, vals
}

// CountSQL renders a row count. Grouped queries are counted through a
// subquery so each group counts once.
func (q *Query) CountSQL() (string, []value.Value) {
	if q.requiresMaterialization {
		return "SELECT COUNT(*) FROM (SELECT 1 " + q.sql + ")", q.Values()
	}
	return "SELECT COUNT(*) " + q.sql, q.Values()
}

// MarshalJSON implements json.Marshaler.
func (q *Query) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CollectionIndex         uint16        `json:"collection_index"`
		SQL                     string        `json:"sql"`
		RequiresMaterialization bool          `json:"requires_materialization"`
		Values                  []value.Value `json:"values"`
	}{q.collectionIndex, q.sql, q.requiresMaterialization, q.Values()})
}
