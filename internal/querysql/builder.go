package querysql

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/qplan/internal/filter"
	"github.com/roach88/qplan/internal/schema"
	"github.com/roach88/qplan/internal/value"
)

// Builder accumulates a query specification for one collection and turns it
// into a Query with a single, terminal Build call.
//
// Setters are fluent. The first failure (for example an unknown property
// index) is recorded and returned by Build. A Builder is spent once Build
// returns, successfully or not; it is not safe for concurrent use.
type Builder struct {
	collection *schema.Collection
	filter     filter.Filter
	sort       []SortKey
	distinct   []DistinctKey
	err        error
	consumed   bool
}

// NewBuilder starts a query against c.
func NewBuilder(c *schema.Collection) *Builder {
	b := &Builder{collection: c}
	if c == nil {
		b.err = &CompileError{Code: ErrCodeUnknownCollection, Message: "builder requires a collection"}
	}
	return b
}

// SetFilter sets the filter. Callers set it at most once; a second call
// replaces the first. A nil filter selects every row.
func (b *Builder) SetFilter(f filter.Filter) *Builder {
	if b.consumed {
		return b
	}
	b.filter = f
	return b
}

// AddSort appends a sort key. The first key added is the primary key.
func (b *Builder) AddSort(property uint16, dir Direction, caseSensitive bool) *Builder {
	name, ok := b.resolve(property, "sort")
	if !ok {
		return b
	}
	b.sort = append(b.sort, SortKey{Property: name, Direction: dir, CaseSensitive: caseSensitive})
	return b
}

// AddDistinct appends a distinct key. Any distinct key switches
// deduplication on.
func (b *Builder) AddDistinct(property uint16, caseSensitive bool) *Builder {
	name, ok := b.resolve(property, "distinct")
	if !ok {
		return b
	}
	b.distinct = append(b.distinct, DistinctKey{Property: name, CaseSensitive: caseSensitive})
	return b
}

// resolve maps a property index to its schema name, recording the first
// failure.
func (b *Builder) resolve(property uint16, clause string) (string, bool) {
	if b.consumed || b.err != nil {
		return "", false
	}
	name, err := b.collection.PropertyName(property)
	if err != nil {
		b.err = &CompileError{
			Code:    ErrCodeUnknownProperty,
			Message: fmt.Sprintf("%s references property %d", clause, property),
			Err:     err,
		}
		return "", false
	}
	return name, true
}

// Warnings lists caller-visible caveats of the query so far:
// filter portability warnings plus nondeterminism of distinct without sort.
func (b *Builder) Warnings() []string {
	if b.consumed || b.collection == nil {
		return nil
	}
	var warnings []string
	if b.filter != nil {
		warnings = append(warnings, filter.Validate(b.collection, b.filter).Warnings...)
	}
	if len(b.distinct) > 0 && len(b.sort) == 0 {
		warnings = append(warnings, "Distinct without sort - the row kept for each group is chosen by the engine")
	}
	return warnings
}

// Build compiles the accumulated query. It consumes the builder: later calls
// return a BUILDER_CONSUMED error. On error no Query is returned.
func (b *Builder) Build() (*Query, error) {
	if b.consumed {
		return nil, &CompileError{Code: ErrCodeBuilderConsumed, Message: "Build already called on this builder"}
	}

	collection, f, sortKeys, distinctKeys, err := b.collection, b.filter, b.sort, b.distinct, b.err
	*b = Builder{consumed: true}
	if err != nil {
		return nil, err
	}

	var sql strings.Builder
	sql.WriteString("FROM ")
	sql.WriteString(collection.Name())

	values := []value.Value{}
	if f != nil {
		where, filterValues, err := CompileFilter(collection, f)
		if err != nil {
			return nil, err
		}
		sql.WriteString(" WHERE ")
		sql.WriteString(where)
		values = filterValues
	}

	// SQLite only accepts GROUP BY ahead of ORDER BY
	if len(distinctKeys) > 0 {
		sql.WriteString(" GROUP BY ")
		sql.WriteString(GroupByList(distinctKeys))
	}
	if len(sortKeys) > 0 {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(OrderByList(sortKeys))
	}

	q := &Query{
		collectionIndex:         collection.Index(),
		sql:                     sql.String(),
		requiresMaterialization: len(sortKeys) > 0 || len(distinctKeys) > 0,
		values:                  values,
	}

	slog.Debug("query compiled",
		"collection", collection.Name(),
		"placeholders", len(values),
		"materialize", q.requiresMaterialization,
	)

	return q, nil
}
