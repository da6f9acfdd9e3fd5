package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/qplan/internal/querysql"
	"github.com/roach88/qplan/internal/schema"
	"github.com/roach88/qplan/internal/value"
)

// Row maps property names to values.
type Row map[string]value.Value

// ErrStop ends an Iterate callback loop early without an error.
var ErrStop = errors.New("stop iteration")

// Find returns the page of rows q selects.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) Find(ctx context.Context, q *querysql.Query, page querysql.Page) ([]Row, error) {
	rows := []Row{}

	if !q.RequiresMaterialization() {
		err := s.iterate(ctx, q, page, func(r Row) error {
			rows = append(rows, r)
			return nil
		})
		return rows, err
	}

	// Sorted and grouped results are read in full before paging.
	err := s.iterate(ctx, q, querysql.Page{}, func(r Row) error {
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return applyPage(rows, page), nil
}

// Iterate calls fn for each row q selects, in result order. Returning
// ErrStop from fn ends iteration early and Iterate returns nil.
func (s *Store) Iterate(ctx context.Context, q *querysql.Query, fn func(Row) error) error {
	err := s.iterate(ctx, q, querysql.Page{}, fn)
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

// Count returns the number of rows (or groups) q selects.
func (s *Store) Count(ctx context.Context, q *querysql.Query) (int64, error) {
	if _, err := s.collection(q); err != nil {
		return 0, err
	}
	query, vals := q.CountSQL()
	args, err := value.ToParams(vals)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Explain returns SQLite's query plan for q, one line per step.
func (s *Store) Explain(ctx context.Context, q *querysql.Query) ([]string, error) {
	query, vals := q.SelectSQL(querysql.Page{})
	args, err := value.ToParams(vals)
	if err != nil {
		return nil, err
	}

	var steps []struct {
		ID      int    `db:"id"`
		Parent  int    `db:"parent"`
		NotUsed int    `db:"notused"`
		Detail  string `db:"detail"`
	}
	if err := s.db.SelectContext(ctx, &steps, "EXPLAIN QUERY PLAN "+query, args...); err != nil {
		return nil, fmt.Errorf("explain: %w", err)
	}

	plan := make([]string, len(steps))
	for i, st := range steps {
		plan[i] = st.Detail
	}
	return plan, nil
}

func (s *Store) iterate(ctx context.Context, q *querysql.Query, page querysql.Page, fn func(Row) error) error {
	c, err := s.collection(q)
	if err != nil {
		return err
	}

	query, vals := q.SelectSQL(page)
	args, err := value.ToParams(vals)
	if err != nil {
		return err
	}

	slog.Debug("executing query",
		"sql", query,
		"params", len(args),
		"materialize", q.RequiresMaterialization(),
	)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query %s: %w", c.Name(), err)
	}
	defer rows.Close()

	for rows.Next() {
		raw := make(map[string]any)
		if err := rows.MapScan(raw); err != nil {
			return fmt.Errorf("scan %s: %w", c.Name(), err)
		}
		row, err := decodeRow(c, raw)
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s: %w", c.Name(), err)
	}
	return nil
}

// collection resolves the collection a query was built for.
func (s *Store) collection(q *querysql.Query) (*schema.Collection, error) {
	if q == nil {
		return nil, fmt.Errorf("nil query")
	}
	return s.schema.Collection(q.CollectionIndex())
}

func decodeRow(c *schema.Collection, raw map[string]any) (Row, error) {
	row := make(Row, len(raw))
	for name, v := range raw {
		val, err := value.FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		if p, err := c.PropertyByName(name); err == nil && p.Type == schema.Bool {
			if i, ok := val.(value.Int); ok {
				val = value.Bool(i != 0)
			}
		}
		row[name] = val
	}
	return row, nil
}

// applyPage slices an in-memory result.
func applyPage(rows []Row, page querysql.Page) []Row {
	start := page.Offset
	if start < 0 {
		start = 0
	}
	if start >= len(rows) {
		return []Row{}
	}
	end := len(rows)
	if page.Limit > 0 && start+page.Limit < end {
		end = start + page.Limit
	}
	return rows[start:end]
}
