package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/qplan/internal/schema"
	"github.com/roach88/qplan/internal/value"
)

// Insert writes one row into the named collection. Keys are property
// names; missing properties are stored as NULL. It returns the new row's
// rowid.
func (s *Store) Insert(ctx context.Context, collection string, row map[string]any) (int64, error) {
	c, err := s.schema.Lookup(collection)
	if err != nil {
		return 0, err
	}
	return insertRow(ctx, s.db, c, row)
}

// InsertMany writes rows into the named collection in one transaction.
// Either every row is written or none is.
func (s *Store) InsertMany(ctx context.Context, collection string, rows []map[string]any) error {
	c, err := s.schema.Lookup(collection)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for i, row := range rows {
		if _, err := insertRow(ctx, tx, c, row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	slog.Debug("rows inserted", "collection", collection, "count", len(rows))
	return nil
}

func insertRow(ctx context.Context, execer sqlx.ExtContext, c *schema.Collection, row map[string]any) (int64, error) {
	params, err := encodeRow(c, row)
	if err != nil {
		return 0, err
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var query string
	if len(names) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", c.Name())
	} else {
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)",
			c.Name(), strings.Join(names, ", "), strings.Join(names, ", :"))
	}

	res, err := sqlx.NamedExecContext(ctx, execer, query, params)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", c.Name(), err)
	}
	return res.LastInsertId()
}

// encodeRow converts a row to its storage form, rejecting properties the
// collection does not declare.
func encodeRow(c *schema.Collection, row map[string]any) (map[string]any, error) {
	params := make(map[string]any, len(row))
	for name, v := range row {
		p, err := c.PropertyByName(name)
		if err != nil {
			return nil, err
		}
		enc, err := encodeValue(p, v)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		params[name] = enc
	}
	return params, nil
}

func encodeValue(p schema.Property, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if val, ok := v.(value.Value); ok {
		return value.ToParam(val)
	}

	switch {
	case p.Type == schema.JSON || p.Type == schema.Object || p.Type.IsList():
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil

	case p.Type == schema.DateTime:
		switch t := v.(type) {
		case time.Time:
			return t.UnixMilli(), nil
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, t)
			if err != nil {
				return nil, fmt.Errorf("datetime: %w", err)
			}
			return parsed.UnixMilli(), nil
		}
	}

	return v, nil
}
