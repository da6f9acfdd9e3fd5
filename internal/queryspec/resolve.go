package queryspec

import (
	"fmt"
	"time"

	"github.com/roach88/qplan/internal/filter"
	"github.com/roach88/qplan/internal/querysql"
	"github.com/roach88/qplan/internal/schema"
	"github.com/roach88/qplan/internal/value"
)

// Builder resolves the document against s and returns a builder primed
// with its filter, sort keys, and distinct keys.
func (d *Document) Builder(s *schema.Schema) (*querysql.Builder, error) {
	c, err := s.Lookup(d.Collection)
	if err != nil {
		return nil, err
	}

	b := querysql.NewBuilder(c)
	if d.Filter != nil {
		f, err := resolveNode(c, d.Filter)
		if err != nil {
			return nil, err
		}
		b.SetFilter(f)
	}

	for i, k := range d.Sort {
		p, err := c.PropertyByName(k.Property)
		if err != nil {
			return nil, fmt.Errorf("sort[%d]: %w", i, err)
		}
		dir, err := querysql.ParseDirection(k.Direction)
		if err != nil {
			return nil, fmt.Errorf("sort[%d]: %w", i, err)
		}
		b.AddSort(p.Index, dir, caseSensitive(k.CaseSensitive))
	}

	for i, k := range d.Distinct {
		p, err := c.PropertyByName(k.Property)
		if err != nil {
			return nil, fmt.Errorf("distinct[%d]: %w", i, err)
		}
		b.AddDistinct(p.Index, caseSensitive(k.CaseSensitive))
	}

	return b, nil
}

// Compile resolves and builds the document in one step.
func (d *Document) Compile(s *schema.Schema) (*querysql.Query, error) {
	b, err := d.Builder(s)
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// ResolveFilter resolves only the filter tree. It returns nil when the document
// has no filter.
func (d *Document) ResolveFilter(c *schema.Collection) (filter.Filter, error) {
	if d.Filter == nil {
		return nil, nil
	}
	return resolveNode(c, d.Filter)
}

func resolveNode(c *schema.Collection, n *Node) (filter.Filter, error) {
	set := 0
	for _, present := range []bool{n.And != nil, n.Or != nil, n.Not != nil, n.Condition != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, n.errorf("filter node must have exactly one of and, or, not, condition")
	}

	switch {
	case n.And != nil:
		children, err := resolveChildren(c, n.And)
		if err != nil {
			return nil, err
		}
		return filter.And{Filters: children}, nil

	case n.Or != nil:
		children, err := resolveChildren(c, n.Or)
		if err != nil {
			return nil, err
		}
		return filter.Or{Filters: children}, nil

	case n.Not != nil:
		child, err := resolveNode(c, n.Not)
		if err != nil {
			return nil, err
		}
		return filter.Not{Filter: child}, nil

	default:
		return resolveCondition(c, n)
	}
}

func resolveChildren(c *schema.Collection, nodes []*Node) ([]filter.Filter, error) {
	out := make([]filter.Filter, 0, len(nodes))
	for _, child := range nodes {
		if child == nil {
			return nil, fmt.Errorf("empty filter node")
		}
		f, err := resolveNode(c, child)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func resolveCondition(c *schema.Collection, n *Node) (filter.Filter, error) {
	doc := n.Condition
	p, err := c.PropertyByName(doc.Property)
	if err != nil {
		return nil, n.wrap(err)
	}
	op, err := filter.ParseOperator(doc.Op)
	if err != nil {
		return nil, n.wrap(err)
	}

	cond := filter.Condition{
		Property:      p.Index,
		Op:            op,
		CaseSensitive: caseSensitive(doc.CaseSensitive),
	}
	if cond.Value, err = operand(p, doc.Value); err != nil {
		return nil, n.wrap(fmt.Errorf("value: %w", err))
	}
	if cond.Upper, err = operand(p, doc.Upper); err != nil {
		return nil, n.wrap(fmt.Errorf("upper: %w", err))
	}
	return cond, nil
}

// operand converts a decoded YAML scalar. An absent operand stays nil so
// null checks see no operand. Datetime properties store Unix milliseconds,
// so RFC 3339 strings against them are converted.
func operand(p schema.Property, v any) (value.Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return value.Int(val.UnixMilli()), nil
	case string:
		if p.Type == schema.DateTime {
			t, err := time.Parse(time.RFC3339Nano, val)
			if err != nil {
				return nil, fmt.Errorf("datetime operand: %w", err)
			}
			return value.Int(t.UnixMilli()), nil
		}
	}
	return value.FromAny(v)
}

func (n *Node) errorf(format string, args ...any) error {
	return n.wrap(fmt.Errorf(format, args...))
}

func (n *Node) wrap(err error) error {
	if n.line > 0 {
		return fmt.Errorf("line %d: %w", n.line, err)
	}
	return err
}
