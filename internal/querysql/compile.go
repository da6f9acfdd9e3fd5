package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/qplan/internal/filter"
	"github.com/roach88/qplan/internal/schema"
	"github.com/roach88/qplan/internal/value"
)

// Fixed fragments for empty groups.
const (
	alwaysTrue  = "1=1"
	alwaysFalse = "1=0"
)

// comparisonSQL maps comparison operators to SQL.
var comparisonSQL = map[filter.Operator]string{
	filter.OpEq:  "=",
	filter.OpNeq: "!=",
	filter.OpGt:  ">",
	filter.OpGte: ">=",
	filter.OpLt:  "<",
	filter.OpLte: "<=",
}

// CompileFilter lowers f into a boolean SQL fragment and the values bound to
// its placeholders, in placeholder order.
func CompileFilter(c *schema.Collection, f filter.Filter) (string, []value.Value, error) {
	fc := &filterCompiler{collection: c, values: []value.Value{}}
	sql, err := fc.compile(f, false)
	if err != nil {
		return "", nil, err
	}
	return sql, fc.values, nil
}

// filterCompiler accumulates bound values while walking the tree. Children
// are compiled left to right and their fragments concatenated in the same
// order, which keeps values aligned with placeholders.
type filterCompiler struct {
	collection *schema.Collection
	values     []value.Value
}

// compile lowers one node. nested is true when the node's fragment will be
// embedded in a larger boolean expression.
func (fc *filterCompiler) compile(f filter.Filter, nested bool) (string, error) {
	switch node := f.(type) {
	case filter.And:
		return fc.compileGroup(node.Filters, "AND", alwaysTrue, nested)
	case *filter.And:
		return fc.compileGroup(node.Filters, "AND", alwaysTrue, nested)
	case filter.Or:
		return fc.compileGroup(node.Filters, "OR", alwaysFalse, nested)
	case *filter.Or:
		return fc.compileGroup(node.Filters, "OR", alwaysFalse, nested)
	case filter.Not:
		return fc.compileNot(node)
	case *filter.Not:
		return fc.compileNot(*node)
	case filter.Condition:
		return fc.compileCondition(node)
	case *filter.Condition:
		return fc.compileCondition(*node)
	case nil:
		return "", &CompileError{Code: ErrCodeInvalidFilter, Message: "nil filter node"}
	default:
		return "", &CompileError{Code: ErrCodeInvalidFilter, Message: fmt.Sprintf("unsupported filter type: %T", f)}
	}
}

// compileGroup joins children with op. A group with a parent is
// parenthesized so precedence survives any nesting.
func (fc *filterCompiler) compileGroup(children []filter.Filter, op, empty string, nested bool) (string, error) {
	switch len(children) {
	case 0:
		return empty, nil
	case 1:
		return fc.compile(children[0], nested)
	}

	parts := make([]string, 0, len(children))
	for _, child := range children {
		sql, err := fc.compile(child, true)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}

	sql := strings.Join(parts, " "+op+" ")
	if nested {
		sql = "(" + sql + ")"
	}
	return sql, nil
}

func (fc *filterCompiler) compileNot(not filter.Not) (string, error) {
	if not.Filter == nil {
		return "", &CompileError{Code: ErrCodeInvalidFilter, Message: "NOT requires a child filter"}
	}
	inner, err := fc.compile(not.Filter, false)
	if err != nil {
		return "", err
	}
	return "NOT (" + inner + ")", nil
}

func (fc *filterCompiler) compileCondition(c filter.Condition) (string, error) {
	p, err := fc.collection.Property(c.Property)
	if err != nil {
		return "", &CompileError{
			Code:    ErrCodeUnknownProperty,
			Message: fmt.Sprintf("condition references property %d", c.Property),
			Err:     err,
		}
	}
	if err := filter.CheckCondition(p, c); err != nil {
		return "", &CompileError{
			Code:     ErrCodeMalformedOperand,
			Message:  fmt.Sprintf("invalid %s condition", c.Op),
			Property: p.Name,
			Err:      err,
		}
	}

	switch {
	case c.Op == filter.OpIsNull:
		return p.Name + " IS NULL", nil

	case c.Op == filter.OpIsNotNull:
		return p.Name + " IS NOT NULL", nil

	case c.Op.IsComparison():
		fc.bind(c.Value)
		sql := p.Name + " " + comparisonSQL[c.Op] + " ?"
		if p.Type.IsText() {
			sql += " COLLATE " + collation(c.CaseSensitive)
		}
		return sql, nil

	case c.Op == filter.OpBetween:
		fc.bind(c.Value, c.Upper)
		if p.Type.IsText() {
			// Collation on the left operand governs both bound comparisons
			return p.Name + " COLLATE " + collation(c.CaseSensitive) + " BETWEEN ? AND ?", nil
		}
		return p.Name + " BETWEEN ? AND ?", nil

	case c.Op.IsPattern():
		return fc.compilePattern(p, c)
	}

	return "", &CompileError{Code: ErrCodeInvalidFilter, Message: fmt.Sprintf("unsupported operator %s", c.Op)}
}

// compilePattern emits LIKE for case-insensitive and GLOB for case-sensitive
// matching. The caller's text is escaped so its wildcard characters match
// literally.
func (fc *filterCompiler) compilePattern(p schema.Property, c filter.Condition) (string, error) {
	text := string(c.Value.(value.String))

	if c.CaseSensitive {
		fc.bind(value.String(globPattern(c.Op, text)))
		return p.Name + " GLOB ?", nil
	}

	pattern, escaped := likePattern(c.Op, text)
	fc.bind(value.String(pattern))
	sql := p.Name + " LIKE ? COLLATE " + collation(false)
	if escaped {
		sql += ` ESCAPE '\'`
	}
	return sql, nil
}

func (fc *filterCompiler) bind(vals ...value.Value) {
	fc.values = append(fc.values, vals...)
}
