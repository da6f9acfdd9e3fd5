package filter

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/roach88/qplan/internal/schema"
	"github.com/roach88/qplan/internal/value"
)

// ValidationResult contains the cross-backend portability analysis of a
// filter.
type ValidationResult struct {
	// IsPortable is true when the relational backend is expected to select
	// exactly the rows the native backend would.
	IsPortable bool

	// Warnings lists the conditions that may diverge between backends.
	Warnings []string
}

// Validate reports conditions whose results may differ between the
// relational backend and the native one. It never fails: structural errors
// (unknown properties, malformed operands) are reported by the compiler.
//
// The relational backend's NOCASE collation folds ASCII letters only, so a
// case-insensitive condition whose operand contains letters with a Unicode
// case folding (É, ß, Σ ...) is flagged.
//
// Validate is a pure function with no side effects.
func Validate(c *schema.Collection, f Filter) ValidationResult {
	v := &validator{collection: c, warnings: []string{}}
	Walk(f, v.visit)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

type validator struct {
	collection *schema.Collection
	warnings   []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) visit(f Filter) bool {
	switch node := f.(type) {
	case Condition:
		v.validateCondition(node)
	case *Condition:
		v.validateCondition(*node)
	}
	return true
}

func (v *validator) validateCondition(c Condition) {
	if c.CaseSensitive || c.Op.IsNullCheck() {
		return
	}
	p, err := v.collection.Property(c.Property)
	if err != nil || !p.Type.IsText() {
		return
	}
	for _, operand := range []value.Value{c.Value, c.Upper} {
		s, ok := operand.(value.String)
		if !ok {
			continue
		}
		if !asciiFoldingSuffices(string(s)) {
			v.addWarning("Property '%s' %s %q: case-insensitive match folds ASCII letters only", p.Name, c.Op, string(s))
		}
	}
}

// asciiFoldingSuffices reports whether ASCII-only folding treats s the way
// full Unicode case folding does: folding must agree and no non-ASCII rune
// may have other case forms.
func asciiFoldingSuffices(s string) bool {
	ascii := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
	if cases.Fold().String(s) != ascii {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII && unicode.SimpleFold(r) != r {
			return false
		}
	}
	return true
}
