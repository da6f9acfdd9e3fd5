package filter

import (
	"errors"
	"fmt"

	"github.com/roach88/qplan/internal/schema"
	"github.com/roach88/qplan/internal/value"
)

// ErrMalformedOperand is returned when a condition's operands do not fit its
// operator or the property's declared type.
var ErrMalformedOperand = errors.New("malformed operand")

// CheckCondition verifies that c's operator and operands are valid for p.
func CheckCondition(p schema.Property, c Condition) error {
	if c.Op < OpEq || c.Op > OpIsNotNull {
		return malformed(p, c, "unknown operator")
	}

	if c.Op.IsNullCheck() {
		if !value.IsNull(c.Value) || !value.IsNull(c.Upper) {
			return malformed(p, c, "takes no operand")
		}
		return nil
	}

	if !p.Type.IsScalar() {
		return malformed(p, c, fmt.Sprintf("%s properties only support is_null and is_not_null", p.Type))
	}

	if value.IsNull(c.Value) {
		return malformed(p, c, fmt.Sprintf("requires a non-null operand, got %s (use is_null to match null)", value.Kind(c.Value)))
	}
	if c.Op == OpBetween {
		if value.IsNull(c.Upper) {
			return malformed(p, c, fmt.Sprintf("requires a non-null upper bound, got %s", value.Kind(c.Upper)))
		}
		if err := checkOperandType(p, c, c.Upper); err != nil {
			return err
		}
	} else if c.Upper != nil {
		return malformed(p, c, "takes a single operand")
	}

	switch {
	case p.Type == schema.Bool:
		if c.Op != OpEq && c.Op != OpNeq {
			return malformed(p, c, "bool properties only support eq and neq")
		}
	case p.Type.IsText():
		// every operator applies to text
	default:
		if c.Op.IsPattern() {
			return malformed(p, c, "pattern operators require a string property")
		}
	}

	return checkOperandType(p, c, c.Value)
}

func checkOperandType(p schema.Property, c Condition, v value.Value) error {
	ok := false
	switch v.(type) {
	case value.Bool:
		ok = p.Type == schema.Bool
	case value.Int:
		ok = p.Type.IsInteger() || p.Type.IsFloat()
	case value.Float:
		ok = p.Type.IsFloat()
	case value.String:
		ok = p.Type.IsText()
	}
	if !ok {
		return malformed(p, c, fmt.Sprintf("%s operand does not match %s property", value.Kind(v), p.Type))
	}
	return nil
}

func malformed(p schema.Property, c Condition, msg string) error {
	return fmt.Errorf("%w: %s %s: %s", ErrMalformedOperand, p.Name, c.Op, msg)
}
