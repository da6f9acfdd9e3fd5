package value

import (
	"fmt"
	"math"
	"strconv"
)

// Value is a sealed interface representing a scalar operand.
// Only Null, Bool, Int, Float, and String implement it.
type Value interface {
	scalar() // Sealed - only these types implement it
}

// Null represents an explicit SQL NULL.
type Null struct{}

func (Null) scalar() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Bool represents a boolean operand.
type Bool bool

func (Bool) scalar() {}

// Int represents an integer operand. Byte, int, long and datetime
// properties all compare against Int.
type Int int64

func (Int) scalar() {}

// Float represents a floating point operand for float and double properties.
type Float float64

func (Float) scalar() {}

// String represents a text operand.
type String string

func (String) scalar() {}

// Kind names the dynamic type of a Value for error messages.
func Kind(v Value) string {
	switch v.(type) {
	case nil:
		return "missing"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// IsNull reports whether v is absent or an explicit Null.
func IsNull(v Value) bool {
	switch v.(type) {
	case nil, Null:
		return true
	default:
		return false
	}
}

// ToParam converts a Value to the Go type handed to database/sql.
func ToParam(v Value) (any, error) {
	switch val := v.(type) {
	case Null:
		return nil, nil
	case Bool:
		return bool(val), nil
	case Int:
		return int64(val), nil
	case Float:
		return float64(val), nil
	case String:
		return string(val), nil
	case nil:
		return nil, fmt.Errorf("missing value cannot be bound as a parameter")
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}

// ToParams converts values positionally. The result has the same length and
// order as vals.
func ToParams(vals []Value) ([]any, error) {
	params := make([]any, len(vals))
	for i, v := range vals {
		p, err := ToParam(v)
		if err != nil {
			return nil, fmt.Errorf("value[%d]: %w", i, err)
		}
		params[i] = p
	}
	return params, nil
}

// FromAny converts a decoded YAML/JSON scalar or a database/sql scan result
// to a Value. Integral floats stay Float; only integer Go types become Int.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", val)
		}
		return Int(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case string:
		return String(val), nil
	case []byte:
		return String(val), nil
	default:
		return nil, fmt.Errorf("unsupported scalar type: %T", v)
	}
}

// Format renders a Value for human-readable output. It is never used to
// build SQL text.
func Format(v Value) string {
	switch val := v.(type) {
	case nil:
		return "<missing>"
	case Null:
		return "NULL"
	case Bool:
		return strconv.FormatBool(bool(val))
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case String:
		return strconv.Quote(string(val))
	default:
		return fmt.Sprintf("%v", v)
	}
}
