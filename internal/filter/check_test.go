package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qplan/internal/schema"
	"github.com/roach88/qplan/internal/value"
)

var (
	ageProp    = schema.Property{Index: 0, Name: "age", Type: schema.Long}
	nameProp   = schema.Property{Index: 1, Name: "name", Type: schema.String}
	activeProp = schema.Property{Index: 2, Name: "active", Type: schema.Bool}
	scoreProp  = schema.Property{Index: 3, Name: "score", Type: schema.Double}
	tagsProp   = schema.Property{Index: 4, Name: "tags", Type: schema.StringList}
)

func TestCheckCondition_Valid(t *testing.T) {
	tests := []struct {
		name string
		prop schema.Property
		cond Condition
	}{
		{"int gt", ageProp, Gt(0, value.Int(18))},
		{"int between", ageProp, Between(0, value.Int(18), value.Int(65))},
		{"text eq", nameProp, Eq(1, value.String("Al"))},
		{"text between", nameProp, Between(1, value.String("a"), value.String("m"))},
		{"text starts", nameProp, StartsWith(1, "Al", false)},
		{"text matches", nameProp, Matches(1, "A*e", true)},
		{"bool eq", activeProp, Eq(2, value.Bool(true))},
		{"double with int", scoreProp, Lt(3, value.Int(3))},
		{"double with float", scoreProp, Gte(3, value.Float(2.5))},
		{"list is null", tagsProp, IsNull(4)},
		{"is not null with explicit null", ageProp, Condition{Op: OpIsNotNull, Value: value.Null{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, CheckCondition(tt.prop, tt.cond))
		})
	}
}

func TestCheckCondition_Malformed(t *testing.T) {
	tests := []struct {
		name string
		prop schema.Property
		cond Condition
		want string
	}{
		{"between missing upper", ageProp, Condition{Op: OpBetween, Value: value.Int(1)}, "upper bound"},
		{"between null upper", ageProp, Between(0, value.Int(1), value.Null{}), "upper bound"},
		{"between wrong upper type", ageProp, Between(0, value.Int(1), value.String("x")), "does not match"},
		{"null operand", ageProp, Eq(0, value.Null{}), "use is_null"},
		{"missing operand", ageProp, Condition{Op: OpGt}, "non-null operand"},
		{"upper on single", ageProp, Condition{Op: OpGt, Value: value.Int(1), Upper: value.Int(2)}, "single operand"},
		{"is null with operand", ageProp, Condition{Op: OpIsNull, Value: value.Int(1)}, "takes no operand"},
		{"string on int", ageProp, Gt(0, value.String("18")), "does not match"},
		{"float on int", ageProp, Gt(0, value.Float(1.5)), "does not match"},
		{"int on text", nameProp, Eq(1, value.Int(1)), "does not match"},
		{"pattern on int", ageProp, Condition{Op: OpContains, Value: value.Int(1)}, "require a string property"},
		{"ordering on bool", activeProp, Gt(2, value.Bool(true)), "eq and neq"},
		{"eq on list", tagsProp, Eq(4, value.String("x")), "only support is_null"},
		{"unknown operator", ageProp, Condition{Op: Operator(42), Value: value.Int(1)}, "unknown operator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCondition(tt.prop, tt.cond)
			require.ErrorIs(t, err, ErrMalformedOperand)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
