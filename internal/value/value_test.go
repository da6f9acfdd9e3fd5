package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToParam(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want any
	}{
		{"null", Null{}, nil},
		{"bool", Bool(true), true},
		{"int", Int(18), int64(18)},
		{"float", Float(1.5), 1.5},
		{"string", String("Al%"), "Al%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToParam(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToParam_Missing(t *testing.T) {
	_, err := ToParam(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing value")
}

func TestToParams_PreservesOrder(t *testing.T) {
	params, err := ToParams([]Value{Int(1), String("b"), Float(2.5), Null{}})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "b", 2.5, nil}, params)
}

func TestToParams_ReportsIndex(t *testing.T) {
	_, err := ToParams([]Value{Int(1), nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value[1]")
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"bool", false, Bool(false)},
		{"int", 42, Int(42)},
		{"int64", int64(-7), Int(-7)},
		{"uint16", uint16(9), Int(9)},
		{"float64", 3.25, Float(3.25)},
		{"string", "zebra", String("zebra")},
		{"bytes", []byte("raw"), String("raw")},
		{"already a value", Int(5), Int(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAny_Unsupported(t *testing.T) {
	_, err := FromAny(map[string]any{"nested": 1})
	require.Error(t, err)

	_, err = FromAny(uint64(1 << 63))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflows")
}

func TestKindAndIsNull(t *testing.T) {
	assert.Equal(t, "missing", Kind(nil))
	assert.Equal(t, "null", Kind(Null{}))
	assert.Equal(t, "string", Kind(String("x")))

	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(Null{}))
	assert.False(t, IsNull(Int(0)))
	assert.False(t, IsNull(String("")))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "NULL", Format(Null{}))
	assert.Equal(t, "18", Format(Int(18)))
	assert.Equal(t, "0.5", Format(Float(0.5)))
	assert.Equal(t, `"it's"`, Format(String("it's")))
	assert.Equal(t, "true", Format(Bool(true)))
}
