package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"zebra": Int(1),
		"apple": String("a"),
		"mango": []Value{Bool(true), Null{}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"apple":"a","mango":[true,null],"zebra":1}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical(String("a < b && c > d"))
	require.NoError(t, err)
	assert.Equal(t, `"a < b && c > d"`, string(got))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	// "e" + combining acute accent normalizes to U+00E9
	got, err := MarshalCanonical(String("e\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshalCanonical_Floats(t *testing.T) {
	got, err := MarshalCanonical([]any{Float(0.1), 2.5, Int(3)})
	require.NoError(t, err)
	assert.Equal(t, `[0.1,2.5,3]`, string(got))

	_, err = MarshalCanonical(Float(math.NaN()))
	require.Error(t, err)
	_, err = MarshalCanonical(math.Inf(1))
	require.Error(t, err)
}

func TestMarshalCanonical_Unsupported(t *testing.T) {
	_, err := MarshalCanonical(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}
