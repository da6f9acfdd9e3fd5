package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersCollection(t *testing.T) *Collection {
	t.Helper()
	c, err := NewCollection(0, "users",
		Field("age", Long),
		Field("name", String),
		Field("email", String),
	)
	require.NoError(t, err)
	return c
}

func TestNewCollection_AssignsIndexes(t *testing.T) {
	c := usersCollection(t)

	assert.Equal(t, "users", c.Name())
	assert.Equal(t, 3, c.Len())
	for i, p := range c.Properties() {
		assert.Equal(t, uint16(i), p.Index)
	}

	p, err := c.Property(1)
	require.NoError(t, err)
	assert.Equal(t, Property{Index: 1, Name: "name", Type: String}, p)
}

func TestCollection_UnknownProperty(t *testing.T) {
	c := usersCollection(t)

	_, err := c.Property(3)
	require.ErrorIs(t, err, ErrUnknownProperty)
	assert.Contains(t, err.Error(), "index 3")

	_, err = c.PropertyName(99)
	require.ErrorIs(t, err, ErrUnknownProperty)

	_, err = c.PropertyByName("missing")
	require.ErrorIs(t, err, ErrUnknownProperty)
}

func TestCollection_PropertiesIsACopy(t *testing.T) {
	c := usersCollection(t)
	props := c.Properties()
	props[0].Name = "mutated"

	name, err := c.PropertyName(0)
	require.NoError(t, err)
	assert.Equal(t, "age", name)
}

func TestNewCollection_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		coll  string
		props []Property
		want  string
	}{
		{"keyword collection", "order", nil, "SQL keyword"},
		{"injection in collection", "users; DROP TABLE x", nil, "must match"},
		{"keyword property", "users", []Property{Field("group", Long)}, "SQL keyword"},
		{"quoted property", "users", []Property{Field(`na"me`, String)}, "must match"},
		{"reserved prefix", "sqlite_master", nil, "reserved"},
		{"duplicate", "users", []Property{Field("a", Long), Field("a", String)}, "duplicate"},
		{"unknown type", "users", []Property{Field("a", Type("decimal"))}, "unknown type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCollection(0, tt.coll, tt.props...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateIdentifier_CaseInsensitiveKeywords(t *testing.T) {
	require.ErrorIs(t, ValidateIdentifier("Select"), ErrInvalidIdentifier)
	require.NoError(t, ValidateIdentifier("selected"))
	require.NoError(t, ValidateIdentifier("_private"))
}

func TestSchema(t *testing.T) {
	users := usersCollection(t)
	posts, err := NewCollection(1, "posts", Field("title", String))
	require.NoError(t, err)

	s, err := New(users, posts)
	require.NoError(t, err)

	got, err := s.Lookup("posts")
	require.NoError(t, err)
	assert.Equal(t, uint16(1), got.Index())

	got, err = s.Collection(0)
	require.NoError(t, err)
	assert.Equal(t, "users", got.Name())

	_, err = s.Collection(2)
	require.ErrorIs(t, err, ErrUnknownCollection)
	_, err = s.Lookup("comments")
	require.ErrorIs(t, err, ErrUnknownCollection)
}

func TestSchema_IndexMismatch(t *testing.T) {
	posts, err := NewCollection(1, "posts", Field("title", String))
	require.NoError(t, err)

	_, err = New(posts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 0")
}

func TestTypeClassification(t *testing.T) {
	tests := []struct {
		typ      Type
		scalar   bool
		text     bool
		list     bool
		affinity string
	}{
		{Bool, true, false, false, "INTEGER"},
		{Long, true, false, false, "INTEGER"},
		{DateTime, true, false, false, "INTEGER"},
		{Double, true, false, false, "REAL"},
		{String, true, true, false, "TEXT"},
		{JSON, false, false, false, "TEXT"},
		{Object, false, false, false, "TEXT"},
		{StringList, false, false, true, "TEXT"},
		{LongList, false, false, true, "TEXT"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.scalar, tt.typ.IsScalar())
			assert.Equal(t, tt.text, tt.typ.IsText())
			assert.Equal(t, tt.list, tt.typ.IsList())
			assert.Equal(t, tt.affinity, tt.typ.Affinity())
		})
	}
}

func TestParseType(t *testing.T) {
	typ, ok := ParseType(" String[] ")
	assert.True(t, ok)
	assert.Equal(t, StringList, typ)

	_, ok = ParseType("decimal")
	assert.False(t, ok)
}
