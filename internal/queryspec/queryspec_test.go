package queryspec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qplan/internal/filter"
	"github.com/roach88/qplan/internal/querysql"
	"github.com/roach88/qplan/internal/schema"
	"github.com/roach88/qplan/internal/value"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.CompileString(`
collection: users: properties: [
	{name: "age", type: "long"},
	{name: "name", type: "string"},
	{name: "email", type: "string"},
	{name: "joined", type: "datetime"},
]
`)
	require.NoError(t, err)
	return s
}

func TestParse_FullDocument(t *testing.T) {
	doc, err := Parse([]byte(`
collection: users
filter:
  and:
    - condition: {property: age, op: gt, value: 18}
    - or:
        - condition: {property: name, op: starts_with, value: "Al", case_sensitive: false}
        - not:
            condition: {property: email, op: is_null}
sort:
  - {property: age, direction: desc}
  - {property: name, case_sensitive: false}
distinct:
  - {property: email, case_sensitive: false}
`))
	require.NoError(t, err)

	q, err := doc.Compile(testSchema(t))
	require.NoError(t, err)
	assert.Equal(t,
		"FROM users WHERE age > ? AND (name LIKE ? COLLATE NOCASE OR NOT (email IS NULL))"+
			" GROUP BY email COLLATE NOCASE ORDER BY age COLLATE BINARY DESC,name COLLATE NOCASE",
		q.SQL())
	assert.Equal(t, []value.Value{value.Int(18), value.String("Al%")}, q.Values())
	assert.True(t, q.RequiresMaterialization())
}

func TestParse_EmptyGroupsArePreserved(t *testing.T) {
	doc, err := Parse([]byte("collection: users\nfilter:\n  or: []\n"))
	require.NoError(t, err)

	f, err := doc.ResolveFilter(mustCollection(t))
	require.NoError(t, err)
	assert.Equal(t, filter.Or{Filters: []filter.Filter{}}, f)

	q, err := doc.Compile(testSchema(t))
	require.NoError(t, err)
	assert.Equal(t, "FROM users WHERE 1=0", q.SQL())
}

func TestParse_NoFilter(t *testing.T) {
	doc, err := Parse([]byte("collection: users\n"))
	require.NoError(t, err)

	q, err := doc.Compile(testSchema(t))
	require.NoError(t, err)
	assert.Equal(t, "FROM users", q.SQL())
	assert.False(t, q.RequiresMaterialization())
}

func TestParse_Between(t *testing.T) {
	doc, err := Parse([]byte(`
collection: users
filter:
  condition: {property: age, op: between, value: 18, upper: 65}
`))
	require.NoError(t, err)

	q, err := doc.Compile(testSchema(t))
	require.NoError(t, err)
	assert.Equal(t, "FROM users WHERE age BETWEEN ? AND ?", q.SQL())
	assert.Equal(t, []value.Value{value.Int(18), value.Int(65)}, q.Values())
}

func TestParse_TimestampBecomesMillis(t *testing.T) {
	doc, err := Parse([]byte(`
collection: users
filter:
  condition: {property: joined, op: gte, value: 2024-01-01T00:00:00Z}
`))
	require.NoError(t, err)

	q, err := doc.Compile(testSchema(t))
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Int(1704067200000)}, q.Values())
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "", "empty query document"},
		{"missing collection", "filter:\n  and: []\n", "collection is required"},
		{"unknown top-level field", "collection: users\nlimit: 3\n", "field limit not found"},
		{"two keys in a node", "collection: users\nfilter:\n  and: []\n  or: []\n", "exactly one"},
		{"unknown node", "collection: users\nfilter:\n  xor: []\n", `unknown filter node "xor"`},
		{"scalar node", "collection: users\nfilter: age\n", "must be a mapping"},
		{"and not a list", "collection: users\nfilter:\n  and: {condition: {property: age, op: is_null}}\n", "expected a list"},
		{"unknown condition field", "collection: users\nfilter:\n  condition: {property: age, op: eq, vaule: 1}\n", `unknown condition field "vaule"`},
		{"condition without op", "collection: users\nfilter:\n  condition: {property: age}\n", "op is required"},
		{"sort without property", "collection: users\nsort:\n  - {direction: asc}\n", "sort[0]: property is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDocument_ResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown collection", "collection: orders\n", "orders"},
		{"unknown filter property", "collection: users\nfilter:\n  condition: {property: height, op: gt, value: 1}\n", "line 3"},
		{"unknown operator", "collection: users\nfilter:\n  condition: {property: age, op: near, value: 1}\n", `unknown operator "near"`},
		{"unknown sort property", "collection: users\nsort:\n  - {property: height}\n", "sort[0]"},
		{"bad direction", "collection: users\nsort:\n  - {property: age, direction: up}\n", "invalid sort direction"},
		{"unknown distinct property", "collection: users\ndistinct:\n  - {property: height}\n", "distinct[0]"},
		{"unsupported operand", "collection: users\nfilter:\n  condition: {property: age, op: eq, value: [1, 2]}\n", "value: unsupported scalar type"},
	}

	s := testSchema(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			_, err = doc.Builder(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDocument_CompileErrorsAreTyped(t *testing.T) {
	doc, err := Parse([]byte("collection: users\nfilter:\n  condition: {property: age, op: eq, value: \"x\"}\n"))
	require.NoError(t, err)

	_, err = doc.Compile(testSchema(t))
	assert.True(t, querysql.IsOperandError(err))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.yaml")
	require.NoError(t, os.WriteFile(path, []byte("collection: users\n"), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "users", doc.Collection)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read query file")
}

func TestNode_ProgrammaticTree(t *testing.T) {
	n := &Node{And: []*Node{
		{Condition: &Condition{Property: "age", Op: "lt", Value: 30}},
		{Not: &Node{Condition: &Condition{Property: "name", Op: "is_not_null"}}},
	}}

	f, err := resolveNode(mustCollection(t), n)
	require.NoError(t, err)
	assert.Equal(t, filter.And{Filters: []filter.Filter{
		filter.Condition{Property: 0, Op: filter.OpLt, Value: value.Int(30), CaseSensitive: true},
		filter.Not{Filter: filter.Condition{Property: 1, Op: filter.OpIsNotNull, CaseSensitive: true}},
	}}, f)

	_, err = resolveNode(mustCollection(t), &Node{})
	assert.ErrorContains(t, err, "exactly one")
}

func mustCollection(t *testing.T) *schema.Collection {
	t.Helper()
	c, err := testSchema(t).Lookup("users")
	require.NoError(t, err)
	return c
}
