package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const booksYAML = `
- {title: "Dune", author: "Frank Herbert", year: 1965, price: 9.99, in_print: true, tags: [scifi]}
- {title: "Neuromancer", author: "William Gibson", year: 1984, in_print: true}
- {title: "Count Zero", author: "William Gibson", year: 1986, in_print: false}
- {title: "Snow Crash", author: "Neal Stephenson", year: 1992, in_print: true}
- {title: "100% Pure", author: "Anon", year: 2001, in_print: false}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// seededDB inserts booksYAML into a fresh database file and returns its path.
func seededDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "books.db")
	rows := writeFile(t, "books.yaml", booksYAML)

	out, err := execute(t, "insert", "books", rows, "--schema", schemaDir, "--db", db)
	require.NoError(t, err)
	require.Contains(t, out, "Inserted 5 row(s) into books")
	return db
}

// jsonData decodes the data field of a JSON CLI response.
func jsonData(t *testing.T, out string) map[string]any {
	t.Helper()
	var resp struct {
		Status  string         `json:"status"`
		Data    map[string]any `json:"data"`
		TraceID string         `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func titles(t *testing.T, data map[string]any) []string {
	t.Helper()
	rows, _ := data["rows"].([]any)
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.(map[string]any)["title"].(string))
	}
	return out
}

func TestCompileCommand_Text(t *testing.T) {
	out, err := execute(t, "compile", queryFile, "--schema", schemaDir)
	require.NoError(t, err)

	assert.Contains(t, out, "FROM books WHERE year >= ? AND title LIKE ? COLLATE NOCASE")
	assert.Contains(t, out, "ORDER BY year COLLATE BINARY DESC,title COLLATE BINARY")
	assert.Contains(t, out, `values: [1980, "%o%"]`)
	assert.Contains(t, out, "materialize: true")
}

func TestCompileCommand_JSONWithPage(t *testing.T) {
	out, err := execute(t, "--format", "json", "compile", queryFile, "--schema", schemaDir, "--limit", "10", "--offset", "5")
	require.NoError(t, err)

	data := jsonData(t, out)
	assert.Equal(t, "books", data["collection"])
	assert.NotContains(t, data["sql"], "LIMIT")
	assert.Contains(t, data["select"], "LIMIT ? OFFSET ?")
	assert.Equal(t, []any{float64(1980), "%o%", float64(10), float64(5)}, data["values"])
	assert.Equal(t, true, data["requires_materialization"])
}

func TestCompileCommand_UnknownProperty(t *testing.T) {
	query := writeFile(t, "bad.yaml", `
collection: books
filter:
  condition: {property: isbn, op: eq, value: "x"}
`)
	out, err := execute(t, "compile", query, "--schema", schemaDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E_COMPILE]")
	assert.Contains(t, out, "isbn")
}

func TestCompileCommand_MissingQuery(t *testing.T) {
	out, err := execute(t, "compile", "/nonexistent/query.yaml", "--schema", schemaDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E_QUERY]")
}

func TestCompileCommand_MissingSchema(t *testing.T) {
	out, err := execute(t, "compile", queryFile, "--schema", "/nonexistent/schema")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E_SCHEMA]")
}

func TestValidateCommand_SchemaOnly(t *testing.T) {
	out, err := execute(t, "validate", schemaDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema valid: 2 collection(s)")
	assert.Contains(t, out, "books (title string, author string, year int")
}

func TestValidateCommand_Queries(t *testing.T) {
	bad := writeFile(t, "bad.yaml", `
collection: shelves
`)
	out, err := execute(t, "validate", schemaDir, queryFile, bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 query document(s) invalid")
	assert.Contains(t, out, queryFile)
	assert.Contains(t, out, "shelves")
}

func TestValidateCommand_StrictWarnings(t *testing.T) {
	query := writeFile(t, "fold.yaml", `
collection: members
filter:
  condition: {property: name, op: eq, value: "Ölaf", case_sensitive: false}
`)
	out, err := execute(t, "validate", schemaDir, query)
	require.NoError(t, err)
	assert.Contains(t, out, "Ölaf")

	_, err = execute(t, "validate", schemaDir, query, "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestValidateCommand_JSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", schemaDir, queryFile)
	require.NoError(t, err)

	data := jsonData(t, out)
	collections := data["collections"].([]any)
	require.Len(t, collections, 2)
	assert.Equal(t, "books", collections[0].(map[string]any)["name"])

	queries := data["queries"].([]any)
	require.Len(t, queries, 1)
	assert.Equal(t, true, queries[0].(map[string]any)["valid"])
}

func TestInsertCommand_UnknownCollection(t *testing.T) {
	db := filepath.Join(t.TempDir(), "books.db")
	rows := writeFile(t, "rows.yaml", booksYAML)

	out, err := execute(t, "insert", "shelves", rows, "--schema", schemaDir, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E_STORE]")
}

func TestInsertCommand_MalformedRows(t *testing.T) {
	db := filepath.Join(t.TempDir(), "books.db")
	rows := writeFile(t, "rows.yaml", "title: not a list\n")

	_, err := execute(t, "insert", "books", rows, "--schema", schemaDir, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to parse rows")
}

func TestExecCommand_Rows(t *testing.T) {
	db := seededDB(t)

	out, err := execute(t, "--format", "json", "exec", queryFile, "--schema", schemaDir, "--db", db, "--count")
	require.NoError(t, err)

	data := jsonData(t, out)
	assert.Equal(t, []string{"Snow Crash", "Count Zero", "Neuromancer"}, titles(t, data))
	assert.Equal(t, float64(3), data["count"])
	assert.Equal(t, true, data["requires_materialization"])
}

func TestExecCommand_Page(t *testing.T) {
	db := seededDB(t)

	out, err := execute(t, "--format", "json", "exec", queryFile, "--schema", schemaDir, "--db", db,
		"--limit", "1", "--offset", "1", "--count")
	require.NoError(t, err)

	data := jsonData(t, out)
	assert.Equal(t, []string{"Count Zero"}, titles(t, data))
	assert.Equal(t, float64(3), data["count"], "count ignores the page")
}

func TestExecCommand_Text(t *testing.T) {
	db := seededDB(t)

	out, err := execute(t, "exec", queryFile, "--schema", schemaDir, "--db", db, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"title":"Snow Crash"`)
	assert.NotContains(t, out, "Neuromancer")
}

func TestExecCommand_TraceID(t *testing.T) {
	db := seededDB(t)

	out, err := execute(t, "--format", "json", "exec", queryFile, "--schema", schemaDir, "--db", db)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.TraceID, 36)
}

func TestExecCommand_Explain(t *testing.T) {
	db := seededDB(t)

	out, err := execute(t, "--format", "json", "exec", queryFile, "--schema", schemaDir, "--db", db, "--explain")
	require.NoError(t, err)

	data := jsonData(t, out)
	plan, ok := data["plan"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, plan)
	assert.Nil(t, data["rows"])
}

func TestExecCommand_DBFromEnvironment(t *testing.T) {
	db := seededDB(t)
	t.Setenv("QPLAN_DB", db)
	t.Setenv("QPLAN_SCHEMA", schemaDir)

	out, err := execute(t, "--format", "json", "exec", queryFile)
	require.NoError(t, err)
	assert.Len(t, titles(t, jsonData(t, out)), 3)
}

func TestExecCommand_MissingDB(t *testing.T) {
	_, err := execute(t, "exec", queryFile, "--schema", schemaDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--db is required")
}
