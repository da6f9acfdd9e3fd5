package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/qplan/internal/queryspec"
	"github.com/roach88/qplan/internal/querysql"
)

// Scenario defines a query conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is a directory of CUE files declaring the collections.
	// Relative paths are resolved against the scenario file's directory.
	Schema string `yaml:"schema,omitempty"`

	// SchemaSource is inline CUE, used instead of Schema.
	SchemaSource string `yaml:"schema_source,omitempty"`

	// Seed lists rows to insert before any query runs, keyed by collection.
	Seed map[string][]map[string]any `yaml:"seed,omitempty"`

	// Queries run in order against the seeded database.
	Queries []QueryStep `yaml:"queries"`
}

// QueryStep compiles and executes one query document.
type QueryStep struct {
	// Name identifies the step in results and error messages.
	Name string `yaml:"name"`

	// Query is the query document.
	Query queryspec.Document `yaml:"query"`

	// Page restricts the rows returned by Find.
	Page *PageSpec `yaml:"page,omitempty"`

	// Expect lists the checks for this step. Absent fields are not checked.
	Expect Expect `yaml:"expect"`
}

// PageSpec is the YAML form of querysql.Page.
type PageSpec struct {
	Offset int `yaml:"offset"`
	Limit  int `yaml:"limit"`
}

// Page converts p, treating nil as no paging.
func (p *PageSpec) Page() querysql.Page {
	if p == nil {
		return querysql.Page{}
	}
	return querysql.Page{Offset: p.Offset, Limit: p.Limit}
}

// Expect specifies the expected outcome of a query step.
type Expect struct {
	// SQL is the exact compiled text, starting at FROM.
	SQL *string `yaml:"sql,omitempty"`

	// Values are the bound values in placeholder order.
	Values []any `yaml:"values,omitempty"`

	// Materialize is the expected materialization flag.
	Materialize *bool `yaml:"materialize,omitempty"`

	// Rows are the expected rows in result order. Each row is a subset
	// match: only listed properties are compared.
	Rows []map[string]any `yaml:"rows,omitempty"`

	// Count is the expected Count result.
	Count *int64 `yaml:"count,omitempty"`

	// Error is the expected compile error code (e.g. UNKNOWN_PROPERTY).
	// When set, the step is expected to fail and nothing is executed.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the schema path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) && basePath != "" {
		scenario.Schema = filepath.Join(basePath, scenario.Schema)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "querys:" vs "queries:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	switch {
	case s.Schema == "" && s.SchemaSource == "":
		return fmt.Errorf("one of schema or schema_source is required")
	case s.Schema != "" && s.SchemaSource != "":
		return fmt.Errorf("schema and schema_source are mutually exclusive")
	}

	if s.Schema != "" {
		if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
			return fmt.Errorf("schema directory not found: %s", s.Schema)
		}
	}

	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Queries))
	for i, q := range s.Queries {
		if q.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if seen[q.Name] {
			return fmt.Errorf("queries[%d]: duplicate name %q", i, q.Name)
		}
		seen[q.Name] = true
		if err := q.Query.Validate(); err != nil {
			return fmt.Errorf("queries[%d]: query: %w", i, err)
		}
		if q.Expect.Error != "" && (q.Expect.Rows != nil || q.Expect.Count != nil) {
			return fmt.Errorf("queries[%d]: expect.error excludes rows and count", i)
		}
	}

	return nil
}
