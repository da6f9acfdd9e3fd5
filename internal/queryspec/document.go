package queryspec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is a parsed query document.
type Document struct {
	// Collection names the collection the query runs against.
	Collection string `yaml:"collection"`

	// Filter is the optional filter tree. Nil selects every row.
	Filter *Node `yaml:"filter,omitempty"`

	// Sort lists sort keys, primary key first.
	Sort []SortKey `yaml:"sort,omitempty"`

	// Distinct lists distinct keys.
	Distinct []DistinctKey `yaml:"distinct,omitempty"`
}

// SortKey is one sort entry of a document.
type SortKey struct {
	Property      string `yaml:"property"`
	Direction     string `yaml:"direction,omitempty"`
	CaseSensitive *bool  `yaml:"case_sensitive,omitempty"`
}

// DistinctKey is one distinct entry of a document.
type DistinctKey struct {
	Property      string `yaml:"property"`
	CaseSensitive *bool  `yaml:"case_sensitive,omitempty"`
}

// Load reads and parses a query document file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query file: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse parses a query document. Unknown fields are rejected.
func Parse(data []byte) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty query document")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	return &doc, nil
}

// Validate checks required fields. Property names are checked later,
// against a schema.
func (d *Document) Validate() error {
	if d.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	for i, k := range d.Sort {
		if k.Property == "" {
			return fmt.Errorf("sort[%d]: property is required", i)
		}
	}
	for i, k := range d.Distinct {
		if k.Property == "" {
			return fmt.Errorf("distinct[%d]: property is required", i)
		}
	}
	return nil
}

func caseSensitive(b *bool) bool {
	return b == nil || *b
}
