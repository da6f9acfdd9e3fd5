package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/qplan/internal/store"
	"github.com/roach88/qplan/internal/value"
)

// AssertionError describes one failed expectation.
type AssertionError struct {
	Field    string // Expectation that failed, e.g. "rows[2].name"
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// checkExpect compares a step's output against its expectations and
// returns one message per mismatch.
func checkExpect(out StepResult, expect Expect) []string {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if expect.SQL != nil && *expect.SQL != out.SQL {
		add(&AssertionError{Field: "sql", Expected: fmt.Sprintf("%q", *expect.SQL), Actual: fmt.Sprintf("%q", out.SQL)})
	}
	if expect.Values != nil {
		add(assertValues(expect.Values, out.Values))
	}
	if expect.Materialize != nil && *expect.Materialize != out.RequiresMaterialization {
		add(&AssertionError{
			Field:    "materialize",
			Expected: fmt.Sprint(*expect.Materialize),
			Actual:   fmt.Sprint(out.RequiresMaterialization),
		})
	}
	if expect.Rows != nil {
		for _, err := range assertRows(expect.Rows, out.Rows) {
			add(err)
		}
	}
	if expect.Count != nil && *expect.Count != out.Count {
		add(&AssertionError{Field: "count", Expected: fmt.Sprint(*expect.Count), Actual: fmt.Sprint(out.Count)})
	}
	return errs
}

func assertValues(expected []any, actual []value.Value) error {
	want := make([]string, len(expected))
	for i, e := range expected {
		v, err := value.FromAny(e)
		if err != nil {
			return &AssertionError{Field: fmt.Sprintf("values[%d]", i), Expected: fmt.Sprint(e), Actual: err.Error()}
		}
		want[i] = value.Format(v)
	}
	got := make([]string, len(actual))
	for i, v := range actual {
		got[i] = value.Format(v)
	}

	if strings.Join(want, ", ") != strings.Join(got, ", ") {
		return &AssertionError{
			Field:    "values",
			Expected: "[" + strings.Join(want, ", ") + "]",
			Actual:   "[" + strings.Join(got, ", ") + "]",
		}
	}
	return nil
}

// assertRows checks the row count and then each row in order. Each
// expected row is a subset match against the actual row.
func assertRows(expected []map[string]any, actual []store.Row) []error {
	if len(expected) != len(actual) {
		return []error{&AssertionError{
			Field:    "rows",
			Expected: fmt.Sprintf("%d rows", len(expected)),
			Actual:   fmt.Sprintf("%d rows", len(actual)),
		}}
	}

	var errs []error
	for i, want := range expected {
		keys := make([]string, 0, len(want))
		for k := range want {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			field := fmt.Sprintf("rows[%d].%s", i, k)
			got, ok := actual[i][k]
			if !ok {
				errs = append(errs, &AssertionError{Field: field, Expected: fmt.Sprint(want[k]), Actual: "no such property"})
				continue
			}
			if !matchValue(want[k], got) {
				errs = append(errs, &AssertionError{Field: field, Expected: fmt.Sprint(want[k]), Actual: value.Format(got)})
			}
		}
	}
	return errs
}

// matchValue compares a YAML-decoded expectation with a stored value.
// Integers and floats compare numerically.
func matchValue(expected any, actual value.Value) bool {
	want, err := value.FromAny(expected)
	if err != nil {
		return false
	}
	if want == actual {
		return true
	}

	switch w := want.(type) {
	case value.Int:
		f, ok := actual.(value.Float)
		return ok && float64(w) == float64(f)
	case value.Float:
		i, ok := actual.(value.Int)
		return ok && float64(w) == float64(i)
	}
	return false
}
