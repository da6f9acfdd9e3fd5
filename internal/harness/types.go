package harness

import (
	"github.com/roach88/qplan/internal/store"
	"github.com/roach88/qplan/internal/value"
)

// StepResult records what one query step produced.
type StepResult struct {
	Name                    string        `json:"name"`
	SQL                     string        `json:"sql,omitempty"`
	Values                  []value.Value `json:"values,omitempty"`
	RequiresMaterialization bool          `json:"requires_materialization"`
	Rows                    []store.Row   `json:"rows,omitempty"`
	Count                   int64         `json:"count"`
	Error                   string        `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses match.
	Pass bool `json:"pass"`

	// Steps holds one entry per query step, in scenario order.
	Steps []StepResult `json:"steps"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step outcome.
func (r *Result) AddStep(step StepResult) {
	r.Steps = append(r.Steps, step)
}
