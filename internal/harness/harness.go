package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/roach88/qplan/internal/querysql"
	"github.com/roach88/qplan/internal/schema"
	"github.com/roach88/qplan/internal/store"
)

// Harness is the scenario execution engine.
type Harness struct {
	store  *store.Store
	schema *schema.Schema
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the schema and create an in-memory database
// 2. Insert seed rows
// 3. Compile, execute, and check each query step
// 4. Return result with pass/fail, per-step output, and errors
//
// Expectation mismatches are reported in the result. The returned error is
// reserved for scenarios that cannot run at all.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	sch, err := loadSchema(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	st, err := store.Open(":memory:", sch)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		schema: sch,
		logger: slog.Default().With("scenario", scenario.Name),
	}

	if err := h.seed(ctx, scenario.Seed); err != nil {
		return nil, fmt.Errorf("failed to seed: %w", err)
	}

	result := NewResult()
	for _, step := range scenario.Queries {
		h.runStep(ctx, step, result)
	}
	return result, nil
}

func loadSchema(scenario *Scenario) (*schema.Schema, error) {
	if scenario.SchemaSource != "" {
		return schema.CompileString(scenario.SchemaSource)
	}
	return schema.LoadDir(scenario.Schema)
}

// seed inserts rows collection by collection, in name order.
func (h *Harness) seed(ctx context.Context, seed map[string][]map[string]any) error {
	names := make([]string, 0, len(seed))
	for name := range seed {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.store.InsertMany(ctx, name, seed[name]); err != nil {
			return fmt.Errorf("collection %s: %w", name, err)
		}
	}
	return nil
}

// runStep compiles and executes one step, recording its output and any
// expectation mismatches.
func (h *Harness) runStep(ctx context.Context, step QueryStep, result *Result) {
	out := StepResult{Name: step.Name}
	defer func() { result.AddStep(out) }()

	fail := func(format string, args ...any) {
		result.AddError(fmt.Sprintf("%s: ", step.Name) + fmt.Sprintf(format, args...))
	}

	q, err := h.compile(step)
	if err != nil {
		out.Error = ErrorCode(err)
		if step.Expect.Error == "" {
			fail("unexpected error: %v", err)
		} else if out.Error != step.Expect.Error {
			fail("expected error %s, got %s (%v)", step.Expect.Error, out.Error, err)
		}
		return
	}
	if step.Expect.Error != "" {
		fail("expected error %s, query compiled to %q", step.Expect.Error, q.SQL())
		return
	}

	out.SQL = q.SQL()
	out.Values = q.Values()
	out.RequiresMaterialization = q.RequiresMaterialization()

	rows, err := h.store.Find(ctx, q, step.Page.Page())
	if err != nil {
		fail("execute: %v", err)
		return
	}
	out.Rows = rows

	count, err := h.store.Count(ctx, q)
	if err != nil {
		fail("count: %v", err)
		return
	}
	out.Count = count

	for _, msg := range checkExpect(out, step.Expect) {
		fail("%s", msg)
	}

	h.logger.Debug("query step completed",
		"step", step.Name,
		"rows", len(rows),
		"count", count,
	)
}

func (h *Harness) compile(step QueryStep) (*querysql.Query, error) {
	b, err := step.Query.Builder(h.schema)
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// ErrorCode classifies a compile or resolution error into the code
// scenarios expect.
func ErrorCode(err error) string {
	var ce *querysql.CompileError
	switch {
	case errors.As(err, &ce):
		return string(ce.Code)
	case errors.Is(err, schema.ErrUnknownProperty):
		return string(querysql.ErrCodeUnknownProperty)
	case errors.Is(err, schema.ErrUnknownCollection):
		return string(querysql.ErrCodeUnknownCollection)
	default:
		return "INVALID_QUERY"
	}
}
