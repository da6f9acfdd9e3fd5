package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qplan/internal/queryspec"
	"github.com/roach88/qplan/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // treat portability warnings as failures
}

// CollectionSummary describes one schema collection.
type CollectionSummary struct {
	Name       string   `json:"name"`
	Index      uint16   `json:"index"`
	Properties []string `json:"properties"`
}

// QueryCheck is the validation outcome of one query document.
type QueryCheck struct {
	Path     string   `json:"path"`
	Valid    bool     `json:"valid"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ValidationResult is the validate command's payload.
type ValidationResult struct {
	Collections []CollectionSummary `json:"collections"`
	Queries     []QueryCheck        `json:"queries,omitempty"`
}

// String renders the text form.
func (r ValidationResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Schema valid: %d collection(s)", passMark, len(r.Collections))
	for _, c := range r.Collections {
		fmt.Fprintf(&b, "\n  %s (%s)", c.Name, strings.Join(c.Properties, ", "))
	}
	for _, q := range r.Queries {
		mark := passMark
		if !q.Valid {
			mark = failMark
		}
		fmt.Fprintf(&b, "\n%s %s", mark, q.Path)
		if q.Error != "" {
			fmt.Fprintf(&b, "\n  %s", q.Error)
		}
		for _, w := range q.Warnings {
			fmt.Fprintf(&b, "\n  %s %s", warnMark, w)
		}
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <schema-dir> [query.yaml...]",
		Short: "Validate a schema and query documents",
		Long: `Load a CUE schema and check that each query document compiles against it.
Case-insensitive matches that SQLite cannot fold (non-ASCII letters) and
distinct without sort are reported as warnings.

Exit codes:
  0 - Schema and all queries valid
  1 - One or more queries invalid (or warnings with --strict)
  2 - Command error (schema missing or invalid)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail on warnings")

	return cmd
}

func runValidate(opts *ValidateOptions, schemaDir string, queryPaths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	sch, err := loadSchema(formatter, schemaDir)
	if err != nil {
		return err
	}

	result := ValidationResult{Collections: summarize(sch)}
	failed := 0
	for _, path := range queryPaths {
		check := checkQuery(sch, path)
		if !check.Valid || (opts.Strict && len(check.Warnings) > 0) {
			check.Valid = false
			failed++
		}
		result.Queries = append(result.Queries, check)
	}

	if err := formatter.Success(result); err != nil {
		return err
	}
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d query document(s) invalid", failed))
	}
	return nil
}

func summarize(sch *schema.Schema) []CollectionSummary {
	collections := sch.Collections()
	out := make([]CollectionSummary, len(collections))
	for i, c := range collections {
		props := c.Properties()
		names := make([]string, len(props))
		for j, p := range props {
			names[j] = fmt.Sprintf("%s %s", p.Name, p.Type)
		}
		out[i] = CollectionSummary{Name: c.Name(), Index: c.Index(), Properties: names}
	}
	return out
}

func checkQuery(sch *schema.Schema, path string) QueryCheck {
	check := QueryCheck{Path: path}

	doc, err := queryspec.Load(path)
	if err != nil {
		check.Error = err.Error()
		return check
	}
	b, err := doc.Builder(sch)
	if err != nil {
		check.Error = err.Error()
		return check
	}
	check.Warnings = b.Warnings()
	if _, err := b.Build(); err != nil {
		check.Error = err.Error()
		return check
	}

	check.Valid = true
	return check
}
