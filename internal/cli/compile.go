package cli

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/roach88/qplan/internal/querysql"
	"github.com/roach88/qplan/internal/value"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Limit  int
	Offset int
}

// CompileResult is the compile command's payload.
type CompileResult struct {
	Collection              string        `json:"collection"`
	SQL                     string        `json:"sql"`
	Select                  string        `json:"select"`
	Values                  []value.Value `json:"values"` // bound to Select's placeholders
	RequiresMaterialization bool          `json:"requires_materialization"`
	Warnings                []string      `json:"warnings,omitempty"`
}

// String renders the text form.
func (r CompileResult) String() string {
	var b strings.Builder
	fmt.Fprintln(&b, r.Select)
	fmt.Fprintf(&b, "values: %s\n", formatValues(r.Values))
	fmt.Fprintf(&b, "materialize: %t", r.RequiresMaterialization)
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "\n%s %s", warnMark, w)
	}
	return b.String()
}

// dumper prints filter trees in verbose mode.
var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query.yaml>",
		Short: "Compile a query document to SQL",
		Long: `Compile a query document against a schema and print the SQL text,
the bound values in placeholder order, and whether the result must be
materialized before paging.

Examples:
  qplan compile query.yaml --schema ./schema
  qplan compile query.yaml --schema ./schema --limit 10 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().String(keySchema, "", "schema directory")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "render LIMIT (0 = none)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "render OFFSET")

	return cmd
}

func runCompile(opts *CompileOptions, queryPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	schemaDir, err := opts.requireSetting(cmd, keySchema)
	if err != nil {
		return err
	}
	sch, err := loadSchema(formatter, schemaDir)
	if err != nil {
		return err
	}
	doc, err := loadQuery(formatter, queryPath)
	if err != nil {
		return err
	}

	b, err := doc.Builder(sch)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeCompile, "resolving query", err)
	}

	if opts.Verbose {
		if c, err := sch.Lookup(doc.Collection); err == nil {
			if f, err := doc.ResolveFilter(c); err == nil && f != nil {
				formatter.VerboseLog("Filter tree:\n%s", dumper.Sdump(f))
			}
		}
	}

	warnings := b.Warnings()
	q, err := b.Build()
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeCompile, "compiling query", err)
	}

	selectSQL, vals := q.SelectSQL(querysql.Page{Offset: opts.Offset, Limit: opts.Limit})
	return formatter.Success(CompileResult{
		Collection:              doc.Collection,
		SQL:                     q.SQL(),
		Select:                  selectSQL,
		Values:                  vals,
		RequiresMaterialization: q.RequiresMaterialization(),
		Warnings:                warnings,
	})
}

// formatValues renders bound values for text output.
func formatValues(vals []value.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = value.Format(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
