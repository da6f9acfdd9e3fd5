package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/qplan/internal/querysql"
	"github.com/roach88/qplan/internal/store"
	"github.com/roach88/qplan/internal/value"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Limit   int
	Offset  int
	Count   bool // also report the total row count
	Explain bool // report SQLite's query plan instead of rows
}

// ExecResult is the exec command's payload.
type ExecResult struct {
	SQL                     string      `json:"sql"`
	RequiresMaterialization bool        `json:"requires_materialization"`
	Rows                    []store.Row `json:"rows,omitempty"`
	Count                   *int64      `json:"count,omitempty"`
	Plan                    []string    `json:"plan,omitempty"`
}

// String renders the text form: one canonical JSON object per row.
func (r ExecResult) String() string {
	var b strings.Builder
	for _, step := range r.Plan {
		fmt.Fprintf(&b, "%s\n", step)
	}
	for _, row := range r.Rows {
		data, err := value.MarshalCanonical(map[string]value.Value(row))
		if err != nil {
			fmt.Fprintf(&b, "<%v>\n", err)
			continue
		}
		fmt.Fprintf(&b, "%s\n", data)
	}
	if r.Count != nil {
		fmt.Fprintf(&b, "count: %d\n", *r.Count)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <query.yaml>",
		Short: "Run a query document against a database",
		Long: `Compile a query document and run it against a SQLite database. Tables for
the schema's collections are created if missing.

Queries without sort or distinct keys stream rows with the page pushed into
SQL; sorted or grouped queries are read in full and paged in memory.

Examples:
  qplan exec query.yaml --schema ./schema --db app.db
  qplan exec query.yaml --schema ./schema --db app.db --limit 20 --offset 40 --count
  QPLAN_DB=app.db qplan exec query.yaml --schema ./schema --explain`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args[0], cmd)
		},
	}

	cmd.Flags().String(keySchema, "", "schema directory")
	cmd.Flags().String(keyDB, "", "SQLite database path")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum rows to return (0 = all)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "rows to skip")
	cmd.Flags().BoolVar(&opts.Count, "count", false, "also report the total count")
	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "print the query plan instead of rows")

	return cmd
}

func runExec(opts *ExecOptions, queryPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	formatter.TraceID = uuid.Must(uuid.NewV7()).String()
	logger := slog.Default().With("trace_id", formatter.TraceID)

	schemaDir, err := opts.requireSetting(cmd, keySchema)
	if err != nil {
		return err
	}
	dbPath, err := opts.requireSetting(cmd, keyDB)
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
	q, err := doc.Compile(sch)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeCompile, "compiling query", err)
	}

	st, err := store.Open(dbPath, sch)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "opening database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	result := ExecResult{SQL: q.SQL(), RequiresMaterialization: q.RequiresMaterialization()}
	logger.Debug("executing", "query", queryPath, "sql", q.SQL())

	if opts.Explain {
		result.Plan, err = st.Explain(ctx, q)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeExec, "explaining query", err)
		}
		return formatter.Success(result)
	}

	result.Rows, err = st.Find(ctx, q, querysql.Page{Offset: opts.Offset, Limit: opts.Limit})
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeExec, "executing query", err)
	}
	if opts.Count {
		n, err := st.Count(ctx, q)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeExec, "counting rows", err)
		}
		result.Count = &n
	}

	logger.Debug("executed", "rows", len(result.Rows))
	return formatter.Success(result)
}
