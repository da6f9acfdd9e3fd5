package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/qplan/internal/store"
)

// InsertResult is the insert command's payload.
type InsertResult struct {
	Collection string `json:"collection"`
	Inserted   int    `json:"inserted"`
}

// String renders the text form.
func (r InsertResult) String() string {
	return fmt.Sprintf("%s Inserted %d row(s) into %s", passMark, r.Inserted, r.Collection)
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert <collection> <rows.yaml>",
		Short: "Insert rows into a collection",
		Long: `Insert a YAML (or JSON) list of rows into a collection in one transaction.
Keys are property names; omitted properties are stored as NULL.

Example:
  qplan insert books books.yaml --schema ./schema --db app.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(rootOpts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().String(keySchema, "", "schema directory")
	cmd.Flags().String(keyDB, "", "SQLite database path")

	return cmd
}

func runInsert(opts *RootOptions, collection, rowsPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	schemaDir, err := opts.requireSetting(cmd, keySchema)
	if err != nil {
		return err
	}
	dbPath, err := opts.requireSetting(cmd, keyDB)
	if err != nil {
		return err
	}

	rows, err := readRows(rowsPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeQuery, "reading rows", err)
	}

	sch, err := loadSchema(formatter, schemaDir)
	if err != nil {
		return err
	}
	st, err := store.Open(dbPath, sch)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, "opening database", err)
	}
	defer st.Close()

	if err := st.InsertMany(cmd.Context(), collection, rows); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, "inserting rows", err)
	}
	return formatter.Success(InsertResult{Collection: collection, Inserted: len(rows)})
}

func readRows(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to parse rows: %w", err)
	}
	return rows, nil
}
