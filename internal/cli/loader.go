package cli

import (
	"fmt"

	"github.com/roach88/qplan/internal/queryspec"
	"github.com/roach88/qplan/internal/schema"
)

// loadSchema loads a schema directory, reporting failures through f.
func loadSchema(f *OutputFormatter, dir string) (*schema.Schema, error) {
	sch, err := schema.LoadDir(dir)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeSchema, fmt.Sprintf("loading schema %s", dir), err)
	}
	f.VerboseLog("Loaded %d collection(s) from %s", len(sch.Collections()), dir)
	return sch, nil
}

// loadQuery loads a query document, reporting failures through f.
func loadQuery(f *OutputFormatter, path string) (*queryspec.Document, error) {
	doc, err := queryspec.Load(path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeQuery, "loading query", err)
	}
	return doc, nil
}
