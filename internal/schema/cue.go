package schema

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// LoadError reports a malformed schema definition with its CUE position.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadDir loads every collection declared by the CUE package in dir.
func LoadDir(dir string) (*Schema, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("schema directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("schema path is not a directory: %s", dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, fmt.Errorf("scanning schema directory: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	return Compile(v)
}

// CompileString compiles CUE source text. Mostly useful in tests.
func CompileString(src string) (*Schema, error) {
	return Compile(cuecontext.New().CompileString(src))
}

// Compile extracts the `collection` struct of a CUE value into a Schema.
func Compile(v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	collectionsVal := v.LookupPath(cue.ParsePath("collection"))
	if !collectionsVal.Exists() {
		return nil, &LoadError{Field: "collection", Message: "no collections declared", Pos: v.Pos()}
	}

	iter, err := collectionsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var collections []*Collection
	for iter.Next() {
		if len(collections) > math.MaxUint16 {
			return nil, &LoadError{Field: "collection", Message: "too many collections", Pos: iter.Value().Pos()}
		}
		c, err := CompileCollection(uint16(len(collections)), iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}

	return New(collections...)
}

// CompileCollection parses one collection definition.
func CompileCollection(index uint16, name string, v cue.Value) (*Collection, error) {
	propsVal := v.LookupPath(cue.ParsePath("properties"))
	if !propsVal.Exists() {
		return nil, &LoadError{
			Field:   "collection." + name,
			Message: "properties is required",
			Pos:     v.Pos(),
		}
	}

	list, err := propsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var props []Property
	for list.Next() {
		p, err := parseProperty(name, list.Value())
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}

	c, err := NewCollection(index, name, props...)
	if err != nil {
		return nil, &LoadError{Field: "collection." + name, Message: err.Error(), Pos: v.Pos()}
	}
	return c, nil
}

func parseProperty(collection string, v cue.Value) (Property, error) {
	field := "collection." + collection + ".properties"

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return Property{}, &LoadError{Field: field, Message: "property name is required", Pos: v.Pos()}
	}
	name, err := nameVal.String()
	if err != nil {
		return Property{}, formatCUEError(err)
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return Property{}, &LoadError{Field: field + "." + name, Message: "property type is required", Pos: v.Pos()}
	}
	typeName, err := typeVal.String()
	if err != nil {
		return Property{}, formatCUEError(err)
	}
	typ, ok := ParseType(typeName)
	if !ok {
		return Property{}, &LoadError{
			Field:   field + "." + name,
			Message: fmt.Sprintf("unknown type %q", typeName),
			Pos:     typeVal.Pos(),
		}
	}

	return Field(name, typ), nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &LoadError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
