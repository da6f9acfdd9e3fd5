package schema

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownProperty is returned when a property index or name has no
	// entry in the collection.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrUnknownCollection is returned when a collection index or name has
	// no entry in the schema.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrInvalidIdentifier is returned for names that cannot appear unquoted
	// in SQL text.
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

// Property is a single named, typed column of a collection.
type Property struct {
	Index uint16 `json:"index"`
	Name  string `json:"name"`
	Type  Type   `json:"type"`
}

// Field declares a property; its Index is assigned by NewCollection.
func Field(name string, typ Type) Property {
	return Property{Name: name, Type: typ}
}

// Collection is the read-only schema of one collection.
type Collection struct {
	index      uint16
	name       string
	properties []Property
	byName     map[string]uint16
}

// NewCollection validates and builds a collection. Property indexes are
// assigned by position, overriding any Index set on the arguments.
func NewCollection(index uint16, name string, props ...Property) (*Collection, error) {
	if err := ValidateIdentifier(name); err != nil {
		return nil, fmt.Errorf("collection name: %w", err)
	}
	if len(props) > math.MaxUint16+1 {
		return nil, fmt.Errorf("collection %s: too many properties (%d)", name, len(props))
	}

	c := &Collection{
		index:      index,
		name:       name,
		properties: make([]Property, len(props)),
		byName:     make(map[string]uint16, len(props)),
	}

	for i, p := range props {
		if err := ValidateIdentifier(p.Name); err != nil {
			return nil, fmt.Errorf("collection %s: property %d: %w", name, i, err)
		}
		if _, ok := knownTypes[p.Type]; !ok {
			return nil, fmt.Errorf("collection %s: property %s: unknown type %q", name, p.Name, p.Type)
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("collection %s: duplicate property %s", name, p.Name)
		}
		p.Index = uint16(i)
		c.properties[i] = p
		c.byName[p.Name] = p.Index
	}

	return c, nil
}

// Index returns the collection's position in its schema.
func (c *Collection) Index() uint16 {
	return c.index
}

// Name returns the validated table name.
func (c *Collection) Name() string {
	return c.name
}

// Len returns the number of properties.
func (c *Collection) Len() int {
	return len(c.properties)
}

// Properties returns a copy of the properties in index order.
func (c *Collection) Properties() []Property {
	out := make([]Property, len(c.properties))
	copy(out, c.properties)
	return out
}

// Property resolves a property by index.
func (c *Collection) Property(index uint16) (Property, error) {
	if int(index) >= len(c.properties) {
		return Property{}, fmt.Errorf("%w: index %d in collection %s", ErrUnknownProperty, index, c.name)
	}
	return c.properties[index], nil
}

// PropertyName resolves the SQL name of a property by index.
func (c *Collection) PropertyName(index uint16) (string, error) {
	p, err := c.Property(index)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}

// PropertyByName resolves a property by name.
func (c *Collection) PropertyByName(name string) (Property, error) {
	idx, ok := c.byName[name]
	if !ok {
		return Property{}, fmt.Errorf("%w: %q in collection %s", ErrUnknownProperty, name, c.name)
	}
	return c.properties[idx], nil
}

// Schema is an ordered set of collections.
type Schema struct {
	collections []*Collection
	byName      map[string]uint16
}

// New builds a schema. Each collection's Index must equal its position.
func New(collections ...*Collection) (*Schema, error) {
	s := &Schema{
		collections: make([]*Collection, len(collections)),
		byName:      make(map[string]uint16, len(collections)),
	}
	for i, c := range collections {
		if c == nil {
			return nil, fmt.Errorf("collection %d is nil", i)
		}
		if int(c.index) != i {
			return nil, fmt.Errorf("collection %s has index %d, expected %d", c.name, c.index, i)
		}
		if _, dup := s.byName[c.name]; dup {
			return nil, fmt.Errorf("duplicate collection %s", c.name)
		}
		s.collections[i] = c
		s.byName[c.name] = c.index
	}
	return s, nil
}

// Collections returns the collections in index order.
func (s *Schema) Collections() []*Collection {
	out := make([]*Collection, len(s.collections))
	copy(out, s.collections)
	return out
}

// Collection resolves a collection by index.
func (s *Schema) Collection(index uint16) (*Collection, error) {
	if int(index) >= len(s.collections) {
		return nil, fmt.Errorf("%w: index %d", ErrUnknownCollection, index)
	}
	return s.collections[index], nil
}

// Lookup resolves a collection by name.
func (s *Schema) Lookup(name string) (*Collection, error) {
	idx, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return s.collections[idx], nil
}
