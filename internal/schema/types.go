package schema

import "strings"

// Type is the declared storage type of a property.
type Type string

// Scalar types.
const (
	Bool     Type = "bool"
	Byte     Type = "byte"
	Int      Type = "int"
	Long     Type = "long"
	Float    Type = "float"
	Double   Type = "double"
	DateTime Type = "datetime"
	String   Type = "string"
	JSON     Type = "json"
	Object   Type = "object"
)

// List types.
const (
	BoolList     Type = "bool[]"
	ByteList     Type = "byte[]"
	IntList      Type = "int[]"
	LongList     Type = "long[]"
	FloatList    Type = "float[]"
	DoubleList   Type = "double[]"
	DateTimeList Type = "datetime[]"
	StringList   Type = "string[]"
	ObjectList   Type = "object[]"
)

var knownTypes = map[Type]bool{
	Bool: true, Byte: true, Int: true, Long: true, Float: true, Double: true,
	DateTime: true, String: true, JSON: true, Object: true,
	BoolList: true, ByteList: true, IntList: true, LongList: true, FloatList: true,
	DoubleList: true, DateTimeList: true, StringList: true, ObjectList: true,
}

// ParseType validates a type name.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	return t, knownTypes[t]
}

// IsList reports whether t holds a list of elements.
func (t Type) IsList() bool {
	return strings.HasSuffix(string(t), "[]")
}

// IsInteger reports whether t compares as a 64-bit integer.
func (t Type) IsInteger() bool {
	switch t {
	case Byte, Int, Long, DateTime:
		return true
	}
	return false
}

// IsFloat reports whether t compares as a double.
func (t Type) IsFloat() bool {
	return t == Float || t == Double
}

// IsText reports whether t is a string property, the only kind that takes
// a collation.
func (t Type) IsText() bool {
	return t == String
}

// IsScalar reports whether t can be compared with a single bound value.
func (t Type) IsScalar() bool {
	return t == Bool || t.IsInteger() || t.IsFloat() || t.IsText()
}

// Affinity returns the SQLite column affinity used to store t.
// JSON, embedded objects and lists are stored as JSON text.
func (t Type) Affinity() string {
	switch {
	case t == Bool || t.IsInteger():
		return "INTEGER"
	case t.IsFloat():
		return "REAL"
	default:
		return "TEXT"
	}
}
