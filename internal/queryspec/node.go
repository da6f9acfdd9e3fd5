package queryspec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Node is one filter node of a document. Exactly one field is set.
type Node struct {
	And       []*Node
	Or        []*Node
	Not       *Node
	Condition *Condition

	line int
}

// Condition is a leaf predicate of a document.
type Condition struct {
	Property      string `yaml:"property"`
	Op            string `yaml:"op"`
	Value         any    `yaml:"value,omitempty"`
	Upper         any    `yaml:"upper,omitempty"`
	CaseSensitive *bool  `yaml:"case_sensitive,omitempty"`
}

// Node kinds.
const (
	kindAnd       = "and"
	kindOr        = "or"
	kindNot       = "not"
	kindCondition = "condition"
)

// UnmarshalYAML implements yaml.Unmarshaler. It keeps "and: []" distinct
// from an absent key.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: filter node must be a mapping", value.Line)
	}
	if len(value.Content) != 2 {
		return fmt.Errorf("line %d: filter node must have exactly one of and, or, not, condition", value.Line)
	}

	key, body := value.Content[0], value.Content[1]
	n.line = key.Line

	switch key.Value {
	case kindAnd:
		return decodeChildren(body, &n.And)
	case kindOr:
		return decodeChildren(body, &n.Or)
	case kindNot:
		n.Not = &Node{}
		return body.Decode(n.Not)
	case kindCondition:
		var c Condition
		if err := decodeStrict(body, &c); err != nil {
			return err
		}
		n.Condition = &c
		return nil
	default:
		return fmt.Errorf("line %d: unknown filter node %q (want and, or, not, condition)", key.Line, key.Value)
	}
}

func decodeChildren(body *yaml.Node, dst *[]*Node) error {
	if body.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected a list of filter nodes", body.Line)
	}
	children := make([]*Node, 0, len(body.Content))
	for _, item := range body.Content {
		child := &Node{}
		if err := item.Decode(child); err != nil {
			return err
		}
		children = append(children, child)
	}
	*dst = children
	return nil
}

// decodeStrict decodes a mapping and rejects unknown keys. KnownFields on
// the outer decoder does not reach custom unmarshalers.
func decodeStrict(body *yaml.Node, c *Condition) error {
	if body.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: condition must be a mapping", body.Line)
	}
	for i := 0; i < len(body.Content); i += 2 {
		switch k := body.Content[i]; k.Value {
		case "property", "op", "value", "upper", "case_sensitive":
		default:
			return fmt.Errorf("line %d: unknown condition field %q", k.Line, k.Value)
		}
	}
	if err := body.Decode(c); err != nil {
		return err
	}
	if c.Property == "" {
		return fmt.Errorf("line %d: condition property is required", body.Line)
	}
	if c.Op == "" {
		return fmt.Errorf("line %d: condition op is required", body.Line)
	}
	return nil
}
