package yaml

import (
	"fmt"

	"github.com/mscno/yamlconf/pkg/format"
	"gopkg.in/yaml.v3"
)

// ReadEntries reads the top-level mapping of a YAML document as ordered
// entries. Scalar values are taken as their literal text and nulls as null.
// A sequence of scalars becomes a list literal in which string items are
// quoted. Keys starting with an underscore are skipped.
//
// Anchors and aliases are rejected: a flat configuration file has no use for
// them and an alias value cannot be carried as text.
func (f *Formatter) ReadEntries(data []byte) ([]format.Entry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid yaml: %v", err)
	}

	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, fmt.Errorf("invalid yaml: %w", format.ErrEmptyDocument)
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("invalid yaml: top level must be a mapping, got %v", doc.Kind)
	}

	var entries []format.Entry
	for i := 0; i < len(doc.Content); i += 2 {
		keyNode := doc.Content[i]
		valueNode := doc.Content[i+1]

		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("invalid yaml: key at line %d is not a scalar", keyNode.Line)
		}
		if format.IsComment(keyNode.Value) {
			continue
		}

		value, err := nodeText(valueNode)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, keyNode.Value)
		}
		entries = append(entries, format.Entry{Key: keyNode.Value, Value: value})
	}

	if err := format.Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func nodeText(node *yaml.Node) (string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return scalarText(node), nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, child := range node.Content {
			if child.Kind != yaml.ScalarNode {
				return "", format.ErrNotScalar
			}
			if child.ShortTag() == "!!str" {
				items = append(items, Quote(child.Value))
				continue
			}
			items = append(items, scalarText(child))
		}
		return format.ListLiteral(items), nil
	case yaml.AliasNode:
		return "", fmt.Errorf("invalid yaml: anchors and aliases are not supported")
	default:
		return "", format.ErrNotScalar
	}
}

// scalarText is the literal text of a scalar. Nulls ("", "~") are spelled
// null so they stay null once rendered.
func scalarText(node *yaml.Node) string {
	if node.ShortTag() == "!!null" {
		return "null"
	}
	return node.Value
}
