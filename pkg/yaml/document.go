package yaml

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/mscno/yamlconf/pkg/format"
	"gopkg.in/yaml.v3"
)

// Format renders entries as "key: value" lines with every value passed
// through Escape. Keys are written as given.
func (f *Formatter) Format(entries []format.Entry) ([]byte, error) {
	if err := format.Validate(entries); err != nil {
		return nil, err
	}

	if f.SortKeys {
		sorted := make([]format.Entry, len(entries))
		copy(sorted, entries)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Key < sorted[j].Key
		})
		entries = sorted
	}

	var buf bytes.Buffer
	if f.Header != "" {
		for _, line := range strings.Split(strings.TrimRight(f.Header, "\n"), "\n") {
			if line == "" {
				buf.WriteString("#\n")
				continue
			}
			buf.WriteString("# " + line + "\n")
		}
	}
	for _, e := range entries {
		buf.WriteString(e.Key)
		buf.WriteString(": ")
		buf.WriteString(Escape(e.Value))
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Verify parses a rendered document and checks that it is a single flat
// mapping carrying exactly the given keys, in order.
func (f *Formatter) Verify(doc []byte, entries []format.Entry) error {
	var root yaml.Node
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return fmt.Errorf("invalid yaml: %v", err)
	}

	// A document holding only comments decodes to an empty node.
	if root.Kind == 0 || len(root.Content) == 0 {
		if len(entries) == 0 {
			return nil
		}
		return fmt.Errorf("invalid yaml: %w, want %d keys", format.ErrEmptyDocument, len(entries))
	}

	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return fmt.Errorf("invalid yaml: top level must be a mapping, got %v", m.Kind)
	}

	want := format.Keys(entries)
	if f.SortKeys {
		sort.Strings(want)
	}

	var got []string
	for i := 0; i < len(m.Content); i += 2 {
		keyNode := m.Content[i]
		valueNode := m.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("invalid yaml: key at line %d is not a scalar", keyNode.Line)
		}
		switch valueNode.Kind {
		case yaml.ScalarNode, yaml.SequenceNode:
		default:
			return fmt.Errorf("invalid yaml: value of %q at line %d is not a scalar or list", keyNode.Value, valueNode.Line)
		}
		got = append(got, keyNode.Value)
	}

	if len(got) != len(want) {
		return fmt.Errorf("invalid yaml: parsed %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("invalid yaml: key %d parsed as %q, want %q", i, got[i], want[i])
		}
	}
	return nil
}
