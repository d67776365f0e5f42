package toml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mscno/yamlconf/pkg/format"
	"github.com/mscno/yamlconf/pkg/yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// ReadEntries walks a TOML document in source order and returns one entry per
// key/value pair. Dotted keys and table headers are joined with dots. Strings
// are taken verbatim; integers are normalized to base 10; other scalars keep
// their source text. An array of scalars becomes a list literal.
//
// A key whose last segment starts with an underscore is skipped, and array
// tables are rejected since they cannot be flattened.
func (f *Formatter) ReadEntries(data []byte) ([]format.Entry, error) {
	// Full decode first so that semantic errors (redefined keys and tables)
	// are reported the way go-toml reports them.
	var doc map[string]interface{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid toml: %v", err)
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("invalid toml: %w", format.ErrEmptyDocument)
	}

	var p unstable.Parser
	p.Reset(data)

	var table []string
	var entries []format.Entry

	for p.NextExpression() {
		expr := p.Expression()
		if expr == nil {
			continue
		}

		switch expr.Kind { //nolint:exhaustive // Comments and whitespace are not expressions here
		case unstable.Table:
			table = keyParts(expr)

		case unstable.ArrayTable:
			return nil, fmt.Errorf("%w: [[%s]]", format.ErrNotScalar, strings.Join(keyParts(expr), "."))

		case unstable.KeyValue:
			parts := append(append([]string{}, table...), keyParts(expr)...)
			key := strings.Join(parts, ".")
			if format.IsComment(parts[len(parts)-1]) {
				continue
			}

			valueNode := expr.Value()
			if valueNode == nil {
				continue
			}
			value, err := valueText(valueNode)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", err, key)
			}
			entries = append(entries, format.Entry{Key: key, Value: value})
		}
	}

	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("invalid toml: %v", err)
	}

	if err := format.Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func keyParts(expr *unstable.Node) []string {
	var parts []string
	for it := expr.Key(); it.Next(); {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

func valueText(node *unstable.Node) (string, error) {
	switch node.Kind { //nolint:exhaustive // Remaining kinds are scalars handled by default
	case unstable.String:
		return string(node.Data), nil
	case unstable.Integer:
		return normalizeInteger(string(node.Data))
	case unstable.Float:
		return strings.ReplaceAll(string(node.Data), "_", ""), nil
	case unstable.Array:
		var items []string
		for it := node.Children(); it.Next(); {
			child := it.Node()
			if child.Kind == unstable.String {
				items = append(items, yaml.Quote(string(child.Data)))
				continue
			}
			if child.Kind == unstable.Array || child.Kind == unstable.InlineTable {
				return "", format.ErrNotScalar
			}
			item, err := valueText(child)
			if err != nil {
				return "", err
			}
			items = append(items, item)
		}
		return format.ListLiteral(items), nil
	case unstable.InlineTable:
		return "", format.ErrNotScalar
	default:
		// booleans, dates and times
		return string(node.Data), nil
	}
}

// normalizeInteger rewrites TOML integers (1_000, 0x1F, 0o17, 0b11) in base 10.
func normalizeInteger(raw string) (string, error) {
	n, err := strconv.ParseInt(raw, 0, 64)
	if err != nil {
		return "", fmt.Errorf("invalid toml integer %q: %v", raw, err)
	}
	return strconv.FormatInt(n, 10), nil
}
