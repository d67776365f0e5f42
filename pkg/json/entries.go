package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mscno/yamlconf/pkg/format"
	"github.com/mscno/yamlconf/pkg/yaml"
)

// ReadEntries decodes the top-level JSON object into ordered entries. Strings
// are taken verbatim, numbers as their literal text and true, false and null
// as keywords. An array of scalars becomes a list literal with quoted strings.
func (f *JsonFormatter) ReadEntries(data []byte) ([]format.Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid json: %w", format.ErrEmptyDocument)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid json: %v", err)
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("invalid json: top level must be an object")
	}

	var entries []format.Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid json: %v", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("invalid json: unexpected token %v", tok)
		}

		if format.IsComment(key) {
			var skipped json.RawMessage
			if err := dec.Decode(&skipped); err != nil {
				return nil, fmt.Errorf("invalid json: %v", err)
			}
			continue
		}

		value, err := readValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, key)
		}
		entries = append(entries, format.Entry{Key: key, Value: value})
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid json: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid json: trailing data after top level object")
	}

	if err := format.Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func readValue(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("invalid json: %v", err)
	}
	if tok == json.Delim('[') {
		var items []string
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return "", fmt.Errorf("invalid json: %v", err)
			}
			if s, ok := tok.(string); ok {
				items = append(items, yaml.Quote(s))
				continue
			}
			item, err := scalarText(tok)
			if err != nil {
				return "", err
			}
			items = append(items, item)
		}
		if _, err := dec.Token(); err != nil {
			return "", fmt.Errorf("invalid json: %v", err)
		}
		return format.ListLiteral(items), nil
	}
	return scalarText(tok)
}

func scalarText(tok json.Token) (string, error) {
	switch v := tok.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case nil:
		return "null", nil
	default:
		return "", format.ErrNotScalar
	}
}
