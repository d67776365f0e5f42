package json

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/mscno/yamlconf/pkg/format"
)

func TestReadEntries(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []format.Entry
		wantErr string
	}{
		{
			name: "document order",
			in:   `{"nimbus.host": "nimbus1", "nimbus.thrift.port": 6627, "topology.debug": false}`,
			want: []format.Entry{
				{Key: "nimbus.host", Value: "nimbus1"},
				{Key: "nimbus.thrift.port", Value: "6627"},
				{Key: "topology.debug", Value: "false"},
			},
		},
		{
			name: "numbers keep their literal text",
			in:   `{"a": 1.50, "b": 1e3, "c": -0}`,
			want: []format.Entry{{Key: "a", Value: "1.50"}, {Key: "b", Value: "1e3"}, {Key: "c", Value: "-0"}},
		},
		{
			name: "null",
			in:   `{"a": null}`,
			want: []format.Entry{{Key: "a", Value: "null"}},
		},
		{
			name: "array of scalars",
			in:   `{"servers": ["zk1", "it's"], "ports": [6700, 6701], "flags": [true, null]}`,
			want: []format.Entry{
				{Key: "servers", Value: "['zk1','it''s']"},
				{Key: "ports", Value: "[6700,6701]"},
				{Key: "flags", Value: "[true,null]"},
			},
		},
		{
			name: "comment keys skipped with nested values",
			in:   `{"_comment": {"nested": [1, {"x": 2}]}, "a": "b"}`,
			want: []format.Entry{{Key: "a", Value: "b"}},
		},
		{
			name: "empty object",
			in:   `{}`,
			want: nil,
		},
		{
			name:    "nested object",
			in:      `{"a": {"b": "c"}}`,
			wantErr: "not a scalar",
		},
		{
			name:    "nested array",
			in:      `{"a": [[1]]}`,
			wantErr: "not a scalar",
		},
		{
			name:    "top level array",
			in:      `["a"]`,
			wantErr: "top level must be an object",
		},
		{
			name:    "invalid json",
			in:      `{"a": "b"]`,
			wantErr: "invalid json",
		},
		{
			name:    "trailing data",
			in:      `{"a": "b"} {"c": "d"}`,
			wantErr: "trailing data",
		},
		{
			name:    "duplicate keys",
			in:      `{"a": "b", "a": "c"}`,
			wantErr: "duplicated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &JsonFormatter{}
			got, err := f.ReadEntries([]byte(tt.in))
			if tt.wantErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadEntriesEmptyDocument(t *testing.T) {
	f := &JsonFormatter{}
	_, err := f.ReadEntries([]byte("  "))
	if !errors.Is(err, format.ErrEmptyDocument) {
		t.Errorf("expected empty document error, got %v", err)
	}
	if err != nil && !strings.HasPrefix(err.Error(), "invalid json") {
		t.Errorf("unexpected error text: %v", err)
	}
}
