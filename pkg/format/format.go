package format

import (
	"errors"
	"fmt"
	"strings"
)

// CommentPrefix marks keys that are carried in a source file for humans only
// and never rendered.
const CommentPrefix = "_"

// Entry is a single configuration key and its raw text value.
type Entry struct {
	Key   string
	Value string
}

// SourceHandler reads the ordered configuration entries from a source document.
type SourceHandler interface {
	ReadEntries([]byte) ([]Entry, error)
}

// ErrEmptyKey indicates an entry whose key is the empty string.
var ErrEmptyKey = errors.New("configuration key is empty")

// ErrDuplicateKey indicates that the same key appears more than once.
var ErrDuplicateKey = errors.New("configuration key is duplicated")

// ErrNotScalar means a value is a table, object or mapping, or a list holding
// one, and cannot be written on a single line.
var ErrNotScalar = errors.New("configuration value is not a scalar")

// ErrEmptyDocument means the source contained no document at all.
var ErrEmptyDocument = errors.New("empty document")

// IsComment reports whether key should be skipped when reading a source.
func IsComment(key string) bool {
	return strings.HasPrefix(key, CommentPrefix)
}

// Validate checks that every key is non-empty and unique.
func Validate(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.Key == "" {
			return fmt.Errorf("%w: entry %d", ErrEmptyKey, i)
		}
		if _, ok := seen[e.Key]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateKey, e.Key)
		}
		seen[e.Key] = struct{}{}
	}
	return nil
}

// ListLiteral renders items as a bracketed list literal, e.g. [a,b,c].
func ListLiteral(items []string) string {
	return "[" + strings.Join(items, ",") + "]"
}

// Keys returns the keys of entries in order.
func Keys(entries []Entry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}
