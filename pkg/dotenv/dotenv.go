// Package dotenv reads configuration entries from .env files.
package dotenv

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mscno/yamlconf/pkg/format"
)

// validIdentifierPattern matches valid environment variable identifiers
var validIdentifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Formatter implements format.SourceHandler for .env files. Values are
// decoded by godotenv; the line scan only recovers the order of the keys.
type Formatter struct{}

func (d *Formatter) ReadEntries(data []byte) ([]format.Entry, error) {
	envs, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid dotenv: %v", err)
	}

	keys, err := orderedKeys(data)
	if err != nil {
		return nil, err
	}

	entries := make([]format.Entry, 0, len(keys))
	for _, key := range keys {
		value, ok := envs[key]
		if !ok || format.IsComment(key) {
			continue
		}
		entries = append(entries, format.Entry{Key: key, Value: value})
	}

	if err := format.Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// orderedKeys returns the keys of data in order, skipping the continuation
// lines of multi-line quoted values. A key other than a comment key may
// appear only once.
func orderedKeys(data []byte) ([]string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	seen := map[string]bool{}
	var keys []string
	var openQuote byte

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if openQuote != 0 {
			if closesQuote(line, openQuote) {
				openQuote = 0
			}
			continue
		}

		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		idx := strings.IndexAny(line, "=:")
		if idx < 0 {
			if isLikelyMalformedEntry(line) {
				return nil, fmt.Errorf("line appears malformed (no '=' found): %q", line)
			}
			continue
		}

		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if len(value) > 0 && (value[0] == '"' || value[0] == '\'' || value[0] == '`') {
			if !closesQuote(value[1:], value[0]) {
				openQuote = value[0]
			}
		}

		if seen[key] {
			if format.IsComment(key) {
				continue
			}
			return nil, fmt.Errorf("%w: %q", format.ErrDuplicateKey, key)
		}
		seen[key] = true
		keys = append(keys, key)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// closesQuote reports whether s contains an unescaped q.
func closesQuote(s string, q byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == q {
			return true
		}
	}
	return false
}

// isLikelyMalformedEntry checks if a line looks like an intended key-value pair
// but is missing the '=' sign. This helps catch typos like "SECRET_KEY" instead of "SECRET_KEY=value"
func isLikelyMalformedEntry(line string) bool {
	if len(line) < 3 {
		return false
	}
	return validIdentifierPattern.MatchString(line)
}
