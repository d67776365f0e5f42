// Package yaml renders flat YAML configuration files and reads .yaml sources.
package yaml

// Formatter renders configuration entries as a flat YAML document, one
// "key: value" line per entry, and reads entries from YAML sources.
type Formatter struct {
	// Header is written as comment lines above the entries.
	Header string
	// SortKeys orders entries by key instead of keeping the caller's order.
	SortKeys bool
}
