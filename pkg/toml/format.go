// Package toml reads configuration entries from .toml files.
package toml

// Formatter implements format.SourceHandler for .toml files. Keys under a
// [table] header are flattened to "table.key".
type Formatter struct{}
