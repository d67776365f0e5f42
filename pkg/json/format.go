// Package json reads configuration entries from .json files.
package json

// JsonFormatter implements format.SourceHandler for .json files. It reads the
// top-level object in document order; nested objects are rejected.
type JsonFormatter struct{}
