// Package fileutils detects source file formats and writes generated files.
package fileutils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileFormat represents the supported file format extensions.
type FileFormat string

// Supported file format extensions.
const (
	// Env represents the .env (dotenv) file format.
	Env FileFormat = ".env"
	// Json represents the .json file format.
	Json FileFormat = ".json"
	// Toml represents the .toml file format.
	Toml FileFormat = ".toml"
	// Yaml represents the .yaml file format.
	Yaml FileFormat = ".yaml"
	// Yml represents the .yml file format.
	Yml FileFormat = ".yml"
)

// ValidFormats returns a slice of all supported source formats.
func ValidFormats() []FileFormat {
	return []FileFormat{Env, Json, Toml, Yaml, Yml}
}

// ParseFormat determines the file format based on the filename or format string.
// It accepts inputs like ".json", "json", "storm-site.toml", ".env.prod", or
// full paths like "/etc/storm/storm.yaml".
// Returns an error if the format is not recognized.
func ParseFormat(input string) (FileFormat, error) {
	base := filepath.Base(input)
	if !strings.Contains(base, ".") {
		base = "." + base
	}

	ext := FileFormat(strings.ToLower(filepath.Ext(base)))
	for _, format := range ValidFormats() {
		if ext == format {
			return format, nil
		}
	}

	// dotenv files are commonly suffixed with an environment: .env.prod
	if strings.HasPrefix(base, string(Env)+".") {
		return Env, nil
	}

	return "", fmt.Errorf("unsupported format: %s", input)
}

// IsYaml reports whether name carries a YAML extension.
func IsYaml(name string) bool {
	ext := FileFormat(strings.ToLower(filepath.Ext(name)))
	return ext == Yaml || ext == Yml
}
