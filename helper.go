package yamlconf

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/mscno/yamlconf/pkg/fileutils"
)

// ResolveTarget joins confDir and filename into the absolute path of the file
// to generate. confDir may start with ~. filename must be a bare .yaml or .yml
// name.
func ResolveTarget(confDir, filename string) (string, error) {
	if confDir == "" {
		return "", fmt.Errorf("config directory is required")
	}
	if err := validateFilename(filename); err != nil {
		return "", err
	}

	dir, err := homedir.Expand(confDir)
	if err != nil {
		return "", fmt.Errorf("expand config directory %q: %w", confDir, err)
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve config directory %q: %w", confDir, err)
	}
	return filepath.Join(dir, filename), nil
}

func validateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("file name is required")
	}
	if strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("invalid file name %q: must not contain path separators", filename)
	}
	if filename == "." || filename == ".." {
		return fmt.Errorf("invalid file name %q: must not be '.' or '..'", filename)
	}
	if !fileutils.IsYaml(filename) {
		return fmt.Errorf("invalid file name %q: must end in .yaml or .yml", filename)
	}
	return nil
}
