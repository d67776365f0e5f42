// Package yamlconf renders flat YAML configuration files from .env, .json,
// .toml and .yaml sources and writes them into a configuration directory.
package yamlconf

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/mscno/yamlconf/pkg/dotenv"
	"github.com/mscno/yamlconf/pkg/fileutils"
	"github.com/mscno/yamlconf/pkg/format"
	"github.com/mscno/yamlconf/pkg/json"
	"github.com/mscno/yamlconf/pkg/store"
	"github.com/mscno/yamlconf/pkg/toml"
	"github.com/mscno/yamlconf/pkg/yaml"
)

type FileFormat string

const (
	FileFormatEnv  FileFormat = ".env"
	FileFormatJson FileFormat = ".json"
	FileFormatToml FileFormat = ".toml"
	FileFormatYaml FileFormat = ".yaml"
	FileFormatYml  FileFormat = ".yml"
)

// Escape returns value as it is written on the right-hand side of a YAML
// "key: value" line.
func Escape(value string) string {
	return yaml.Escape(value)
}

// RenderOptions control how entries are laid out.
type RenderOptions struct {
	// Header is written as comment lines at the top of the document.
	Header string
	// SortKeys orders entries by key instead of source order.
	SortKeys bool
	// Verify parses the rendered document and checks it against the entries.
	Verify bool
}

func (o RenderOptions) formatter() *yaml.Formatter {
	return &yaml.Formatter{Header: o.Header, SortKeys: o.SortKeys}
}

func getSourceHandler(f FileFormat) (format.SourceHandler, error) {
	switch f {
	case FileFormatEnv:
		return &dotenv.Formatter{}, nil
	case FileFormatJson:
		return &json.JsonFormatter{}, nil
	case FileFormatToml:
		return &toml.Formatter{}, nil
	case FileFormatYaml, FileFormatYml:
		return &yaml.Formatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", f)
	}
}

// ReadEntries reads the ordered entries of a source document.
func ReadEntries(data []byte, f FileFormat) ([]format.Entry, error) {
	handler, err := getSourceHandler(f)
	if err != nil {
		return nil, err
	}
	return handler.ReadEntries(data)
}

// RenderEntries formats entries as a flat YAML document.
func RenderEntries(entries []format.Entry, opts RenderOptions) ([]byte, error) {
	formatter := opts.formatter()
	out, err := formatter.Format(entries)
	if err != nil {
		return nil, err
	}
	if opts.Verify {
		if err := formatter.Verify(out, entries); err != nil {
			return nil, fmt.Errorf("rendered document failed verification: %w", err)
		}
	}
	return out, nil
}

// Render reads data in format f and renders it as a flat YAML document.
func Render(data []byte, f FileFormat, opts RenderOptions) ([]byte, error) {
	entries, err := ReadEntries(data, f)
	if err != nil {
		return nil, err
	}
	return RenderEntries(entries, opts)
}

// RenderFile is Render for a file on disk; the format follows from its name.
func RenderFile(path string, opts RenderOptions) ([]byte, error) {
	_, out, err := renderFile(path, "", opts)
	return out, err
}

// RenderFS is RenderFile for a file in fsys, e.g. an embed.FS.
func RenderFS(fsys fs.FS, name string, opts RenderOptions) ([]byte, error) {
	f, err := fileutils.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	out, err := Render(data, FileFormat(f), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func renderFile(path string, f FileFormat, opts RenderOptions) ([]format.Entry, []byte, error) {
	if f == "" {
		detected, err := fileutils.ParseFormat(path)
		if err != nil {
			return nil, nil, err
		}
		f = FileFormat(detected)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read source: %w", err)
	}

	entries, err := ReadEntries(data, f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	out, err := RenderEntries(entries, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, out, nil
}

// GenerateConfig describes one source to target materialization.
type GenerateConfig struct {
	Source   string
	Format   FileFormat // detected from Source when empty
	ConfDir  string
	Filename string

	Header   string
	SortKeys bool

	fileutils.Ownership

	// DryRun renders and resolves the target without touching it.
	DryRun bool
	// Store, when set, records every write.
	Store  store.GenerationStore
	Logger *slog.Logger
}

// Result describes a generated file.
type Result struct {
	Target   string
	Document []byte
	Entries  int
	Checksum string
	Changed  bool
}

// Generate renders cfg.Source and writes it to cfg.ConfDir/cfg.Filename. The
// rendered document is always verified before it is written.
func Generate(ctx context.Context, cfg GenerateConfig) (*Result, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	target, err := ResolveTarget(cfg.ConfDir, cfg.Filename)
	if err != nil {
		return nil, err
	}

	opts := RenderOptions{Header: cfg.Header, SortKeys: cfg.SortKeys, Verify: true}
	entries, out, err := renderFile(cfg.Source, cfg.Format, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("rendered source", "source", cfg.Source, "entries", len(entries), "bytes", len(out))

	res := &Result{
		Target:   target,
		Document: out,
		Entries:  len(entries),
		Checksum: fileutils.Checksum(out),
	}
	if cfg.DryRun {
		logger.Debug("dry run, not writing", "target", target)
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	written, err := fileutils.WriteFile(target, out, cfg.Ownership)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", target, err)
	}
	res.Changed = written.Changed
	logger.Info("generated config", "target", target, "changed", written.Changed, "checksum", written.Checksum)

	if cfg.Store != nil {
		mode := cfg.Mode
		if mode == 0 {
			mode = fileutils.DefaultMode
		}
		gen := store.Generation{
			Path:      target,
			Source:    cfg.Source,
			Checksum:  written.Checksum,
			Entries:   len(entries),
			Owner:     cfg.Owner,
			Group:     cfg.Group,
			Mode:      mode,
			Changed:   written.Changed,
			WrittenAt: time.Now().UTC(),
		}
		if err := cfg.Store.Record(gen); err != nil {
			return res, fmt.Errorf("record generation: %w", err)
		}
		logger.Debug("recorded generation", "target", target)
	}
	return res, nil
}
