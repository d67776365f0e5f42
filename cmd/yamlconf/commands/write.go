package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mscno/yamlconf"
	"github.com/mscno/yamlconf/pkg/fileutils"
	"github.com/mscno/yamlconf/pkg/store"
)

// TargetFlags are shared by the commands that write a config file.
type TargetFlags struct {
	Source   string `arg:"" help:"Source file (.env, .json, .toml, .yaml)"`
	Format   string `help:"Source format, detected from the file name when empty" short:"f" env:"YAMLCONF_FORMAT"`
	ConfDir  string `help:"Directory the config file is written to" required:"" short:"c" env:"YAMLCONF_CONF_DIR"`
	Filename string `help:"Name of the generated file" default:"config.yaml" short:"n" env:"YAMLCONF_FILENAME"`
	Owner    string `help:"Owner (name or uid) of the generated file" env:"YAMLCONF_OWNER"`
	Group    string `help:"Group (name or gid) of the generated file" env:"YAMLCONF_GROUP"`
	Mode     string `help:"Octal permission bits of the generated file" default:"0644" env:"YAMLCONF_MODE"`
	Header   string `help:"Comment written above the entries"`
	Sort     bool   `help:"Sort keys instead of keeping source order" short:"s"`
	Ledger   string `help:"Path of the generation ledger; defaults to the XDG state directory" type:"path" env:"YAMLCONF_LEDGER"`
	NoLedger bool   `help:"Do not record generations in the ledger"`
}

// generateConfig builds the library config. The returned func closes the
// ledger, if one was opened.
func (t *TargetFlags) generateConfig(logger *slog.Logger, dryRun bool) (yamlconf.GenerateConfig, func(), error) {
	cfg := yamlconf.GenerateConfig{
		Source:   filepath.Clean(t.Source),
		ConfDir:  t.ConfDir,
		Filename: t.Filename,
		Header:   t.Header,
		SortKeys: t.Sort,
		DryRun:   dryRun,
		Logger:   logger,
		Ownership: fileutils.Ownership{
			Owner: t.Owner,
			Group: t.Group,
		},
	}
	noop := func() {}

	if t.Format != "" {
		format, err := fileutils.ParseFormat(t.Format)
		if err != nil {
			return cfg, noop, fmt.Errorf("error parsing format flag %q: %v", t.Format, err)
		}
		cfg.Format = yamlconf.FileFormat(format)
	}

	mode, err := fileutils.ParseMode(t.Mode)
	if err != nil {
		return cfg, noop, err
	}
	cfg.Mode = mode

	if t.NoLedger || dryRun {
		return cfg, noop, nil
	}
	path := t.Ledger
	if path == "" {
		path = store.DefaultPath()
	}
	ledger, err := store.NewBoltStore(path)
	if err != nil {
		return cfg, noop, fmt.Errorf("open ledger %s: %w", path, err)
	}
	logger.Debug("opened ledger", "path", path)
	cfg.Store = ledger
	return cfg, func() {
		if err := ledger.Close(); err != nil {
			logger.Error("close ledger", "error", err)
		}
	}, nil
}

type WriteCmd struct {
	TargetFlags `embed:""`
	DryRun      bool `help:"Print the rendered document without writing it" short:"d"`
}

func (c *WriteCmd) Run(ctx *cliCtx) error {
	cfg, closeLedger, err := c.generateConfig(ctx.Logger, c.DryRun)
	if err != nil {
		return err
	}
	defer closeLedger()

	res, err := yamlconf.Generate(ctx.Context, cfg)
	if err != nil {
		return err
	}

	if c.DryRun {
		ctx.Logger.Debug("dry run", "target", res.Target)
		return printDocument(res.Document)
	}
	if res.Changed {
		fmt.Printf("Wrote %d entries to %s\n", res.Entries, res.Target)
	} else {
		fmt.Printf("%s is up to date\n", res.Target)
	}
	return nil
}
