package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mscno/yamlconf"
)

type WatchCmd struct {
	TargetFlags `embed:""`
	Debounce    time.Duration `help:"Wait this long after the last change before regenerating" default:"200ms" env:"YAMLCONF_DEBOUNCE"`
}

// Run generates the config file once, then again after every change to the
// source, until the context is canceled. Failed regenerations are logged and
// leave the previous file in place.
func (c *WatchCmd) Run(ctx *cliCtx) error {
	cfg, closeLedger, err := c.generateConfig(ctx.Logger, false)
	if err != nil {
		return err
	}
	defer closeLedger()

	source, err := filepath.Abs(cfg.Source)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	cfg.Source = source

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace a file by renaming over it, which drops a watch
	// on the file itself, so the directory is watched instead.
	if err := watcher.Add(filepath.Dir(source)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(source), err)
	}

	res, err := yamlconf.Generate(ctx.Context, cfg)
	if err != nil {
		return err
	}
	ctx.Logger.Info("watching source", "source", source, "target", res.Target)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			ctx.Logger.Info("stopped watching", "source", source)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != source {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				ctx.Logger.Debug("ignoring source event", "op", event.Op.String())
				continue
			}
			pending = time.After(c.Debounce)

		case <-pending:
			pending = nil
			res, err := yamlconf.Generate(ctx.Context, cfg)
			if err != nil {
				ctx.Logger.Error("regenerate failed", "source", source, "error", err)
				continue
			}
			ctx.Logger.Debug("regenerated", "target", res.Target, "changed", res.Changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			ctx.Logger.Error("watcher error", "error", err)
		}
	}
}
