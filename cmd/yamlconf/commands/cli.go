package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"gopkg.in/natefinch/lumberjack.v2"
)

type cliCtx struct {
	Logger *slog.Logger
	context.Context
}

type cli struct {
	Debug     bool   `help:"Enable debug logging" env:"YAMLCONF_DEBUG"`
	LogFormat string `help:"Log output format" enum:"text,json" default:"text" env:"YAMLCONF_LOG_FORMAT"`
	LogFile   string `help:"Write logs to this file instead of stderr; the file is rotated" type:"path" env:"YAMLCONF_LOG_FILE"`

	Escape  EscapeCmd        `cmd:"" help:"Print values the way they are written in a YAML config file"`
	Render  RenderCmd        `cmd:"" help:"Render a source file as flat YAML on stdout"`
	Write   WriteCmd         `cmd:"" help:"Render a source file into a config directory"`
	Watch   WatchCmd         `cmd:"" help:"Regenerate a config file whenever its source changes"`
	History HistoryCmd       `cmd:"" help:"List generated config files"`
	Version kong.VersionFlag `help:"Show version"`
}

func Execute(version string) {
	var cli cli
	ctx := kong.Parse(&cli,
		kong.UsageOnError(),
		kong.Name("yamlconf"),
		kong.Description("yamlconf renders .env, .json, .toml and .yaml sources as flat YAML config files"),
		kong.Vars{"version": version},
	)

	logger, closeLog := newLogger(cli.Debug, cli.LogFormat, cli.LogFile)
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := ctx.Run(&cliCtx{Logger: logger, Context: runCtx})
	stop()
	closeLog()
	ctx.FatalIfErrorf(err)
}

// newLogger builds the process logger. Logs go to stderr unless file is set,
// in which case they go to a lumberjack rotated file.
func newLogger(debug bool, format, file string) (*slog.Logger, func()) {
	var out io.Writer = os.Stderr
	closer := func() {}
	if file != "" {
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // MB
			MaxAge:     28, // days
			MaxBackups: 3,
			Compress:   true,
			LocalTime:  true,
		}
		out = lj
		closer = func() {
			_ = lj.Close()
		}
	}
	return slog.New(newHandler(out, debug, format)), closer
}

func newHandler(out io.Writer, debug bool, format string) slog.Handler {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(out, opts)
	}
	return slog.NewTextHandler(out, opts)
}

func printDocument(doc []byte) error {
	if _, err := os.Stdout.Write(doc); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
