package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/mscno/yamlconf"
	"github.com/mscno/yamlconf/pkg/fileutils"
)

type RenderCmd struct {
	Source string `arg:"" help:"Source file (.env, .json, .toml, .yaml), or - for stdin"`
	Format string `help:"Source format, detected from the file name when empty" short:"f" env:"YAMLCONF_FORMAT"`
	Sort   bool   `help:"Sort keys instead of keeping source order" short:"s"`
	Header string `help:"Comment written above the entries"`
	Verify bool   `help:"Parse the rendered document before printing it" default:"true" negatable:""`
}

func (c *RenderCmd) Run(ctx *cliCtx) error {
	opts := yamlconf.RenderOptions{Header: c.Header, SortKeys: c.Sort, Verify: c.Verify}

	if c.Source != "-" && c.Format == "" {
		ctx.Logger.Debug("rendering file", "source", c.Source)
		out, err := yamlconf.RenderFile(c.Source, opts)
		if err != nil {
			return err
		}
		return printDocument(out)
	}

	if c.Format == "" {
		return fmt.Errorf("--format is required when reading from stdin")
	}
	format, err := fileutils.ParseFormat(c.Format)
	if err != nil {
		return fmt.Errorf("error parsing format flag %q: %v", c.Format, err)
	}

	var data []byte
	if c.Source == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(c.Source)
	}
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	ctx.Logger.Debug("rendering source", "source", c.Source, "format", format, "bytes", len(data))

	out, err := yamlconf.Render(data, yamlconf.FileFormat(format), opts)
	if err != nil {
		return err
	}
	return printDocument(out)
}
