package commands

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mscno/yamlconf"
)

type EscapeCmd struct {
	Values []string `arg:"" optional:"" help:"Values to escape"`
	Stdin  bool     `help:"Read values from stdin, one per line" short:"i"`
}

func (c *EscapeCmd) Run(ctx *cliCtx) error {
	if len(c.Values) == 0 && !c.Stdin {
		return fmt.Errorf("no values given")
	}

	for _, v := range c.Values {
		fmt.Println(yamlconf.Escape(v))
	}
	if !c.Stdin {
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	n := 0
	for scanner.Scan() {
		fmt.Println(yamlconf.Escape(scanner.Text()))
		n++
	}
	ctx.Logger.Debug("escaped values from stdin", "count", n)
	return scanner.Err()
}
