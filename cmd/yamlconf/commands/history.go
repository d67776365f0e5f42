package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mscno/yamlconf/pkg/store"
)

type HistoryCmd struct {
	Ledger string `help:"Path of the generation ledger; defaults to the XDG state directory" type:"path" env:"YAMLCONF_LEDGER"`
	Json   bool   `help:"Print records as JSON"`
}

func (c *HistoryCmd) Run(ctx *cliCtx) error {
	path := c.Ledger
	if path == "" {
		path = store.DefaultPath()
	}
	ledger, err := store.NewBoltStore(path)
	if err != nil {
		return fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer ledger.Close()

	gens, err := ledger.List()
	if err != nil {
		return err
	}
	ctx.Logger.Debug("listed generations", "ledger", path, "count", len(gens))

	if c.Json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(gens)
	}

	if len(gens) == 0 {
		fmt.Println("No generations recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tSOURCE\tENTRIES\tMODE\tOWNER\tCHANGED\tWRITTEN")
	for _, g := range gens {
		owner := g.Owner
		if g.Group != "" {
			owner += ":" + g.Group
		}
		if owner == "" {
			owner = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%04o\t%s\t%t\t%s\n",
			g.Path, g.Source, g.Entries, uint32(g.Mode.Perm()), owner, g.Changed, g.WrittenAt.Format(time.RFC3339))
	}
	return w.Flush()
}
