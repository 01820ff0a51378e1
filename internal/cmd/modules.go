package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/3leaps/gojobcfg/pkg/module"
)

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List module contracts declared by bundled recipes",
	Args:  cobra.NoArgs,
	RunE:  runModules,
}

func init() {
	rootCmd.AddCommand(modulesCmd)
	modulesCmd.Flags().Bool("json", false, "Output as JSON")
}

type slotListing struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Default  string `json:"default,omitempty"`
}

type moduleParamListing struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Default  any    `json:"default,omitempty"`
}

type moduleListing struct {
	Type   string               `json:"type"`
	Slots  []slotListing        `json:"slots"`
	Params []moduleParamListing `json:"params"`
}

func runModules(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	reg, err := recipes()
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to load recipes", err)
	}
	cat := reg.Modules()

	listings := make([]moduleListing, 0)
	for _, name := range cat.TypeNames() {
		c, err := cat.Get(name)
		if err != nil {
			return exitError(foundry.ExitInvalidArgument, "Failed to read module catalog", err)
		}
		listings = append(listings, listModule(c))
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()
	_, _ = fmt.Fprintln(w, "TYPE\tSLOTS\tPARAMS")
	for _, l := range listings {
		slots := make([]string, 0, len(l.Slots))
		for _, s := range l.Slots {
			slots = append(slots, s.Name)
		}
		params := make([]string, 0, len(l.Params))
		for _, p := range l.Params {
			params = append(params, p.Name+":"+p.Type)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", l.Type, strings.Join(slots, ","), strings.Join(params, ","))
	}
	return nil
}

func listModule(c module.Contract) moduleListing {
	l := moduleListing{
		Type:   c.TypeName,
		Slots:  make([]slotListing, 0, len(c.Slots)),
		Params: make([]moduleParamListing, 0, len(c.Params)),
	}
	for _, s := range c.Slots {
		l.Slots = append(l.Slots, slotListing{Name: s.Name, Required: s.Required, Default: s.Default})
	}
	for _, p := range c.Params {
		l.Params = append(l.Params, moduleParamListing{
			Name: p.Name, Type: string(p.Type), Required: p.Required, Default: p.Default,
		})
	}
	return l
}
