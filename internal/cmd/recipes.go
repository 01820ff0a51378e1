package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "List bundled recipes",
	Args:  cobra.NoArgs,
	RunE:  runRecipes,
}

func init() {
	rootCmd.AddCommand(recipesCmd)
	recipesCmd.Flags().Bool("json", false, "Output as JSON")
}

type recipeListing struct {
	Name        string `json:"name"`
	Process     string `json:"process"`
	Parameters  int    `json:"parameters"`
	Description string `json:"description"`
}

func runRecipes(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	reg, err := recipes()
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to load recipes", err)
	}

	listings := make([]recipeListing, 0)
	for _, r := range reg.Recipes() {
		listings = append(listings, recipeListing{
			Name:        r.Name(),
			Process:     r.Blueprint().Process,
			Parameters:  r.Registry().Len(),
			Description: r.Description(),
		})
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()
	_, _ = fmt.Fprintln(w, "NAME\tPROCESS\tPARAMS\tDESCRIPTION")
	for _, l := range listings {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", l.Name, l.Process, l.Parameters, l.Description)
	}
	return nil
}
