package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/3leaps/gojobcfg/pkg/param"
)

var paramsCmd = &cobra.Command{
	Use:   "params [pattern]",
	Short: "List the parameters a recipe accepts",
	Long: `List every parameter registered by a recipe, with its type, default and
allowed values.

An optional glob pattern filters parameter names.

Examples:
  gojobcfg params
  gojobcfg params 'jet*'
  gojobcfg params --recipe upart-minimal --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParams,
}

func init() {
	rootCmd.AddCommand(paramsCmd)
	paramsCmd.Flags().StringP("recipe", "r", "", "Recipe to describe (default from config)")
	paramsCmd.Flags().Bool("json", false, "Output as JSON")
}

type paramListing struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Default     any      `json:"default"`
	Description string   `json:"description,omitempty"`
	Choices     []string `json:"choices,omitempty"`
}

func runParams(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	cfg, err := loadedConfig(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	recipeName := cfg.Recipe
	if cmd.Flags().Changed("recipe") {
		recipeName, _ = cmd.Flags().GetString("recipe")
	}

	pattern := "*"
	if len(args) == 1 {
		pattern = strings.TrimSpace(args[0])
		if !doublestar.ValidatePattern(pattern) {
			return exitError(foundry.ExitInvalidArgument, "Invalid pattern", fmt.Errorf("bad glob %q", pattern))
		}
	}

	reg, err := recipes()
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to load recipes", err)
	}
	r, err := reg.Get(recipeName)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Unknown recipe", err)
	}

	listings := make([]paramListing, 0)
	for _, spec := range r.Registry().Specs() {
		if ok, _ := doublestar.Match(pattern, string(spec.Name)); !ok {
			continue
		}
		listings = append(listings, paramListing{
			Name:        string(spec.Name),
			Type:        spec.TypeLabel(),
			Default:     spec.Default,
			Description: spec.Description,
			Choices:     spec.Choices,
		})
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	}
	if len(listings) == 0 {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No parameters match")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	_, _ = fmt.Fprintln(w, "NAME\tTYPE\tDEFAULT\tDESCRIPTION")
	for _, l := range listings {
		desc := l.Description
		if len(l.Choices) > 0 {
			desc = fmt.Sprintf("%s [%s]", desc, strings.Join(l.Choices, "|"))
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.Name, l.Type, formatDefault(l.Default), desc)
	}
	return nil
}

func formatDefault(v any) string {
	switch v.(type) {
	case nil:
		return "-"
	case []string, []int, []float64, []bool, []any:
		items := cast.ToStringSlice(v)
		if len(items) == 0 {
			return "[]"
		}
		return strings.Join(items, ",")
	}
	s := cast.ToString(v)
	if s == "" {
		return `""`
	}
	return s
}

// paramNames is used by shell completion for name=value arguments.
func paramNames(specs []param.Spec) []string {
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		names = append(names, string(spec.Name)+"=")
	}
	return names
}
