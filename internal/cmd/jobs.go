package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	"github.com/3leaps/gojobcfg/pkg/jobstore"
	"github.com/3leaps/gojobcfg/pkg/output"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage saved job descriptions",
	Long: `Manage job descriptions saved with 'build --save'.

Saved jobs are keyed by fingerprint, a digest of the canonical job
document. Any unique fingerprint prefix identifies a job.`,
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved jobs",
	Args:  cobra.NoArgs,
	RunE:  runJobsList,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <fingerprint>",
	Short: "Print a saved job document",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var jobsRemoveCmd = &cobra.Command{
	Use:   "rm <fingerprint>",
	Short: "Remove a saved job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsRemove,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	jobsCmd.AddCommand(jobsRemoveCmd)

	jobsListCmd.Flags().Bool("json", false, "Output as JSON")
	jobsShowCmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
}

func jobsStore(cmd *cobra.Command) (*jobstore.Store, error) {
	cfg, err := loadedConfig(commandContext(cmd))
	if err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
	}
	return jobstore.NewStore(cfg.JobStore.Dir), nil
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	store, err := jobsStore(cmd)
	if err != nil {
		return err
	}

	entries, err := store.List()
	if err != nil {
		return exitError(foundry.ExitFileReadError, "Failed to list jobs", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "No jobs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	_, _ = fmt.Fprintln(w, "FINGERPRINT\tRECIPE\tPROCESS\tINPUTS\tCONDITIONS\tCREATED")
	for _, e := range entries {
		recipeName := e.Recipe
		if recipeName == "" {
			recipeName = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			shortFingerprint(e.Fingerprint),
			recipeName,
			e.Process,
			len(e.Document.Source.URIs),
			e.Document.Conditions.Tag,
			e.CreatedAt.UTC().Format(time.RFC3339),
		)
	}
	return nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	format, err := output.ParseFormat(formatStr)
	if err != nil || format == output.FormatJSONL {
		return exitError(foundry.ExitInvalidArgument, "Invalid --format value", fmt.Errorf("want json or yaml, got %q", formatStr))
	}

	store, err := jobsStore(cmd)
	if err != nil {
		return err
	}
	entry, err := store.Get(strings.TrimSpace(args[0]))
	if err != nil {
		return lookupError(err)
	}
	return output.WriteDocument(cmd.OutOrStdout(), entry.Document, format)
}

func runJobsRemove(cmd *cobra.Command, args []string) error {
	store, err := jobsStore(cmd)
	if err != nil {
		return err
	}
	entry, err := store.Get(strings.TrimSpace(args[0]))
	if err != nil {
		return lookupError(err)
	}
	if err := store.Remove(entry.Fingerprint); err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to remove job", err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Removed %s\n", shortFingerprint(entry.Fingerprint))
	return nil
}

func lookupError(err error) error {
	switch {
	case errors.Is(err, jobstore.ErrNotFound):
		return exitError(foundry.ExitFileNotFound, "Job not found", err)
	case errors.Is(err, jobstore.ErrAmbiguousID):
		return exitError(foundry.ExitInvalidArgument, "Ambiguous job id", err)
	default:
		return exitError(foundry.ExitFileReadError, "Failed to read job", err)
	}
}

func shortFingerprint(fp string) string {
	if len(fp) <= 12 {
		return fp
	}
	return fp[:12]
}
