package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/gojobcfg/internal/observability"
	"github.com/3leaps/gojobcfg/pkg/conditions"
	"github.com/3leaps/gojobcfg/pkg/job"
	"github.com/3leaps/gojobcfg/pkg/jobstore"
	"github.com/3leaps/gojobcfg/pkg/output"
	"github.com/3leaps/gojobcfg/pkg/param"
	"github.com/3leaps/gojobcfg/pkg/recipe"
)

var (
	buildRecipe     string
	buildParams     []string
	buildFormat     string
	buildOutput     string
	buildSummary    bool
	buildSave       bool
	buildConditions string
)

var buildCmd = &cobra.Command{
	Use:   "build [name=value ...]",
	Short: "Assemble a job description from parameters",
	Long: `Resolve parameters against a recipe and write the assembled job.

Parameters use name=value syntax. Repeat a name or separate values with
commas to fill a list parameter. name_load=<file> reads list values from a
file, one per line. Params files (--params) are applied first, in order;
command-line parameters replace file values for the same name.

Examples:
  gojobcfg build inputFiles=file:/data/a.root maxEvents=100
  gojobcfg build --recipe upart-minimal --format yaml
  gojobcfg build inputFiles_load=files.txt --params run3.yaml --save
  gojobcfg build --format jsonl globalTag=130X_mcRun3_2022_realistic_v5`,
	RunE:              runBuild,
	ValidArgsFunction: completeParamNames,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildRecipe, "recipe", "r", "", "Recipe to assemble (default from config)")
	buildCmd.Flags().StringSliceVarP(&buildParams, "params", "p", nil, "Params file (YAML or JSON); repeatable")
	buildCmd.Flags().StringVarP(&buildFormat, "format", "f", "", "Output format: json, yaml or jsonl (default from config)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Write the job to a file instead of stdout")
	buildCmd.Flags().BoolVar(&buildSummary, "summary", false, "Print a human-readable summary to stderr")
	buildCmd.Flags().BoolVar(&buildSave, "save", false, "Save the job to the job store")
	buildCmd.Flags().StringVar(&buildConditions, "conditions-catalog", "", "Check the conditions tag against a YAML catalog")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	cfg, err := loadedConfig(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
	}
	log := observability.CLILogger

	recipeName := cfg.Recipe
	if cmd.Flags().Changed("recipe") {
		recipeName = buildRecipe
	}
	format := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		if format, err = output.ParseFormat(buildFormat); err != nil {
			return exitError(foundry.ExitInvalidArgument, "Invalid --format value", err)
		}
	}
	catalog := cfg.Conditions.Catalog
	if cmd.Flags().Changed("conditions-catalog") {
		catalog = buildConditions
	}

	reg, err := recipes()
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to load recipes", err)
	}
	r, err := reg.Get(recipeName)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Unknown recipe", err)
	}

	raw, err := collectRaw(buildParams, args)
	if err != nil {
		return err
	}

	opts := []recipe.Option{recipe.WithLogger(log)}
	if catalog != "" {
		resolver, err := conditions.LoadCatalog(catalog)
		if err != nil {
			return exitError(fileErrorCode(err), "Failed to load conditions catalog", err)
		}
		opts = append(opts, recipe.WithResolver(resolver))
	}

	jobID := uuid.New().String()
	start := time.Now()
	res, err := recipe.Assemble(ctx, r, raw, opts...)
	if err != nil {
		if format == output.FormatJSONL {
			// Error records go to stdout; an existing --output target is left alone.
			jw := output.NewJSONLWriter(cmd.OutOrStdout(), jobID, r.Name())
			_ = jw.WriteError(ctx, output.NewErrorRecord(err))
			_ = jw.Close()
		}
		return exitError(foundry.ExitInvalidArgument, "Job assembly failed", err)
	}
	desc := res.Description

	doc := desc.Document()
	if err := job.ValidateDocument(doc); err != nil {
		return exitError(foundry.ExitInvalidArgument, "Assembled job failed schema validation", err)
	}
	fingerprint, err := desc.Fingerprint()
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to fingerprint job", err)
	}

	err = writeDestination(cmd, buildOutput, func(w io.Writer) error {
		if format != output.FormatJSONL {
			return output.WriteDocument(w, doc, format)
		}
		jw := output.NewJSONLWriter(w, jobID, r.Name())
		if err := emitJSONL(ctx, jw, doc, fingerprint, desc, res.Params, time.Since(start)); err != nil {
			_ = jw.Close()
			return err
		}
		return jw.Close()
	})
	if err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to write job", err)
	}

	if buildSummary {
		if err := desc.Summary(cmd.ErrOrStderr()); err != nil {
			return exitError(foundry.ExitFileWriteError, "Failed to write summary", err)
		}
	}

	if buildSave {
		store := jobstore.NewStore(cfg.JobStore.Dir)
		entry, created, err := store.Save(desc, jobID)
		if err != nil {
			return exitError(foundry.ExitFileWriteError, "Failed to save job", err)
		}
		log.Info("Job saved",
			zap.String("fingerprint", entry.Fingerprint),
			zap.Bool("created", created),
			zap.String("dir", store.RootDir()))
	}
	return nil
}

// completeParamNames offers name= completions for the selected recipe.
func completeParamNames(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	name := buildRecipe
	if name == "" {
		if cfg, err := loadedConfig(commandContext(cmd)); err == nil {
			name = cfg.Recipe
		}
	}
	reg, err := recipes()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	r, err := reg.Get(name)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return paramNames(r.Registry().Specs()), cobra.ShellCompDirectiveNoSpace
}

// collectRaw layers params files under command-line arguments.
func collectRaw(files []string, args []string) (param.Raw, error) {
	layers := make([]param.Raw, 0, len(files)+1)
	for _, path := range files {
		raw, err := param.LoadRawFile(path)
		if err != nil {
			return nil, exitError(fileErrorCode(err), "Failed to load params file", err)
		}
		layers = append(layers, raw)
	}

	argRaw, err := param.ParseArgs(args)
	if err != nil {
		return nil, exitError(fileErrorCode(err), "Invalid parameter argument", err)
	}
	layers = append(layers, argRaw)
	return param.Merge(layers...), nil
}

func emitJSONL(ctx context.Context, jw *output.JSONLWriter, doc job.Document, fingerprint string,
	desc *job.Description, set *param.Set, elapsed time.Duration) error {
	if err := jw.WriteJob(ctx, &output.JobRecord{Fingerprint: fingerprint, Document: doc}); err != nil {
		return err
	}
	explicit := make([]string, 0, set.Len())
	for _, name := range set.Names() {
		if set.IsSet(name) {
			explicit = append(explicit, string(name))
		}
	}
	source := desc.Source()
	return jw.WriteSummary(ctx, &output.SummaryRecord{
		Process:            desc.Process(),
		Inputs:             len(source.URIs),
		MaxEvents:          source.MaxEvents,
		Modules:            len(desc.Modules()),
		ExplicitParameters: explicit,
		Duration:           elapsed,
		DurationHuman:      elapsed.Round(time.Microsecond).String(),
	})
}

// writeDestination runs write against stdout when path is empty. Otherwise
// it writes a temp file next to path and renames it into place, so a failed
// write never leaves path truncated.
func writeDestination(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename output file: %w", err)
	}
	return nil
}

func fileErrorCode(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return foundry.ExitFileNotFound
	case errors.Is(err, param.ErrMalformedArgument):
		return foundry.ExitInvalidArgument
	default:
		return foundry.ExitFileReadError
	}
}
