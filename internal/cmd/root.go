// Package cmd implements the gojobcfg command-line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/gojobcfg/internal/config"
	"github.com/3leaps/gojobcfg/internal/observability"
	"github.com/3leaps/gojobcfg/pkg/recipe"
	"github.com/3leaps/gojobcfg/pkg/recipe/upart"
)

// VersionInfo describes the running build.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

var versionInfo = VersionInfo{Version: "dev", Commit: "unknown", BuildDate: "unknown"}

var (
	cfgFile    string
	logLevel   string
	logProfile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Assemble declarative event-processing job descriptions",
	Long: `gojobcfg turns command-line parameters into a validated, immutable job
description for an external event-processing host.

A recipe declares the accepted parameters, the conditions tag, the
job-wide services and the module schedule. gojobcfg resolves the
parameters, assembles the job and writes it as JSON, YAML or JSONL.
Nothing is executed.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initRuntime,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./gojobcfg.yaml or user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logProfile, "log-profile", "", "Log profile: console or structured")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging (same as --log-level debug)")
	rootCmd.Long += "\n\n" + envHelp(config.EnvSpecs())
}

// envHelp renders the environment variables that override config keys.
func envHelp(specs []config.EnvSpec) string {
	var b strings.Builder
	b.WriteString("Environment variables:")
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, spec := range specs {
		_, _ = fmt.Fprintf(w, "\n  %s\t%s", spec.Name, spec.Path)
	}
	_ = w.Flush()
	return b.String()
}

// SetVersionInfo records build metadata for the version command.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// Execute runs the root command. The returned error carries an exit code
// when it is an *ExitError.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// initRuntime loads configuration and configures the CLI logger before any
// subcommand runs.
func initRuntime(cmd *cobra.Command, _ []string) error {
	// Console logger until the configured one is in place.
	observability.InitCLILogger(config.AppName, verbose)
	config.SetConfigFile(cfgFile)

	overrides := map[string]any{}
	logging := map[string]any{}
	switch {
	case cmd.Flags().Changed("log-level"):
		logging["level"] = logLevel
	case verbose:
		logging["level"] = "debug"
	}
	if cmd.Flags().Changed("log-profile") {
		logging["profile"] = logProfile
	}
	if len(logging) > 0 {
		overrides["logging"] = logging
	}

	cfg, err := config.Load(commandContext(cmd), overrides)
	if err != nil {
		observability.CLILogger.Debug("Config load failed", zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
	}
	if err := observability.Configure(config.AppName, cfg.Logging.Level, cfg.Logging.Profile); err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid logging configuration", err)
	}
	return nil
}

// loadedConfig returns the config loaded by initRuntime, loading defaults
// when a command runs without it (tests that call run functions directly).
func loadedConfig(ctx context.Context) (*config.Config, error) {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg, nil
	}
	return config.Load(ctx)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// recipes returns the registry of bundled recipes.
func recipes() (*recipe.Registry, error) {
	reg := recipe.NewRegistry()
	if err := upart.Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: %v (exit code %d)", e.Message, e.Err, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitError creates an error that will cause the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode returns the exit code for err: 0 for nil, the interrupt code
// for a canceled context, the carried code for an *ExitError, and 1
// otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return foundry.ExitSignalInt
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 1
}
