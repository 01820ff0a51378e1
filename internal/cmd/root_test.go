package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/3leaps/gojobcfg/internal/config"
	"github.com/3leaps/gojobcfg/internal/observability"
)

// isolate points config discovery and the job store at empty temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".data"))
	t.Chdir(t.TempDir())
	return filepath.Join(home, ".data", "gojobcfg", "jobs")
}

// resetFlags clears values left on the shared command tree by a previous run.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := Execute(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSetVersionInfo(t *testing.T) {
	orig := versionInfo
	defer func() { versionInfo = orig }()

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
	}{
		{name: "set all values", version: "1.0.0", commit: "abc123", buildDate: "2026-01-15"},
		{name: "set dev version", version: "dev", commit: "HEAD", buildDate: "unknown"},
		{name: "set empty values"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersionInfo(tt.version, tt.commit, tt.buildDate)

			assert.Equal(t, tt.version, versionInfo.Version)
			assert.Equal(t, tt.commit, versionInfo.Commit)
			assert.Equal(t, tt.buildDate, versionInfo.BuildDate)
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: 1},
		{name: "exit error", err: exitError(foundry.ExitFileNotFound, "missing", errors.New("x")), want: foundry.ExitFileNotFound},
		{name: "wrapped exit error", err: fmt.Errorf("outer: %w", exitError(foundry.ExitInvalidArgument, "bad", nil)), want: foundry.ExitInvalidArgument},
		{name: "canceled", err: exitError(foundry.ExitInvalidArgument, "failed", context.Canceled), want: foundry.ExitSignalInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	err := exitError(foundry.ExitFileReadError, "Failed to read", errors.New("disk"))
	assert.Contains(t, err.Error(), "Failed to read")
	assert.Contains(t, err.Error(), "disk")
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	orig := versionInfo
	defer func() { versionInfo = orig }()
	SetVersionInfo("1.2.3", "deadbeef", "2026-10-01")

	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gojobcfg 1.2.3")
	assert.Contains(t, out, "deadbeef")

	out, _, err = run(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version":"1.2.3"`)
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "--log-level", "loud", "recipes")
	require.Error(t, err)
	assert.Equal(t, foundry.ExitInvalidArgument, ExitCode(err))
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "recipes")
	require.Error(t, err)
	assert.Equal(t, foundry.ExitInvalidArgument, ExitCode(err))
}

func TestEnvHelp(t *testing.T) {
	got := envHelp([]config.EnvSpec{
		{Name: "GOJOBCFG_RECIPE", Path: "recipe"},
		{Name: "GOJOBCFG_LOGGING_LEVEL", Path: "logging.level"},
	})
	assert.Equal(t, "Environment variables:\n"+
		"  GOJOBCFG_RECIPE         recipe\n"+
		"  GOJOBCFG_LOGGING_LEVEL  logging.level", got)
}

func TestRootCommand_HelpListsEnvironment(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Environment variables:")
	for _, spec := range config.EnvSpecs() {
		assert.Contains(t, out, spec.Name)
	}
}

func TestRootCommand_Verbose(t *testing.T) {
	isolate(t)

	_, _, err := run(t, "-v", "recipes")
	require.NoError(t, err)
	assert.True(t, observabilityDebugEnabled())
}

func observabilityDebugEnabled() bool {
	return observability.CLILogger.Core().Enabled(zapcore.DebugLevel)
}
