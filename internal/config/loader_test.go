package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/3leaps/gojobcfg/pkg/output"
)

// isolate points file discovery and data dirs at empty temp dirs.
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".data"))
	t.Chdir(t.TempDir())
	SetConfigFile("")
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadDefaults", func(t *testing.T) {
		isolate(t)

		cfg, err := Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, zapcore.InfoLevel, cfg.Logging.Level)
		assert.Equal(t, "console", cfg.Logging.Profile)
		assert.Equal(t, "upart-standalone", cfg.Recipe)
		assert.Equal(t, output.FormatJSON, cfg.Output.Format)
		assert.Equal(t, filepath.Join(os.Getenv("XDG_DATA_HOME"), "gojobcfg", "jobs"), cfg.JobStore.Dir)
		assert.Empty(t, cfg.Conditions.Catalog)
	})

	t.Run("RuntimeOverrides", func(t *testing.T) {
		isolate(t)

		cfg, err := Load(ctx, map[string]any{
			"logging": map[string]any{"level": "debug"},
			"output":  map[string]any{"format": "yaml"},
		})
		require.NoError(t, err)

		assert.Equal(t, zapcore.DebugLevel, cfg.Logging.Level)
		assert.Equal(t, output.FormatYAML, cfg.Output.Format)
		assert.Equal(t, "console", cfg.Logging.Profile)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		isolate(t)
		t.Setenv("GOJOBCFG_LOGGING_LEVEL", "warn")
		t.Setenv("GOJOBCFG_RECIPE", "upart-minimal")
		t.Setenv("GOJOBCFG_OUTPUT_FORMAT", " JSONL ")

		cfg, err := Load(ctx)
		require.NoError(t, err)

		assert.Equal(t, zapcore.WarnLevel, cfg.Logging.Level)
		assert.Equal(t, "upart-minimal", cfg.Recipe)
		assert.Equal(t, output.FormatJSONL, cfg.Output.Format)
	})

	t.Run("ConfigPrecedence", func(t *testing.T) {
		isolate(t)
		t.Setenv("GOJOBCFG_RECIPE", "from-env")

		cfg, err := Load(ctx, map[string]any{"recipe": "from-flag"})
		require.NoError(t, err)
		assert.Equal(t, "from-flag", cfg.Recipe)
	})

	t.Run("ConfigFileDiscoveredInWorkingDir", func(t *testing.T) {
		isolate(t)
		require.NoError(t, os.WriteFile("gojobcfg.yaml", []byte("recipe: upart-minimal\nlogging:\n  profile: structured\n"), 0644))

		cfg, err := Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "upart-minimal", cfg.Recipe)
		assert.Equal(t, "structured", cfg.Logging.Profile)
	})

	t.Run("ExplicitConfigFile", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(path, []byte("jobstore:\n  dir: /srv/jobs\n"), 0644))
		SetConfigFile(path)
		defer SetConfigFile("")

		cfg, err := Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "/srv/jobs", cfg.JobStore.Dir)
	})

	t.Run("MissingExplicitConfigFile", func(t *testing.T) {
		isolate(t)
		SetConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
		defer SetConfigFile("")

		_, err := Load(ctx)
		require.Error(t, err)
	})
}

func TestLoad_InvalidValues(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{name: "bad level", overrides: map[string]any{"logging": map[string]any{"level": "loud"}}},
		{name: "bad profile", overrides: map[string]any{"logging": map[string]any{"profile": "fancy"}}},
		{name: "bad format", overrides: map[string]any{"output": map[string]any{"format": "toml"}}},
		{name: "empty recipe", overrides: map[string]any{"recipe": " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(ctx, tt.overrides)
			require.Error(t, err)
		})
	}
}

func TestGetConfig(t *testing.T) {
	isolate(t)
	ctx := context.Background()

	cfg, err := Load(ctx, map[string]any{"recipe": "upart-minimal"})
	require.NoError(t, err)

	retrieved := GetConfig()
	require.NotNil(t, retrieved)
	assert.Equal(t, cfg.Recipe, retrieved.Recipe)

	cfg2, err := Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg2.Recipe, GetConfig().Recipe)
}

func TestLoad_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEnvSpecsPrefixHandling(t *testing.T) {
	specs := EnvSpecs()
	require.NotEmpty(t, specs)

	names := make(map[string]string)
	for _, spec := range specs {
		assert.Contains(t, spec.Name, "GOJOBCFG_", "all specs should have GOJOBCFG_ prefix")
		assert.NotEmpty(t, spec.Path, "env var %s should have a path", spec.Name)
		names[spec.Name] = spec.Path
	}
	assert.Equal(t, "logging.level", names["GOJOBCFG_LOGGING_LEVEL"])
	assert.Equal(t, "jobstore.dir", names["GOJOBCFG_JOBSTORE_DIR"])
}

func TestFlatten(t *testing.T) {
	got := flatten("", map[string]any{
		"recipe":  "r",
		"logging": map[string]any{"level": "debug", "profile": "console"},
	})
	assert.Equal(t, map[string]any{
		"recipe":          "r",
		"logging.level":   "debug",
		"logging.profile": "console",
	}, got)
}
