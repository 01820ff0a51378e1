// Package config loads gojobcfg settings.
//
// Precedence, lowest to highest: built-in defaults, config file, GOJOBCFG_*
// environment variables, runtime overrides (typically bound CLI flags).
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/3leaps/gojobcfg/pkg/output"
)

// AppName is the binary name and config directory name.
const AppName = "gojobcfg"

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "GOJOBCFG"

// Config is the resolved application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Recipe     string           `mapstructure:"recipe"`
	Output     OutputConfig     `mapstructure:"output"`
	JobStore   JobStoreConfig   `mapstructure:"jobstore"`
	Conditions ConditionsConfig `mapstructure:"conditions"`
}

// LoggingConfig controls the CLI logger.
type LoggingConfig struct {
	Level   zapcore.Level `mapstructure:"level"`
	Profile string        `mapstructure:"profile"`
}

// OutputConfig controls job emission.
type OutputConfig struct {
	Format output.Format `mapstructure:"format"`
}

// JobStoreConfig locates the on-disk job store.
type JobStoreConfig struct {
	Dir string `mapstructure:"dir"`
}

// ConditionsConfig points at an optional offline conditions catalog.
type ConditionsConfig struct {
	Catalog string `mapstructure:"catalog"`
}

// EnvSpec maps one environment variable to a config key path.
type EnvSpec struct {
	Name string
	Path string
}

var (
	configMu   sync.RWMutex
	appConfig  *Config
	configFile string
)

// SetConfigFile pins the config file used by Load. An empty path restores
// discovery.
func SetConfigFile(path string) {
	configMu.Lock()
	defer configMu.Unlock()
	configFile = strings.TrimSpace(path)
}

// Load resolves configuration and stores it for GetConfig.
func Load(ctx context.Context, overrides ...map[string]any) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	configMu.RLock()
	explicit := configFile
	configMu.RUnlock()

	v := viper.New()
	setDefaults(v)

	for _, spec := range EnvSpecs() {
		if err := v.BindEnv(spec.Path, spec.Name); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", spec.Name, err)
		}
	}

	if err := readConfigFile(v, explicit); err != nil {
		return nil, err
	}

	for _, layer := range overrides {
		if len(layer) == 0 {
			continue
		}
		// Set() wins over env and file values.
		for key, val := range flatten("", layer) {
			v.Set(key, val)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		trimStringHook,
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	configMu.Lock()
	appConfig = &cfg
	configMu.Unlock()
	return &cfg, nil
}

// GetConfig returns the most recently loaded config, or nil before Load.
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "console")
	v.SetDefault("recipe", "upart-standalone")
	v.SetDefault("output.format", "json")
	v.SetDefault("jobstore.dir", defaultJobStoreDir())
	v.SetDefault("conditions.catalog", "")
}

func readConfigFile(v *viper.Viper, explicit string) error {
	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", explicit, err)
		}
		return nil
	}

	v.SetConfigName(AppName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	for _, dir := range getUserConfigPaths() {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// getUserConfigPaths returns the per-user config directories searched
// after the working directory.
func getUserConfigPaths() []string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return []string{}
	}
	return []string{filepath.Join(dir, AppName)}
}

// EnvSpecs lists the environment variables Load binds onto config keys.
func EnvSpecs() []EnvSpec {
	keys := []string{"logging.level", "logging.profile", "recipe", "output.format", "jobstore.dir", "conditions.catalog"}
	specs := make([]EnvSpec, 0, len(keys))
	for _, key := range keys {
		specs = append(specs, EnvSpec{
			Name: EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_")),
			Path: key,
		})
	}
	return specs
}

func defaultJobStoreDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "jobs")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "share", AppName, "jobs")
	}
	return filepath.Join(os.TempDir(), AppName, "jobs")
}

func (c *Config) validate() error {
	switch c.Logging.Profile {
	case "console", "structured":
	default:
		return fmt.Errorf("logging.profile must be console or structured, got %q", c.Logging.Profile)
	}
	if _, err := output.ParseFormat(string(c.Output.Format)); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.Recipe == "" {
		return fmt.Errorf("recipe must not be empty")
	}
	return nil
}

func flatten(prefix string, m map[string]any) map[string]any {
	out := make(map[string]any)
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = val
	}
	return out
}

func trimStringHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.String {
		return data, nil
	}
	return strings.TrimSpace(reflect.ValueOf(data).String()), nil
}
