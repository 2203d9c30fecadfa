package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given project directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader reading an explicit config file instead of
// <rootDir>/.gauge/config.yml. A missing file is an error.
func NewFileLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (GAUGE_*)
// 2. Config file (.gauge/config.yml or .gauge/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, DirName))
	}

	// GAUGE_STORAGE_DATABASE overrides storage.database, and so on.
	v.SetEnvPrefix("GAUGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("leak_period")

	v.BindEnv("storage.database")
	v.BindEnv("storage.lock_name")
	v.BindEnv("storage.lock_timeout")

	v.BindEnv("duplication.exclusions")
	v.BindEnv("duplication.workers")

	v.BindEnv("quality_gate.small_changeset_lines")
	v.BindEnv("quality_gate.new_coverage_metrics")

	v.BindEnv("log.level")
	v.BindEnv("log.json")
	v.BindEnv("log.include_location")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable unless one was named explicitly
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("leak_period", defaults.LeakPeriod)

	v.SetDefault("storage.database", defaults.Storage.Database)
	v.SetDefault("storage.lock_name", defaults.Storage.LockName)
	v.SetDefault("storage.lock_timeout", defaults.Storage.LockTimeout)

	v.SetDefault("duplication.exclusions", defaults.Duplication.Exclusions)
	v.SetDefault("duplication.workers", defaults.Duplication.Workers)

	v.SetDefault("quality_gate.conditions", defaults.QualityGate.Conditions)
	v.SetDefault("quality_gate.small_changeset_lines", defaults.QualityGate.SmallChangesetLines)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.json", defaults.Log.JSON)
	v.SetDefault("log.include_location", defaults.Log.IncludeLocation)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the project directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific project directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
