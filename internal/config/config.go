// Package config provides configuration loading for gauge.
//
// Configuration is read from .gauge/config.yml in the project directory,
// with GAUGE_* environment variables taking precedence:
//
//	leak_period: previous_version
//	storage:
//	  database: .gauge/history.db
//	duplication:
//	  exclusions: ["**/generated/**"]
//	quality_gate:
//	  conditions:
//	    - metric: new_coverage
//	      op: LT
//	      error: "80"
//	      on_leak: true
//
// Nested keys map to environment variables with underscores, for example
// GAUGE_STORAGE_DATABASE or GAUGE_LOG_LEVEL.
package config

import (
	"path/filepath"

	"github.com/mvp-joe/project-gauge/internal/engine"
	"github.com/mvp-joe/project-gauge/internal/qualitygate"
)

// DirName is the per-project directory holding the config file and the
// default history database.
const DirName = ".gauge"

// Config represents the complete gauge configuration.
type Config struct {
	// LeakPeriod is the default sonar.leak.period setting: a date
	// (yyyy-MM-dd), a number of days, "previous_version" or a version label.
	LeakPeriod  string            `yaml:"leak_period" mapstructure:"leak_period"`
	Storage     StorageConfig     `yaml:"storage" mapstructure:"storage"`
	Duplication DuplicationConfig `yaml:"duplication" mapstructure:"duplication"`
	QualityGate QualityGateConfig `yaml:"quality_gate" mapstructure:"quality_gate"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// StorageConfig locates the history database.
type StorageConfig struct {
	Database    string `yaml:"database" mapstructure:"database"`         // SQLite file, relative to the project directory
	LockName    string `yaml:"lock_name" mapstructure:"lock_name"`       // lock file name beside the database
	LockTimeout int    `yaml:"lock_timeout" mapstructure:"lock_timeout"` // seconds to wait for a running analysis
}

// DuplicationConfig controls duplication loading.
type DuplicationConfig struct {
	Exclusions []string `yaml:"exclusions" mapstructure:"exclusions"` // glob patterns on file paths
	Workers    int      `yaml:"workers" mapstructure:"workers"`       // 0 means one per CPU
}

// QualityGateConfig holds the gate conditions of the project.
type QualityGateConfig struct {
	Conditions          []ConditionConfig `yaml:"conditions" mapstructure:"conditions"`
	SmallChangesetLines int               `yaml:"small_changeset_lines" mapstructure:"small_changeset_lines"`
	NewCoverageMetrics  []string          `yaml:"new_coverage_metrics" mapstructure:"new_coverage_metrics"`
}

// ConditionConfig is one quality gate condition.
type ConditionConfig struct {
	Metric  string `yaml:"metric" mapstructure:"metric"`
	Op      string `yaml:"op" mapstructure:"op"`
	Error   string `yaml:"error" mapstructure:"error"`
	Warning string `yaml:"warning" mapstructure:"warning"`
	OnLeak  bool   `yaml:"on_leak" mapstructure:"on_leak"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level           string `yaml:"level" mapstructure:"level"`
	JSON            bool   `yaml:"json" mapstructure:"json"`
	IncludeLocation bool   `yaml:"include_location" mapstructure:"include_location"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		LeakPeriod: "previous_version",
		Storage: StorageConfig{
			Database:    filepath.Join(DirName, "history.db"),
			LockName:    "analysis",
			LockTimeout: 30,
		},
		Duplication: DuplicationConfig{
			Exclusions: []string{},
			Workers:    0,
		},
		QualityGate: QualityGateConfig{
			Conditions:          []ConditionConfig{},
			SmallChangesetLines: qualitygate.DefaultSmallChangesetLines,
			NewCoverageMetrics:  nil, // nil means the built-in new coverage family
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DatabasePath returns the database path resolved against rootDir.
func (c *Config) DatabasePath(rootDir string) string {
	if filepath.IsAbs(c.Storage.Database) || c.Storage.Database == memoryDatabase {
		return c.Storage.Database
	}
	return filepath.Join(rootDir, c.Storage.Database)
}

// ToEngineSettings converts the configuration to the engine's analysis settings.
func (c *Config) ToEngineSettings() engine.Settings {
	conditions := make([]engine.ConditionSetting, 0, len(c.QualityGate.Conditions))
	for _, cc := range c.QualityGate.Conditions {
		conditions = append(conditions, engine.ConditionSetting{
			Metric:  cc.Metric,
			Op:      cc.Op,
			Error:   cc.Error,
			Warning: cc.Warning,
			OnLeak:  cc.OnLeak,
		})
	}
	return engine.Settings{
		LeakPeriod:            c.LeakPeriod,
		DuplicationExclusions: c.Duplication.Exclusions,
		DuplicationWorkers:    c.Duplication.Workers,
		Conditions:            conditions,
		SmallChangesetLines:   c.QualityGate.SmallChangesetLines,
		NewCoverageMetrics:    c.QualityGate.NewCoverageMetrics,
	}
}
