package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/mvp-joe/project-gauge/internal/period"
	"github.com/mvp-joe/project-gauge/internal/qualitygate"
	"github.com/mvp-joe/project-gauge/internal/storage"
)

const memoryDatabase = ":memory:"

var (
	// ErrInvalidDatabasePath indicates a database path that can not name a SQLite file
	ErrInvalidDatabasePath = errors.New("invalid database path")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidExclusion indicates a malformed duplication exclusion glob
	ErrInvalidExclusion = errors.New("invalid duplication exclusion")

	// ErrInvalidCondition indicates a malformed quality gate condition
	ErrInvalidCondition = errors.New("invalid quality gate condition")

	// ErrDuplicateCondition indicates two conditions on the same metric and period
	ErrDuplicateCondition = errors.New("duplicate quality gate condition")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Validate checks that the configuration is valid and complete. Every
// problem found is reported, not only the first one.
func Validate(cfg *Config) error {
	var result *multierror.Error

	result = multierror.Append(result, validateLeakPeriod(cfg.LeakPeriod))
	result = multierror.Append(result, validateStorage(&cfg.Storage))
	result = multierror.Append(result, validateDuplication(&cfg.Duplication))
	result = multierror.Append(result, validateQualityGate(&cfg.QualityGate))
	result = multierror.Append(result, validateLog(&cfg.Log))

	return result.ErrorOrNil()
}

func validateLeakPeriod(setting string) error {
	// Dates, versions and previous_version are only checked against history;
	// a negative day count can never resolve.
	if days, err := strconv.Atoi(setting); err == nil && days < 0 {
		return fmt.Errorf("%w: leak_period must not be negative, got %d", period.ErrInvalidLeakPeriod, days)
	}
	return nil
}

func validateStorage(cfg *StorageConfig) error {
	var result *multierror.Error

	db := strings.TrimSpace(cfg.Database)
	switch {
	case db == "":
		result = multierror.Append(result, fmt.Errorf("%w: storage.database is required", ErrInvalidDatabasePath))
	case db == memoryDatabase:
	case strings.Contains(db, "://"):
		result = multierror.Append(result, fmt.Errorf("%w: %q, only local SQLite files are supported", ErrInvalidDatabasePath, db))
	case strings.HasSuffix(db, "/") || strings.HasSuffix(db, string(filepath.Separator)) || filepath.Base(db) == "." || filepath.Base(db) == "..":
		result = multierror.Append(result, fmt.Errorf("%w: %q is a directory", ErrInvalidDatabasePath, db))
	}

	if err := storage.ValidateLockName(cfg.LockName); err != nil {
		result = multierror.Append(result, err)
	}
	if cfg.LockTimeout < 0 {
		result = multierror.Append(result, fmt.Errorf("storage.lock_timeout can not be negative, got %d", cfg.LockTimeout))
	}

	return result.ErrorOrNil()
}

func validateDuplication(cfg *DuplicationConfig) error {
	var result *multierror.Error

	if cfg.Workers < 0 {
		result = multierror.Append(result, fmt.Errorf("%w: duplication.workers can not be negative, got %d", ErrInvalidWorkers, cfg.Workers))
	}
	for _, pattern := range cfg.Exclusions {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			result = multierror.Append(result, fmt.Errorf("%w: %q: %v", ErrInvalidExclusion, pattern, err))
		}
	}

	return result.ErrorOrNil()
}

func validateQualityGate(cfg *QualityGateConfig) error {
	var result *multierror.Error

	if cfg.SmallChangesetLines < 0 {
		result = multierror.Append(result, fmt.Errorf("quality_gate.small_changeset_lines can not be negative, got %d", cfg.SmallChangesetLines))
	}

	seen := make(map[string]bool, len(cfg.Conditions))
	for i, c := range cfg.Conditions {
		if strings.TrimSpace(c.Metric) == "" {
			result = multierror.Append(result, fmt.Errorf("%w: condition %d has no metric", ErrInvalidCondition, i))
			continue
		}
		if _, err := qualitygate.ParseOperator(c.Op); err != nil {
			result = multierror.Append(result, fmt.Errorf("%w: condition on %s: %v", ErrInvalidCondition, c.Metric, err))
		}
		if strings.TrimSpace(c.Error) == "" && strings.TrimSpace(c.Warning) == "" {
			result = multierror.Append(result, fmt.Errorf("%w: condition on %s has no threshold", ErrInvalidCondition, c.Metric))
		}

		key := c.Metric
		if c.OnLeak {
			key += "@leak"
		}
		if seen[key] {
			result = multierror.Append(result, fmt.Errorf("%w: %s", ErrDuplicateCondition, c.Metric))
		}
		seen[key] = true
	}

	return result.ErrorOrNil()
}

func validateLog(cfg *LogConfig) error {
	if cfg.Level == "" {
		return nil
	}
	if hclog.LevelFromString(cfg.Level) == hclog.NoLevel {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.Level)
	}
	return nil
}
