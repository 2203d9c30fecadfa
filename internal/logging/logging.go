// Package logging builds the hclog logger shared by every gauge command.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/mvp-joe/project-gauge/internal/config"
)

// LevelEnv overrides the configured level when set.
const LevelEnv = "GAUGE_LOG_LEVEL"

// New creates the root logger, named "gauge", writing to stderr.
func New(cfg config.LogConfig) hclog.Logger {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(cfg config.LogConfig, out io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:            "gauge",
		Output:          out,
		Level:           Level(cfg),
		JSONFormat:      cfg.JSON,
		IncludeLocation: cfg.IncludeLocation,
	})
}

// Level returns the effective level: GAUGE_LOG_LEVEL, then cfg.Level, then info.
func Level(cfg config.LogConfig) hclog.Level {
	if env := os.Getenv(LevelEnv); env != "" {
		if level := hclog.LevelFromString(env); level != hclog.NoLevel {
			return level
		}
	}
	if level := hclog.LevelFromString(cfg.Level); level != hclog.NoLevel {
		return level
	}
	return hclog.Info
}
