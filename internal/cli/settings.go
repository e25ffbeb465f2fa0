package cli

// This file resolves bridge settings for the commands that need them.

import (
	"fmt"
	"os"

	"pgbridge/internal/config"
)

// getenv is a test seam for os.Getenv.
var getenv = os.Getenv

// Overrides are settings given as command-line flags.
type Overrides struct {
	MinLevel       string
	ServerEncoding string
}

// resolveConfig returns the settings using precedence:
// CLI flags > environment variables (PGBRIDGE_*) > config file > defaults.
func resolveConfig(path string, flags Overrides) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, wrapWithSentinelAndContext(ErrLoadConfigFailed, err,
			fmt.Sprintf("failed to load config: %v", err), map[string]any{"path": path})
	}
	cfg.ApplyEnv(getenv)
	if flags.MinLevel != "" {
		cfg.MinLevel = flags.MinLevel
	}
	if flags.ServerEncoding != "" {
		cfg.ServerEncoding = flags.ServerEncoding
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, wrapWithSentinel(ErrInvalidConfig, err, fmt.Sprintf("invalid configuration: %v", err))
	}
	return cfg, nil
}
