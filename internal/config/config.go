package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// EnvGeniaHome overrides the default genia home directory
	EnvGeniaHome = "GENIA_HOME"

	// EnvAPITimeout bounds a single model attempt against the generation API
	EnvAPITimeout = "GENIA_API_TIMEOUT"

	// EnvOutputDir overrides the directory where generated .lsp files are written
	EnvOutputDir = "GENIA_OUTPUT_DIR"

	// DefaultAPITimeout is the default per-candidate timeout (60 seconds)
	DefaultAPITimeout = 60 * time.Second

	minAPITimeout = 1 * time.Second
	maxAPITimeout = 10 * time.Minute
)

// DefaultHomeOverride replaces ~/.genia when GENIA_HOME is unset.
// Tests set it to a temporary directory.
var DefaultHomeOverride string

// GetAPITimeout returns the configured per-candidate timeout from GENIA_API_TIMEOUT.
// If not set or invalid, returns DefaultAPITimeout.
// Accepts duration strings like "30s", "1m", "2m30s".
func GetAPITimeout() time.Duration {
	envValue := os.Getenv(EnvAPITimeout)
	if envValue == "" {
		return DefaultAPITimeout
	}

	duration, err := time.ParseDuration(envValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %v\n",
			EnvAPITimeout, envValue, DefaultAPITimeout)
		return DefaultAPITimeout
	}

	if duration < minAPITimeout {
		fmt.Fprintf(os.Stderr, "Warning: %s too low (%v), using minimum %v\n",
			EnvAPITimeout, duration, minAPITimeout)
		return minAPITimeout
	}
	if duration > maxAPITimeout {
		fmt.Fprintf(os.Stderr, "Warning: %s too high (%v), using maximum %v\n",
			EnvAPITimeout, duration, maxAPITimeout)
		return maxAPITimeout
	}

	return duration
}

// Config holds the filesystem layout of a genia installation.
type Config struct {
	HomeDir    string // $GENIA_HOME
	OutputDir  string // $GENIA_HOME/scripts, unless GENIA_OUTPUT_DIR is set
	ConfigFile string // $GENIA_HOME/config.toml
}

// DefaultConfig returns the default configuration
func DefaultConfig() (*Config, error) {
	home := os.Getenv(EnvGeniaHome)
	if home == "" {
		if DefaultHomeOverride != "" {
			home = DefaultHomeOverride
		} else {
			userHome, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get user home directory: %w", err)
			}
			home = filepath.Join(userHome, ".genia")
		}
	}

	outputDir := os.Getenv(EnvOutputDir)
	if outputDir == "" {
		outputDir = filepath.Join(home, "scripts")
	}

	return &Config{
		HomeDir:    home,
		OutputDir:  outputDir,
		ConfigFile: filepath.Join(home, "config.toml"),
	}, nil
}

// EnsureDirectories creates the home and output directories
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.HomeDir, c.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
