// Package userconfig provides user configuration management for genia.
// Configuration is stored in $GENIA_HOME/config.toml and can be modified
// via the `genia config` and `genia key` commands.
package userconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/genia-lsp/genia/internal/config"
)

// DefaultTemperature is the sampling temperature sent with every candidate request.
const DefaultTemperature = 0.5

// DefaultProvider is the generation backend used when none is configured.
const DefaultProvider = "gemini"

// Config represents user-configurable settings.
type Config struct {
	// LLM holds generation settings.
	LLM LLMConfig `toml:"llm"`

	// OutputDir is where generated .lsp files are written.
	// Empty means $GENIA_HOME/scripts (or GENIA_OUTPUT_DIR).
	OutputDir string `toml:"output_dir,omitempty"`

	// Secrets holds API keys saved with `genia key set`.
	// Environment variables take precedence over these values.
	Secrets map[string]string `toml:"secrets,omitempty"`
}

// LLMConfig holds generation settings.
type LLMConfig struct {
	// Provider selects the backend ("gemini" or "claude").
	Provider string `toml:"provider,omitempty"`

	// Models is the ordered candidate list tried on each generation.
	// Empty means the provider's built-in list.
	Models []string `toml:"models,omitempty"`

	// Temperature is a pointer so an explicit 0 survives a round trip.
	Temperature *float64 `toml:"temperature,omitempty"`

	// MaxTokens caps the reply length. Zero lets the provider decide.
	MaxTokens int `toml:"max_tokens,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: DefaultProvider,
		},
	}
}

// Load reads the config file and returns the configuration.
// Returns default values if the file doesn't exist.
// Returns an error only for file parsing issues, not missing files.
func Load() (*Config, error) {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return DefaultConfig(), nil
	}

	return loadFromPath(cfg.ConfigFile)
}

// loadFromPath reads config from a specific file path (for testing).
func loadFromPath(path string) (*Config, error) {
	userCfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return userCfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), userCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if userCfg.LLM.Provider == "" {
		userCfg.LLM.Provider = DefaultProvider
	}

	return userCfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	cfg, err := config.DefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	return c.saveToPath(cfg.ConfigFile)
}

// saveToPath writes config to a specific file path (for testing).
// The file may hold API keys, so it is created owner-readable only.
func (c *Config) saveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LLMProvider returns the configured provider name.
func (c *Config) LLMProvider() string {
	if c.LLM.Provider == "" {
		return DefaultProvider
	}
	return c.LLM.Provider
}

// LLMModels returns the configured candidate models, or nil for the provider default.
func (c *Config) LLMModels() []string {
	return c.LLM.Models
}

// LLMTemperature returns the configured temperature or DefaultTemperature.
func (c *Config) LLMTemperature() float64 {
	if c.LLM.Temperature == nil {
		return DefaultTemperature
	}
	return *c.LLM.Temperature
}

// LLMMaxTokens returns the configured reply cap.
func (c *Config) LLMMaxTokens() int {
	return c.LLM.MaxTokens
}

// Get returns the value of a config key as a string.
// Returns empty string and false if the key doesn't exist.
func (c *Config) Get(key string) (string, bool) {
	switch strings.ToLower(key) {
	case "llm.provider":
		return c.LLMProvider(), true
	case "llm.models":
		return strings.Join(c.LLM.Models, ","), true
	case "llm.temperature":
		return strconv.FormatFloat(c.LLMTemperature(), 'f', -1, 64), true
	case "llm.max_tokens":
		return strconv.Itoa(c.LLM.MaxTokens), true
	case "output_dir":
		return c.OutputDir, true
	default:
		return "", false
	}
}

// Set updates a config value from a string.
// Returns an error if the key doesn't exist or the value is invalid.
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "llm.provider":
		v := strings.ToLower(strings.TrimSpace(value))
		if v != "gemini" && v != "claude" {
			return fmt.Errorf("invalid value for llm.provider: must be gemini or claude")
		}
		c.LLM.Provider = v
		return nil
	case "llm.models":
		c.LLM.Models = splitList(value)
		return nil
	case "llm.temperature":
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || f < 0 || f > 2 {
			return fmt.Errorf("invalid value for llm.temperature: must be a number between 0 and 2")
		}
		c.LLM.Temperature = &f
		return nil
	case "llm.max_tokens":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return fmt.Errorf("invalid value for llm.max_tokens: must be a non-negative integer")
		}
		c.LLM.MaxTokens = n
		return nil
	case "output_dir":
		c.OutputDir = strings.TrimSpace(value)
		return nil
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}

// SetSecret stores a secret value under [secrets].
func (c *Config) SetSecret(name, value string) {
	if c.Secrets == nil {
		c.Secrets = make(map[string]string)
	}
	c.Secrets[name] = value
}

// AvailableKeys returns a list of all configurable keys with descriptions.
func AvailableKeys() map[string]string {
	return map[string]string{
		"llm.provider":    "Generation backend (gemini/claude)",
		"llm.models":      "Comma-separated candidate models, tried in order",
		"llm.temperature": "Sampling temperature (0-2, default 0.5)",
		"llm.max_tokens":  "Maximum reply tokens (0 = provider default)",
		"output_dir":      "Directory for generated .lsp files",
	}
}

// splitList parses a comma-separated list, dropping blanks and duplicates.
func splitList(value string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}
