// Package secrets resolves and stores the API keys genia sends to the
// generation backends.
//
// Secrets are resolved by checking environment variables first, then
// the [secrets] section in $GENIA_HOME/config.toml. The config file is read
// once per process and re-read only after a Save.
//
// The Store interface is the single credential slot the wizard depends on.
// ConfigStore persists it in config.toml; MemoryStore keeps it in memory.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/genia-lsp/genia/internal/userconfig"
)

// ErrNotConfigured is returned when no source holds a value for a known secret.
var ErrNotConfigured = errors.New("secret not configured")

// KeyInfo describes a registered secret for external consumers.
type KeyInfo struct {
	// Name is the canonical key name (e.g., "google_api_key").
	Name string

	// EnvVars lists environment variables checked, in priority order.
	EnvVars []string

	// Desc is a human-readable description.
	Desc string
}

var (
	configOnce  sync.Once
	cachedCfg   *userconfig.Config
	configError error
)

func getConfig() (*userconfig.Config, error) {
	configOnce.Do(func() {
		cachedCfg, configError = userconfig.Load()
	})
	return cachedCfg, configError
}

// ResetConfig drops the cached config so the next lookup reloads from disk.
func ResetConfig() {
	configOnce = sync.Once{}
	cachedCfg = nil
	configError = nil
}

// Get resolves a secret by name, checking environment variables first,
// then the [secrets] section in config.toml.
// The returned error wraps ErrNotConfigured when no source has a value.
func Get(name string) (string, error) {
	spec, ok := knownKeys[name]
	if !ok {
		return "", fmt.Errorf("unknown secret key: %q", name)
	}

	for _, env := range spec.EnvVars {
		if val := strings.TrimSpace(os.Getenv(env)); val != "" {
			return val, nil
		}
	}

	cfg, err := getConfig()
	if err == nil && cfg != nil && cfg.Secrets != nil {
		if val := strings.TrimSpace(cfg.Secrets[name]); val != "" {
			return val, nil
		}
	}

	envList := strings.Join(spec.EnvVars, " or ")
	return "", fmt.Errorf(
		"%w: %s. Set the %s environment variable, or run 'genia key set'",
		ErrNotConfigured, name, envList,
	)
}

// IsSet checks whether a secret is available without returning its value.
// Returns false for unknown keys.
func IsSet(name string) bool {
	_, err := Get(name)
	return err == nil
}

// Set writes a secret to the [secrets] section of config.toml.
func Set(name, value string) error {
	if _, ok := knownKeys[name]; !ok {
		return fmt.Errorf("unknown secret key: %q", name)
	}

	cfg, err := userconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.SetSecret(name, value)
	if err := cfg.Save(); err != nil {
		return err
	}

	ResetConfig()
	return nil
}

// KnownKeys returns metadata for all registered secrets, sorted by name.
func KnownKeys() []KeyInfo {
	keys := make([]KeyInfo, 0, len(knownKeys))
	for name, spec := range knownKeys {
		keys = append(keys, KeyInfo{
			Name:    name,
			EnvVars: spec.EnvVars,
			Desc:    spec.Desc,
		})
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Name < keys[j].Name
	})
	return keys
}

// Store is a single persisted credential slot.
type Store interface {
	// Load returns the stored key. The error wraps ErrNotConfigured when empty.
	Load() (string, error)

	// Save overwrites the stored key.
	Save(key string) error
}

// ConfigStore is a Store backed by one named secret in config.toml.
type ConfigStore struct {
	name string
}

// NewConfigStore returns a Store for a registered secret name.
func NewConfigStore(name string) (*ConfigStore, error) {
	if _, ok := knownKeys[name]; !ok {
		return nil, fmt.Errorf("unknown secret key: %q", name)
	}
	return &ConfigStore{name: name}, nil
}

// NewProviderStore returns the Store holding the API key for a provider.
func NewProviderStore(provider string) (*ConfigStore, error) {
	name, ok := KeyForProvider(provider)
	if !ok {
		return nil, fmt.Errorf("no API key registered for provider %q", provider)
	}
	return &ConfigStore{name: name}, nil
}

// Name returns the secret name backing this store.
func (s *ConfigStore) Name() string {
	return s.name
}

// Load resolves the key from the environment or config.toml.
func (s *ConfigStore) Load() (string, error) {
	return Get(s.name)
}

// Save persists the key to config.toml.
func (s *ConfigStore) Save(key string) error {
	return Set(s.name, strings.TrimSpace(key))
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu  sync.Mutex
	key string
}

// NewMemoryStore returns a MemoryStore holding key.
func NewMemoryStore(key string) *MemoryStore {
	return &MemoryStore{key: key}
}

// Load returns the held key.
func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.TrimSpace(m.key) == "" {
		return "", ErrNotConfigured
	}
	return m.key, nil
}

// Save replaces the held key.
func (m *MemoryStore) Save(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = strings.TrimSpace(key)
	return nil
}
