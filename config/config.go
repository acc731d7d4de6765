// Package config loads backend descriptor declarations from YAML and feeds
// them into a federation registry, so applications can declare their
// backends without code.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cyp0633/calfed/federation"
)

// BackendConfig declares one backend descriptor.
type BackendConfig struct {
	// Name labels the descriptor.
	Name string `yaml:"name"`
	// Factory names the factory registered with the registry.
	Factory string `yaml:"factory"`
	// Args are passed to the factory in order.
	Args []string `yaml:"args,omitempty"`
}

// Config is the top-level configuration file.
type Config struct {
	// Backends lists the descriptors to register, in order.
	Backends []BackendConfig `yaml:"backends"`
}

// DefaultConfig returns an in-memory default configuration declaring a
// single default backend.
func DefaultConfig() *Config {
	return &Config{
		Backends: []BackendConfig{
			{Name: "default", Factory: "memory"},
		},
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (parent
// directory created if needed, 0600 perms) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Backends == nil {
		cfg.Backends = []BackendConfig{}
	}
	return &cfg, nil
}

// Save writes the configuration as YAML with 0600 permissions.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Apply registers every declared descriptor with the registry. Construction
// happens later, when the registry's SetupAll runs.
func (c *Config) Apply(reg *federation.Registry) {
	for _, b := range c.Backends {
		reg.Register(federation.Descriptor{
			Name:    b.Name,
			Factory: b.Factory,
			Args:    b.Args,
		})
	}
}
