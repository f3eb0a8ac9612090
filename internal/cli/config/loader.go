package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/wssviz/internal/infra/confloader"
)

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "wssviz", "config.yaml")
	}
	return filepath.Join(".wssviz", "config.yaml")
}

// dataHome is the base directory for persistent state such as run history.
func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "wssviz")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "wssviz")
	}
	return ".wssviz"
}

// Load layers defaults, the config file, WSSVIZ_* variables and flags.
//
// An empty path uses DefaultConfigPath when that file exists. An explicit
// path must exist. Flags are keyed by dotted config path; only the flags the
// user actually set belong in it. The returned config is not validated.
func Load(path string, flags map[string]any) (*Config, error) {
	if path == "" {
		if p := DefaultConfigPath(); fileExists(p) {
			path = p
		}
	} else if !fileExists(path) {
		return nil, fmt.Errorf("config file %s: %w", path, os.ErrNotExist)
	}

	l := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithDefaults(Default().Map()),
		confloader.WithOverrides(flags),
	)

	cfg := &Config{}
	if err := l.Load(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if cfg == nil {
		return errors.New("config: nil config")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
