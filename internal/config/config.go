package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gzhole/faultcorpus/internal/fault"
)

const (
	DefaultConfigDir   = ".faultcorpus"
	DefaultConfigYAML  = "config.yaml"
	DefaultConfigTOML  = "config.toml"
	DefaultLogFile     = "faults.jsonl"
	DefaultCatalogFile = "cases.yaml"

	// DefaultHeapLimit caps the simulated heap each fixture run gets.
	DefaultHeapLimit uint64 = 256 << 20
)

type Config struct {
	ConfigDir   string
	ConfigPath  string
	LogPath     string
	CatalogPath string
	HeapLimit   uint64
	Format      fault.Format
}

// fileConfig is the on-disk shape shared by config.yaml and config.toml.
type fileConfig struct {
	LogPath     string `yaml:"log_path" toml:"log_path"`
	CatalogPath string `yaml:"catalog_path" toml:"catalog_path"`
	HeapLimit   uint64 `yaml:"heap_limit" toml:"heap_limit"`
	Format      string `yaml:"format" toml:"format"`
}

// Load resolves the configuration. Explicit paths win over the config file,
// which wins over the defaults under ~/.faultcorpus. A missing config file
// is not an error; an unreadable or malformed one is.
func Load(configPath, logPath, catalogPath string) (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configDir := filepath.Join(homeDir, DefaultConfigDir)

	if err := ensureDir(configDir); err != nil {
		return nil, err
	}

	cfg := &Config{
		ConfigDir:   configDir,
		LogPath:     filepath.Join(configDir, DefaultLogFile),
		CatalogPath: filepath.Join(configDir, DefaultCatalogFile),
		HeapLimit:   DefaultHeapLimit,
		Format:      fault.FormatText,
	}

	fc, path, err := readFile(configDir, configPath)
	if err != nil {
		return nil, err
	}
	cfg.ConfigPath = path
	if fc != nil {
		if err := cfg.apply(fc); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if logPath != "" {
		cfg.LogPath = logPath
	}
	if catalogPath != "" {
		cfg.CatalogPath = catalogPath
	}

	return cfg, nil
}

// DefaultCatalog reports whether the catalog path is the unconfigured
// default under the config dir, which need not exist.
func (c *Config) DefaultCatalog() bool {
	return c.CatalogPath == filepath.Join(c.ConfigDir, DefaultCatalogFile)
}

func (c *Config) apply(fc *fileConfig) error {
	if fc.LogPath != "" {
		c.LogPath = fc.LogPath
	}
	if fc.CatalogPath != "" {
		c.CatalogPath = fc.CatalogPath
	}
	if fc.HeapLimit != 0 {
		c.HeapLimit = fc.HeapLimit
	}
	if fc.Format != "" {
		format, err := fault.ParseFormat(fc.Format)
		if err != nil {
			return err
		}
		c.Format = format
	}
	return nil
}

// readFile loads the explicit config file, or the first of config.yaml and
// config.toml found in dir. The returned path is empty when nothing was read.
func readFile(dir, explicit string) (*fileConfig, string, error) {
	candidates := []string{
		filepath.Join(dir, DefaultConfigYAML),
		filepath.Join(dir, DefaultConfigTOML),
	}
	if explicit != "" {
		candidates = []string{explicit}
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && explicit == "" {
				continue
			}
			return nil, "", fmt.Errorf("reading config: %w", err)
		}

		var fc fileConfig
		if filepath.Ext(path) == ".toml" {
			if _, err := toml.Decode(string(data), &fc); err != nil {
				return nil, "", fmt.Errorf("parsing %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, "", fmt.Errorf("parsing %s: %w", path, err)
		}
		return &fc, path, nil
	}
	return nil, "", nil
}

func ensureDir(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0700)
	}
	return nil
}
