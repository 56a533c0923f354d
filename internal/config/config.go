// Package config loads the TOML configuration for the arbor CLI.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DBPath     string   `toml:"db_path"`
	Extensions []string `toml:"extensions"`
	Exclude    Exclude  `toml:"exclude"`
	Cache      Cache    `toml:"cache"`
	Watch      Watch    `toml:"watch"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"` // glob patterns, e.g. "*_test.pike"
}

type Cache struct {
	MaxArtifacts int `toml:"max_artifacts"`
	MaxModules   int `toml:"max_modules"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// MaxReindexPerSec throttles re-parses during event storms.
	MaxReindexPerSec float64 `toml:"max_reindex_per_sec"`
}

// ExcludedDir reports whether a directory base name is excluded from
// indexing and watching.
func (c *Config) ExcludedDir(name string) bool {
	for _, d := range c.Exclude.Dirs {
		if d == name {
			return true
		}
	}
	return false
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		DBPath:     "arbor.db",
		Extensions: []string{".pike", ".pmod"},
		Exclude: Exclude{
			Dirs: []string{".git"},
		},
		Watch: Watch{
			Debounce:         500 * time.Millisecond,
			MaxReindexPerSec: 20,
		},
	}
}

// Load reads a TOML config file, filling unset fields with defaults. A
// missing file is not an error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = "arbor.db"
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".pike", ".pmod"}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxReindexPerSec == 0 {
		cfg.Watch.MaxReindexPerSec = 20
	}
	return cfg, nil
}
