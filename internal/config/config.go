// Package config loads and saves prism workspace configuration from
// .prism/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all prism configuration.
type Config struct {
	Indexer IndexerConfig `yaml:"indexer"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// IndexerConfig configures workspace scanning and chunking.
type IndexerConfig struct {
	// Chunk token budgets. Zero means the chunker defaults.
	ChunkTokens    int `yaml:"chunk_tokens"`
	OverlapTokens  int `yaml:"overlap_tokens"`
	MaxChunkTokens int `yaml:"max_chunk_tokens"`

	// Concurrency bounds the number of files parsed at once.
	Concurrency int `yaml:"concurrency"`

	// IgnoreDirs are directory names skipped during scans, in addition
	// to hidden directories.
	IgnoreDirs []string `yaml:"ignore_dirs"`
}

// StoreConfig configures the SQLite index.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures the categorized debug logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// Default returns the configuration used when no config file exists.
func Default(workspace string) *Config {
	return &Config{
		Indexer: IndexerConfig{
			ChunkTokens:    512,
			OverlapTokens:  128,
			MaxChunkTokens: 1000,
			Concurrency:    8,
			IgnoreDirs:     []string{"node_modules", "vendor", "target", "dist", "build"},
		},
		Store: StoreConfig{
			DatabasePath: filepath.Join(workspace, ".prism", "index.db"),
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Load reads .prism/config.yaml from the workspace, applying defaults for
// missing sections and the PRISM_DB_PATH environment override. A missing
// config file is not an error.
func Load(workspace string) (*Config, error) {
	cfg := Default(workspace)

	path := filepath.Join(workspace, ".prism", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.fillDefaults(workspace)
	cfg.applyEnv()
	return cfg, nil
}

// Save writes the config to .prism/config.yaml in the workspace.
func (c *Config) Save(workspace string) error {
	dir := filepath.Join(workspace, ".prism")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) fillDefaults(workspace string) {
	def := Default(workspace)
	if c.Indexer.ChunkTokens <= 0 {
		c.Indexer.ChunkTokens = def.Indexer.ChunkTokens
	}
	if c.Indexer.OverlapTokens <= 0 {
		c.Indexer.OverlapTokens = def.Indexer.OverlapTokens
	}
	if c.Indexer.MaxChunkTokens <= 0 {
		c.Indexer.MaxChunkTokens = def.Indexer.MaxChunkTokens
	}
	if c.Indexer.Concurrency <= 0 {
		c.Indexer.Concurrency = def.Indexer.Concurrency
	}
	if c.Indexer.IgnoreDirs == nil {
		c.Indexer.IgnoreDirs = def.Indexer.IgnoreDirs
	}
	if c.Store.DatabasePath == "" {
		c.Store.DatabasePath = def.Store.DatabasePath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}

func (c *Config) applyEnv() {
	if path := os.Getenv("PRISM_DB_PATH"); path != "" {
		c.Store.DatabasePath = path
	}
}
