package webshot

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/snapstitch/snapshot"
)

// Config is the top-level snapstitch configuration.
type Config struct {
	Browser BrowserConfig   `yaml:"browser"`
	Capture snapshot.Config `yaml:"capture"`

	// HistoryDB is the SQLite path for the session history. Empty disables
	// history recording.
	HistoryDB string `yaml:"history_db"`

	// OutputDir is where captures land when a request names no path.
	OutputDir string `yaml:"output_dir"`

	// Listen is the HTTP listen address for the daemon.
	Listen string `yaml:"listen"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	// Remote is the WebSocket URL of an external Chrome. Empty = launch
	// a local headless one.
	Remote string `yaml:"remote"`

	// RecycleInterval bounds a Chrome process lifetime. Default: 4h.
	RecycleInterval time.Duration `yaml:"recycle_interval"`
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("webshot: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("webshot: parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Browser.RecycleInterval <= 0 {
		c.Browser.RecycleInterval = 4 * time.Hour
	}
	if c.OutputDir == "" {
		c.OutputDir = "captures"
	}
	if c.Listen == "" {
		c.Listen = ":8086"
	}
	// snapshot.Config zero values are filled in by snapshot.New.
}
