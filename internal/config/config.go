// Package config loads the optional membank configuration file. The file is
// JSON at ~/.membank/config.json (override with MEMBANK_CONFIG); its absence
// means the cloud mirror does not exist for this process lifetime.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SyncConfig describes the optional remote mirror.
type SyncConfig struct {
	Enabled   bool   `json:"enabled"`
	Addr      string `json:"addr"`
	Password  string `json:"password,omitempty"`
	DB        int    `json:"db,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	MachineID string `json:"machine_id,omitempty"`
}

// Config is the full configuration file shape.
type Config struct {
	Sync SyncConfig `json:"sync"`
}

// DefaultPath returns the config file location, honoring MEMBANK_CONFIG.
func DefaultPath() string {
	if env := os.Getenv("MEMBANK_CONFIG"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".membank", "config.json")
}

// Load reads the config file at path. A missing file returns (nil, nil): the
// caller treats that as "no optional components configured".
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Sync.Prefix == "" {
		cfg.Sync.Prefix = "membank"
	}
	return &cfg, nil
}
