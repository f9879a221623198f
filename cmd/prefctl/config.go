package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is prefctl's on-disk YAML configuration, matching the shape
// of a small deployment-local settings file rather than a full schema.
type Config struct {
	DataDir        string `yaml:"data_dir"`
	PrivatePrefix  string `yaml:"private_prefix"`
	AppStatePrefix string `yaml:"app_state_prefix"`
	ExportPrivate  bool   `yaml:"export_private"`
	ExportAppState bool   `yaml:"export_app_state"`
}

// LoadConfig reads and parses path as YAML. A missing file is not an
// error: prefctl falls back to sane defaults (a "./data" directory,
// no private/app-state key convention).
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{DataDir: "./data"}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	return cfg, nil
}
