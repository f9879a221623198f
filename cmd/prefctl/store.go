package main

import (
	"path/filepath"
	"strings"

	"github.com/cuemby/prefstore/pkg/backup"
	"github.com/cuemby/prefstore/pkg/datastore"
)

// openDatastore constructs the preferences datastore at cfg.DataDir,
// wiring a Classifier from cfg's configured key prefixes. An empty
// prefix disables that predicate entirely (every key is neither
// private nor app-state with respect to it).
func openDatastore(cfg *Config) (*datastore.Preferences, error) {
	classifier := backup.Classifier{}
	if cfg.PrivatePrefix != "" {
		classifier.IsPrivate = func(key string) bool { return strings.HasPrefix(key, cfg.PrivatePrefix) }
	}
	if cfg.AppStatePrefix != "" {
		classifier.IsAppState = func(key string) bool { return strings.HasPrefix(key, cfg.AppStatePrefix) }
	}

	path := filepath.Join(cfg.DataDir, "prefctl.db")
	return datastore.PreferencesDatastore("prefctl", func() (string, error) { return path, nil },
		datastore.WithClassifier(classifier))
}
