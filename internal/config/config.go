// Package config loads the YAML configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Storage backend selectors.
const (
	StorageDisk   = "disk"
	StorageSQLite = "sqlite"
)

// Config holds everything the binary needs to run.
type Config struct {
	// DataDir is where the disk backend keeps dataset files, or where the
	// sqlite backend keeps its database file.
	DataDir string `yaml:"data_dir"`

	// Storage selects the durable backend: "disk" or "sqlite".
	Storage string `yaml:"storage"`

	// ListenAddr is the REST façade's bind address.
	ListenAddr string `yaml:"listen_addr"`

	// GeocoderURL is the base URL of the address lookup service.
	GeocoderURL string `yaml:"geocoder_url"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:     "data",
		Storage:     StorageDisk,
		ListenAddr:  ":4321",
		GeocoderURL: "http://localhost:11316/api/v1",
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Storage != StorageDisk && cfg.Storage != StorageSQLite {
		return Config{}, fmt.Errorf("config %s: storage must be %q or %q, got %q",
			path, StorageDisk, StorageSQLite, cfg.Storage)
	}
	return cfg, nil
}
