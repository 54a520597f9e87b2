// Package config loads the engine's own configuration: root data
// directory, worker pool size, and directory permissions. The teacher
// uses github.com/BurntSushi/toml to parse a schema description file
// (internal/parser/toml); this engine has no schema file of its own
// (table structure lives in per-table JSON sidecars, not a repo-level
// config), so the same library is repurposed here for the one thing
// that remains genuinely config-shaped: engine startup settings.
package config

import (
	"github.com/BurntSushi/toml"

	"csvgres/internal/csverr"
)

// Config is the engine's top-level configuration, loaded from a TOML
// file such as:
//
//	root = "data"
//	worker_pool_size = 8
//	dir_perm = 0o755
//
// DirPerm is read and defaulted here, but nothing passes it on: the
// engine creates every directory with dbops.DirPerm (0755) whatever the
// file says.
type Config struct {
	Root           string `toml:"root"`
	WorkerPoolSize int    `toml:"worker_pool_size"`
	DirPerm        int    `toml:"dir_perm"`
}

// Default returns the configuration used when no file is given: data
// stored under "./data", pool size derived from GOMAXPROCS.
func Default() Config {
	return Config{Root: "data", WorkerPoolSize: 0, DirPerm: 0o755}
}

// Load parses a TOML config file at path, filling in defaults for any
// field the file leaves zero.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, csverr.Parsef("failed to parse config file %s: %v", path, err)
	}
	if cfg.Root == "" {
		cfg.Root = "data"
	}
	if cfg.DirPerm == 0 {
		cfg.DirPerm = 0o755
	}
	return cfg, nil
}
