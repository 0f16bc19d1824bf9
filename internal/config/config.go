// Package config loads generator settings: defaults, then an optional
// .ascolt.yaml, then ASCOLT_ environment variables. Command-line flags are
// applied on top by the caller.
package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultPath is where Load looks when no config path is given.
const DefaultPath = ".ascolt.yaml"

type Config struct {
	Output OutputConfig `koanf:"output"`
	Cache  CacheConfig  `koanf:"cache"`
	Log    LogConfig    `koanf:"log"`
}

type OutputConfig struct {
	Suffix string `koanf:"suffix"` // generated file suffix
	Header string `koanf:"header"` // first line of generated files
}

type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

type LogConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

// Load reads configuration in layers. A missing file at the default path is
// fine; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("output.suffix", "_gen.go")
	k.Set("output.header", "// Code generated by ascolt. DO NOT EDIT.")
	k.Set("cache.enabled", false)
	k.Set("cache.path", ".ascolt.db")
	k.Set("log.level", "error")
	k.Set("log.file", "")

	// 1. Load from file
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// 2. Load from ENV (ASCOLT_OUTPUT_SUFFIX -> output.suffix)
	if err := k.Load(env.Provider("ASCOLT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "ASCOLT_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
