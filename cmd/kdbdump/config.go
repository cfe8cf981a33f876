package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

var formats = []string{"summary", "json", "cbor", "arrow"}

// config is the resolved dump configuration.
type config struct {
	Format   string
	Dekey    bool
	MaxBytes uint64
	MaxDepth int
	LogLevel string
}

func defaultConfig() config {
	return config{
		Format:   "summary",
		MaxBytes: 64 << 20,
		MaxDepth: 256,
		LogLevel: "info",
	}
}

// kdbdump.toml keys.
type fileConfig struct {
	Format   string `toml:"format"`
	Dekey    bool   `toml:"dekey"`
	MaxBytes string `toml:"max_bytes"`
	MaxDepth int    `toml:"max_depth"`
	LogLevel string `toml:"log_level"`
}

// loadConfig overlays the keys present in path onto the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load kdbdump config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("load kdbdump config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("format") {
		cfg.Format = strings.TrimSpace(raw.Format)
	}
	if meta.IsDefined("dekey") {
		cfg.Dekey = raw.Dekey
	}
	if meta.IsDefined("max_bytes") {
		n, err := humanize.ParseBytes(strings.TrimSpace(raw.MaxBytes))
		if err != nil {
			return config{}, fmt.Errorf("load kdbdump config: max_bytes: %w", err)
		}
		cfg.MaxBytes = n
	}
	if meta.IsDefined("max_depth") {
		cfg.MaxDepth = raw.MaxDepth
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if err := cfg.validate(); err != nil {
		return config{}, fmt.Errorf("load kdbdump config: %w", err)
	}
	return cfg, nil
}

func (c config) validate() error {
	ok := false
	for _, f := range formats {
		if c.Format == f {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("unsupported format %q (expected one of %s)", c.Format, strings.Join(formats, ", "))
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.MaxBytes == 0 || c.MaxBytes > 1<<31-1 {
		return fmt.Errorf("max bytes %s out of range", humanize.IBytes(c.MaxBytes))
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max depth %d must be positive", c.MaxDepth)
	}
	return nil
}
