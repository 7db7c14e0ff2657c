// Package config loads tenantscan configuration from a TOML file and
// applies the override chain: defaults -> config file -> environment
// variables -> CLI flags. CLI flags always win.
package config

import (
	"errors"
	"fmt"
)

// Defaults for scan behavior.
const (
	DefaultWorkers    = 20
	DefaultDepth      = 2
	DefaultOutDir     = "."
	DefaultLedgerPath = "tenantscan.db"
)

// Validation bounds. Depth is capped because each extra level multiplies
// request volume; runs past this bound are almost certainly a typo.
const (
	maxWorkers = 256
	maxDepth   = 32
)

// Config mirrors the TOML config file.
type Config struct {
	TenantID     string `toml:"tenant_id"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Workers      int    `toml:"workers"`
	Depth        int    `toml:"depth"`
	OutDir       string `toml:"out_dir"`
	LedgerPath   string `toml:"ledger_path"`
	LogLevel     string `toml:"log_level"`
}

// DefaultConfig returns a Config populated with default values.
func DefaultConfig() *Config {
	return &Config{
		Workers:    DefaultWorkers,
		Depth:      DefaultDepth,
		OutDir:     DefaultOutDir,
		LedgerPath: DefaultLedgerPath,
	}
}

var errWorkersOutOfRange = errors.New("config: workers must be between 1 and 256")

var errDepthOutOfRange = errors.New("config: depth must be between 0 and 32")

// Validate checks bounds on numeric settings and the log level.
// Credentials are not validated here — they may arrive via CLI flags
// or an interactive prompt after config resolution.
func Validate(cfg *Config) error {
	if cfg.Workers < 1 || cfg.Workers > maxWorkers {
		return errWorkersOutOfRange
	}

	if cfg.Depth < 0 || cfg.Depth > maxDepth {
		return errDepthOutOfRange
	}

	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", cfg.LogLevel)
	}

	return nil
}
