package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultConfigPath is where Resolve looks for a config file when
// neither the env var nor the --config flag names one.
const DefaultConfigPath = "tenantscan.toml"

// CLIOverrides carries flag values from the command layer. Numeric
// fields are pointers so that an unset flag does not clobber the
// config-file value with a default.
type CLIOverrides struct {
	ConfigPath   string
	TenantID     string
	ClientID     string
	ClientSecret string
	OutDir       string
	LedgerPath   string
	Workers      *int
	Depth        *int
}

// Load reads and parses a TOML config file, validates it, and returns
// the resulting Config. Unknown keys are fatal — silently ignoring a
// typo in a config file leads to hard-to-debug behavior.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}

		return nil, fmt.Errorf("config: unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise
// returns a Config populated with defaults. This supports zero-config
// runs where everything arrives via flags or environment.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment variables -> CLI flags.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Config, error) {
	cfgPath := DefaultConfigPath
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	// Env overrides.
	if env.TenantID != "" {
		cfg.TenantID = env.TenantID
	}

	if env.ClientID != "" {
		cfg.ClientID = env.ClientID
	}

	if env.ClientSecret != "" {
		cfg.ClientSecret = env.ClientSecret
	}

	// CLI flags win.
	if cli.TenantID != "" {
		cfg.TenantID = cli.TenantID
	}

	if cli.ClientID != "" {
		cfg.ClientID = cli.ClientID
	}

	if cli.ClientSecret != "" {
		cfg.ClientSecret = cli.ClientSecret
	}

	if cli.OutDir != "" {
		cfg.OutDir = cli.OutDir
	}

	if cli.LedgerPath != "" {
		cfg.LedgerPath = cli.LedgerPath
	}

	if cli.Workers != nil {
		cfg.Workers = *cli.Workers
	}

	if cli.Depth != nil {
		cfg.Depth = *cli.Depth
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
