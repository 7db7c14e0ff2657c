package config

import "os"

// Environment variable names for overrides. The secret is commonly
// supplied this way in CI so it never lands in shell history.
const (
	EnvConfig       = "TENANTSCAN_CONFIG"
	EnvTenantID     = "TENANTSCAN_TENANT_ID"
	EnvClientID     = "TENANTSCAN_CLIENT_ID"
	EnvClientSecret = "TENANTSCAN_CLIENT_SECRET"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath   string
	TenantID     string
	ClientID     string
	ClientSecret string
}

// ReadEnvOverrides reads environment variables and returns any
// overrides found. This does not modify the Config; Resolve applies
// the relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:   os.Getenv(EnvConfig),
		TenantID:     os.Getenv(EnvTenantID),
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
	}
}
