package search

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ConnectionConfig holds one tenant's engine connection settings. Immutable
// once read; changes after a tenant's first use are not observed.
type ConnectionConfig struct {
	Host        string `mapstructure:"host" toml:"host"`
	Port        int    `mapstructure:"port" toml:"port"`
	Username    string `mapstructure:"username" toml:"username"`
	Password    string `mapstructure:"password" toml:"password"`
	InsecureSSL bool   `mapstructure:"insecure_ssl" toml:"insecure_ssl"`
}

// Validate checks connection configuration
func (c *ConnectionConfig) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535")
	}
	return nil
}

// Address returns the base URL of the tenant's engine deployment.
func (c *ConnectionConfig) Address() string {
	host := c.Host
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	if c.Port == 0 {
		return host
	}
	return fmt.Sprintf("%s:%d", host, c.Port)
}

// SettingsResolver supplies per-tenant connection settings as an opaque map,
// the way the host's configuration collaborator exposes them. The registry
// decodes the map at first use.
type SettingsResolver interface {
	TenantSettings(tenant string) (map[string]any, error)
}

// decodeSettings turns the resolver's opaque settings map into a typed
// ConnectionConfig.
func decodeSettings(settings map[string]any) (ConnectionConfig, error) {
	var cfg ConnectionConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return cfg, fmt.Errorf("create settings decoder: %w", err)
	}

	if err := decoder.Decode(settings); err != nil {
		return cfg, fmt.Errorf("decode connection settings: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate connection settings: %w", err)
	}

	return cfg, nil
}
