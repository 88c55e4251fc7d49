package server

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/openfacet/facetstore/internal/domain"
	"github.com/openfacet/facetstore/pkg/log"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig              `toml:"server"`
	Log      log.Config                `toml:"log"`
	Tenants  map[string]map[string]any `toml:"tenants"`
	Entities []EntityConfig            `toml:"entities"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// EntityConfig declares one entity type: its code, the tenants its index is
// replicated to, and its field schema.
type EntityConfig struct {
	Code    string                   `toml:"code"`
	Tenants []string                 `toml:"tenants"`
	Fields  []domain.FieldDescriptor `toml:"fields"`
}

// FieldSet returns the entity's fields keyed by code.
func (e EntityConfig) FieldSet() domain.FieldSet {
	fields := make(domain.FieldSet, len(e.Fields))
	for _, f := range e.Fields {
		fields[f.Code] = f
	}
	return fields
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("port is required and must be between 1 and 65535")
	}
	return nil
}

// Validate checks all configuration fields
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	if len(c.Tenants) == 0 {
		return fmt.Errorf("tenants: at least one tenant is required")
	}

	for i, entity := range c.Entities {
		if strings.TrimSpace(entity.Code) == "" {
			return fmt.Errorf("entities[%d]: code is required", i)
		}
		for _, tenant := range entity.Tenants {
			if _, ok := c.Tenants[tenant]; !ok {
				return fmt.Errorf("entities[%d]: unknown tenant %q", i, tenant)
			}
		}
		for _, field := range entity.Fields {
			if strings.TrimSpace(field.Code) == "" {
				return fmt.Errorf("entities[%d]: field code is required", i)
			}
			if !field.Type.Valid() {
				return fmt.Errorf("entities[%d]: field %s has unknown type %q", i, field.Code, field.Type)
			}
		}
	}

	return nil
}

// TenantSettings exposes per-tenant connection settings to the client
// registry. Implements search.SettingsResolver.
func (c *Config) TenantSettings(tenant string) (map[string]any, error) {
	settings, ok := c.Tenants[tenant]
	if !ok {
		return nil, fmt.Errorf("no connection settings for tenant %q", tenant)
	}
	return settings, nil
}

// Entity returns the configured entity by code, case-insensitively.
func (c *Config) Entity(code string) (EntityConfig, bool) {
	for _, entity := range c.Entities {
		if strings.EqualFold(entity.Code, code) {
			return entity, true
		}
	}
	return EntityConfig{}, false
}

// Fields returns the field descriptors of an entity type. Implements the
// HTTP layer's schema lookup.
func (c *Config) Fields(entityType string) (domain.FieldSet, bool) {
	entity, ok := c.Entity(entityType)
	if !ok {
		return nil, false
	}
	return entity.FieldSet(), true
}

// LoadConfig reads and parses the configuration file
func LoadConfig(filename string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
