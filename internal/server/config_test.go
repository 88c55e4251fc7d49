package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfacet/facetstore/internal/domain"
)

const testConfig = `
[server]
port = 8080

[log]
path = "logs"
rotation_time = "24h"
max_age = "168h"
level = "info"
format = "text"

[tenants.default]
host = "localhost"
port = 9200
username = "admin"
password = "admin"

[tenants.acme]
host = "https://search.acme.io"
port = 9200

[[entities]]
code = "Product"
tenants = ["default", "acme"]

[[entities.fields]]
code = "Name"
type = "STRING"

[[entities.fields]]
code = "price"
type = "DOUBLE"

[[entities.fields]]
code = "qty_available"
type = "LONG"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	t.Run("server section", func(t *testing.T) {
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	})

	t.Run("tenant settings are exposed as opaque maps", func(t *testing.T) {
		settings, err := cfg.TenantSettings("default")
		require.NoError(t, err)
		assert.Equal(t, "localhost", settings["host"])
		assert.Equal(t, "admin", settings["username"])

		_, err = cfg.TenantSettings("ghost")
		assert.Error(t, err)
	})

	t.Run("entity schema lookup", func(t *testing.T) {
		fields, ok := cfg.Fields("product")
		require.True(t, ok)
		require.Len(t, fields, 3)

		descriptor, ok := fields.Lookup("price")
		require.True(t, ok)
		assert.Equal(t, domain.FieldTypeDouble, descriptor.Type)

		_, ok = cfg.Fields("Unknown")
		assert.False(t, ok)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("entity referencing unknown tenant", func(t *testing.T) {
		broken := testConfig + `
[[entities]]
code = "Order"
tenants = ["nope"]
`
		_, err := LoadConfig(writeConfig(t, broken))
		assert.ErrorContains(t, err, "unknown tenant")
	})

	t.Run("unknown field type", func(t *testing.T) {
		broken := testConfig + `
[[entities]]
code = "Order"
tenants = ["default"]

[[entities.fields]]
code = "total"
type = "MONEY"
`
		_, err := LoadConfig(writeConfig(t, broken))
		assert.ErrorContains(t, err, "unknown type")
	})

	t.Run("missing tenants", func(t *testing.T) {
		broken := `
[server]
port = 8080

[log]
path = "logs"
rotation_time = "24h"
max_age = "168h"
level = "info"
format = "text"
`
		_, err := LoadConfig(writeConfig(t, broken))
		assert.ErrorContains(t, err, "at least one tenant")
	})
}
