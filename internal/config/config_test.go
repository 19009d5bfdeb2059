// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://esb@localhost/esb")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	c, err := load("")
	require.NoError(t, err)

	assert.Equal(t, 5001, c.Server.Port)
	assert.Equal(t, 5*time.Second, c.Store.OperationTimeout)
	assert.Equal(t, 10*time.Minute, c.Cache.BillTTL)
	assert.True(t, c.Cache.Enabled)
	assert.Equal(t, "esb-consumer-placeholder", c.Auth.ConsumerToken)
	assert.Equal(t, []string{"http://localhost:3001"}, c.CORS.AllowedOrigins)
	assert.Equal(t, 10, c.RateLimit.AuthRequests)
	assert.Equal(t, time.Minute, c.RateLimit.Window)
	assert.Equal(t, "0.0.0.0:5001", c.Server.Address())
	assert.True(t, c.IsDevelopment())
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
database:
  url: postgres://file@localhost/esb
redis:
  url: redis://file:6379/0
store:
  operation_timeout: 2s
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("LOG_LEVEL", "warn")

	c, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file@localhost/esb", c.Database.URL)
	assert.Equal(t, 2*time.Second, c.Store.OperationTimeout)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	_, err := load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func TestValidateRejectsWildcardWithCredentials(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://esb@localhost/esb")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	c, err := load("")
	require.NoError(t, err)

	c.CORS.AllowedOrigins = []string{"*"}
	assert.Error(t, validate(c))
}

func TestValidateRejectsNonPositiveOperationTimeout(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://esb@localhost/esb")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("STORE_OPERATION_TIMEOUT", "0s")

	_, err := load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operation_timeout")
}
