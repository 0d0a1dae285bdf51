package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, DriverSQLite3, cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_FileWithEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluidquery.yaml")
	content := `
server:
  host: ${HOST:-127.0.0.1}
  port: ${PORT}
  shutdown_timeout: 2s
cors:
  origins: ["https://health.example.com"]
database:
  driver: mysql
  name: views
  user: ${DB_USER}
  password: ${DB_PASSWORD:-secret}
  parameters:
    parseTime: "true"
logging:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	getenv := func(key string) string {
		switch key {
		case "PORT":
			return "9000"
		case "DB_USER":
			return "dash"
		default:
			return ""
		}
	}

	cfg, err := Load(path, getenv)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"https://health.example.com"}, cfg.CORS.Origins)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "dash", cfg.Database.User)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, map[string]string{"parseTime": "true"}, cfg.Database.Parameters)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.ErrorContains(t, err, "failed to read config")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	_, err = Load(path, nil)
	require.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = 70000
	cfg.Database.Driver = "postgres"
	cfg.Logging.Level = "loud"

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "database.driver")
	assert.Contains(t, err.Error(), "logging.level")

	cfg = Defaults()
	cfg.Database.Driver = DriverMySQL
	assert.ErrorContains(t, cfg.Validate(), "database.name")

	cfg = Defaults()
	cfg.Database.Driver = ""
	assert.NoError(t, cfg.Validate())
}
