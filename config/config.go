// Package config loads the fluidquery service configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported database drivers. An empty driver disables saved views.
const (
	DriverMySQL   = "mysql"
	DriverSQLite3 = "sqlite3"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	CORS     CORSConfig     `yaml:"cors"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Fetch    FetchConfig    `yaml:"fetch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"` // bytes
	Metrics            bool          `yaml:"metrics"`               // serve /metrics
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CORSConfig holds CORS settings. CORS headers are only sent when Origins is
// not empty.
type CORSConfig struct {
	Origins []string `yaml:"origins"`
	Methods []string `yaml:"methods"`
	Headers []string `yaml:"headers"`
}

// DatabaseConfig selects and configures the saved view store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "mysql", "sqlite3" or empty

	// SQLite
	Path string `yaml:"path"` // file path or ":memory:"

	// MySQL
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	Socket     string            `yaml:"socket"` // unix socket path, overrides host/port
	User       string            `yaml:"user"`
	Password   string            `yaml:"password"`
	Name       string            `yaml:"name"`
	Parameters map[string]string `yaml:"parameters"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	Output string `yaml:"output"` // stderr, stdout, or file path
}

// FetchConfig holds settings of the JSON fetcher.
type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8080,
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       10 * time.Second,
			ShutdownTimeout:    5 * time.Second,
			MaxRequestBodySize: 1 << 20,
			Metrics:            true,
		},
		CORS: CORSConfig{
			Methods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite3,
			Path:   "fluidquery.db",
			Host:   "localhost",
			Port:   3306,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Fetch: FetchConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads the YAML file at path on top of Defaults. ${VAR} and
// ${VAR:-default} references are replaced using getenv before parsing. An
// empty path returns the defaults.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(interpolateEnv(data, getenv), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} references.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	if getenv == nil {
		getenv = os.Getenv
	}
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		groups := envPattern.FindSubmatch(match)
		if value := getenv(string(groups[1])); value != "" {
			return []byte(value)
		}
		return groups[2]
	})
}

// Validate checks the configuration after flags have been applied.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxRequestBodySize <= 0 {
		errs = append(errs, errors.New("server.max_request_body_size must be positive"))
	}

	switch c.Database.Driver {
	case "":
	case DriverSQLite3:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite3"))
		}
	case DriverMySQL:
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required for mysql"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", c.Database.Driver))
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("unsupported logging.level %q", c.Logging.Level))
	}
	if !slices.Contains([]string{"text", "json"}, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("unsupported logging.format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
