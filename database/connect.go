// Package database opens the SQL connection pools used by the saved view
// store and defines the errors shared by the driver error checkers.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pakkasys/fluidquery/config"
)

// Supported drivers.
const (
	MySQL   = "mysql"
	SQLite3 = "sqlite3"
)

// ConnectionType is the MySQL transport.
type ConnectionType string

// Connection types.
const (
	TCP  ConnectionType = "tcp"
	Unix ConnectionType = "unix"
)

// ConnectConfig holds the settings of a database connection pool.
type ConnectConfig struct {
	Driver          string
	User            string
	Password        string
	Database        string // database name, or file path for SQLite
	Host            string
	Port            int
	ConnectionType  ConnectionType
	SocketDirectory string
	SocketName      string
	Parameters      map[string]string
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
}

// NewDefaultMySQLTCPConfig returns a connection config with default
// settings for TCP MySQL connections.
//
// Parameters:
//   - user: The MySQL username.
//   - password: The MySQL password.
//   - db: The MySQL database name.
//
// Returns:
//   - *ConnectConfig: The connection config.
func NewDefaultMySQLTCPConfig(
	user string, password string, db string,
) *ConnectConfig {
	return &ConnectConfig{
		User:            user,
		Password:        password,
		Database:        db,
		ConnectionType:  TCP,
		Host:            "localhost",
		Port:            3306,
		ConnMaxLifetime: 10 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		Driver:          MySQL,
	}
}

// NewDefaultMySQLUnixConfig returns a connection config with default
// settings for Unix socket MySQL connections.
//
// Parameters:
//   - user: The MySQL username.
//   - password: The MySQL password.
//   - db: The MySQL database name.
//   - socketDirectory: The directory where the socket file is located.
//   - socketName: The name of the socket file.
//
// Returns:
//   - *ConnectConfig: The connection config.
func NewDefaultMySQLUnixConfig(
	user string,
	password string,
	db string,
	socketDirectory string,
	socketName string,
) *ConnectConfig {
	return &ConnectConfig{
		User:            user,
		Password:        password,
		Database:        db,
		ConnectionType:  Unix,
		SocketDirectory: socketDirectory,
		SocketName:      socketName,
		ConnMaxLifetime: 10 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		Driver:          MySQL,
	}
}

// NewDefaultSQLiteConfig returns a connection config with default settings
// for SQLite. The db argument can be a file path or ":memory:". SQLite
// allows a single writer, so the pool is limited to one connection, which
// also keeps an in-memory database alive for the life of the pool.
func NewDefaultSQLiteConfig(db string) *ConnectConfig {
	return &ConnectConfig{
		Database:     db,
		Driver:       SQLite3,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		Parameters:   map[string]string{"_foreign_keys": "on"},
	}
}

// FromConfig returns the connection config described by the database section
// of the service configuration. It returns nil when no driver is configured.
func FromConfig(cfg config.DatabaseConfig) *ConnectConfig {
	var connect *ConnectConfig
	switch cfg.Driver {
	case config.DriverSQLite3:
		connect = NewDefaultSQLiteConfig(cfg.Path)
	case config.DriverMySQL:
		if cfg.Socket != "" {
			connect = NewDefaultMySQLUnixConfig(
				cfg.User,
				cfg.Password,
				cfg.Name,
				filepath.Dir(cfg.Socket),
				filepath.Base(cfg.Socket),
			)
		} else {
			connect = NewDefaultMySQLTCPConfig(cfg.User, cfg.Password, cfg.Name)
			connect.Host = cfg.Host
			connect.Port = cfg.Port
		}
	default:
		return nil
	}
	for k, v := range cfg.Parameters {
		if connect.Parameters == nil {
			connect.Parameters = map[string]string{}
		}
		connect.Parameters[k] = v
	}
	return connect
}

// DSN returns the data source name for the configured driver.
func (c *ConnectConfig) DSN() (string, error) {
	switch c.Driver {
	case MySQL:
		return c.mysqlDSN()
	case SQLite3:
		return c.sqliteDSN(), nil
	default:
		return "", fmt.Errorf("unsupported driver: %q", c.Driver)
	}
}

func (c *ConnectConfig) mysqlDSN() (string, error) {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.DBName = c.Database
	cfg.ParseTime = true

	switch c.ConnectionType {
	case Unix:
		cfg.Net = "unix"
		cfg.Addr = filepath.Join(c.SocketDirectory, c.SocketName)
	case TCP, "":
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	default:
		return "", fmt.Errorf(
			"unsupported connection type: %q", c.ConnectionType,
		)
	}

	if len(c.Parameters) > 0 {
		cfg.Params = make(map[string]string, len(c.Parameters))
		for k, v := range c.Parameters {
			cfg.Params[k] = v
		}
	}
	return cfg.FormatDSN(), nil
}

func (c *ConnectConfig) sqliteDSN() string {
	if len(c.Parameters) == 0 {
		return c.Database
	}
	params := url.Values{}
	for k, v := range c.Parameters {
		params.Set(k, v)
	}
	return c.Database + "?" + params.Encode()
}

// Connect opens a connection pool and verifies it with a ping.
//
// Parameters:
//   - ctx: Context for the ping.
//   - cfg: The connection config.
//
// Returns:
//   - *sql.DB: The connection pool.
//   - error: An error if the pool cannot be opened or reached.
func Connect(ctx context.Context, cfg *ConnectConfig) (*sql.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return db, nil
}
