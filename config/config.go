// Package config loads database connection settings from YAML and opens
// drivers for them.
//
// A configuration file looks like:
//
//	adapter: mysql
//	host: ${DB_HOST:-127.0.0.1}
//	database: app
//	username: app
//	password: ${DB_PASSWORD}
//	params:
//	  charset: utf8mb4
//	slow_query_threshold: 200ms
//	cache_ttl: 1m
//
// References of the form ${VAR} and ${VAR:-default} are expanded from the
// environment before the file is parsed.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/syssam/mapper"
	"github.com/syssam/mapper/dialect"
	dsql "github.com/syssam/mapper/dialect/sql"
	"github.com/syssam/mapper/relation"
)

// Config holds the settings of a single database connection.
type Config struct {
	Adapter  string            `yaml:"adapter"`
	Database string            `yaml:"database"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Params   map[string]string `yaml:"params"`

	// MaxOpenConns limits the pool size. Zero leaves the database/sql
	// default, except for in-memory SQLite databases which are pinned to
	// one connection.
	MaxOpenConns int `yaml:"max_open_conns"`

	// Debug logs every statement at debug level.
	Debug bool `yaml:"debug"`

	// SlowQueryThreshold enables query statistics and logs statements
	// slower than the threshold. Zero disables both.
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`

	// CacheTTL enables an in-memory result cache for relations.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// Logger receives debug and slow query logs. slog.Default is used
	// when nil.
	Logger *slog.Logger `yaml:"-"`
}

// Defaults returns a configuration for an in-memory SQLite database.
func Defaults() *Config {
	return &Config{
		Adapter:  dialect.SQLite,
		Database: ":memory:",
	}
}

var (
	// ErrUnknownAdapter is returned for adapters without a registered driver.
	ErrUnknownAdapter = errors.New("config: unknown adapter")
	// ErrMissingDatabase is returned when no database is configured.
	ErrMissingDatabase = errors.New("config: missing database")
)

// Validate checks that the configuration can be turned into a DSN.
func (c *Config) Validate() error {
	if c.dialect() == dialect.SQL {
		return fmt.Errorf("%w %q", ErrUnknownAdapter, c.Adapter)
	}
	if c.Database == "" {
		return ErrMissingDatabase
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.MaxOpenConns < 0 {
		return fmt.Errorf("config: invalid max_open_conns %d", c.MaxOpenConns)
	}
	return nil
}

// DriverName returns the database/sql driver name for the adapter.
func (c *Config) DriverName() string {
	return c.dialect()
}

func (c *Config) dialect() string {
	return dialect.Normalize(c.Adapter)
}

// DSN formats the data source name for the adapter.
func (c *Config) DSN() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	switch c.dialect() {
	case dialect.MySQL:
		cfg := mysql.NewConfig()
		cfg.User = c.Username
		cfg.Passwd = c.Password
		cfg.Net = "tcp"
		cfg.Addr = c.addr("127.0.0.1", 3306)
		cfg.DBName = c.Database
		if len(c.Params) > 0 {
			cfg.Params = make(map[string]string, len(c.Params))
			for k, v := range c.Params {
				cfg.Params[k] = v
			}
		}
		return cfg.FormatDSN(), nil
	case dialect.Postgres:
		u := url.URL{
			Scheme:   "postgres",
			Host:     c.addr("localhost", 5432),
			Path:     "/" + c.Database,
			RawQuery: c.query(),
		}
		switch {
		case c.Password != "":
			u.User = url.UserPassword(c.Username, c.Password)
		case c.Username != "":
			u.User = url.User(c.Username)
		}
		return u.String(), nil
	default:
		dsn := c.Database
		if q := c.query(); q != "" {
			dsn += "?" + q
		}
		return dsn, nil
	}
}

func (c *Config) addr(host string, port int) string {
	if c.Host != "" {
		host = c.Host
	}
	if c.Port != 0 {
		port = c.Port
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// query encodes Params sorted by key.
func (c *Config) query() string {
	if len(c.Params) == 0 {
		return ""
	}
	v := make(url.Values, len(c.Params))
	for k, p := range c.Params {
		v.Set(k, p)
	}
	return v.Encode()
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Open opens a driver for the configuration. The driver is wrapped with
// statistics collection when SlowQueryThreshold is set and with statement
// logging when Debug is set.
func (c *Config) Open() (dialect.Driver, error) {
	dsn, err := c.DSN()
	if err != nil {
		return nil, err
	}
	drv, err := dsql.Open(c.DriverName(), dsn)
	if err != nil {
		return nil, err
	}
	switch {
	case c.MaxOpenConns > 0:
		drv.DB().SetMaxOpenConns(c.MaxOpenConns)
	case c.dialect() == dialect.SQLite && c.Database == ":memory:":
		drv.DB().SetMaxOpenConns(1)
	}
	var wrapped dialect.Driver = drv
	if c.SlowQueryThreshold > 0 {
		wrapped = dsql.NewStatsDriver(wrapped,
			dsql.WithSlowThreshold(c.SlowQueryThreshold),
			dsql.WithSlowQueryLog(c.logger()),
		)
	}
	if c.Debug {
		wrapped = dsql.NewDebugDriver(wrapped, dsql.DebugWithLogger(c.logger()))
	}
	return wrapped, nil
}

// RelationOptions returns the relation options implied by the
// configuration.
func (c *Config) RelationOptions() []relation.Option {
	opts := []relation.Option{relation.WithLogger(c.logger())}
	if c.CacheTTL > 0 {
		opts = append(opts, relation.WithCache(mapper.NewMemoryCache(), c.CacheTTL))
	}
	return opts
}
