package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/mapper/dialect"
	dsql "github.com/syssam/mapper/dialect/sql"
	"github.com/syssam/mapper/relation"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse(t *testing.T) {
	t.Parallel()
	data := []byte(`
adapter: mysql
host: ${DB_HOST:-127.0.0.1}
port: 3307
database: app
username: app
password: ${DB_PASSWORD}
params:
  charset: utf8mb4
debug: true
slow_query_threshold: 200ms
cache_ttl: 1m
`)
	cfg, err := Parse(data, env(map[string]string{"DB_PASSWORD": "s3cret"}))
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Adapter)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 3307, cfg.Port)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.Equal(t, map[string]string{"charset": "utf8mb4"}, cfg.Params)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
}

func TestParse_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte("debug: false\n"), env(nil))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data string
		err  string
	}{
		{name: "syntax", data: "adapter: [", err: "config: parse"},
		{name: "adapter", data: "adapter: oracle", err: `config: unknown adapter "oracle"`},
		{name: "database", data: "adapter: mysql\ndatabase: ''", err: "config: missing database"},
		{name: "port", data: "adapter: mysql\ndatabase: app\nport: 70000", err: "config: invalid port 70000"},
		{name: "pool", data: "max_open_conns: -1", err: "config: invalid max_open_conns -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.data), env(nil))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestInterpolateEnv(t *testing.T) {
	t.Parallel()
	getenv := env(map[string]string{"USER": "bob", "EMPTY": ""})
	tests := []struct {
		in, want string
	}{
		{in: "${USER}", want: "bob"},
		{in: "${USER:-alice}", want: "bob"},
		{in: "${EMPTY:-alice}", want: "alice"},
		{in: "${MISSING}", want: ""},
		{in: "user=${USER} host=${HOST:-localhost}", want: "user=bob host=localhost"},
		{in: "$USER", want: "$USER"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, string(interpolateEnv([]byte(tt.in), getenv)))
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	explicit := writeFile(t, dir, "explicit.yaml", "adapter: sqlite\ndatabase: explicit.db\n")
	fromEnv := writeFile(t, dir, "env.yaml", "adapter: sqlite\ndatabase: ${NAME}.db\n")

	cfg, err := Load(explicit, env(map[string]string{EnvConfig: fromEnv}))
	require.NoError(t, err)
	assert.Equal(t, "explicit.db", cfg.Database)

	cfg, err = Load("", env(map[string]string{EnvConfig: fromEnv, "NAME": "from_env"}))
	require.NoError(t, err)
	assert.Equal(t, "from_env.db", cfg.Database)

	_, err = Load(filepath.Join(dir, "missing.yaml"), env(nil))
	assert.ErrorContains(t, err, "config: file not found")

	_, err = Load("", env(map[string]string{EnvConfig: filepath.Join(dir, "missing.yaml")}))
	assert.ErrorContains(t, err, "(from MAPPER_CONFIG)")
}

func TestLoad_DefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("", env(nil))
	assert.ErrorContains(t, err, "config: no config file found")

	writeFile(t, ".", DefaultFile, "database: local.db\n")
	cfg, err := Load("", env(nil))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Adapter)
	assert.Equal(t, "local.db", cfg.Database)
}

func TestConfig_DSN(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		cfg        Config
		wantDriver string
		want       string
	}{
		{
			name:       "sqlite",
			cfg:        Config{Adapter: "sqlite3", Database: "app.db"},
			wantDriver: dialect.SQLite,
			want:       "app.db",
		},
		{
			name:       "sqlite params",
			cfg:        Config{Adapter: "sqlite", Database: "app.db", Params: map[string]string{"_txlock": "immediate"}},
			wantDriver: dialect.SQLite,
			want:       "app.db?_txlock=immediate",
		},
		{
			name:       "mysql",
			cfg:        Config{Adapter: "mysql", Host: "db", Database: "app", Username: "root", Password: "secret", Params: map[string]string{"charset": "utf8mb4"}},
			wantDriver: dialect.MySQL,
			want:       "root:secret@tcp(db:3306)/app?charset=utf8mb4",
		},
		{
			name:       "mariadb default host",
			cfg:        Config{Adapter: "mariadb", Database: "app", Username: "root", Port: 3307},
			wantDriver: dialect.MySQL,
			want:       "root@tcp(127.0.0.1:3307)/app",
		},
		{
			name:       "postgres",
			cfg:        Config{Adapter: "postgresql", Host: "db", Database: "app", Username: "app", Password: "s3cret", Params: map[string]string{"sslmode": "disable"}},
			wantDriver: dialect.Postgres,
			want:       "postgres://app:s3cret@db:5432/app?sslmode=disable",
		},
		{
			name:       "postgres no password",
			cfg:        Config{Adapter: "postgres", Database: "app", Username: "app"},
			wantDriver: dialect.Postgres,
			want:       "postgres://app@localhost:5432/app",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dsn, err := tt.cfg.DSN()
			require.NoError(t, err)
			assert.Equal(t, tt.want, dsn)
			assert.Equal(t, tt.wantDriver, tt.cfg.DriverName())
		})
	}

	_, err := (&Config{Adapter: "oracle", Database: "x"}).DSN()
	assert.ErrorIs(t, err, ErrUnknownAdapter)
}

func TestConfig_Open(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var buf bytes.Buffer
	cfg := Defaults()
	cfg.Debug = true
	cfg.SlowQueryThreshold = time.Hour
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	drv, err := cfg.Open()
	require.NoError(t, err)
	t.Cleanup(func() { drv.Close() })

	debug, ok := drv.(*dsql.DebugDriver)
	require.True(t, ok)
	stats, ok := debug.Driver.(*dsql.StatsDriver)
	require.True(t, ok)
	assert.Equal(t, time.Hour, stats.SlowThreshold())
	assert.Equal(t, dialect.SQLite, drv.Dialect())

	v, err := drv.SelectValue(ctx, "SELECT 1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
	assert.Contains(t, buf.String(), "select value: SELECT 1")
}

func TestConfig_OpenPlain(t *testing.T) {
	t.Parallel()
	drv, err := Defaults().Open()
	require.NoError(t, err)
	t.Cleanup(func() { drv.Close() })
	plain, ok := drv.(*dsql.Driver)
	require.True(t, ok)
	assert.Equal(t, 1, plain.DB().Stats().MaxOpenConnections)

	_, err = (&Config{Adapter: "oracle"}).Open()
	assert.ErrorIs(t, err, ErrUnknownAdapter)
}

func TestConfig_RelationOptions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := Defaults()
	cfg.CacheTTL = time.Minute
	drv, err := cfg.Open()
	require.NoError(t, err)
	t.Cleanup(func() { drv.Close() })

	_, err = drv.Update(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)
	users := relation.New(relation.Model{Name: "User"}, drv, cfg.RelationOptions()...)
	_, err = users.Insert(ctx, map[string]any{"name": "alice"})
	require.NoError(t, err)

	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Len(t, cfg.RelationOptions(), 2)
	assert.Len(t, Defaults().RelationOptions(), 1)
}
