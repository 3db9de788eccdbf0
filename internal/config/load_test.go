package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets environment variables for the duration of the test. An
// empty value leaves the variable set but empty, which viper treats as unset.
func setupEnv(t *testing.T, envVars map[string]string) {
	t.Helper()
	for name, value := range envVars {
		t.Setenv(name, value)
	}
}

// clearEnv blanks every variable Load reads so host settings cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
}

// TestLoadDefaults verifies that Load applies the documented defaults
// when no environment variables are set.
func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg, "Load() should return a non-nil config")
	assert.Equal(t, 3000, cfg.Server.Port, "Default server port should be 3000")
	assert.Equal(t, "info", cfg.Server.LogLevel, "Default log level should be 'info'")
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Empty(t, cfg.Server.LogFile)

	assert.Equal(t, DatabaseSQLite, cfg.Database.Type)
	assert.Equal(t, "my_database.db", cfg.Database.SQLitePath)
	assert.Equal(t, DefaultPostgresURL, cfg.Database.PostgresURL)
	assert.Equal(t, DefaultMySQLURL, cfg.Database.MySQLURL)
	assert.Equal(t, DefaultRedisURL, cfg.Database.RedisURL)
	assert.Equal(t, DefaultMongoURL, cfg.Database.MongoURL)
	assert.Equal(t, "benchmark", cfg.Database.MongoDatabase)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Database.PostgresCreateDatabase)
}

// TestLoadFromEnv verifies that the Load function correctly reads values from environment variables.
func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	setupEnv(t, map[string]string{
		"SERVER_PORT":              "9090",
		"LOG_LEVEL":                "DEBUG",
		"LOG_FILE":                 "/var/log/userstore.log",
		"REQUEST_TIMEOUT":          "750ms",
		"DATABASE_TYPE":            "postgresql",
		"POSTGRES_URL":             "postgres://app:secret@db:5432/users",
		"POSTGRES_CREATE_DATABASE": "true",
		"DATABASE_MAX_OPEN_CONNS":  "25",
	})

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with valid environment variables")
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel, "log level should be lowercased")
	assert.Equal(t, "/var/log/userstore.log", cfg.Server.LogFile)
	assert.Equal(t, 750*time.Millisecond, cfg.Server.RequestTimeout)
	assert.Equal(t, DatabasePostgres, cfg.Database.Type)
	assert.Equal(t, "postgres://app:secret@db:5432/users", cfg.Database.Target())
	assert.True(t, cfg.Database.PostgresCreateDatabase)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}

func TestLoadUnknownDatabaseTypeFallsBackToSQLite(t *testing.T) {
	clearEnv(t)
	setupEnv(t, map[string]string{"DATABASE_TYPE": "cassandra"})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, DatabaseSQLite, cfg.Database.Type)
	assert.Equal(t, DefaultSQLitePath, cfg.Database.Target())
}

// TestLoadValidationErrors verifies that invalid values are rejected.
func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "port out of range", env: map[string]string{"SERVER_PORT": "70000"}},
		{name: "negative port", env: map[string]string{"SERVER_PORT": "-1"}},
		{name: "unknown log level", env: map[string]string{"LOG_LEVEL": "verbose"}},
		{name: "negative pool size", env: map[string]string{"DATABASE_MAX_OPEN_CONNS": "-5"}},
		{name: "zero timeout", env: map[string]string{"REQUEST_TIMEOUT": "0s"}},
		{name: "malformed port", env: map[string]string{"SERVER_PORT": "not-a-number"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			setupEnv(t, tt.env)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestParseDatabaseType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		want   DatabaseType
		wantOK bool
	}{
		{"sqlite", DatabaseSQLite, true},
		{"postgres", DatabasePostgres, true},
		{"PostgreSQL", DatabasePostgres, true},
		{"mysql", DatabaseMySQL, true},
		{"redis", DatabaseRedis, true},
		{"mongo", DatabaseMongo, true},
		{" mongodb ", DatabaseMongo, true},
		{"", DatabaseSQLite, false},
		{"oracle", DatabaseSQLite, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseDatabaseType(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestValidateRequiresTarget(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Server: ServerConfig{Port: 3000, LogLevel: "info", RequestTimeout: time.Second},
		Database: DatabaseConfig{
			Type:     DatabaseRedis,
			RedisURL: "",
		},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}
