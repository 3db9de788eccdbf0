package config

import (
	"strings"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// LogFile, when set, receives a rotated copy of the log stream.
	LogFile        string        `mapstructure:"log_file"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
}

// DatabaseConfig selects the storage backend and carries the connection
// settings of every backend. Only the settings of the selected Type are used.
type DatabaseConfig struct {
	Type                   DatabaseType `mapstructure:"type" validate:"required"`
	SQLitePath             string       `mapstructure:"sqlite_path"`
	PostgresURL            string       `mapstructure:"postgres_url"`
	PostgresCreateDatabase bool         `mapstructure:"postgres_create_database"`
	MySQLURL               string       `mapstructure:"mysql_url"`
	RedisURL               string       `mapstructure:"redis_url"`
	MongoURL               string       `mapstructure:"mongo_url"`
	MongoDatabase          string       `mapstructure:"mongo_database"`
	MaxOpenConns           int          `mapstructure:"max_open_conns" validate:"gte=0"`
}

// DatabaseType names a storage backend.
type DatabaseType string

const (
	DatabaseSQLite   DatabaseType = "sqlite"
	DatabasePostgres DatabaseType = "postgres"
	DatabaseMySQL    DatabaseType = "mysql"
	DatabaseRedis    DatabaseType = "redis"
	DatabaseMongo    DatabaseType = "mongo"
)

// ParseDatabaseType maps a configured name, including the accepted aliases,
// to a DatabaseType. Matching is case-insensitive. ok is false for unknown
// names, in which case SQLite is returned.
func ParseDatabaseType(name string) (t DatabaseType, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite":
		return DatabaseSQLite, true
	case "postgres", "postgresql":
		return DatabasePostgres, true
	case "mysql":
		return DatabaseMySQL, true
	case "redis":
		return DatabaseRedis, true
	case "mongo", "mongodb":
		return DatabaseMongo, true
	default:
		return DatabaseSQLite, false
	}
}

// Target returns the connection string or path for the selected backend.
func (c DatabaseConfig) Target() string {
	switch c.Type {
	case DatabasePostgres:
		return c.PostgresURL
	case DatabaseMySQL:
		return c.MySQLURL
	case DatabaseRedis:
		return c.RedisURL
	case DatabaseMongo:
		return c.MongoURL
	default:
		return c.SQLitePath
	}
}
