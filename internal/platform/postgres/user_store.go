package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/userstore/internal/domain"
	"github.com/phrazzld/userstore/internal/store"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(255) NOT NULL UNIQUE,
		age BIGINT NOT NULL DEFAULT 0 CHECK (age >= 0)
	)`
	createIndexSQL = `CREATE INDEX IF NOT EXISTS idx_users_username ON users (username)`

	insertUserSQL = `INSERT INTO users (username) VALUES ($1)`
	selectUserSQL = `SELECT id, username, age FROM users WHERE username = $1`
	updateUserSQL = `UPDATE users SET age = $1 WHERE username = $2`
	deleteUserSQL = `DELETE FROM users WHERE username = $1`

	databaseExistsSQL = `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`

	// maintenanceDatabase is connected to when the target database must be created.
	maintenanceDatabase = "postgres"
)

// Options tunes how the store connects.
type Options struct {
	// CreateDatabase creates the database named in the URL if it does not exist.
	CreateDatabase bool

	// MaxOpenConns caps the pool size. Zero uses the default of 10.
	MaxOpenConns int
}

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// Open connects to the database at databaseURL, optionally creating the
// database first, and provisions the users table and index.
func Open(ctx context.Context, databaseURL string, opts Options, logger *slog.Logger) (*PostgresUserStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	connConfig, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, store.Backend(store.EnginePostgres, "parse database url", err)
	}

	if opts.CreateDatabase {
		if err := ensureDatabase(ctx, connConfig, logger); err != nil {
			return nil, err
		}
	}

	db := stdlib.OpenDB(*connConfig)

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen / 2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, store.Backend(store.EnginePostgres, "ping database", err)
	}

	s := NewPostgresUserStore(db, logger)
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("postgres store ready",
		"host", connConfig.Host,
		"database", connConfig.Database,
		"max_open_conns", maxOpen)
	return s, nil
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection that should be initialized and managed by the caller.
func NewPostgresUserStore(db *sql.DB, logger *slog.Logger) *PostgresUserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With("component", "postgres_store"),
	}
}

// DB returns the underlying database handle.
func (s *PostgresUserStore) DB() *sql.DB {
	return s.db
}

// ensureDatabase creates the target database through the maintenance
// database when it does not exist yet.
func ensureDatabase(ctx context.Context, target *pgx.ConnConfig, logger *slog.Logger) error {
	name := target.Database
	if name == "" || name == maintenanceDatabase {
		return nil
	}

	maintenance := target.Copy()
	maintenance.Database = maintenanceDatabase
	admin := stdlib.OpenDB(*maintenance)
	defer admin.Close()

	var exists bool
	if err := admin.QueryRowContext(ctx, databaseExistsSQL, name).Scan(&exists); err != nil {
		return store.Backend(store.EnginePostgres, "check database exists", err)
	}
	if exists {
		return nil
	}

	logger.Info("creating postgres database", "database", name)
	createSQL := "CREATE DATABASE " + pgx.Identifier{name}.Sanitize()
	if _, err := admin.ExecContext(ctx, createSQL); err != nil && !isDuplicateDatabase(err) {
		return store.Backend(store.EnginePostgres, "create database", err)
	}
	return nil
}

func (s *PostgresUserStore) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return store.Backend(store.EnginePostgres, "create users table", err)
	}
	if _, err := s.db.ExecContext(ctx, createIndexSQL); err != nil {
		return store.Backend(store.EnginePostgres, "create username index", err)
	}
	return nil
}

// CreateUser implements store.UserStore.CreateUser
func (s *PostgresUserStore) CreateUser(ctx context.Context, req domain.CreateUser) (string, error) {
	result, err := s.db.ExecContext(ctx, insertUserSQL, req.Username)
	if err != nil {
		return "", MapError(err, "create user", req.Username)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return "", store.Backend(store.EnginePostgres, "read rows affected", err)
	}
	if rows == 0 {
		return "", store.Conflict(req.Username)
	}

	return domain.CreatedMessage(req.Username), nil
}

// GetUser implements store.UserStore.GetUser
func (s *PostgresUserStore) GetUser(ctx context.Context, username string) (*domain.User, error) {
	var (
		id  int64
		age int64
	)
	user := &domain.User{}
	err := s.db.QueryRowContext(ctx, selectUserSQL, username).Scan(&id, &user.Username, &age)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound(username)
		}
		return nil, MapError(err, "get user", username)
	}

	user.ID = uint64(id)
	user.Age = uint32(age)
	return user, nil
}

// UpdateUser implements store.UserStore.UpdateUser
func (s *PostgresUserStore) UpdateUser(ctx context.Context, username string, req domain.UpdateUser) error {
	result, err := s.db.ExecContext(ctx, updateUserSQL, int64(req.Age), username)
	if err != nil {
		return MapError(err, "update user", username)
	}
	return CheckRowsAffected(result, username)
}

// DeleteUser implements store.UserStore.DeleteUser
func (s *PostgresUserStore) DeleteUser(ctx context.Context, username string) error {
	result, err := s.db.ExecContext(ctx, deleteUserSQL, username)
	if err != nil {
		return MapError(err, "delete user", username)
	}
	return CheckRowsAffected(result, username)
}

// Ping implements store.UserStore.Ping
func (s *PostgresUserStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return store.Backend(store.EnginePostgres, "ping", err)
	}
	return nil
}

// Close implements store.UserStore.Close
func (s *PostgresUserStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CheckRowsAffected examines the number of rows affected by an UPDATE or
// DELETE. Zero rows means the username does not exist.
func CheckRowsAffected(result sql.Result, username string) error {
	if result == nil {
		return store.Backend(store.EnginePostgres, "check rows affected", fmt.Errorf("nil result"))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return store.Backend(store.EnginePostgres, "read rows affected", err)
	}
	if rows == 0 {
		return store.NotFound(username)
	}
	return nil
}
