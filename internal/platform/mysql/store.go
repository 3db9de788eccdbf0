package mysql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"github.com/phrazzld/userstore/internal/domain"
	"github.com/phrazzld/userstore/internal/store"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(255) NOT NULL,
		age INT UNSIGNED NOT NULL DEFAULT 0,
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_0900_bin`
	createIndexSQL = `CREATE INDEX idx_users_username ON users (username)`

	insertUserSQL = `INSERT INTO users (username) VALUES (?)`
	selectUserSQL = `SELECT id, username, age FROM users WHERE username = ?`
	updateUserSQL = `UPDATE users SET age = ? WHERE username = ?`
	deleteUserSQL = `DELETE FROM users WHERE username = ?`
)

// Options tunes how the store connects.
type Options struct {
	// MaxOpenConns caps the pool size. Zero uses the default of 10.
	MaxOpenConns int
}

// Store implements store.UserStore using MySQL.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.UserStore = (*Store)(nil)

// Open connects to the server described by databaseURL and provisions the
// users table and index.
func Open(ctx context.Context, databaseURL string, opts Options, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := ParseURL(databaseURL)
	if err != nil {
		return nil, store.Backend(store.EngineMySQL, "parse database url", err)
	}

	connector, err := driver.NewConnector(cfg)
	if err != nil {
		return nil, store.Backend(store.EngineMySQL, "create connector", err)
	}
	db := sql.OpenDB(connector)

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen / 2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, store.Backend(store.EngineMySQL, "ping database", err)
	}

	s := NewStore(db, logger)
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("mysql store ready",
		"addr", cfg.Addr,
		"database", cfg.DBName,
		"max_open_conns", maxOpen)
	return s, nil
}

// NewStore wraps an already opened database handle. The connection must
// have been opened with ClientFoundRows set; see ParseURL.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger.With("component", "mysql_store"),
	}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return store.Backend(store.EngineMySQL, "create users table", err)
	}
	// MySQL has no CREATE INDEX IF NOT EXISTS.
	if _, err := s.db.ExecContext(ctx, createIndexSQL); err != nil && !isDuplicateKeyName(err) {
		return store.Backend(store.EngineMySQL, "create username index", err)
	}
	return nil
}

// CreateUser implements store.UserStore.CreateUser.
func (s *Store) CreateUser(ctx context.Context, req domain.CreateUser) (string, error) {
	result, err := s.db.ExecContext(ctx, insertUserSQL, req.Username)
	if err != nil {
		return "", MapError(err, "create user", req.Username)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return "", store.Backend(store.EngineMySQL, "read rows affected", err)
	}
	if rows == 0 {
		return "", store.Conflict(req.Username)
	}

	return domain.CreatedMessage(req.Username), nil
}

// GetUser implements store.UserStore.GetUser.
func (s *Store) GetUser(ctx context.Context, username string) (*domain.User, error) {
	var (
		id  uint64
		age uint32
	)
	user := &domain.User{}
	err := s.db.QueryRowContext(ctx, selectUserSQL, username).Scan(&id, &user.Username, &age)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.NotFound(username)
		}
		return nil, MapError(err, "get user", username)
	}

	user.ID = id
	user.Age = age
	return user, nil
}

// UpdateUser implements store.UserStore.UpdateUser.
func (s *Store) UpdateUser(ctx context.Context, username string, req domain.UpdateUser) error {
	result, err := s.db.ExecContext(ctx, updateUserSQL, int64(req.Age), username)
	if err != nil {
		return MapError(err, "update user", username)
	}
	return checkRowsAffected(result, username)
}

// DeleteUser implements store.UserStore.DeleteUser.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	result, err := s.db.ExecContext(ctx, deleteUserSQL, username)
	if err != nil {
		return MapError(err, "delete user", username)
	}
	return checkRowsAffected(result, username)
}

// Ping implements store.UserStore.Ping.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return store.Backend(store.EngineMySQL, "ping", err)
	}
	return nil
}

// Close implements store.UserStore.Close.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func checkRowsAffected(result sql.Result, username string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return store.Backend(store.EngineMySQL, "read rows affected", err)
	}
	if rows == 0 {
		return store.NotFound(username)
	}
	return nil
}
