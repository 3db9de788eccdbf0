package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/phrazzld/userstore/internal/domain"
	"github.com/phrazzld/userstore/internal/store"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		age INTEGER NOT NULL DEFAULT 0
	)`
	createIndexSQL = `CREATE INDEX IF NOT EXISTS idx_users_username ON users (username)`

	insertUserSQL = `INSERT INTO users (username) VALUES (?)`
	selectUserSQL = `SELECT id, username, age FROM users WHERE username = ?`
	updateUserSQL = `UPDATE users SET age = ? WHERE username = ?`
	deleteUserSQL = `DELETE FROM users WHERE username = ?`
)

// pragmas are applied to every pooled connection through the DSN.
var pragmas = []string{
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

// Store implements store.UserStore using SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.UserStore = (*Store)(nil)

// Open opens (creating if needed) the SQLite database at path, verifies the
// connection and provisions the users table and index.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, store.Backend(store.EngineSQLite, "open database", errors.New("path is required"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, store.Backend(store.EngineSQLite, "open database", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, store.Backend(store.EngineSQLite, "ping database", err)
	}

	s := NewStore(db, logger)
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("sqlite store ready", "path", path)
	return s, nil
}

// NewStore wraps an already opened database handle. The caller is
// responsible for the schema; Open is the usual entry point.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger.With("component", "sqlite_store"),
	}
}

func dsn(path string) string {
	params := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		params = append(params, "_pragma="+p)
	}
	return filepath.Clean(path) + "?" + strings.Join(params, "&")
}

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return store.Backend(store.EngineSQLite, "create users table", err)
	}
	if _, err := s.db.ExecContext(ctx, createIndexSQL); err != nil {
		return store.Backend(store.EngineSQLite, "create username index", err)
	}
	return nil
}

// CreateUser implements store.UserStore.CreateUser.
func (s *Store) CreateUser(ctx context.Context, req domain.CreateUser) (string, error) {
	result, err := s.db.ExecContext(ctx, insertUserSQL, req.Username)
	if err != nil {
		if isUniqueViolation(err) {
			return "", store.Conflict(req.Username)
		}
		return "", store.Backend(store.EngineSQLite, fmt.Sprintf("create user %s", req.Username), err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return "", store.Backend(store.EngineSQLite, "read rows affected", err)
	}
	if rows == 0 {
		return "", store.Conflict(req.Username)
	}

	return domain.CreatedMessage(req.Username), nil
}

// GetUser implements store.UserStore.GetUser.
func (s *Store) GetUser(ctx context.Context, username string) (*domain.User, error) {
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
		return nil, store.Backend(store.EngineSQLite, fmt.Sprintf("get user %s", username), err)
	}

	user.ID = uint64(id)
	user.Age = uint32(age)
	return user, nil
}

// UpdateUser implements store.UserStore.UpdateUser.
func (s *Store) UpdateUser(ctx context.Context, username string, req domain.UpdateUser) error {
	result, err := s.db.ExecContext(ctx, updateUserSQL, int64(req.Age), username)
	if err != nil {
		return store.Backend(store.EngineSQLite, fmt.Sprintf("update user %s", username), err)
	}
	return s.checkRowsAffected(result, username)
}

// DeleteUser implements store.UserStore.DeleteUser.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	result, err := s.db.ExecContext(ctx, deleteUserSQL, username)
	if err != nil {
		return store.Backend(store.EngineSQLite, fmt.Sprintf("delete user %s", username), err)
	}
	return s.checkRowsAffected(result, username)
}

// Ping implements store.UserStore.Ping.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return store.Backend(store.EngineSQLite, "ping", err)
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

// checkRowsAffected converts "zero rows affected" into the not-found error.
func (s *Store) checkRowsAffected(result sql.Result, username string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return store.Backend(store.EngineSQLite, "read rows affected", err)
	}
	if rows == 0 {
		return store.NotFound(username)
	}
	return nil
}
