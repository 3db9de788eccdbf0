package store

import (
	"context"

	"github.com/phrazzld/userstore/internal/domain"
)

// UserStore is the capability contract every storage backend implements.
// All operations key on the username; the backend-assigned id is never a
// lookup key. Implementations must be safe for concurrent use by multiple
// request handlers sharing one instance.
type UserStore interface {
	// CreateUser inserts a new user with age 0 and returns a confirmation
	// message containing the username.
	// Returns an error matching ErrDuplicate if the username is taken.
	CreateUser(ctx context.Context, req domain.CreateUser) (string, error)

	// GetUser retrieves a user by username.
	// Returns an error matching ErrNotFound if the user does not exist.
	GetUser(ctx context.Context, username string) (*domain.User, error)

	// UpdateUser replaces the user's age. Username and id are preserved.
	// Returns an error matching ErrNotFound if the user does not exist.
	UpdateUser(ctx context.Context, username string, req domain.UpdateUser) error

	// DeleteUser permanently removes the user along with any auxiliary index
	// entries the backend maintains.
	// Returns an error matching ErrNotFound if the user does not exist.
	DeleteUser(ctx context.Context, username string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection pool or client owned by the store.
	Close() error
}
