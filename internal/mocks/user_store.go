package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/userstore/internal/domain"
	"github.com/phrazzld/userstore/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateUserFn func(ctx context.Context, req domain.CreateUser) (string, error)
	GetUserFn    func(ctx context.Context, username string) (*domain.User, error)
	UpdateUserFn func(ctx context.Context, username string, req domain.UpdateUser) error
	DeleteUserFn func(ctx context.Context, username string) error
	PingFn       func(ctx context.Context) error

	// Data for default implementation
	mu     sync.Mutex
	Users  map[string]domain.User
	nextID uint64
	Closed bool
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users: make(map[string]domain.User),
	}
}

// CreateUser implements the UserStore interface
func (m *MockUserStore) CreateUser(ctx context.Context, req domain.CreateUser) (string, error) {
	if m.CreateUserFn != nil {
		return m.CreateUserFn(ctx, req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Users[req.Username]; exists {
		return "", store.Conflict(req.Username)
	}
	m.nextID++
	m.Users[req.Username] = *domain.NewUser(m.nextID, req.Username)
	return domain.CreatedMessage(req.Username), nil
}

// GetUser implements the UserStore interface
func (m *MockUserStore) GetUser(ctx context.Context, username string) (*domain.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, username)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.Users[username]
	if !exists {
		return nil, store.NotFound(username)
	}
	return &user, nil
}

// UpdateUser implements the UserStore interface
func (m *MockUserStore) UpdateUser(ctx context.Context, username string, req domain.UpdateUser) error {
	if m.UpdateUserFn != nil {
		return m.UpdateUserFn(ctx, username, req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.Users[username]
	if !exists {
		return store.NotFound(username)
	}
	m.Users[username] = req.Apply(user)
	return nil
}

// DeleteUser implements the UserStore interface
func (m *MockUserStore) DeleteUser(ctx context.Context, username string) error {
	if m.DeleteUserFn != nil {
		return m.DeleteUserFn(ctx, username)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Users[username]; !exists {
		return store.NotFound(username)
	}
	delete(m.Users, username)
	return nil
}

// Ping implements the UserStore interface
func (m *MockUserStore) Ping(ctx context.Context) error {
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

// Close implements the UserStore interface
func (m *MockUserStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
