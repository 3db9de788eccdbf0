package metrics

import (
	"context"
	"time"

	"github.com/phrazzld/userstore/internal/domain"
	"github.com/phrazzld/userstore/internal/store"
)

// Operation label values.
const (
	OpCreate = "create"
	OpGet    = "get"
	OpUpdate = "update"
	OpDelete = "delete"
	OpPing   = "ping"
)

// InstrumentedStore records latency and failures of every call made to the
// wrapped store. Errors pass through unchanged.
type InstrumentedStore struct {
	next    store.UserStore
	backend string
}

var _ store.UserStore = (*InstrumentedStore)(nil)

// InstrumentStore wraps next, labelling its metrics with backend.
func InstrumentStore(next store.UserStore, backend string) *InstrumentedStore {
	return &InstrumentedStore{next: next, backend: backend}
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	StoreOperationDurationSeconds.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(s.backend, op, store.KindOf(err).String()).Inc()
	}
}

// CreateUser implements store.UserStore.CreateUser.
func (s *InstrumentedStore) CreateUser(ctx context.Context, req domain.CreateUser) (string, error) {
	start := time.Now()
	msg, err := s.next.CreateUser(ctx, req)
	s.observe(OpCreate, start, err)
	return msg, err
}

// GetUser implements store.UserStore.GetUser.
func (s *InstrumentedStore) GetUser(ctx context.Context, username string) (*domain.User, error) {
	start := time.Now()
	user, err := s.next.GetUser(ctx, username)
	s.observe(OpGet, start, err)
	return user, err
}

// UpdateUser implements store.UserStore.UpdateUser.
func (s *InstrumentedStore) UpdateUser(ctx context.Context, username string, req domain.UpdateUser) error {
	start := time.Now()
	err := s.next.UpdateUser(ctx, username, req)
	s.observe(OpUpdate, start, err)
	return err
}

// DeleteUser implements store.UserStore.DeleteUser.
func (s *InstrumentedStore) DeleteUser(ctx context.Context, username string) error {
	start := time.Now()
	err := s.next.DeleteUser(ctx, username)
	s.observe(OpDelete, start, err)
	return err
}

// Ping implements store.UserStore.Ping.
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	s.observe(OpPing, start, err)
	return err
}

// Close implements store.UserStore.Close.
func (s *InstrumentedStore) Close() error {
	return s.next.Close()
}
