package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/phrazzld/userstore/internal/domain"
	"github.com/phrazzld/userstore/internal/store"
	"github.com/phrazzld/userstore/internal/store/storetest"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	s := NewStore(client, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.UserStore {
		s, _ := newTestStore(t)
		return s
	})
}

func TestCreateWritesRecordAndReverseIndex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, mr := newTestStore(t)

	_, err := s.CreateUser(ctx, domain.CreateUser{Username: "alice"})
	require.NoError(t, err)

	raw, err := mr.Get("user:alice")
	require.NoError(t, err)
	var user domain.User
	require.NoError(t, json.Unmarshal([]byte(raw), &user))
	assert.Equal(t, domain.User{ID: 1, Username: "alice", Age: 0}, user)

	owner, err := mr.Get("user_id:1")
	require.NoError(t, err)
	assert.Equal(t, "alice", owner)

	counter, err := mr.Get(idCounterKey)
	require.NoError(t, err)
	assert.Equal(t, "1", counter)
}

func TestDuplicateCreateDoesNotConsumeID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, mr := newTestStore(t)

	_, err := s.CreateUser(ctx, domain.CreateUser{Username: "alice"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, domain.CreateUser{Username: "alice"})
	assert.True(t, errors.Is(err, store.ErrDuplicate), "got %v", err)

	counter, err := mr.Get(idCounterKey)
	require.NoError(t, err)
	assert.Equal(t, "1", counter, "fast path should reject before INCR")
}

func TestUsernameCannotCollideWithCounter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.CreateUser(ctx, domain.CreateUser{Username: "id_counter"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, domain.CreateUser{Username: "bob"})
	require.NoError(t, err)

	user, err := s.GetUser(ctx, "id_counter")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), user.ID)
}

func TestDeleteRemovesReverseIndex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, mr := newTestStore(t)

	_, err := s.CreateUser(ctx, domain.CreateUser{Username: "alice"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteUser(ctx, "alice"))

	assert.False(t, mr.Exists("user:alice"))
	assert.False(t, mr.Exists("user_id:1"))
}

func TestUpdatePreservesIDAndUsername(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t)

	_, err := s.CreateUser(ctx, domain.CreateUser{Username: "alice"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateUser(ctx, "alice", domain.UpdateUser{Age: 30}))

	user, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: 1, Username: "alice", Age: 30}, user)
}

func TestCorruptRecordIsBackendError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, mr := newTestStore(t)

	require.NoError(t, mr.Set("user:alice", "{not json"))

	_, err := s.GetUser(ctx, "alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrBackend))
	assert.Contains(t, err.Error(), "Redis error: decode user alice")
}

func TestServerErrorsAreBackendErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, mr := newTestStore(t)

	mr.SetError("ERR simulated outage")

	_, err := s.CreateUser(ctx, domain.CreateUser{Username: "alice"})
	assert.True(t, errors.Is(err, store.ErrBackend), "got %v", err)

	_, err = s.GetUser(ctx, "alice")
	assert.True(t, errors.Is(err, store.ErrBackend), "got %v", err)

	assert.Error(t, s.Ping(ctx))
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mr := miniredis.RunT(t)
	s, err := Open(ctx, "redis://"+mr.Addr(), nil)
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Ping(ctx))

	_, err = Open(ctx, "http://localhost:6379", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Redis error: parse redis url")
}

// interleaveHook runs fn once, just before the first transaction that
// writes a user record is sent.
type interleaveHook struct {
	once sync.Once
	fn   func()
}

func (h *interleaveHook) DialHook(next goredis.DialHook) goredis.DialHook { return next }

func (h *interleaveHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook { return next }

func (h *interleaveHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		for _, cmd := range cmds {
			if name := cmd.Name(); name == "set" || name == "del" {
				h.once.Do(h.fn)
				break
			}
		}
		return next(ctx, cmds)
	}
}

// newInterleavedStores returns a store whose first write transaction is
// preceded by fn, and a second store on the same server for fn to use.
func newInterleavedStores(t *testing.T) (*Store, *Store, *interleaveHook, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	hook := &interleaveHook{}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	client.AddHook(hook)
	s := NewStore(client, nil)
	t.Cleanup(func() { _ = s.Close() })

	other := NewStore(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), nil)
	t.Cleanup(func() { _ = other.Close() })

	return s, other, hook, mr
}

func TestUpdateRacingRecreateKeepsNewID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, other, hook, mr := newInterleavedStores(t)

	_, err := s.CreateUser(ctx, domain.CreateUser{Username: "alice"})
	require.NoError(t, err)

	hook.fn = func() {
		require.NoError(t, other.DeleteUser(ctx, "alice"))
		_, err := other.CreateUser(ctx, domain.CreateUser{Username: "alice"})
		require.NoError(t, err)
	}

	require.NoError(t, s.UpdateUser(ctx, "alice", domain.UpdateUser{Age: 7}))

	user, err := s.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: 2, Username: "alice", Age: 7}, user)

	assert.False(t, mr.Exists("user_id:1"))
	owner, err := mr.Get("user_id:2")
	require.NoError(t, err)
	assert.Equal(t, "alice", owner)
}

func TestUpdateRacingDeleteIsNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, other, hook, mr := newInterleavedStores(t)

	_, err := s.CreateUser(ctx, domain.CreateUser{Username: "alice"})
	require.NoError(t, err)

	hook.fn = func() {
		require.NoError(t, other.DeleteUser(ctx, "alice"))
	}

	err = s.UpdateUser(ctx, "alice", domain.UpdateUser{Age: 7})
	assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
	assert.False(t, mr.Exists("user:alice"), "update must not resurrect the record")
}

func TestDeleteRacingRecreateRemovesCurrentIndex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, other, hook, mr := newInterleavedStores(t)

	_, err := s.CreateUser(ctx, domain.CreateUser{Username: "alice"})
	require.NoError(t, err)

	hook.fn = func() {
		require.NoError(t, other.DeleteUser(ctx, "alice"))
		_, err := other.CreateUser(ctx, domain.CreateUser{Username: "alice"})
		require.NoError(t, err)
	}

	require.NoError(t, s.DeleteUser(ctx, "alice"))

	assert.False(t, mr.Exists("user:alice"))
	assert.False(t, mr.Exists("user_id:1"))
	assert.False(t, mr.Exists("user_id:2"), "no orphaned index entry")
}
