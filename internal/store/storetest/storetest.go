// Package storetest provides a behavioral test suite that every
// store.UserStore implementation must pass. Adapter packages call Run from
// their own tests with a factory that returns a ready-to-use store.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/userstore/internal/domain"
	"github.com/phrazzld/userstore/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a store for a single test. Implementations register any
// cleanup with t.Cleanup.
type Factory func(t *testing.T) store.UserStore

// testTimeout bounds every contract call, the way the HTTP layer does.
const testTimeout = 10 * time.Second

// uniqueName keeps tests independent when several of them share one
// database, as the integration runs do.
func uniqueName(base string) string {
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)
	return ctx
}

func mustCreate(ctx context.Context, t *testing.T, s store.UserStore, username string) {
	t.Helper()
	msg, err := s.CreateUser(ctx, domain.CreateUser{Username: username})
	require.NoError(t, err, "create %s", username)
	require.Contains(t, msg, username)
}

// Run executes the full contract suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("CreateThenGet", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		name := uniqueName("roundtrip")

		msg, err := s.CreateUser(ctx, domain.CreateUser{Username: name})
		require.NoError(t, err)
		assert.Equal(t, domain.CreatedMessage(name), msg)

		user, err := s.GetUser(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, name, user.Username)
		assert.Equal(t, uint32(0), user.Age)
	})

	t.Run("DuplicateCreate", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		name := uniqueName("bob")

		mustCreate(ctx, t, s, name)

		_, err := s.CreateUser(ctx, domain.CreateUser{Username: name})
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrDuplicate), "got %v", err)
		assert.Equal(t, store.KindConflict, store.KindOf(err))
		assert.Contains(t, err.Error(), name)
		assert.Equal(t, store.Conflict(name).Error(), err.Error())

		// The failed create must not have side effects.
		user, err := s.GetUser(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, uint32(0), user.Age)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		name := uniqueName("ghost")

		_, err := s.GetUser(ctx, name)
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
		assert.Equal(t, store.NotFound(name).Error(), err.Error())
	})

	t.Run("UpdateThenGet", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		name := uniqueName("update")

		mustCreate(ctx, t, s, name)
		before, err := s.GetUser(ctx, name)
		require.NoError(t, err)

		require.NoError(t, s.UpdateUser(ctx, name, domain.UpdateUser{Age: 30}))

		after, err := s.GetUser(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, uint32(30), after.Age)
		assert.Equal(t, before.ID, after.ID, "update must not renumber the user")
		assert.Equal(t, name, after.Username)
	})

	t.Run("UpdateSameAge", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		name := uniqueName("same")

		mustCreate(ctx, t, s, name)
		require.NoError(t, s.UpdateUser(ctx, name, domain.UpdateUser{Age: 5}))
		// Writing an unchanged value still targets an existing row.
		require.NoError(t, s.UpdateUser(ctx, name, domain.UpdateUser{Age: 5}))
	})

	t.Run("UpdateMaxAge", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		name := uniqueName("maxage")

		mustCreate(ctx, t, s, name)
		require.NoError(t, s.UpdateUser(ctx, name, domain.UpdateUser{Age: math.MaxUint32}))

		user, err := s.GetUser(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, uint32(math.MaxUint32), user.Age)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		name := uniqueName("ghost")

		err := s.UpdateUser(ctx, name, domain.UpdateUser{Age: 1})
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
		assert.Contains(t, err.Error(), name)

		_, err = s.GetUser(ctx, name)
		assert.True(t, errors.Is(err, store.ErrNotFound), "update must not create a user")
	})

	t.Run("DeleteThenGet", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		name := uniqueName("delete")

		mustCreate(ctx, t, s, name)
		require.NoError(t, s.DeleteUser(ctx, name))

		_, err := s.GetUser(ctx, name)
		assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)

		err = s.DeleteUser(ctx, name)
		assert.True(t, errors.Is(err, store.ErrNotFound), "second delete: got %v", err)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		name := uniqueName("ghost")

		err := s.DeleteUser(ctx, name)
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
		assert.Equal(t, store.NotFound(name).Error(), err.Error())
	})

	t.Run("RecreateAfterDelete", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		name := uniqueName("phoenix")

		mustCreate(ctx, t, s, name)
		require.NoError(t, s.UpdateUser(ctx, name, domain.UpdateUser{Age: 9}))
		require.NoError(t, s.DeleteUser(ctx, name))
		mustCreate(ctx, t, s, name)

		user, err := s.GetUser(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, uint32(0), user.Age, "recreated user starts fresh")
	})

	t.Run("Lifecycle", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		name := uniqueName("alice")

		msg, err := s.CreateUser(ctx, domain.CreateUser{Username: name})
		require.NoError(t, err)
		assert.Contains(t, msg, "alice")

		user, err := s.GetUser(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, name, user.Username)
		assert.Equal(t, uint32(0), user.Age)

		require.NoError(t, s.UpdateUser(ctx, name, domain.UpdateUser{Age: 30}))

		user, err = s.GetUser(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, uint32(30), user.Age)

		require.NoError(t, s.DeleteUser(ctx, name))

		_, err = s.GetUser(ctx, name)
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})

	t.Run("DistinctIDs", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)

		first, second := uniqueName("first"), uniqueName("second")
		mustCreate(ctx, t, s, first)
		mustCreate(ctx, t, s, second)

		a, err := s.GetUser(ctx, first)
		require.NoError(t, err)
		b, err := s.GetUser(ctx, second)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("UnicodeUsername", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		name := uniqueName("zoë-日本")

		mustCreate(ctx, t, s, name)
		user, err := s.GetUser(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, name, user.Username)
	})

	t.Run("TrailingSpaceIsDistinct", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		name := uniqueName("padded")

		mustCreate(ctx, t, s, name)
		mustCreate(ctx, t, s, name+" ")

		require.NoError(t, s.UpdateUser(ctx, name+" ", domain.UpdateUser{Age: 12}))

		plain, err := s.GetUser(ctx, name)
		require.NoError(t, err)
		padded, err := s.GetUser(ctx, name+" ")
		require.NoError(t, err)

		assert.Equal(t, name, plain.Username)
		assert.Equal(t, uint32(0), plain.Age)
		assert.Equal(t, name+" ", padded.Username)
		assert.Equal(t, uint32(12), padded.Age)
		assert.NotEqual(t, plain.ID, padded.ID)

		require.NoError(t, s.DeleteUser(ctx, name+" "))
		_, err = s.GetUser(ctx, name)
		assert.NoError(t, err, "deleting the padded name must not touch the plain one")
	})

	t.Run("ConcurrentDuplicateCreate", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		name := uniqueName("race")

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.CreateUser(ctx, domain.CreateUser{Username: name})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, store.ErrDuplicate):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, successes, "exactly one create may win")
		assert.Equal(t, workers-1, conflicts)
	})

	t.Run("ConcurrentDistinctCreate", func(t *testing.T) {
		s := newStore(t)
		ctx := testContext(t)
		prefix := uniqueName("many")

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.CreateUser(ctx, domain.CreateUser{Username: fmt.Sprintf("%s-%d", prefix, i)})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		seen := make(map[uint64]string, workers)
		for i := range workers {
			name := fmt.Sprintf("%s-%d", prefix, i)
			user, err := s.GetUser(ctx, name)
			require.NoError(t, err)
			if other, dup := seen[user.ID]; dup {
				t.Fatalf("id %d assigned to both %s and %s", user.ID, other, name)
			}
			seen[user.ID] = name
		}
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(testContext(t)))
	})
}
