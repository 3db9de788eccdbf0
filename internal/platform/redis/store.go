package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/phrazzld/userstore/internal/domain"
	"github.com/phrazzld/userstore/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix   = "user:"
	userIDKeyPrefix = "user_id:"
	idCounterKey    = "counter:user_id"

	// maxWatchAttempts bounds how often an update or delete re-reads a
	// record that another client changed under it.
	maxWatchAttempts = 3
)

var errConcurrentChange = errors.New("record kept changing during transaction")

// createScript writes the record only if the username is free and sets the
// reverse index in the same step. Returns 1 on success, 0 if taken.
var createScript = goredis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2])
return 1
`)

func userKey(username string) string { return userKeyPrefix + username }

func userIDKey(id uint64) string { return userIDKeyPrefix + strconv.FormatUint(id, 10) }

// Store implements store.UserStore using Redis.
type Store struct {
	client *goredis.Client
	logger *slog.Logger
}

var _ store.UserStore = (*Store)(nil)

// Open parses a redis:// URL, connects and verifies the server answers.
func Open(ctx context.Context, redisURL string, logger *slog.Logger) (*Store, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, store.Backend(store.EngineRedis, "parse redis url", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, store.Backend(store.EngineRedis, "ping", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("redis store ready", "addr", opts.Addr, "db", opts.DB)
	return NewStore(client, logger), nil
}

// NewStore wraps an existing client. The store takes ownership and closes
// it on Close.
func NewStore(client *goredis.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client: client,
		logger: logger.With("component", "redis_store"),
	}
}

func backend(op, username string, err error) error {
	return store.Backend(store.EngineRedis, fmt.Sprintf("%s %s", op, username), err)
}

// CreateUser implements store.UserStore.CreateUser.
func (s *Store) CreateUser(ctx context.Context, req domain.CreateUser) (string, error) {
	key := userKey(req.Username)

	// Fast path; the script below is what actually guards the username.
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return "", backend("check user exists", req.Username, err)
	}
	if exists > 0 {
		return "", store.Conflict(req.Username)
	}

	next, err := s.client.Incr(ctx, idCounterKey).Result()
	if err != nil {
		return "", backend("allocate id for", req.Username, err)
	}
	user := domain.NewUser(uint64(next), req.Username)

	payload, err := json.Marshal(user)
	if err != nil {
		return "", backend("encode user", req.Username, err)
	}

	created, err := createScript.Run(ctx, s.client,
		[]string{key, userIDKey(user.ID)},
		string(payload), req.Username,
	).Int()
	if err != nil {
		return "", backend("create user", req.Username, err)
	}
	if created == 0 {
		s.logger.DebugContext(ctx, "lost create race", "username", req.Username, "id", user.ID)
		return "", store.Conflict(req.Username)
	}

	return domain.CreatedMessage(req.Username), nil
}

// GetUser implements store.UserStore.GetUser.
func (s *Store) GetUser(ctx context.Context, username string) (*domain.User, error) {
	return getUser(ctx, s.client, username)
}

// getter is satisfied by both the client and a watching Tx.
type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

func getUser(ctx context.Context, c getter, username string) (*domain.User, error) {
	raw, err := c.Get(ctx, userKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, store.NotFound(username)
		}
		return nil, backend("get user", username, err)
	}

	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, backend("decode user", username, err)
	}
	return &user, nil
}

// watchUser runs fn under WATCH on the user's key. fn queues its writes
// with TxPipelined; if the record changed in between, EXEC is discarded and
// fn runs again against the fresh record, up to maxWatchAttempts times.
func (s *Store) watchUser(ctx context.Context, op, username string, fn func(tx *goredis.Tx) error) error {
	key := userKey(username)
	for attempt := 1; attempt <= maxWatchAttempts; attempt++ {
		err := s.client.Watch(ctx, fn, key)
		if errors.Is(err, goredis.TxFailedErr) {
			s.logger.DebugContext(ctx, "user changed during transaction",
				"username", username,
				"operation", op,
				"attempt", attempt)
			continue
		}
		if err != nil {
			var se *store.Error
			if errors.As(err, &se) {
				return err
			}
			return backend(op, username, err)
		}
		return nil
	}
	return backend(op, username, errConcurrentChange)
}

// UpdateUser implements store.UserStore.UpdateUser.
func (s *Store) UpdateUser(ctx context.Context, username string, req domain.UpdateUser) error {
	key := userKey(username)
	return s.watchUser(ctx, "update user", username, func(tx *goredis.Tx) error {
		current, err := getUser(ctx, tx, username)
		if err != nil {
			return err
		}

		payload, err := json.Marshal(req.Apply(*current))
		if err != nil {
			return backend("encode user", username, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	})
}

// DeleteUser implements store.UserStore.DeleteUser. The record and its
// reverse index entry are removed in one transaction.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	key := userKey(username)
	return s.watchUser(ctx, "delete user", username, func(tx *goredis.Tx) error {
		current, err := getUser(ctx, tx, username)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.Del(ctx, userIDKey(current.ID))
			return nil
		})
		return err
	})
}

// Ping implements store.UserStore.Ping.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return store.Backend(store.EngineRedis, "ping", err)
	}
	return nil
}

// Close implements store.UserStore.Close.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
