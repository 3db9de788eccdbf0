package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/userstore/internal/ciutil"
	"github.com/phrazzld/userstore/internal/platform/redis"
	"github.com/phrazzld/userstore/internal/store"
	"github.com/phrazzld/userstore/internal/store/storetest"
	"github.com/stretchr/testify/require"
)

// TestRedisStoreLiveContract runs the contract against a real server. It is
// skipped unless REDIS_URL is set.
func TestRedisStoreLiveContract(t *testing.T) {
	redisURL := ciutil.IntegrationURL(t, ciutil.EnvRedisURL)

	storetest.Run(t, func(t *testing.T) store.UserStore {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s, err := redis.Open(ctx, redisURL, nil)
		require.NoError(t, err, "open redis store")
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
