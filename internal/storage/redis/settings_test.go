package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/pkg/retry"
)

// These tests need a reachable server, e.g. REDIS_ADDR=localhost:6379.
func newTestSettings(t *testing.T) *Settings {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	cfg := retry.NewDefaultConfig()
	cfg.MaxRetries = 1
	prefix := "cropadvisor:test:" + uuid.NewString() + ":"

	s, err := Connect(context.Background(), Options{Addr: addr, Prefix: prefix}, retry.NewRetrier(cfg))
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := s.rdb.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			s.rdb.Del(ctx, keys...)
		}
		s.Close()
	})
	return s
}

func TestSettings_RoundTrip(t *testing.T) {
	s := newTestSettings(t)
	ctx := context.Background()

	_, err := s.Get(ctx, core.KeyFarmerName)
	assert.ErrorIs(t, err, core.ErrSettingNotFound)

	values := map[string]string{
		core.KeyFarmerName:    "Ramesh",
		core.KeySelectedCrops: `[{"crop":"Wheat"}]`,
	}
	require.NoError(t, s.SetMany(ctx, values))
	require.NoError(t, s.Set(ctx, core.KeyPH, "6.2"))

	got, err := s.Get(ctx, core.KeyFarmerName)
	require.NoError(t, err)
	assert.Equal(t, "Ramesh", got)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		core.KeyFarmerName:    "Ramesh",
		core.KeySelectedCrops: `[{"crop":"Wheat"}]`,
		core.KeyPH:            "6.2",
	}, all)

	require.NoError(t, s.Delete(ctx, core.KeyPH))
	_, err = s.Get(ctx, core.KeyPH)
	assert.ErrorIs(t, err, core.ErrSettingNotFound)
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := &retry.Config{MaxRetries: 1, BackoffFactor: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	_, err := Connect(context.Background(), Options{Addr: "127.0.0.1:1"}, retry.NewRetrier(cfg))
	assert.Error(t, err)
}
