// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMiniRedis creates a test Redis server and a cache connected to it.
func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedisCache(RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisCache_SetGet(t *testing.T) {
	ctx := context.Background()
	mr, c := setupMiniRedis(t)

	c.Set(ctx, "epg:1:0:19", []byte(`[{"title":"Lakers vs Celtics"}]`), 5*time.Minute)

	val, ok := c.Get(ctx, "epg:1:0:19")
	require.True(t, ok)
	assert.JSONEq(t, `[{"title":"Lakers vs Celtics"}]`, string(val))
	assert.True(t, mr.Exists(KeyPrefix+"epg:1:0:19"), "keys are namespaced")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, 1, stats.CurrentSize)
}

func TestRedisCache_Miss(t *testing.T) {
	_, c := setupMiniRedis(t)
	_, ok := c.Get(context.Background(), "absent")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	mr, c := setupMiniRedis(t)

	c.Set(ctx, "k", []byte("v"), time.Minute)
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCache_DeleteAndForeignKeys(t *testing.T) {
	ctx := context.Background()
	mr, c := setupMiniRedis(t)
	require.NoError(t, mr.Set("other:app", "x"))

	c.Set(ctx, "k", []byte("v"), time.Minute)
	c.Delete(ctx, "k")
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	assert.Equal(t, 0, c.Stats().CurrentSize, "foreign keys are not counted")
	assert.True(t, mr.Exists("other:app"))
}

func TestRedisCache_HealthCheck(t *testing.T) {
	mr, c := setupMiniRedis(t)
	require.NoError(t, c.HealthCheck(context.Background()))

	mr.SetError("LOADING redis is loading the dataset")
	assert.Error(t, c.HealthCheck(context.Background()))
}
