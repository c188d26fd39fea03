package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/andresuchdata/qota-finance/backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsKey(t *testing.T) {
	assert.Equal(t, "metrics:series:default", MetricsKey("series"))
	assert.Equal(t, "metrics:totais:default", MetricsKey("totais", ""))

	march := MetricsKey("resumo", "month=2024-03")
	april := MetricsKey("resumo", "month=2024-04")
	assert.True(t, strings.HasPrefix(march, "metrics:resumo:"))
	assert.NotEqual(t, march, april)
	assert.Equal(t, march, MetricsKey("resumo", "month=2024-03"))
}

func TestDisabledCacheIsNoop(t *testing.T) {
	c, err := NewMetricsCache(config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "metrics:series:default", []int{1, 2}))

	var out []int
	hit, err := c.Get(ctx, "metrics:series:default", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisDB: 2, RedisPassword: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "pw", opts.Password)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@redis.internal:6379/4"})
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6379", opts.Addr)
	assert.Equal(t, 4, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "http://wrong"})
	assert.Error(t, err)

	opts, err = buildRedisOptions(config.CacheConfig{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
}
