package cache

import (
	"testing"
	"time"

	"github.com/andresuchdata/qota-finance/backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRedisOptionsFromURL(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{
		RedisURL:  "redis://:s3cret@cache.internal:6380/2",
		RedisHost: "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "s3cret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "http://not-redis"})
	assert.ErrorContains(t, err, "invalid redis url")
}

func TestBuildRedisOptionsFromHostPort(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	assert.Empty(t, opts.Password)

	opts, err = buildRedisOptions(config.CacheConfig{
		RedisHost:     "redis",
		RedisPort:     "6390",
		RedisPassword: "pw",
		RedisDB:       3,
	})
	require.NoError(t, err)
	assert.Equal(t, "redis:6390", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 3, opts.DB)
}

func TestMetricsTTL(t *testing.T) {
	assert.Equal(t, defaultCacheTTL, metricsTTL(config.CacheConfig{}))
	assert.Equal(t, defaultCacheTTL, metricsTTL(config.CacheConfig{MetricsTTLSeconds: -5}))
	assert.Equal(t, 90*time.Second, metricsTTL(config.CacheConfig{MetricsTTLSeconds: 90}))
}
