package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/qota-finance/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	metricsKeyPrefix = "metrics"
	scanBatchSize    = 100
)

// MetricsCache stores JSON-encoded metric responses. Any record write
// invalidates the whole namespace.
type MetricsCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	InvalidateAll(ctx context.Context) error
}

type redisMetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopMetricsCache struct{}

func NewMetricsCache(cfg config.CacheConfig) (MetricsCache, error) {
	if !cfg.Enabled {
		return &noopMetricsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisMetricsCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopMetricsCache() MetricsCache {
	return &noopMetricsCache{}
}

func (c *redisMetricsCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode metrics cache %s: %w", key, err)
	}

	return true, nil
}

func (c *redisMetricsCache) Set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode metrics cache %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisMetricsCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, metricsKeyPrefix+":", scanBatchSize)
}

func (n *noopMetricsCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (n *noopMetricsCache) Set(ctx context.Context, key string, value interface{}) error {
	return nil
}

func (n *noopMetricsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// MetricsKey builds "metrics:<name>:<suffix>". Parameters are hashed so keys
// stay short whatever the query looks like.
func MetricsKey(name string, params ...string) string {
	if len(params) == 0 {
		return fmt.Sprintf("%s:%s:default", metricsKeyPrefix, name)
	}

	raw := strings.Join(params, "|")
	if raw == "" {
		return fmt.Sprintf("%s:%s:default", metricsKeyPrefix, name)
	}

	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s:%s", metricsKeyPrefix, name, hex.EncodeToString(hash[:]))
}
