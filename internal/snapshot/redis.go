package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/ffreport/pkg/logger"
)

const redisKeyPrefix = "ffreport:"

// RedisStore keeps snapshots as JSON strings in Redis. A zero ttl keeps
// them forever.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Entry
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger.WithComponent("snapshot_store").WithField("backend", "redis"),
	}
}

// NewRedisStoreFromURL parses a redis:// URL and connects.
func NewRedisStoreFromURL(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStore(client, ttl), nil
}

func (s *RedisStore) Locate(key string) string {
	return "redis://" + redisKeyPrefix + key
}

func (s *RedisStore) Load(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", ErrNotFound, s.Locate(key))
		}
		return fmt.Errorf("failed to get snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Save(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}
	s.logger.WithField("key", key).Debug("Snapshot saved")
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
