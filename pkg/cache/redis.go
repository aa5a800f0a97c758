package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/salarylab/hh-research/pkg/logging"
	"github.com/salarylab/hh-research/pkg/vacancy"
)

// redisKeyPrefix namespaces dataset entries in a shared Redis instance.
const redisKeyPrefix = "hhcache:"

// RedisStore keeps datasets in Redis. It is useful when several research
// runs on different hosts should share one cache.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed store. A zero ttl keeps entries until
// they are explicitly replaced, matching the file store's semantics.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logging.NewLogger("cache"),
	}
}

// Get implements Store. Absent keys and undecodable values both read as a
// miss.
func (s *RedisStore) Get(ctx context.Context, key string) (*vacancy.Dataset, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.WithLabelValues("redis").Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("redis", "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Dataset == nil || e.Dataset.Validate() != nil {
		s.logger.Warn().Str("key", key).Msg("Corrupt cache entry, treating as miss")
		CacheCorrupt.WithLabelValues("redis").Inc()
		CacheMisses.WithLabelValues("redis").Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("redis").Inc()
	s.logger.Debug().Str("key", key).Int("records", e.Dataset.Len()).Msg("Cache hit")

	return e.Dataset, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, key string, dataset *vacancy.Dataset) error {
	if dataset == nil {
		return fmt.Errorf("dataset cannot be nil")
	}

	data, err := json.Marshal(entry{CreatedAt: time.Now().UTC(), Dataset: dataset})
	if err != nil {
		CacheErrors.WithLabelValues("redis", "put").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+key, data, s.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("redis", "put").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	s.logger.Debug().Str("key", key).Int("records", dataset.Len()).Msg("Cache entry written")

	return nil
}
