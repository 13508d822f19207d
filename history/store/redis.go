package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	fterrors "github.com/sweetpotato0/chatbot-factory/errors"
	"github.com/sweetpotato0/chatbot-factory/history"
)

// RedisStore keeps records as JSON strings indexed by a sorted set on creation time
type RedisStore struct {
	client *redis.Client
	prefix string // Key prefix for namespacing
	ttl    time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string        // Redis server address (e.g., "localhost:6379")
	Password string        // Redis password (if any)
	DB       int           // Redis database number
	Prefix   string        // Key prefix for namespacing
	TTL      time.Duration // Time-to-live for records (0 means no expiration)
}

// DefaultRedisConfig returns the local development configuration
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:   "localhost:6379",
		Prefix: "chatbot-factory:history:",
	}
}

// NewRedisStore creates a Redis-backed store. The connection is lazy; use Ping to check it.
func NewRedisStore(config *RedisConfig) *RedisStore {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return newRedisStoreWithClient(client, config.Prefix, config.TTL)
}

func newRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisStore) recordKey(id string) string {
	return s.prefix + "run:" + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

// Save stores the record and adds it to the creation-time index
func (s *RedisStore) Save(ctx context.Context, rec *history.Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil: %w", fterrors.ErrInvalidInput)
	}
	history.Prepare(rec)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.recordKey(rec.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{
		Score:  float64(rec.CreatedAt.UnixNano()),
		Member: rec.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store record in Redis: %w", err)
	}
	return nil
}

// Get returns the record with the given ID
func (s *RedisStore) Get(ctx context.Context, id string) (*history.Record, error) {
	data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("record %s: %w", id, fterrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	var rec history.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

// List returns the newest records first. Index entries whose record expired are pruned.
func (s *RedisStore) List(ctx context.Context, limit int) ([]*history.Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history index: %w", err)
	}

	records := make([]*history.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, fterrors.ErrNotFound) {
				// Key expired, remove from index
				s.client.ZRem(ctx, s.indexKey(), id)
				continue
			}
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Count returns the number of indexed records
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	count, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return int(count), nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis connection is alive
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
