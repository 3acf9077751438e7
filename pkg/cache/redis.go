package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"holdem-server/pkg/poker/betting"
)

const keyPrefix = "holdem:round"

// Redis caches rounds in Redis
// Each version gets its own key, so a stale version simply expires.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to the Redis server at the URL, i.e., redis://:password@localhost:6379/0
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisWithClient(client, ttl), nil
}

// NewRedisWithClient returns a cache that uses an existing client
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
	}
}

func key(handID string, version int) string {
	return fmt.Sprintf("%s:%s:%d", keyPrefix, handID, version)
}

// Get returns the cached round
func (r *Redis) Get(ctx context.Context, handID string, version int) (betting.Round, error) {
	data, err := r.client.Get(ctx, key(handID, version)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return betting.Round{}, ErrMiss
		}

		return betting.Round{}, err
	}

	var round betting.Round
	if err := json.Unmarshal(data, &round); err != nil {
		return betting.Round{}, err
	}

	return round, nil
}

// Set stores the round
func (r *Redis) Set(ctx context.Context, handID string, version int, round betting.Round) error {
	data, err := json.Marshal(round)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key(handID, version), data, r.ttl).Err()
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}
