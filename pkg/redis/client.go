// Package redis provides a thin wrapper around go-redis/v9 exposing the
// sorted-set, set and string commands the frequency store, ingestion deduper
// and stats cache need.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Client wraps a go-redis client.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a Redis client and verifies the connection with a PING.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// IncrMember atomically adds increment to member's score (ZINCRBY) and
// returns the new score.
func (c *Client) IncrMember(ctx context.Context, key, member string, increment int64) (float64, error) {
	return c.rdb.ZIncrBy(ctx, key, float64(increment), member).Result()
}

// MemberScore returns member's score (ZSCORE). A missing member yields an
// error for which IsNilError reports true.
func (c *Client) MemberScore(ctx context.Context, key, member string) (float64, error) {
	return c.rdb.ZScore(ctx, key, member).Result()
}

// MemberRank returns member's ascending rank (ZRANK).
func (c *Client) MemberRank(ctx context.Context, key, member string) (int64, error) {
	return c.rdb.ZRank(ctx, key, member).Result()
}

// Cardinality returns the number of members in the sorted set (ZCARD).
func (c *Client) Cardinality(ctx context.Context, key string) (int64, error) {
	return c.rdb.ZCard(ctx, key).Result()
}

// RangeByIndex returns members between start and stop, both inclusive, in
// ascending score order (ZRANGE).
func (c *Client) RangeByIndex(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.rdb.ZRange(ctx, key, start, stop).Result()
}

// RemoveByMaxScore removes every member scoring at most max and returns how
// many were removed (ZREMRANGEBYSCORE key -inf max).
func (c *Client) RemoveByMaxScore(ctx context.Context, key string, max int64) (int64, error) {
	return c.rdb.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(max, 10)).Result()
}

// AddToSet adds member to a plain set and reports whether it was new (SADD).
func (c *Client) AddToSet(ctx context.Context, key, member string) (bool, error) {
	added, err := c.rdb.SAdd(ctx, key, member).Result()
	if err != nil {
		return false, err
	}
	return added == 1, nil
}

// RemoveFromSet removes member from a plain set (SREM).
func (c *Client) RemoveFromSet(ctx context.Context, key, member string) error {
	return c.rdb.SRem(ctx, key, member).Err()
}

// Get returns the string value at key. A missing key yields an error for
// which IsNilError reports true.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

// Set stores value at key with the given expiration (0 keeps it forever).
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Del deletes one or more keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// IsNilError reports whether err is a Redis nil (key-not-found) error.
func IsNilError(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Close closes the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping sends a PING to Redis and returns any error.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
