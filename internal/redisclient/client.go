package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/rate_limit.lua
var rateLimitScript string

type Client struct {
	rdb             *redis.Client
	rateLimitScript *redis.Script
}

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewFromClient(rdb), nil
}

// NewFromClient wraps an existing go-redis client
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{
		rdb:             rdb,
		rateLimitScript: redis.NewScript(rateLimitScript),
	}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks that Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Allow counts a request against the fixed window for subject and reports
// whether it is within limit
func (c *Client) Allow(ctx context.Context, subject string, limit int, window time.Duration) (Decision, error) {
	key := RateLimitKey(subject, window)

	result, err := c.rateLimitScript.Run(ctx, c.rdb, []string{key}, limit, window.Milliseconds()).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script failed: %w", err)
	}

	return parseDecision(result)
}

// RateLimitKey is the Redis key holding the counter for subject
func RateLimitKey(subject string, window time.Duration) string {
	return fmt.Sprintf("ratelimit:search:%s:%d", subject, window.Milliseconds())
}

func parseDecision(result interface{}) (Decision, error) {
	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return Decision{}, fmt.Errorf("unexpected script result: %v", result)
	}

	nums := make([]int64, 3)
	for i, v := range values {
		n, ok := v.(int64)
		if !ok {
			return Decision{}, fmt.Errorf("unexpected script result type at %d: %T", i, v)
		}
		nums[i] = n
	}

	d := Decision{
		Allowed: nums[0] == 1,
		Count:   nums[1],
	}
	if !d.Allowed {
		d.RetryAfter = time.Duration(nums[2]) * time.Millisecond
	}
	return d, nil
}
