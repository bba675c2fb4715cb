package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL applies when Options.TTL is zero.
const DefaultTTL = 5 * time.Minute

// Options configures the Redis token cache.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis is a TokenCache backed by a Redis (or Dragonfly) server.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

var _ TokenCache = (*Redis)(nil)

// NewRedis connects and pings the server. A failed ping is returned as an
// error so the server can fall back to Noop instead of failing every request.
func NewRedis(ctx context.Context, opts Options) (*Redis, error) {
	if opts.Addr == "" {
		return nil, errors.New("cache: redis address is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: connecting to redis at %s: %w", opts.Addr, err)
	}

	return &Redis{client: client, ttl: opts.TTL}, nil
}

func (r *Redis) Get(ctx context.Context, tokenKey string) (string, error) {
	userID, err := r.client.Get(ctx, entryKey(tokenKey)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrMiss
		}
		return "", fmt.Errorf("cache: get: %w", err)
	}
	return userID, nil
}

func (r *Redis) Set(ctx context.Context, tokenKey, userID string) error {
	if err := r.client.Set(ctx, entryKey(tokenKey), userID, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, tokenKey string) error {
	if err := r.client.Del(ctx, entryKey(tokenKey)).Err(); err != nil {
		return fmt.Errorf("cache: delete: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
