// Package cache keeps a short-lived token key → user id mapping so the auth
// middleware can skip the auth_tokens lookup on hot paths.
//
// The database stays the source of truth. Logout and user deletion remove
// the entry, and every entry has a TTL, so a missed invalidation can only
// keep a revoked key alive for at most that long.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("cache: miss")

// TokenCache maps token keys to user ids.
type TokenCache interface {
	Get(ctx context.Context, tokenKey string) (userID string, err error)
	Set(ctx context.Context, tokenKey, userID string) error
	Delete(ctx context.Context, tokenKey string) error
	Close() error
}

// entryKey derives the storage key. Token keys are credentials, so only
// their SHA-256 reaches the cache server.
func entryKey(tokenKey string) string {
	sum := sha256.Sum256([]byte(tokenKey))
	return "club-roster:token:" + hex.EncodeToString(sum[:])
}

// Noop is the cache used when no Redis address is configured: every Get is a
// miss and writes are dropped.
type Noop struct{}

var _ TokenCache = Noop{}

func (Noop) Get(context.Context, string) (string, error) { return "", ErrMiss }
func (Noop) Set(context.Context, string, string) error    { return nil }
func (Noop) Delete(context.Context, string) error         { return nil }
func (Noop) Close() error                                 { return nil }
