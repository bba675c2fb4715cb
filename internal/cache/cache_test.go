package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/xid"
)

func TestEntryKey_HidesTokenKey(t *testing.T) {
	k := entryKey("secret-token-key")

	if strings.Contains(k, "secret-token-key") {
		t.Errorf("entryKey() = %q contains the raw key", k)
	}
	if k != entryKey("secret-token-key") {
		t.Error("entryKey() is not deterministic")
	}
	if k == entryKey("other-key") {
		t.Error("different keys map to the same entry")
	}
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	var c TokenCache = Noop{}

	if err := c.Set(ctx, "k", "u1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() error = %v, want ErrMiss", err)
	}
}

func TestNewRedis_RequiresAddr(t *testing.T) {
	if _, err := NewRedis(context.Background(), Options{}); err == nil {
		t.Error("NewRedis() without an address should fail")
	}
}

// TestRedis_RoundTrip talks to a real server and is skipped unless
// REDIS_TEST_ADDR is set, e.g. REDIS_TEST_ADDR=localhost:6379 go test ./...
func TestRedis_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()

	c, err := NewRedis(ctx, Options{Addr: addr, TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewRedis() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })

	key := "test-" + xid.New().String()
	if _, err := c.Get(ctx, key); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get() before Set error = %v, want ErrMiss", err)
	}
	if err := c.Set(ctx, key, "user-1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := c.Get(ctx, key)
	if err != nil || got != "user-1" {
		t.Fatalf("Get() = (%q, %v), want user-1", got, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get(ctx, key); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() after Delete error = %v, want ErrMiss", err)
	}
}
