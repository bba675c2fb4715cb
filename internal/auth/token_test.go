package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// newTestTokenService uses a fixed secret so tests are deterministic.
func newTestTokenService(t *testing.T, ttl time.Duration) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!", ttl)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// CONSTRUCTION
// =========================================================================

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		ttl     time.Duration
		wantErr bool
	}{
		{"short secret", "short", 0, true},
		{"16 chars", "this-is-16-chars", 0, false},
		{"negative ttl", "this-is-16-chars", -time.Second, true},
		{"with ttl", "this-is-16-chars", time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenService(tt.secret, tt.ttl)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTokenService() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// =========================================================================
// GENERATE / VALIDATE
// =========================================================================

func TestGenerate_LooksLikeJWT(t *testing.T) {
	ts := newTestTokenService(t, 0)

	key, err := ts.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if strings.Count(key, ".") != 2 {
		t.Errorf("Generate() = %q, want header.payload.signature", key)
	}
}

func TestGenerate_SameUserGetsFreshKeys(t *testing.T) {
	ts := newTestTokenService(t, 0)

	k1, _ := ts.Generate("user-aaa")
	k2, _ := ts.Generate("user-aaa")
	if k1 == k2 {
		t.Error("two keys for the same user are identical; jti should differ")
	}
}

func TestGenerate_RequiresUserID(t *testing.T) {
	ts := newTestTokenService(t, 0)

	if _, err := ts.Generate(""); err == nil {
		t.Error("Generate(\"\") should fail")
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	for _, ttl := range []time.Duration{0, time.Hour} {
		ts := newTestTokenService(t, ttl)

		key, err := ts.Generate("user-abc-123")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		got, err := ts.Validate(key)
		if err != nil {
			t.Fatalf("ttl=%v: Validate() error = %v", ttl, err)
		}
		if got != "user-abc-123" {
			t.Errorf("ttl=%v: Validate() = %q, want user-abc-123", ttl, got)
		}
	}
}

func TestValidate_ExpiredKey(t *testing.T) {
	ts := newTestTokenService(t, time.Minute)
	key, _ := ts.Generate("user-123")

	// move the clock past the expiry
	ts.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err := ts.Validate(key)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Validate() error = %v, want ErrTokenExpired", err)
	}
}

func TestValidate_NoTTLNeverExpires(t *testing.T) {
	ts := newTestTokenService(t, 0)
	key, _ := ts.Generate("user-123")

	ts.now = func() time.Time { return time.Now().Add(10 * 365 * 24 * time.Hour) }

	if _, err := ts.Validate(key); err != nil {
		t.Errorf("Validate() error = %v, want a key without exp to stay valid", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	ts := newTestTokenService(t, 0)
	good, _ := ts.Generate("user-123")

	other, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!", 0)
	foreign, _ := other.Generate("user-123")

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt.token"},
		{"tampered signature", good[:len(good)-3] + "xxx"},
		{"signed with another secret", foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.Validate(tt.key)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestExpired(t *testing.T) {
	issued := time.Now().Add(-time.Hour)

	if newTestTokenService(t, 0).Expired(issued) {
		t.Error("Expired() = true with no TTL")
	}
	if !newTestTokenService(t, time.Minute).Expired(issued) {
		t.Error("Expired() = false for a key older than the TTL")
	}
	if newTestTokenService(t, 2*time.Hour).Expired(issued) {
		t.Error("Expired() = true for a key younger than the TTL")
	}
}
