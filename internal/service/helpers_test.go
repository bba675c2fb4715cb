package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/sakif/club-roster/internal/auth"
	"github.com/sakif/club-roster/internal/cache"
	"github.com/sakif/club-roster/internal/model"
	"github.com/sakif/club-roster/internal/repository"
	"github.com/sakif/club-roster/internal/repository/sqlite"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memCache is an in-memory TokenCache that counts writes.
type memCache struct {
	mu      sync.Mutex
	entries map[string]string
	sets    int
	deletes int
}

var _ cache.TokenCache = (*memCache)(nil)

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]string)}
}

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.entries[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return id, nil
}

func (c *memCache) Set(_ context.Context, key, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = userID
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.deletes++
	return nil
}

func (c *memCache) Close() error { return nil }

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// countingProfiles wraps a ProfileRepository and counts every write.
type countingProfiles struct {
	repository.ProfileRepository
	writes int
}

func (c *countingProfiles) CreateCoach(ctx context.Context, p *model.CoachProfile) error {
	c.writes++
	return c.ProfileRepository.CreateCoach(ctx, p)
}

func (c *countingProfiles) DeleteCoach(ctx context.Context, id string) error {
	c.writes++
	return c.ProfileRepository.DeleteCoach(ctx, id)
}

func (c *countingProfiles) CreatePlayer(ctx context.Context, p *model.PlayerProfile) error {
	c.writes++
	return c.ProfileRepository.CreatePlayer(ctx, p)
}

func (c *countingProfiles) DeletePlayer(ctx context.Context, id string) error {
	c.writes++
	return c.ProfileRepository.DeletePlayer(ctx, id)
}

// testEnv is the whole service graph over a fresh in-memory database.
type testEnv struct {
	store    *sqlite.DB
	cache    *memCache
	tokens   *auth.TokenService
	identity *IdentityService
	auth     *AuthService
	signup   *SignupService
	profiles *ProfileService
	groups   *GroupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithTTL(t, 0)
}

func newTestEnvWithTTL(t *testing.T, ttl time.Duration) *testEnv {
	t.Helper()

	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", ttl)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	// Cost 4 is the bcrypt minimum and keeps tests fast
	passwords := auth.NewPasswordServiceForTest(4)
	logger := testLogger()
	tc := newMemCache()

	identity := NewIdentityService(store, passwords, NewProfileSynchronizer(logger), tc, logger)
	authSvc := NewAuthService(store, tokens, passwords, tc, nil, logger)

	return &testEnv{
		store:    store,
		cache:    tc,
		tokens:   tokens,
		identity: identity,
		auth:     authSvc,
		signup:   NewSignupService(identity, authSvc, nil, logger),
		profiles: NewProfileService(store, logger),
		groups:   NewGroupService(store, logger),
	}
}

// mustCreateUser creates a user through the identity service.
func (e *testEnv) mustCreateUser(t *testing.T, username string, role model.Role) *CreatedUser {
	t.Helper()
	created, err := e.identity.CreateUser(context.Background(), NewUserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return created
}
