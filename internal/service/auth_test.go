package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/club-roster/internal/apperror"
	"github.com/sakif/club-roster/internal/model"
)

// =========================================================================
// LOGIN
// =========================================================================

func TestLogin_MissingFields(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"both", "", ""},
		{"password", "a@example.com", ""},
		{"email", "", "pw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.auth.Login(context.Background(), tt.email, tt.password)
			if !errors.Is(err, apperror.ErrMissingField) {
				t.Errorf("Login() error = %v, want ErrMissingField", err)
			}
		})
	}
}

func TestLogin_UnknownEmailAndWrongPasswordLookTheSame(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.mustCreateUser(t, "alice", model.RoleCoach)

	_, unknown := e.auth.Login(ctx, "nobody@example.com", "password123")
	_, wrong := e.auth.Login(ctx, "alice@example.com", "wrong-password")

	for name, err := range map[string]error{"unknown email": unknown, "wrong password": wrong} {
		if !errors.Is(err, apperror.ErrInvalidCredentials) {
			t.Errorf("%s: error = %v, want ErrInvalidCredentials", name, err)
		}
	}
	if unknown.Error() != wrong.Error() {
		t.Errorf("messages differ: %q vs %q", unknown, wrong)
	}
}

func TestLogin_ReturnsUserSummaryAndStableToken(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.mustCreateUser(t, "alice", model.RoleCoach).User

	first, err := e.auth.Login(ctx, "ALICE@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if first.User.ID != u.ID || first.User.Role != model.RoleCoach || first.User.Username != "alice" {
		t.Errorf("User = %+v", first.User)
	}

	second, err := e.auth.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("second Login() error = %v", err)
	}
	if second.Token != first.Token {
		t.Error("repeated logins returned different tokens")
	}
}

func TestLogin_ReplacesExpiredToken(t *testing.T) {
	e := newTestEnvWithTTL(t, time.Hour)
	ctx := context.Background()
	u := e.mustCreateUser(t, "alice", model.RoleAdmin).User

	// a stored token issued long before the TTL window
	old, _ := e.tokens.Generate(u.ID)
	if err := e.store.CreateToken(ctx, &model.AuthToken{
		Key: old, UserID: u.ID, CreatedAt: time.Now().Add(-2 * time.Hour),
	}); err != nil {
		t.Fatalf("CreateToken() error = %v", err)
	}
	if _, err := e.auth.Authenticate(ctx, old); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("Authenticate(expired) error = %v, want ErrUnauthenticated", err)
	}

	res, err := e.auth.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.Token == old {
		t.Fatal("Login() reused an expired token")
	}
	if _, err := e.auth.Authenticate(ctx, res.Token); err != nil {
		t.Errorf("Authenticate(new) error = %v", err)
	}
}

// =========================================================================
// TOKEN GET-OR-CREATE
// =========================================================================

// racingTokens simulates losing the insert race: the first read misses, the
// insert conflicts, and the re-read finds the winner's row.
type racingTokens struct {
	reads int
}

func (r *racingTokens) CreateToken(context.Context, *model.AuthToken) error {
	return apperror.Conflict("token", "u1")
}

func (r *racingTokens) GetTokenByUserID(_ context.Context, userID string) (*model.AuthToken, error) {
	r.reads++
	if r.reads == 1 {
		return nil, apperror.NotFound("token", "user:"+userID)
	}
	return &model.AuthToken{Key: "winner-key", UserID: userID, CreatedAt: time.Now()}, nil
}

func (r *racingTokens) GetTokenByKey(context.Context, string) (*model.AuthToken, error) {
	return nil, errors.New("not used")
}

func (r *racingTokens) DeleteTokenByUserID(context.Context, string) error { return nil }

func TestIssueToken_LosingTheRaceReturnsWinnersKey(t *testing.T) {
	e := newTestEnv(t)
	repo := &racingTokens{}

	key, err := e.auth.IssueToken(context.Background(), repo, "u1")
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	if key != "winner-key" {
		t.Errorf("IssueToken() = %q, want the winner's key", key)
	}
	if repo.reads != 2 {
		t.Errorf("reads = %d, want 2 (miss, then re-read after conflict)", repo.reads)
	}
}

// =========================================================================
// AUTHENTICATE / LOGOUT / ME
// =========================================================================

func TestAuthenticate_RejectsBadKeys(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.mustCreateUser(t, "alice", model.RoleAdmin).User

	// well signed, but never stored
	unstored, _ := e.tokens.Generate(u.ID)

	for _, key := range []string{"", "garbage", unstored} {
		if _, err := e.auth.Authenticate(ctx, key); !errors.Is(err, apperror.ErrUnauthenticated) {
			t.Errorf("Authenticate(%q) error = %v, want ErrUnauthenticated", key, err)
		}
	}
}

func TestAuthenticate_UsesCache(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.mustCreateUser(t, "alice", model.RoleAdmin)
	res, _ := e.auth.Login(ctx, "alice@example.com", "password123")

	for range 3 {
		if _, err := e.auth.Authenticate(ctx, res.Token); err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
	}
	if e.cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1 (later calls are hits)", e.cache.sets)
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	u := e.mustCreateUser(t, "alice", model.RolePlayer).User
	first, _ := e.auth.Login(ctx, "alice@example.com", "password123")
	if _, err := e.auth.Authenticate(ctx, first.Token); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if err := e.auth.Logout(ctx, u); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := e.auth.Authenticate(ctx, first.Token); !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("Authenticate() after logout error = %v, want ErrUnauthenticated", err)
	}

	second, err := e.auth.Login(ctx, "alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() after logout error = %v", err)
	}
	if second.Token == first.Token {
		t.Error("login after logout returned the revoked token")
	}

	// logging out twice is harmless
	if err := e.auth.Logout(ctx, u); err != nil {
		t.Errorf("second Logout() error = %v", err)
	}
	if err := e.auth.Logout(ctx, u); err != nil {
		t.Errorf("Logout() without a token error = %v", err)
	}
}

func TestMe_IncludesRoleProfile(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	coach := e.mustCreateUser(t, "coach", model.RoleCoach).User
	me, err := e.auth.Me(ctx, coach)
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if me.Coach == nil || me.Player != nil {
		t.Errorf("coach Me() = %+v", me)
	}

	admin := e.mustCreateUser(t, "admin", model.RoleAdmin).User
	me, err = e.auth.Me(ctx, admin)
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if me.Coach != nil || me.Player != nil {
		t.Errorf("admin Me() = %+v, want no profiles", me)
	}
}
