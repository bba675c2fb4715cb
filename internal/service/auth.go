// Package service holds the business rules of the roster API.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// Services accept plain Go values, return domain errors from the apperror
// package and never see an *http.Request. The handler translates errors into
// status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/club-roster/internal/apperror"
	"github.com/sakif/club-roster/internal/auth"
	"github.com/sakif/club-roster/internal/cache"
	"github.com/sakif/club-roster/internal/model"
	"github.com/sakif/club-roster/internal/repository"
)

// AuthService logs users in and resolves token keys back to users.
//
//	AuthHandler → AuthService → Store (users, auth_tokens)
//	                          ↘ TokenService (sign/verify keys)
//	                          ↘ PasswordService (bcrypt)
//	                          ↘ TokenCache (optional)
type AuthService struct {
	store     repository.Store
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	cache     cache.TokenCache
	metrics   *Metrics
	logger    *slog.Logger
}

var _ auth.Authenticator = (*AuthService)(nil)

// NewAuthService wires the dependencies. tokenCache and metrics may be nil.
func NewAuthService(
	store repository.Store,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	tokenCache cache.TokenCache,
	metrics *Metrics,
	logger *slog.Logger,
) *AuthService {
	if tokenCache == nil {
		tokenCache = cache.Noop{}
	}
	return &AuthService{
		store:     store,
		tokens:    tokens,
		passwords: passwords,
		cache:     tokenCache,
		metrics:   metrics,
		logger:    logger,
	}
}

// LoginUser is the slice of the user returned next to the token.
type LoginUser struct {
	ID       string     `json:"id"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	Username string     `json:"username"`
}

// LoginResult is what a successful login answers with.
type LoginResult struct {
	Token string    `json:"token"`
	User  LoginUser `json:"user"`
}

// Login checks email and password and returns the user's token, creating it
// on first login. Later logins return the same key until it is revoked.
//
// Unknown email and wrong password produce the same InvalidCredentials
// error, and both pay for a bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := requireFields(field{"email", email}, field{"password", password}); err != nil {
		return nil, err
	}
	email = model.NormalizeEmail(email)

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			_ = s.passwords.VerifyDummy(password)
			return nil, s.rejectLogin("unknown email")
		}
		return nil, storeError(s.logger, "failed to look up user for login", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash is unusable",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, s.rejectLogin("wrong password", slog.String("userID", user.ID))
	}

	key, err := s.issueToken(ctx, s.store, user.ID)
	if err != nil {
		return nil, storeError(s.logger, "failed to issue token", err, slog.String("userID", user.ID))
	}

	s.metrics.login("success")
	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &LoginResult{
		Token: key,
		User: LoginUser{
			ID:       user.ID,
			Email:    user.Email,
			Role:     user.Role,
			Username: user.Username,
		},
	}, nil
}

func (s *AuthService) rejectLogin(reason string, attrs ...any) error {
	s.metrics.login("invalid_credentials")
	s.logger.Warn("login rejected", append(attrs, slog.String("reason", reason))...)
	return apperror.InvalidCredentials()
}

// IssueToken returns userID's token, creating one if needed, using repos so
// it can join a caller's transaction. Admin signup calls it from
// NewUserInput.AfterCreate.
func (s *AuthService) IssueToken(ctx context.Context, repos repository.TokenRepository, userID string) (string, error) {
	return s.issueToken(ctx, repos, userID)
}

// issueToken is get-or-create on the auth_tokens row.
//
// RACE:
// Two first logins for the same user can both miss the read and both try to
// insert. auth_tokens.user_id is UNIQUE, so exactly one insert wins; the
// loser gets ErrConflict, re-reads and returns the winner's key. Both
// callers end up with the same token.
func (s *AuthService) issueToken(ctx context.Context, repos repository.TokenRepository, userID string) (string, error) {
	existing, err := repos.GetTokenByUserID(ctx, userID)
	switch {
	case err == nil:
		if !s.tokens.Expired(existing.CreatedAt) {
			return existing.Key, nil
		}
		// expired: replace it with a fresh one below
		if err := repos.DeleteTokenByUserID(ctx, userID); err != nil {
			return "", err
		}
		s.evict(ctx, existing.Key)
	case !errors.Is(err, apperror.ErrNotFound):
		return "", err
	}

	key, err := s.tokens.Generate(userID)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}

	err = repos.CreateToken(ctx, &model.AuthToken{Key: key, UserID: userID})
	if errors.Is(err, apperror.ErrConflict) {
		winner, err := repos.GetTokenByUserID(ctx, userID)
		if err != nil {
			return "", err
		}
		return winner.Key, nil
	}
	if err != nil {
		return "", err
	}

	s.metrics.tokenIssued()
	s.logger.Info("token issued", slog.String("userID", userID))
	return key, nil
}

// Authenticate resolves a token key to its user. Any failure (bad
// signature, revoked key, expired key, deleted user, store error) is
// reported as Unauthenticated; the reason is only logged.
func (s *AuthService) Authenticate(ctx context.Context, key string) (*model.User, error) {
	userID, err := s.tokens.Validate(key)
	if err != nil {
		s.logger.Warn("token rejected", slog.String("reason", err.Error()))
		return nil, apperror.Unauthenticated()
	}

	if cached, err := s.cache.Get(ctx, key); err != nil || cached != userID {
		if err != nil && !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("token cache unavailable", slog.String("error", err.Error()))
		}
		if err := s.checkStoredToken(ctx, key, userID); err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, userID); err != nil {
			s.logger.Warn("failed to cache token", slog.String("error", err.Error()))
		}
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Warn("token owner not found", slog.String("userID", userID))
		return nil, apperror.Unauthenticated()
	}
	return user, nil
}

// checkStoredToken makes sure key is the user's current, unexpired token.
func (s *AuthService) checkStoredToken(ctx context.Context, key, userID string) error {
	t, err := s.store.GetTokenByKey(ctx, key)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to look up token", slog.String("error", err.Error()))
		} else {
			s.logger.Warn("token revoked or unknown", slog.String("userID", userID))
		}
		return apperror.Unauthenticated()
	}
	if t.UserID != userID || s.tokens.Expired(t.CreatedAt) {
		s.logger.Warn("token rejected", slog.String("userID", userID))
		return apperror.Unauthenticated()
	}
	return nil
}

// Logout revokes the user's token. The next login mints a new key.
func (s *AuthService) Logout(ctx context.Context, user *model.User) error {
	if user == nil {
		return apperror.Unauthenticated()
	}

	t, err := s.store.GetTokenByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return storeError(s.logger, "failed to look up token for logout", err, slog.String("userID", user.ID))
	}

	if err := s.store.DeleteTokenByUserID(ctx, user.ID); err != nil {
		return storeError(s.logger, "failed to revoke token", err, slog.String("userID", user.ID))
	}
	s.evict(ctx, t.Key)

	s.logger.Info("user logged out", slog.String("userID", user.ID))
	return nil
}

func (s *AuthService) evict(ctx context.Context, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to evict token from cache", slog.String("error", err.Error()))
	}
}

// Me returns the caller together with its role profile, if any.
func (s *AuthService) Me(ctx context.Context, user *model.User) (*CreatedUser, error) {
	if user == nil {
		return nil, apperror.Unauthenticated()
	}
	me := &CreatedUser{User: user}

	switch user.Role {
	case model.RoleCoach:
		p, err := s.store.GetCoachByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: loading coach profile: %w", err)
		}
		me.Coach = p
	case model.RolePlayer:
		p, err := s.store.GetPlayerByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/auth: loading player profile: %w", err)
		}
		me.Player = p
	}
	return me, nil
}
