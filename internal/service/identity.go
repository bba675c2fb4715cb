package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/club-roster/internal/apperror"
	"github.com/sakif/club-roster/internal/auth"
	"github.com/sakif/club-roster/internal/cache"
	"github.com/sakif/club-roster/internal/model"
	"github.com/sakif/club-roster/internal/repository"
)

// NewUserInput is everything needed to create an account.
//
// Coach and Player let the caller insert a fully populated profile in the
// same transaction as the user. UserID is filled in here. The synchronizer
// runs afterwards and only adds a default profile when none was supplied.
//
// AfterCreate runs last, still inside the transaction; an error from it rolls
// the user back. Admin signup uses it to mint the first token.
type NewUserInput struct {
	Username  string
	Email     string
	Password  string
	Role      model.Role
	FirstName string
	LastName  string
	Phone     string
	Club      string

	Coach  *model.CoachProfile
	Player *model.PlayerProfile

	AfterCreate func(ctx context.Context, repos repository.Repositories, user *model.User) error
}

// CreatedUser is the result of CreateUser. At most one of Coach and Player
// is set, matching the role.
type CreatedUser struct {
	User   *model.User
	Coach  *model.CoachProfile
	Player *model.PlayerProfile
}

// IdentityService owns the user lifecycle: create, change role, delete.
// Every write that touches more than one table runs in a single transaction.
type IdentityService struct {
	store     repository.Store
	passwords *auth.PasswordService
	sync      Synchronizer
	cache     cache.TokenCache
	logger    *slog.Logger
}

func NewIdentityService(
	store repository.Store,
	passwords *auth.PasswordService,
	sync Synchronizer,
	tokenCache cache.TokenCache,
	logger *slog.Logger,
) *IdentityService {
	if tokenCache == nil {
		tokenCache = cache.Noop{}
	}
	return &IdentityService{
		store:     store,
		passwords: passwords,
		sync:      sync,
		cache:     tokenCache,
		logger:    logger,
	}
}

// CreateUser validates the input, hashes the password and writes the user,
// its profile and whatever AfterCreate adds, all or nothing.
//
// Errors: MissingFields, Validation, Duplicate (username or email taken),
// Unexpected for any other store failure.
func (s *IdentityService) CreateUser(ctx context.Context, in NewUserInput) (*CreatedUser, error) {
	if err := requireFields(
		field{"username", in.Username},
		field{"email", in.Email},
		field{"password", in.Password},
	); err != nil {
		return nil, err
	}

	user := model.NewUser(in.Username, in.Email, in.Role)
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Phone = strings.TrimSpace(in.Phone)
	user.Club = strings.TrimSpace(in.Club)

	if !user.Role.Valid() {
		return nil, apperror.ValidationFailed("role", fmt.Sprintf("%q is not a valid role", user.Role))
	}
	if err := checkEmail(user.Email); err != nil {
		return nil, err
	}
	if err := checkMaxLen("username", user.Username, MaxUsernameLength); err != nil {
		return nil, err
	}
	if err := checkMaxLen("first_name", user.FirstName, MaxNameLength); err != nil {
		return nil, err
	}
	if err := checkMaxLen("last_name", user.LastName, MaxNameLength); err != nil {
		return nil, err
	}
	if len(in.Password) > MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", MaxPasswordBytes))
	}
	if in.Coach != nil && user.Role != model.RoleCoach {
		return nil, apperror.ValidationFailed("role", "a coach profile needs the coach role")
	}
	if in.Player != nil && user.Role != model.RolePlayer {
		return nil, apperror.ValidationFailed("role", "a player profile needs the player role")
	}

	// bcrypt is slow; hash before the transaction so the write lock is short
	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}
	user.PasswordHash = hash

	created := &CreatedUser{User: user}
	err = s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if err := repos.CreateUser(ctx, user); err != nil {
			return err
		}
		if in.Coach != nil {
			in.Coach.UserID = user.ID
			if err := repos.CreateCoach(ctx, in.Coach); err != nil {
				return err
			}
		}
		if in.Player != nil {
			in.Player.UserID = user.ID
			if err := repos.CreatePlayer(ctx, in.Player); err != nil {
				return err
			}
		}
		if err := s.sync.Sync(ctx, repos, user, true); err != nil {
			return err
		}
		if in.AfterCreate != nil {
			if err := in.AfterCreate(ctx, repos, user); err != nil {
				return err
			}
		}

		// read back whatever profile now exists, explicit or synchronized
		switch user.Role {
		case model.RoleCoach:
			p, err := repos.GetCoachByUserID(ctx, user.ID)
			if err != nil {
				return err
			}
			created.Coach = p
		case model.RolePlayer:
			p, err := repos.GetPlayerByUserID(ctx, user.ID)
			if err != nil {
				return err
			}
			created.Player = p
		}
		return nil
	})
	if err != nil {
		return nil, storeError(s.logger, "failed to create user", err,
			slog.String("username", user.Username),
			slog.String("role", string(user.Role)),
		)
	}

	s.logger.Info("user created",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)),
	)
	return created, nil
}

// GetUser returns the user with the given id, or ErrNotFound.
func (s *IdentityService) GetUser(ctx context.Context, id string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.store.GetUserByID(ctx, id)
}

// ChangeRole switches a user's role and lets the synchronizer swap the
// profile: the new role's profile is created and the opposite one removed.
// Setting the current role again writes nothing.
func (s *IdentityService) ChangeRole(ctx context.Context, userID string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, apperror.ValidationFailed("role", fmt.Sprintf("%q is not a valid role", role))
	}

	var (
		user    *model.User
		oldRole model.Role
	)
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		u, err := repos.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}
		user, oldRole = u, u.Role
		if u.Role == role {
			return nil
		}

		u.Role = role
		if err := repos.UpdateUser(ctx, u); err != nil {
			return err
		}
		return s.sync.Sync(ctx, repos, u, false)
	})
	if err != nil {
		return nil, storeError(s.logger, "failed to change role", err, slog.String("userID", userID))
	}

	if oldRole != role {
		s.logger.Info("role changed",
			slog.String("userID", user.ID),
			slog.String("from", string(oldRole)),
			slog.String("to", string(role)),
		)
	}
	return user, nil
}

// DeleteUser removes the account. Profiles, the token and the groups the
// user coaches go with it through ON DELETE CASCADE.
func (s *IdentityService) DeleteUser(ctx context.Context, userID string) error {
	var tokenKey string
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		t, err := repos.GetTokenByUserID(ctx, userID)
		switch {
		case err == nil:
			tokenKey = t.Key
		case !errors.Is(err, apperror.ErrNotFound):
			return err
		}
		return repos.DeleteUser(ctx, userID)
	})
	if err != nil {
		return storeError(s.logger, "failed to delete user", err, slog.String("userID", userID))
	}

	if tokenKey != "" {
		if err := s.cache.Delete(ctx, tokenKey); err != nil {
			s.logger.Warn("failed to evict token from cache", slog.String("userID", userID), slog.String("error", err.Error()))
		}
	}

	s.logger.Info("user deleted", slog.String("userID", userID))
	return nil
}
