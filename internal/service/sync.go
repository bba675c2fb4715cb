package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/club-roster/internal/apperror"
	"github.com/sakif/club-roster/internal/model"
	"github.com/sakif/club-roster/internal/repository"
)

// Synchronizer keeps a user's profiles in line with its role. The identity
// service calls it inside the same transaction that wrote the user.
type Synchronizer interface {
	Sync(ctx context.Context, repos repository.ProfileRepository, user *model.User, created bool) error
}

// ProfileSynchronizer is the Synchronizer used in production.
//
// RULES:
//   - coach  → ensure a CoachProfile exists; on update also drop a PlayerProfile
//   - player → ensure a PlayerProfile exists; on update also drop a CoachProfile
//   - admin  → nothing (there is no admin profile)
//
// Every write is preceded by an existence check, so running Sync twice on the
// same user writes nothing the second time. That is what lets signup insert
// an explicit, fully populated profile first: Sync then finds it and leaves
// it alone.
type ProfileSynchronizer struct {
	logger *slog.Logger
}

var _ Synchronizer = (*ProfileSynchronizer)(nil)

func NewProfileSynchronizer(logger *slog.Logger) *ProfileSynchronizer {
	return &ProfileSynchronizer{logger: logger}
}

// Sync applies the rules above. created is true right after the user was
// inserted and false after a later update (e.g. a role change); deletions
// only happen on updates.
func (s *ProfileSynchronizer) Sync(ctx context.Context, repos repository.ProfileRepository, user *model.User, created bool) error {
	switch user.Role {
	case model.RoleCoach:
		if err := s.ensureCoach(ctx, repos, user); err != nil {
			return err
		}
		if !created {
			return s.dropPlayer(ctx, repos, user)
		}
	case model.RolePlayer:
		if err := s.ensurePlayer(ctx, repos, user); err != nil {
			return err
		}
		if !created {
			return s.dropCoach(ctx, repos, user)
		}
	}
	return nil
}

func (s *ProfileSynchronizer) ensureCoach(ctx context.Context, repos repository.ProfileRepository, user *model.User) error {
	_, err := repos.GetCoachByUserID(ctx, user.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("sync: looking up coach profile of %s: %w", user.ID, err)
	}

	if err := repos.CreateCoach(ctx, model.NewCoachProfile(user.ID)); err != nil {
		return fmt.Errorf("sync: creating coach profile of %s: %w", user.ID, err)
	}
	s.logger.Info("coach profile created", slog.String("userID", user.ID))
	return nil
}

func (s *ProfileSynchronizer) ensurePlayer(ctx context.Context, repos repository.ProfileRepository, user *model.User) error {
	_, err := repos.GetPlayerByUserID(ctx, user.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("sync: looking up player profile of %s: %w", user.ID, err)
	}

	if err := repos.CreatePlayer(ctx, model.NewPlayerProfile(user.ID, user.DisplayName())); err != nil {
		return fmt.Errorf("sync: creating player profile of %s: %w", user.ID, err)
	}
	s.logger.Info("player profile created", slog.String("userID", user.ID))
	return nil
}

func (s *ProfileSynchronizer) dropCoach(ctx context.Context, repos repository.ProfileRepository, user *model.User) error {
	p, err := repos.GetCoachByUserID(ctx, user.ID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync: looking up coach profile of %s: %w", user.ID, err)
	}

	if err := repos.DeleteCoach(ctx, p.ID); err != nil {
		return fmt.Errorf("sync: deleting coach profile of %s: %w", user.ID, err)
	}
	s.logger.Info("coach profile removed", slog.String("userID", user.ID))
	return nil
}

func (s *ProfileSynchronizer) dropPlayer(ctx context.Context, repos repository.ProfileRepository, user *model.User) error {
	p, err := repos.GetPlayerByUserID(ctx, user.ID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync: looking up player profile of %s: %w", user.ID, err)
	}

	if err := repos.DeletePlayer(ctx, p.ID); err != nil {
		return fmt.Errorf("sync: deleting player profile of %s: %w", user.ID, err)
	}
	s.logger.Info("player profile removed", slog.String("userID", user.ID))
	return nil
}
