package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sakif/club-roster/internal/apperror"
	"github.com/sakif/club-roster/internal/model"
	"github.com/sakif/club-roster/internal/repository"
)

// GroupInput is the writable part of a group. Players replaces the whole
// member set on update.
type GroupInput struct {
	Name    string   `json:"name"`
	CoachID string   `json:"coach_id"`
	Players []string `json:"players"`
}

// GroupService manages coach rosters.
//
// INVARIANTS (checked on every write, inside the write's transaction):
//   - coach_id points at a user whose role is coach
//   - every player id points at an existing player profile
//   - the member list is a set
type GroupService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewGroupService(store repository.Store, logger *slog.Logger) *GroupService {
	return &GroupService{store: store, logger: logger}
}

func (in GroupInput) normalize() (GroupInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.CoachID = strings.TrimSpace(in.CoachID)
	if err := requireFields(field{"name", in.Name}, field{"coach_id", in.CoachID}); err != nil {
		return in, err
	}
	if err := checkMaxLen("name", in.Name, MaxGroupNameLen); err != nil {
		return in, err
	}
	in.Players = uniqueIDs(in.Players)
	return in, nil
}

// uniqueIDs trims, drops blanks and collapses duplicates. The result is
// sorted and never nil.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// checkCoach reports a missing user and a user of another role the same way.
func checkCoach(ctx context.Context, users repository.UserRepository, coachID string) error {
	u, err := users.GetUserByID(ctx, coachID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ValidationFailed("coach_id", fmt.Sprintf("user %s does not exist", coachID))
		}
		return err
	}
	if u.Role != model.RoleCoach {
		return apperror.ValidationFailed("coach_id", fmt.Sprintf("user %s is not a coach", coachID))
	}
	return nil
}

func checkPlayers(ctx context.Context, players repository.PlayerRepository, ids []string) error {
	for _, id := range ids {
		if _, err := players.GetPlayerByID(ctx, id); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return apperror.ValidationFailed("players", fmt.Sprintf("player %s does not exist", id))
			}
			return err
		}
	}
	return nil
}

func (s *GroupService) Create(ctx context.Context, in GroupInput) (*model.Group, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	g := &model.Group{Name: in.Name, CoachID: in.CoachID, PlayerIDs: in.Players}
	err = s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if err := checkCoach(ctx, repos, in.CoachID); err != nil {
			return err
		}
		if err := checkPlayers(ctx, repos, in.Players); err != nil {
			return err
		}
		return repos.CreateGroup(ctx, g)
	})
	if err != nil {
		return nil, storeError(s.logger, "failed to create group", err, slog.String("name", in.Name))
	}

	s.logger.Info("group created",
		slog.String("id", g.ID),
		slog.String("coachID", g.CoachID),
		slog.Int("players", len(g.PlayerIDs)),
	)
	return s.store.GetGroupByID(ctx, g.ID)
}

func (s *GroupService) Get(ctx context.Context, id string) (*model.Group, error) {
	return s.store.GetGroupByID(ctx, strings.TrimSpace(id))
}

// List returns groups, only coachID's when it is non-empty.
func (s *GroupService) List(ctx context.Context, coachID string, limit, offset int) ([]model.Group, error) {
	groups, err := s.store.ListGroups(ctx, repository.GroupFilter{
		ListOptions: clampPage(limit, offset),
		CoachID:     strings.TrimSpace(coachID),
	})
	if err != nil {
		s.logger.Error("failed to list groups", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/group: listing groups: %w", err)
	}
	return groups, nil
}

// Update sets name and coach and replaces the member set.
func (s *GroupService) Update(ctx context.Context, id string, in GroupInput) (*model.Group, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(repos repository.Repositories) error {
		g, err := repos.GetGroupByID(ctx, id)
		if err != nil {
			return err
		}
		if err := checkCoach(ctx, repos, in.CoachID); err != nil {
			return err
		}
		if err := checkPlayers(ctx, repos, in.Players); err != nil {
			return err
		}
		g.Name, g.CoachID, g.PlayerIDs = in.Name, in.CoachID, in.Players
		return repos.UpdateGroup(ctx, g)
	})
	if err != nil {
		return nil, storeError(s.logger, "failed to update group", err, slog.String("id", id))
	}
	return s.store.GetGroupByID(ctx, id)
}

func (s *GroupService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteGroup(ctx, id); err != nil {
		return storeError(s.logger, "failed to delete group", err, slog.String("id", id))
	}
	s.logger.Info("group deleted", slog.String("id", id))
	return nil
}

// AddPlayers adds members. Ids already in the group are ignored.
func (s *GroupService) AddPlayers(ctx context.Context, id string, playerIDs []string) (*model.Group, error) {
	playerIDs = uniqueIDs(playerIDs)
	if len(playerIDs) == 0 {
		return nil, apperror.MissingFields("players")
	}

	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.GetGroupByID(ctx, id); err != nil {
			return err
		}
		if err := checkPlayers(ctx, repos, playerIDs); err != nil {
			return err
		}
		return repos.AddGroupPlayers(ctx, id, playerIDs)
	})
	if err != nil {
		return nil, storeError(s.logger, "failed to add group players", err, slog.String("id", id))
	}
	return s.store.GetGroupByID(ctx, id)
}

// RemovePlayer drops one member. NotFound when the group does not exist or
// the player is not in it.
func (s *GroupService) RemovePlayer(ctx context.Context, id, playerID string) (*model.Group, error) {
	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.GetGroupByID(ctx, id); err != nil {
			return err
		}
		return repos.RemoveGroupPlayer(ctx, id, playerID)
	})
	if err != nil {
		return nil, storeError(s.logger, "failed to remove group player", err, slog.String("id", id))
	}
	return s.store.GetGroupByID(ctx, id)
}
