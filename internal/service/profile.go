package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/club-roster/internal/apperror"
	"github.com/sakif/club-roster/internal/model"
	"github.com/sakif/club-roster/internal/repository"
)

// Page size bounds for list endpoints.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

func clampPage(limit, offset int) repository.ListOptions {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.ListOptions{Limit: limit, Offset: offset}
}

// CoachInput carries the writable coach profile attributes. UserID is only
// read by Create; the owner of a profile never changes.
type CoachInput struct {
	UserID            string            `json:"user_id"`
	Specialization    string            `json:"specialization"`
	YearsOfExperience model.Whole       `json:"years_of_experience"`
	Certification     string            `json:"certification"`
	Status            model.CoachStatus `json:"status"`
	Address           string            `json:"address"`
	Notes             string            `json:"notes"`
}

func (in CoachInput) apply(p *model.CoachProfile) error {
	p.Specialization = strings.TrimSpace(in.Specialization)
	p.YearsOfExperience = int(in.YearsOfExperience)
	p.Certification = strings.TrimSpace(in.Certification)
	p.Address = in.Address
	p.Notes = in.Notes
	if in.Status != "" {
		p.Status = in.Status
	}

	if p.YearsOfExperience < 0 {
		return apperror.ValidationFailed("years_of_experience", "years_of_experience must not be negative")
	}
	if !p.Status.Valid() {
		return apperror.ValidationFailed("status", fmt.Sprintf("%q is not a valid coach status", p.Status))
	}
	return nil
}

// PlayerInput carries the writable player profile attributes.
type PlayerInput struct {
	UserID   string             `json:"user_id"`
	FullName string             `json:"full_name"`
	Height   model.Number       `json:"height"`
	Weight   model.Number       `json:"weight"`
	Position model.Position     `json:"position"`
	Status   model.PlayerStatus `json:"status"`
	Group    string             `json:"group"`
	Subgroup string             `json:"subgroup"`
	Phone    string             `json:"phone"`
	Address  string             `json:"address"`
	Notes    string             `json:"notes"`
}

func (in PlayerInput) apply(p *model.PlayerProfile) error {
	p.FullName = strings.TrimSpace(in.FullName)
	p.Height = float64(in.Height)
	p.Weight = float64(in.Weight)
	if in.Position != "" {
		p.Position = in.Position
	}
	if in.Status != "" {
		p.Status = in.Status
	}
	p.Group = strings.TrimSpace(in.Group)
	p.Subgroup = strings.TrimSpace(in.Subgroup)
	p.Phone = strings.TrimSpace(in.Phone)
	p.Address = in.Address
	p.Notes = in.Notes

	if p.FullName == "" {
		return apperror.MissingFields("full_name")
	}
	return validatePlayer(p)
}

// validatePlayer checks the enum and numeric attributes of a profile.
func validatePlayer(p *model.PlayerProfile) error {
	if err := checkMaxLen("full_name", p.FullName, MaxNameLength); err != nil {
		return err
	}
	if err := checkNonNegative("height", p.Height); err != nil {
		return err
	}
	if err := checkNonNegative("weight", p.Weight); err != nil {
		return err
	}
	if !p.Position.Valid() {
		return apperror.ValidationFailed("position", fmt.Sprintf("%q is not a valid position", p.Position))
	}
	if !p.Status.Valid() {
		return apperror.ValidationFailed("status", fmt.Sprintf("%q is not a valid player status", p.Status))
	}
	return nil
}

// ProfileService is plain CRUD over coach and player profiles. Profiles
// created by signup or by the synchronizer are edited through it too.
type ProfileService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewProfileService(store repository.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, logger: logger}
}

// requireRole loads userID and checks it has role. A missing user is a
// validation error on user_id, not a 404: the URL itself was fine.
func requireRole(ctx context.Context, users repository.UserRepository, userID string, role model.Role) error {
	if strings.TrimSpace(userID) == "" {
		return apperror.MissingFields("user_id")
	}
	u, err := users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ValidationFailed("user_id", fmt.Sprintf("user %s does not exist", userID))
		}
		return err
	}
	if u.Role != role {
		return apperror.ValidationFailed("user_id", fmt.Sprintf("user %s is not a %s", userID, role))
	}
	return nil
}

// =========================================================================
// COACHES
// =========================================================================

func (s *ProfileService) ListCoaches(ctx context.Context, limit, offset int) ([]model.CoachProfile, error) {
	coaches, err := s.store.ListCoaches(ctx, clampPage(limit, offset))
	if err != nil {
		s.logger.Error("failed to list coaches", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/profile: listing coaches: %w", err)
	}
	return coaches, nil
}

func (s *ProfileService) GetCoach(ctx context.Context, id string) (*model.CoachProfile, error) {
	return s.store.GetCoachByID(ctx, strings.TrimSpace(id))
}

// CreateCoach adds a profile for an existing coach-role user that has none.
func (s *ProfileService) CreateCoach(ctx context.Context, in CoachInput) (*model.CoachProfile, error) {
	p := model.NewCoachProfile(in.UserID)
	if err := in.apply(p); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if err := requireRole(ctx, repos, in.UserID, model.RoleCoach); err != nil {
			return err
		}
		return repos.CreateCoach(ctx, p)
	})
	if err != nil {
		return nil, storeError(s.logger, "failed to create coach profile", err, slog.String("userID", in.UserID))
	}

	s.logger.Info("coach profile created", slog.String("id", p.ID), slog.String("userID", p.UserID))
	return s.store.GetCoachByID(ctx, p.ID)
}

// UpdateCoach replaces every writable attribute; omitted fields are cleared.
func (s *ProfileService) UpdateCoach(ctx context.Context, id string, in CoachInput) (*model.CoachProfile, error) {
	p, err := s.store.GetCoachByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Status = model.CoachActive
	if err := in.apply(p); err != nil {
		return nil, err
	}

	if err := s.store.UpdateCoach(ctx, p); err != nil {
		return nil, storeError(s.logger, "failed to update coach profile", err, slog.String("id", id))
	}
	return p, nil
}

func (s *ProfileService) DeleteCoach(ctx context.Context, id string) error {
	if err := s.store.DeleteCoach(ctx, id); err != nil {
		return storeError(s.logger, "failed to delete coach profile", err, slog.String("id", id))
	}
	s.logger.Info("coach profile deleted", slog.String("id", id))
	return nil
}

// =========================================================================
// PLAYERS
// =========================================================================

// ListPlayers lists players, only those in group when it is non-empty.
func (s *ProfileService) ListPlayers(ctx context.Context, group string, limit, offset int) ([]model.PlayerProfile, error) {
	players, err := s.store.ListPlayers(ctx, repository.PlayerFilter{
		ListOptions: clampPage(limit, offset),
		Group:       strings.TrimSpace(group),
	})
	if err != nil {
		s.logger.Error("failed to list players", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/profile: listing players: %w", err)
	}
	return players, nil
}

func (s *ProfileService) GetPlayer(ctx context.Context, id string) (*model.PlayerProfile, error) {
	return s.store.GetPlayerByID(ctx, strings.TrimSpace(id))
}

// CreatePlayer adds a profile for an existing player-role user that has none.
func (s *ProfileService) CreatePlayer(ctx context.Context, in PlayerInput) (*model.PlayerProfile, error) {
	p := model.NewPlayerProfile(in.UserID, in.FullName)
	if err := in.apply(p); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if err := requireRole(ctx, repos, in.UserID, model.RolePlayer); err != nil {
			return err
		}
		return repos.CreatePlayer(ctx, p)
	})
	if err != nil {
		return nil, storeError(s.logger, "failed to create player profile", err, slog.String("userID", in.UserID))
	}

	s.logger.Info("player profile created", slog.String("id", p.ID), slog.String("userID", p.UserID))
	return s.store.GetPlayerByID(ctx, p.ID)
}

// UpdatePlayer replaces every writable attribute. Position and status fall
// back to their defaults when omitted.
func (s *ProfileService) UpdatePlayer(ctx context.Context, id string, in PlayerInput) (*model.PlayerProfile, error) {
	p, err := s.store.GetPlayerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Position, p.Status = model.Midfielder, model.PlayerActive
	if err := in.apply(p); err != nil {
		return nil, err
	}

	if err := s.store.UpdatePlayer(ctx, p); err != nil {
		return nil, storeError(s.logger, "failed to update player profile", err, slog.String("id", id))
	}
	return p, nil
}

func (s *ProfileService) DeletePlayer(ctx context.Context, id string) error {
	if err := s.store.DeletePlayer(ctx, id); err != nil {
		return storeError(s.logger, "failed to delete player profile", err, slog.String("id", id))
	}
	s.logger.Info("player profile deleted", slog.String("id", id))
	return nil
}
