package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/club-roster/internal/apperror"
	"github.com/sakif/club-roster/internal/model"
	"github.com/sakif/club-roster/internal/repository"
)

// AdminSignupInput is the body of POST /signup/.
type AdminSignupInput struct {
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Role      model.Role `json:"role"`
	Phone     string     `json:"phone"`
	Club      string     `json:"club"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
}

// CoachSignupInput is the body of POST /signup/coach/.
type CoachSignupInput struct {
	Username          string      `json:"username"`
	Email             string      `json:"email"`
	Password          string      `json:"password"`
	FirstName         string      `json:"first_name"`
	LastName          string      `json:"last_name"`
	Phone             string      `json:"phone"`
	Club              string      `json:"club"`
	Specialization    string      `json:"specialization"`
	YearsOfExperience model.Whole `json:"years_of_experience"`
	Certification     string      `json:"certification"`
	Notes             string      `json:"notes"`
}

// PlayerSignupInput is the body of POST /players/signup/. Enum fields left
// empty take the profile defaults.
type PlayerSignupInput struct {
	Username  string             `json:"username"`
	Email     string             `json:"email"`
	Password  string             `json:"password"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	FullName  string             `json:"full_name"`
	Height    model.Number       `json:"height"`
	Weight    model.Number       `json:"weight"`
	Position  model.Position     `json:"position"`
	Status    model.PlayerStatus `json:"status"`
	Group     string             `json:"group"`
	Subgroup  string             `json:"subgroup"`
	Phone     string             `json:"phone"`
	Address   string             `json:"address"`
	Notes     string             `json:"notes"`
}

// SignupService applies the per-role signup rules on top of IdentityService.
//
//	admin  → open, but the body must say role "admin"; answers with a token
//	coach  → only an authenticated admin may create coaches
//	player → open
type SignupService struct {
	identity *IdentityService
	auth     *AuthService
	metrics  *Metrics
	logger   *slog.Logger
}

func NewSignupService(identity *IdentityService, authSvc *AuthService, metrics *Metrics, logger *slog.Logger) *SignupService {
	return &SignupService{
		identity: identity,
		auth:     authSvc,
		metrics:  metrics,
		logger:   logger,
	}
}

// SignupAdmin creates an admin account and returns its token. User and
// token are written in one transaction.
//
// The role check comes first: a request for any other role is Forbidden
// even when required fields are missing.
func (s *SignupService) SignupAdmin(ctx context.Context, in AdminSignupInput) (string, error) {
	if in.Role != model.RoleAdmin {
		s.logger.Warn("admin signup with wrong role", slog.String("role", string(in.Role)))
		return "", apperror.Forbidden("only admin users can sign up here")
	}

	var token string
	_, err := s.identity.CreateUser(ctx, NewUserInput{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		Role:      model.RoleAdmin,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Club:      in.Club,
		AfterCreate: func(ctx context.Context, repos repository.Repositories, user *model.User) error {
			key, err := s.auth.IssueToken(ctx, repos, user.ID)
			if err != nil {
				return err
			}
			token = key
			return nil
		},
	})
	if err != nil {
		return "", err
	}

	s.metrics.signup(string(model.RoleAdmin))
	return token, nil
}

// SignupCoach creates a coach with a populated profile. caller must be an
// admin; that check runs before the body is looked at.
func (s *SignupService) SignupCoach(ctx context.Context, caller *model.User, in CoachSignupInput) (*CreatedUser, error) {
	if caller == nil {
		return nil, apperror.Unauthenticated()
	}
	if caller.Role != model.RoleAdmin {
		s.logger.Warn("coach signup by non-admin",
			slog.String("callerID", caller.ID),
			slog.String("role", string(caller.Role)),
		)
		return nil, apperror.Forbidden("only admins can create coach accounts")
	}

	if in.YearsOfExperience < 0 {
		return nil, apperror.ValidationFailed("years_of_experience", "years_of_experience must not be negative")
	}

	profile := model.NewCoachProfile("")
	profile.Specialization = strings.TrimSpace(in.Specialization)
	profile.YearsOfExperience = int(in.YearsOfExperience)
	profile.Certification = strings.TrimSpace(in.Certification)
	profile.Notes = in.Notes

	created, err := s.identity.CreateUser(ctx, NewUserInput{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		Role:      model.RoleCoach,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Club:      in.Club,
		Coach:     profile,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.signup(string(model.RoleCoach))
	return created, nil
}

// SignupPlayer creates a player with a populated profile and returns the
// profile with its nested user.
func (s *SignupService) SignupPlayer(ctx context.Context, in PlayerSignupInput) (*model.PlayerProfile, error) {
	if err := requireFields(
		field{"username", in.Username},
		field{"email", in.Email},
		field{"password", in.Password},
		field{"full_name", in.FullName},
	); err != nil {
		return nil, err
	}

	profile := model.NewPlayerProfile("", strings.TrimSpace(in.FullName))
	profile.Height = float64(in.Height)
	profile.Weight = float64(in.Weight)
	if in.Position != "" {
		profile.Position = in.Position
	}
	if in.Status != "" {
		profile.Status = in.Status
	}
	profile.Group = strings.TrimSpace(in.Group)
	profile.Subgroup = strings.TrimSpace(in.Subgroup)
	profile.Phone = strings.TrimSpace(in.Phone)
	profile.Address = in.Address
	profile.Notes = in.Notes
	if err := validatePlayer(profile); err != nil {
		return nil, err
	}

	created, err := s.identity.CreateUser(ctx, NewUserInput{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		Role:      model.RolePlayer,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Player:    profile,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.signup(string(model.RolePlayer))
	return created.Player, nil
}
