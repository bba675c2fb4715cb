package repository

import (
	"context"

	"github.com/sakif/club-roster/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// PlayerFilter narrows ListPlayers. Zero value = no filtering.
type PlayerFilter struct {
	ListOptions
	Group string // exact match on the free-text group label
}

// GroupFilter narrows ListGroups. Zero value = no filtering.
type GroupFilter struct {
	ListOptions
	CoachID string
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

type CoachRepository interface {
	CreateCoach(ctx context.Context, profile *model.CoachProfile) error
	GetCoachByID(ctx context.Context, id string) (*model.CoachProfile, error)
	GetCoachByUserID(ctx context.Context, userID string) (*model.CoachProfile, error)
	ListCoaches(ctx context.Context, opts ListOptions) ([]model.CoachProfile, error)
	UpdateCoach(ctx context.Context, profile *model.CoachProfile) error
	DeleteCoach(ctx context.Context, id string) error
}

type PlayerRepository interface {
	CreatePlayer(ctx context.Context, profile *model.PlayerProfile) error
	GetPlayerByID(ctx context.Context, id string) (*model.PlayerProfile, error)
	GetPlayerByUserID(ctx context.Context, userID string) (*model.PlayerProfile, error)
	ListPlayers(ctx context.Context, filter PlayerFilter) ([]model.PlayerProfile, error)
	UpdatePlayer(ctx context.Context, profile *model.PlayerProfile) error
	DeletePlayer(ctx context.Context, id string) error
}

type GroupRepository interface {
	CreateGroup(ctx context.Context, group *model.Group) error
	GetGroupByID(ctx context.Context, id string) (*model.Group, error)
	ListGroups(ctx context.Context, filter GroupFilter) ([]model.Group, error)
	UpdateGroup(ctx context.Context, group *model.Group) error
	DeleteGroup(ctx context.Context, id string) error
	AddGroupPlayers(ctx context.Context, groupID string, playerIDs []string) error
	RemoveGroupPlayer(ctx context.Context, groupID, playerID string) error
}

// TokenRepository stores at most one token per user. CreateToken returns
// apperror.ErrConflict when the user already has one, which lets callers
// implement get-or-create without a race.
type TokenRepository interface {
	CreateToken(ctx context.Context, token *model.AuthToken) error
	GetTokenByUserID(ctx context.Context, userID string) (*model.AuthToken, error)
	GetTokenByKey(ctx context.Context, key string) (*model.AuthToken, error)
	DeleteTokenByUserID(ctx context.Context, userID string) error
}

// ProfileRepository is the slice of the store the profile synchronizer needs.
type ProfileRepository interface {
	CoachRepository
	PlayerRepository
}

// Repositories groups every repository. A Store hands one to WithTx bound to
// a single transaction.
type Repositories interface {
	UserRepository
	CoachRepository
	PlayerRepository
	GroupRepository
	TokenRepository
}

// Store is the credential store: all repositories plus transactions.
//
// WithTx runs fn inside one transaction. If fn returns an error (or panics),
// everything it wrote is rolled back; otherwise it is committed. fn must only
// use the Repositories it is given, never the outer Store.
type Store interface {
	Repositories
	WithTx(ctx context.Context, fn func(repos Repositories) error) error
}
